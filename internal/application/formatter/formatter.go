// Package formatter converts bills to display-ready rows and form values, and back.
package formatter

import (
	"fmt"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// frenchMonths are the abbreviated month names used in list dates
var frenchMonths = [...]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

var statusLabels = map[entity.BillStatus]string{
	entity.BillStatusPending:  "En attente",
	entity.BillStatusAccepted: "Accepté",
	entity.BillStatusRefused:  "Refusé",
}

// Formatter projects bills for display. Formatting failures are logged and
// degraded rather than returned.
type Formatter struct {
	logger Logger
}

// New creates a Formatter
func New(logger Logger) *Formatter {
	return &Formatter{logger: logger}
}

// FormatDate renders a stored date as "D Mon. YY", e.g. "2004-04-04" -> "4 Avr. 04"
func FormatDate(raw string) (string, error) {
	d, err := entity.ParseBillDate(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s. %02d", d.Day(), frenchMonths[d.Month()-1], d.Year()%100), nil
}

// FormatStatus returns the human label of a status
func FormatStatus(status entity.BillStatus) (string, error) {
	label, ok := statusLabels[status]
	if !ok {
		return "", fmt.Errorf("unknown bill status %q", status)
	}
	return label, nil
}

// ToDisplayRow projects a bill into a list row. It never fails: a malformed
// date or status is shown raw.
func (f *Formatter) ToDisplayRow(bill entity.Bill) entity.DisplayRow {
	row := entity.DisplayRow{
		ID:         bill.ID,
		Type:       bill.Type,
		Name:       bill.Name,
		Amount:     bill.Amount,
		Date:       bill.Date,
		RawDate:    bill.Date,
		Status:     string(bill.Status),
		StatusCode: bill.Status,
		FileURL:    bill.FileURL,
		FileName:   bill.FileName,
		Commentary: bill.Commentary,
		Email:      bill.Email,
	}

	if formatted, err := FormatDate(bill.Date); err != nil {
		f.logger.Error("Failed to format bill date, showing raw value",
			"bill_id", bill.ID,
			"date", bill.Date,
			"error", err)
	} else {
		row.Date = formatted
		row.DateIsValid = true
	}

	if label, err := FormatStatus(bill.Status); err != nil {
		f.logger.Error("Failed to format bill status, showing raw value",
			"bill_id", bill.ID,
			"status", bill.Status,
			"error", err)
	} else {
		row.Status = label
	}

	return row
}

// FromFormFields builds a partial bill from raw form input. No validation is
// performed; values that are not numbers are passed through for the store to judge.
func (f *Formatter) FromFormFields(fields entity.FormFields) entity.Bill {
	return entity.Bill{
		Type:       fields.Type,
		Name:       fields.Name,
		Amount:     entity.ParseNumber(fields.Amount),
		Date:       fields.Date,
		VAT:        entity.ParseNumber(fields.VAT),
		Pct:        entity.ParseNumber(fields.Pct),
		Commentary: fields.Commentary,
	}
}

// ToFormFields returns the editable fields of a bill as form values
func ToFormFields(bill entity.Bill) entity.FormFields {
	return entity.FormFields{
		Type:       bill.Type,
		Name:       bill.Name,
		Amount:     bill.Amount.String(),
		Date:       bill.Date,
		VAT:        bill.VAT.String(),
		Pct:        bill.Pct.String(),
		Commentary: bill.Commentary,
	}
}

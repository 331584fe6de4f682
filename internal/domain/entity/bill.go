package entity

import (
	"fmt"
	"time"
)

// Bill is one expense report record as exchanged with the record store.
// JSON field names are the persisted wire contract.
type Bill struct {
	ID           string     `json:"id,omitempty"`
	Type         string     `json:"type,omitempty" validate:"required,expensetype"`
	Name         string     `json:"name,omitempty"`
	Amount       Number     `json:"amount,omitzero" validate:"present,min=0"`
	Date         string     `json:"date,omitempty" validate:"required,datetime=2006-01-02"`
	VAT          Number     `json:"vat,omitzero" validate:"omitempty,min=0"`
	Pct          Number     `json:"pct,omitzero" validate:"omitempty,min=0,max=100"`
	Commentary   string     `json:"commentary,omitempty"`
	FileURL      string     `json:"fileUrl,omitempty"`
	FileName     string     `json:"fileName,omitempty"`
	Status       BillStatus `json:"status,omitempty" validate:"required,oneof=pending accepted refused"`
	CommentAdmin string     `json:"commentAdmin,omitempty"`
	Email        string     `json:"email,omitempty" validate:"required,email"`
}

// IsPersisted reports whether the store has assigned an id
func (b *Bill) IsPersisted() bool {
	return b.ID != ""
}

// Merge copies every field present in patch onto the bill.
// Identity, receipt and submitter fields are never patched.
func (b *Bill) Merge(patch Bill) {
	if patch.Type != "" {
		b.Type = patch.Type
	}
	if patch.Name != "" {
		b.Name = patch.Name
	}
	if patch.Amount.IsSet() {
		b.Amount = patch.Amount
	}
	if patch.Date != "" {
		b.Date = patch.Date
	}
	if patch.VAT.IsSet() {
		b.VAT = patch.VAT
	}
	if patch.Pct.IsSet() {
		b.Pct = patch.Pct
	}
	if patch.Commentary != "" {
		b.Commentary = patch.Commentary
	}
	if patch.Status != "" {
		b.Status = patch.Status
	}
	if patch.CommentAdmin != "" {
		b.CommentAdmin = patch.CommentAdmin
	}
}

// ParseBillDate parses a stored bill date (YYYY-MM-DD, or RFC 3339 for legacy rows)
func ParseBillDate(raw string) (time.Time, error) {
	if t, err := time.Parse(BillDateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid bill date %q", raw)
}

// StoredFileReference identifies a receipt once the store has persisted it
type StoredFileReference struct {
	Key string `json:"key"`
	URL string `json:"fileUrl"`
}

// FormFields holds the raw values typed into the new-bill form
type FormFields struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	VAT        string `json:"vat"`
	Pct        string `json:"pct"`
	Commentary string `json:"commentary"`
}

// DisplayRow is the read-only list projection of a bill
type DisplayRow struct {
	ID          string
	Type        string
	Name        string
	Amount      Number
	Date        string // formatted, or the raw value when it cannot be parsed
	RawDate     string
	Status      string // human label
	StatusCode  BillStatus
	FileURL     string
	FileName    string
	Commentary  string
	Email       string
	DateIsValid bool
}

// Preview is what the receipt modal displays for a row
type Preview struct {
	URL      string
	FileName string
	Blank    bool
}

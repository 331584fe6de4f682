package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/domain/entity"
)

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.errors = append(l.errors, msg)
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"2004-04-04", "4 Avr. 04"},
		{"2001-01-01", "1 Jan. 01"},
		{"2022-02-28", "28 Fév. 22"},
		{"2021-08-15", "15 Aoû. 21"},
		{"2003-12-31", "31 Déc. 03"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := FormatDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := FormatDate("not-a-date")
	assert.Error(t, err)
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		status   entity.BillStatus
		expected string
	}{
		{entity.BillStatusPending, "En attente"},
		{entity.BillStatusAccepted, "Accepté"},
		{entity.BillStatusRefused, "Refusé"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, err := FormatStatus(tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := FormatStatus("archived")
	assert.Error(t, err)
}

func TestFormatter_ToDisplayRow(t *testing.T) {
	t.Run("formats date and status", func(t *testing.T) {
		logger := &recordingLogger{}
		f := New(logger)

		row := f.ToDisplayRow(entity.Bill{
			ID:       "47qAXb6fIm2zOKkLzMro",
			Type:     entity.ExpenseTypeHotel,
			Name:     "encore",
			Amount:   entity.NewNumber(400),
			Date:     "2004-04-04",
			Status:   entity.BillStatusPending,
			FileURL:  "https://test.storage.tld/receipt.jpg",
			FileName: "receipt.jpg",
		})

		assert.Equal(t, "4 Avr. 04", row.Date)
		assert.Equal(t, "2004-04-04", row.RawDate)
		assert.True(t, row.DateIsValid)
		assert.Equal(t, "En attente", row.Status)
		assert.Equal(t, entity.BillStatusPending, row.StatusCode)
		assert.Equal(t, "https://test.storage.tld/receipt.jpg", row.FileURL)
		assert.Empty(t, logger.errors)
	})

	t.Run("malformed date falls back to raw value and is logged", func(t *testing.T) {
		logger := &recordingLogger{}
		f := New(logger)

		row := f.ToDisplayRow(entity.Bill{Date: "04/04/2004", Status: entity.BillStatusRefused})

		assert.Equal(t, "04/04/2004", row.Date)
		assert.False(t, row.DateIsValid)
		assert.Equal(t, "Refusé", row.Status)
		assert.Len(t, logger.errors, 1)
	})

	t.Run("unknown status falls back to raw value", func(t *testing.T) {
		logger := &recordingLogger{}
		f := New(logger)

		row := f.ToDisplayRow(entity.Bill{Date: "2004-04-04", Status: "archived"})

		assert.Equal(t, "archived", row.Status)
		assert.Len(t, logger.errors, 1)
	})
}

func TestFormatter_FromFormFields(t *testing.T) {
	f := New(&recordingLogger{})

	bill := f.FromFormFields(entity.FormFields{
		Type:   entity.ExpenseTypeHotel,
		Name:   "encore",
		Amount: "400",
		Date:   "2004-04-04",
		VAT:    "80",
		Pct:    "",
	})

	assert.Equal(t, entity.ExpenseTypeHotel, bill.Type)
	assert.True(t, bill.Amount.Equal(entity.NewNumber(400)))
	assert.True(t, bill.VAT.Equal(entity.NewNumber(80)))
	assert.False(t, bill.Pct.IsSet(), "empty pct stays absent")
	assert.Empty(t, bill.ID)
	assert.Empty(t, bill.Status)

	raw := f.FromFormFields(entity.FormFields{Amount: "quatre cents"})
	assert.True(t, raw.Amount.IsSet())
	assert.False(t, raw.Amount.Valid())
	assert.Equal(t, "quatre cents", raw.Amount.String())
}

func TestFormFieldsRoundTrip(t *testing.T) {
	f := New(&recordingLogger{})

	bills := []entity.Bill{
		{
			Type:   entity.ExpenseTypeHotel,
			Name:   "encore",
			Amount: entity.NewNumber(400),
			Date:   "2004-04-04",
			VAT:    entity.NewNumber(80),
			Pct:    entity.NewNumber(20),
		},
		{
			Type:   entity.ExpenseTypeTransport,
			Name:   "train",
			Amount: entity.ParseNumber("12.75"),
			Date:   "2021-11-30",
			Pct:    entity.NewNumber(10),
		},
	}

	for _, original := range bills {
		t.Run(original.Name, func(t *testing.T) {
			got := f.FromFormFields(ToFormFields(original))

			assert.Equal(t, original.Type, got.Type)
			assert.Equal(t, original.Name, got.Name)
			assert.Equal(t, original.Date, got.Date)
			assert.True(t, original.Amount.Equal(got.Amount), "amount")
			assert.True(t, original.VAT.Equal(got.VAT), "vat")
			assert.True(t, original.Pct.Equal(got.Pct), "pct")
		})
	}
}

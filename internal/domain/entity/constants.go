package entity

// BillStatus is the review status of a bill
type BillStatus string

// Bill status constants
const (
	BillStatusPending  BillStatus = "pending"
	BillStatusAccepted BillStatus = "accepted"
	BillStatusRefused  BillStatus = "refused"
)

// IsValid returns true if the status is one of the enumerated values
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusAccepted, BillStatusRefused:
		return true
	}
	return false
}

// String returns the wire representation of the status
func (s BillStatus) String() string {
	return string(s)
}

// Expense type labels offered by the new-bill form
const (
	ExpenseTypeTransport   = "Transports"
	ExpenseTypeRestaurant  = "Restaurants et bars"
	ExpenseTypeHotel       = "Hôtel et logement"
	ExpenseTypeOnline      = "Services en ligne"
	ExpenseTypeIT          = "IT et électronique"
	ExpenseTypeEquipment   = "Equipement et matériel"
	ExpenseTypeOfficeGoods = "Fournitures de bureau"
)

// ExpenseTypes lists the expense type labels in form order
var ExpenseTypes = []string{
	ExpenseTypeTransport,
	ExpenseTypeRestaurant,
	ExpenseTypeHotel,
	ExpenseTypeOnline,
	ExpenseTypeIT,
	ExpenseTypeEquipment,
	ExpenseTypeOfficeGoods,
}

// User types carried by a session
const (
	UserTypeEmployee = "Employee"
	UserTypeAdmin    = "Admin"
)

// DefaultPct is the VAT percentage applied when the form leaves it empty
const DefaultPct = 20

// BillDateLayout is the canonical storage layout of Bill.Date
const BillDateLayout = "2006-01-02"

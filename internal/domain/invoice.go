package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusSent      InvoiceStatus = "Sent"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusOverdue   InvoiceStatus = "Overdue"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// ValidInvoiceStatus reports whether s is a known invoice status.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodCheque       PaymentMethod = "Cheque"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodOther        PaymentMethod = "Other"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI, PaymentMethodCheque, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// TaxBreakup splits an invoice's tax into its GST components. For any
// single invoice either CGST+SGST (intra-state) or IGST (inter-state) is
// populated, never both.
type TaxBreakup struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

type Invoice struct {
	ID                 int32              `json:"id"`
	UserID             uuid.UUID          `json:"userId"`
	InvoiceNumber      string             `json:"invoiceNumber"`
	ClientID           int32              `json:"clientId"`
	InvoiceDate        time.Time          `json:"invoiceDate"`
	DueDate            time.Time          `json:"dueDate"`
	Status             InvoiceStatus      `json:"status"`
	LineItems          []*InvoiceLineItem `json:"lineItems,omitempty"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	TaxAmount          decimal.Decimal    `json:"taxAmount"`
	TotalAmount        decimal.Decimal    `json:"totalAmount"`
	TaxBreakup         TaxBreakup         `json:"taxBreakup"`
	Notes              *string            `json:"notes,omitempty"`
	TermsAndConditions *string            `json:"termsAndConditions,omitempty"`
	PaymentDate        *time.Time         `json:"paymentDate,omitempty"`
	PaymentMethod      *PaymentMethod     `json:"paymentMethod,omitempty"`
	PaymentReference   *string            `json:"paymentReference,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// IsOverdue reports whether the invoice is past due at the given instant.
// Paid and cancelled invoices never count as overdue.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled {
		return false
	}
	return now.After(i.DueDate)
}

type InvoiceFilters struct {
	Status    *InvoiceStatus
	ClientID  *int32
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	SortBy    string
	SortDesc  bool
	Page      int32
	PageSize  int32
}

const (
	DefaultInvoicePageSize = 10
	MaxInvoicePageSize     = 100
)

type PaginatedInvoices struct {
	Data       []*Invoice `json:"data"`
	Page       int32      `json:"page"`
	PageSize   int32      `json:"pageSize"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int32      `json:"totalPages"`
}

// InvoiceStats is the per-status summary for the invoice dashboard.
type InvoiceStats struct {
	TotalInvoices   int64           `json:"totalInvoices"`
	DraftInvoices   int64           `json:"draftInvoices"`
	SentInvoices    int64           `json:"sentInvoices"`
	PaidInvoices    int64           `json:"paidInvoices"`
	OverdueInvoices int64           `json:"overdueInvoices"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	PendingAmount   decimal.Decimal `json:"pendingAmount"`
}

// PaymentDetails records how a paid invoice was settled.
type PaymentDetails struct {
	PaymentDate      time.Time
	PaymentMethod    *PaymentMethod
	PaymentReference *string
}

type InvoiceRepository interface {
	Create(invoice *Invoice, items []*InvoiceLineItem) (*Invoice, error)
	GetByID(userID uuid.UUID, id int32) (*Invoice, error)
	GetByUser(userID uuid.UUID, filters *InvoiceFilters) (*PaginatedInvoices, error)
	Update(userID uuid.UUID, id int32, invoice *Invoice, items []*InvoiceLineItem) (*Invoice, error)
	Delete(userID uuid.UUID, id int32) error
	MarkPaid(userID uuid.UUID, id int32, payment PaymentDetails) (*Invoice, error)
	Stats(userID uuid.UUID) (*InvoiceStats, error)

	// NextSequence atomically increments and returns the invoice sequence
	// for the user's financial year. The increment is a single statement
	// so two concurrent invoice creations can never observe the same value.
	NextSequence(userID uuid.UUID, financialYear int32) (int32, error)
}

package service

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/util"
)

// invoiceNumberPattern matches INV-<financial year>-<4+ digit sequence>.
var invoiceNumberPattern = regexp.MustCompile(`^INV-(\d{4})-(\d{4,})$`)

// InvoiceNumberService issues sequential invoice numbers scoped to a user
// and an Indian financial year (April to March). Sequence state lives in
// the invoice repository so concurrent issuers never observe the same
// number twice.
type InvoiceNumberService struct {
	invoiceRepo domain.InvoiceRepository
}

// NewInvoiceNumberService creates a new InvoiceNumberService
func NewInvoiceNumberService(invoiceRepo domain.InvoiceRepository) *InvoiceNumberService {
	return &InvoiceNumberService{invoiceRepo: invoiceRepo}
}

// Next reserves and formats the next invoice number for the financial year
// containing issueDate.
func (s *InvoiceNumberService) Next(userID uuid.UUID, issueDate time.Time) (string, error) {
	fy := util.FinancialYearFor(issueDate)
	seq, err := s.invoiceRepo.NextSequence(userID, int32(fy))
	if err != nil {
		return "", fmt.Errorf("reserve invoice sequence: %w", err)
	}
	return FormatInvoiceNumber(fy, seq), nil
}

// FormatInvoiceNumber renders an invoice number as INV-<FY>-<zero padded seq>.
// Sequences beyond 9999 widen naturally instead of wrapping.
func FormatInvoiceNumber(financialYear int, sequence int32) string {
	return fmt.Sprintf("INV-%d-%04d", financialYear, sequence)
}

// ParseInvoiceNumber splits an invoice number into its financial year and
// sequence. A string that does not match the issued format returns
// domain.ErrMalformedInvoiceNumber; numbers are never silently repaired.
func ParseInvoiceNumber(number string) (financialYear int, sequence int32, err error) {
	m := invoiceNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, domain.ErrMalformedInvoiceNumber
	}
	fy, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, domain.ErrMalformedInvoiceNumber
	}
	seq, err := strconv.ParseInt(m[2], 10, 32)
	if err != nil || seq < 1 {
		return 0, 0, domain.ErrMalformedInvoiceNumber
	}
	return fy, int32(seq), nil
}

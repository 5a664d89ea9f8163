package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/testutil"
)

func TestInvoiceNumberNext(t *testing.T) {
	repo := testutil.NewMockInvoiceRepository()
	svc := NewInvoiceNumberService(repo)
	userID := uuid.New()
	issueDate := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	number, err := svc.Next(userID, issueDate)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if number != "INV-2025-0001" {
		t.Errorf("expected INV-2025-0001, got %s", number)
	}

	number, err = svc.Next(userID, issueDate)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if number != "INV-2025-0002" {
		t.Errorf("expected INV-2025-0002, got %s", number)
	}
}

func TestInvoiceNumberNext_FinancialYearBoundary(t *testing.T) {
	repo := testutil.NewMockInvoiceRepository()
	svc := NewInvoiceNumberService(repo)
	userID := uuid.New()

	// March belongs to the previous financial year, April starts a new one.
	march := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	number, err := svc.Next(userID, march)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if number != "INV-2025-0001" {
		t.Errorf("expected INV-2025-0001, got %s", number)
	}

	number, err = svc.Next(userID, april)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if number != "INV-2026-0001" {
		t.Errorf("expected INV-2026-0001 after year rollover, got %s", number)
	}
}

func TestInvoiceNumberNext_PerUserSequences(t *testing.T) {
	repo := testutil.NewMockInvoiceRepository()
	svc := NewInvoiceNumberService(repo)
	issueDate := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Next(uuid.New(), issueDate)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	second, err := svc.Next(uuid.New(), issueDate)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if first != "INV-2025-0001" || second != "INV-2025-0001" {
		t.Errorf("expected independent per-user sequences, got %s and %s", first, second)
	}
}

func TestInvoiceNumberNext_Concurrent(t *testing.T) {
	repo := testutil.NewMockInvoiceRepository()
	svc := NewInvoiceNumberService(repo)
	userID := uuid.New()
	issueDate := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	const workers = 50
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := svc.Next(userID, issueDate)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate invoice number issued: %s", number)
		}
		seen[number] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d distinct numbers, got %d", workers, len(seen))
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	if got := FormatInvoiceNumber(2025, 7); got != "INV-2025-0007" {
		t.Errorf("expected INV-2025-0007, got %s", got)
	}
	if got := FormatInvoiceNumber(2025, 12345); got != "INV-2025-12345" {
		t.Errorf("expected sequence beyond 9999 to widen, got %s", got)
	}
}

func TestParseInvoiceNumber(t *testing.T) {
	fy, seq, err := ParseInvoiceNumber("INV-2025-0042")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if fy != 2025 || seq != 42 {
		t.Errorf("expected FY 2025 seq 42, got %d/%d", fy, seq)
	}

	malformed := []string{
		"",
		"INV-2025",
		"INV-25-0001",
		"INV-2025-001",
		"INV-2025-0000",
		"inv-2025-0001",
		"INVOICE-2025-0001",
		"INV-2025-0001-extra",
	}
	for _, raw := range malformed {
		if _, _, err := ParseInvoiceNumber(raw); !errors.Is(err, domain.ErrMalformedInvoiceNumber) {
			t.Errorf("ParseInvoiceNumber(%q): expected ErrMalformedInvoiceNumber, got %v", raw, err)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	number := FormatInvoiceNumber(2026, 9999)
	fy, seq, err := ParseInvoiceNumber(number)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if fy != 2026 || seq != 9999 {
		t.Errorf("round trip mismatch: %d/%d", fy, seq)
	}
}

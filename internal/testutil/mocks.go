package testutil

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	ByID    map[uuid.UUID]*domain.User
	ByEmail map[string]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:    make(map[uuid.UUID]*domain.User),
		ByEmail: make(map[string]*domain.User),
	}
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if _, ok := m.ByEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.ByID[user.ID] = user
	m.ByEmail[user.Email] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	if user, ok := m.ByEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.ByID[user.ID] = user
	m.ByEmail[user.Email] = user
}

// MockClientRepository is a mock implementation of domain.ClientRepository
type MockClientRepository struct {
	Clients map[int32]*domain.Client
	NextID  int32
}

// NewMockClientRepository creates a new MockClientRepository
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		Clients: make(map[int32]*domain.Client),
		NextID:  1,
	}
}

// Create creates a new client
func (m *MockClientRepository) Create(client *domain.Client) (*domain.Client, error) {
	client.ID = m.NextID
	m.NextID++
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	m.Clients[client.ID] = client
	return client, nil
}

// GetByID retrieves a client owned by the user
func (m *MockClientRepository) GetByID(userID uuid.UUID, id int32) (*domain.Client, error) {
	if client, ok := m.Clients[id]; ok && client.UserID == userID {
		return client, nil
	}
	return nil, domain.ErrClientNotFound
}

// GetByUser lists the user's clients, optionally filtered by a search term
func (m *MockClientRepository) GetByUser(userID uuid.UUID, search string) ([]*domain.Client, error) {
	needle := strings.ToLower(search)
	var out []*domain.Client
	for _, client := range m.Clients {
		if client.UserID != userID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(client.ClientName), needle) {
			continue
		}
		out = append(out, client)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update updates an existing client
func (m *MockClientRepository) Update(userID uuid.UUID, id int32, client *domain.Client) (*domain.Client, error) {
	existing, ok := m.Clients[id]
	if !ok || existing.UserID != userID {
		return nil, domain.ErrClientNotFound
	}
	client.ID = id
	client.UserID = userID
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now()
	m.Clients[id] = client
	return client, nil
}

// Delete removes a client
func (m *MockClientRepository) Delete(userID uuid.UUID, id int32) error {
	if client, ok := m.Clients[id]; ok && client.UserID == userID {
		delete(m.Clients, id)
		return nil
	}
	return domain.ErrClientNotFound
}

// MockBusinessProfileRepository is a mock implementation of domain.BusinessProfileRepository
type MockBusinessProfileRepository struct {
	Profiles map[uuid.UUID]*domain.BusinessProfile
	NextID   int32
}

// NewMockBusinessProfileRepository creates a new MockBusinessProfileRepository
func NewMockBusinessProfileRepository() *MockBusinessProfileRepository {
	return &MockBusinessProfileRepository{
		Profiles: make(map[uuid.UUID]*domain.BusinessProfile),
		NextID:   1,
	}
}

// GetByUser retrieves the user's business profile
func (m *MockBusinessProfileRepository) GetByUser(userID uuid.UUID) (*domain.BusinessProfile, error) {
	if profile, ok := m.Profiles[userID]; ok {
		return profile, nil
	}
	return nil, domain.ErrBusinessProfileNotFound
}

// Upsert creates or replaces the user's business profile
func (m *MockBusinessProfileRepository) Upsert(profile *domain.BusinessProfile) (*domain.BusinessProfile, error) {
	if existing, ok := m.Profiles[profile.UserID]; ok {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.ID = m.NextID
		m.NextID++
		profile.CreatedAt = time.Now()
	}
	profile.UpdatedAt = time.Now()
	m.Profiles[profile.UserID] = profile
	return profile, nil
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository
type MockIncomeRepository struct {
	Incomes map[int32]*domain.Income
	NextID  int32
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{
		Incomes: make(map[int32]*domain.Income),
		NextID:  1,
	}
}

// Create creates a new income entry
func (m *MockIncomeRepository) Create(income *domain.Income) (*domain.Income, error) {
	income.ID = m.NextID
	m.NextID++
	income.CreatedAt = time.Now()
	income.UpdatedAt = income.CreatedAt
	m.Incomes[income.ID] = income
	return income, nil
}

// GetByID retrieves an income entry owned by the user
func (m *MockIncomeRepository) GetByID(userID uuid.UUID, id int32) (*domain.Income, error) {
	if income, ok := m.Incomes[id]; ok && income.UserID == userID {
		return income, nil
	}
	return nil, domain.ErrIncomeNotFound
}

// GetByUser lists the user's income entries within an optional date range
func (m *MockIncomeRepository) GetByUser(userID uuid.UUID, from, to *time.Time) ([]*domain.Income, error) {
	var out []*domain.Income
	for _, income := range m.Incomes {
		if income.UserID != userID {
			continue
		}
		if !inRange(income.Date, from, to) {
			continue
		}
		out = append(out, income)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Update updates an existing income entry
func (m *MockIncomeRepository) Update(userID uuid.UUID, id int32, income *domain.Income) (*domain.Income, error) {
	existing, ok := m.Incomes[id]
	if !ok || existing.UserID != userID {
		return nil, domain.ErrIncomeNotFound
	}
	income.ID = id
	income.UserID = userID
	income.CreatedAt = existing.CreatedAt
	income.UpdatedAt = time.Now()
	m.Incomes[id] = income
	return income, nil
}

// Delete removes an income entry
func (m *MockIncomeRepository) Delete(userID uuid.UUID, id int32) error {
	if income, ok := m.Incomes[id]; ok && income.UserID == userID {
		delete(m.Incomes, id)
		return nil
	}
	return domain.ErrIncomeNotFound
}

// SummaryByCategory aggregates income totals per category
func (m *MockIncomeRepository) SummaryByCategory(userID uuid.UUID) ([]*domain.CategorySummary, error) {
	byCategory := make(map[string]*domain.CategorySummary)
	for _, income := range m.Incomes {
		if income.UserID != userID {
			continue
		}
		key := string(income.Category)
		if _, ok := byCategory[key]; !ok {
			byCategory[key] = &domain.CategorySummary{Category: key}
		}
		byCategory[key].Total = byCategory[key].Total.Add(income.Amount)
		byCategory[key].Count++
	}
	return sortedSummaries(byCategory), nil
}

// MonthlyTotals aggregates income per calendar month since the given time
func (m *MockIncomeRepository) MonthlyTotals(userID uuid.UUID, since time.Time) ([]*domain.MonthlyTotal, error) {
	byMonth := make(map[[2]int]*domain.MonthlyTotal)
	for _, income := range m.Incomes {
		if income.UserID != userID || income.Date.Before(since) {
			continue
		}
		key := [2]int{income.Date.Year(), int(income.Date.Month())}
		if _, ok := byMonth[key]; !ok {
			byMonth[key] = &domain.MonthlyTotal{Year: key[0], Month: key[1]}
		}
		byMonth[key].Total = byMonth[key].Total.Add(income.Amount)
	}
	return sortedMonthlyTotals(byMonth), nil
}

// TotalAmount sums all income for the user
func (m *MockIncomeRepository) TotalAmount(userID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, income := range m.Incomes {
		if income.UserID == userID {
			total = total.Add(income.Amount)
		}
	}
	return total, nil
}

// Count returns the number of income entries for the user
func (m *MockIncomeRepository) Count(userID uuid.UUID) (int64, error) {
	var count int64
	for _, income := range m.Incomes {
		if income.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses map[int32]*domain.Expense
	NextID   int32
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		NextID:   1,
	}
}

// Create creates a new expense entry
func (m *MockExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	expense.ID = m.NextID
	m.NextID++
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// GetByID retrieves an expense owned by the user
func (m *MockExpenseRepository) GetByID(userID uuid.UUID, id int32) (*domain.Expense, error) {
	if expense, ok := m.Expenses[id]; ok && expense.UserID == userID {
		return expense, nil
	}
	return nil, domain.ErrExpenseNotFound
}

// GetByUser lists the user's expenses within an optional date range
func (m *MockExpenseRepository) GetByUser(userID uuid.UUID, from, to *time.Time) ([]*domain.Expense, error) {
	var out []*domain.Expense
	for _, expense := range m.Expenses {
		if expense.UserID != userID {
			continue
		}
		if !inRange(expense.Date, from, to) {
			continue
		}
		out = append(out, expense)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Update updates an existing expense
func (m *MockExpenseRepository) Update(userID uuid.UUID, id int32, expense *domain.Expense) (*domain.Expense, error) {
	existing, ok := m.Expenses[id]
	if !ok || existing.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	expense.ID = id
	expense.UserID = userID
	expense.CreatedAt = existing.CreatedAt
	expense.UpdatedAt = time.Now()
	m.Expenses[id] = expense
	return expense, nil
}

// Delete removes an expense
func (m *MockExpenseRepository) Delete(userID uuid.UUID, id int32) error {
	if expense, ok := m.Expenses[id]; ok && expense.UserID == userID {
		delete(m.Expenses, id)
		return nil
	}
	return domain.ErrExpenseNotFound
}

// SummaryByCategory aggregates expense totals per category
func (m *MockExpenseRepository) SummaryByCategory(userID uuid.UUID) ([]*domain.CategorySummary, error) {
	byCategory := make(map[string]*domain.CategorySummary)
	for _, expense := range m.Expenses {
		if expense.UserID != userID {
			continue
		}
		key := string(expense.Category)
		if _, ok := byCategory[key]; !ok {
			byCategory[key] = &domain.CategorySummary{Category: key}
		}
		byCategory[key].Total = byCategory[key].Total.Add(expense.Amount)
		byCategory[key].Count++
	}
	return sortedSummaries(byCategory), nil
}

// MonthlyTotals aggregates expenses per calendar month since the given time
func (m *MockExpenseRepository) MonthlyTotals(userID uuid.UUID, since time.Time) ([]*domain.MonthlyTotal, error) {
	byMonth := make(map[[2]int]*domain.MonthlyTotal)
	for _, expense := range m.Expenses {
		if expense.UserID != userID || expense.Date.Before(since) {
			continue
		}
		key := [2]int{expense.Date.Year(), int(expense.Date.Month())}
		if _, ok := byMonth[key]; !ok {
			byMonth[key] = &domain.MonthlyTotal{Year: key[0], Month: key[1]}
		}
		byMonth[key].Total = byMonth[key].Total.Add(expense.Amount)
	}
	return sortedMonthlyTotals(byMonth), nil
}

// TotalAmount sums all expenses for the user
func (m *MockExpenseRepository) TotalAmount(userID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, expense := range m.Expenses {
		if expense.UserID == userID {
			total = total.Add(expense.Amount)
		}
	}
	return total, nil
}

// Count returns the number of expenses for the user
func (m *MockExpenseRepository) Count(userID uuid.UUID) (int64, error) {
	var count int64
	for _, expense := range m.Expenses {
		if expense.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Upsert creates or replaces the budget for (user, category, month)
func (m *MockBudgetRepository) Upsert(budget *domain.Budget) (*domain.Budget, error) {
	for _, existing := range m.Budgets {
		if existing.UserID == budget.UserID && existing.Category == budget.Category && existing.Month == budget.Month {
			existing.Amount = budget.Amount
			existing.UpdatedAt = time.Now()
			return existing, nil
		}
	}
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByUser lists the user's budgets, optionally for a single month
func (m *MockBudgetRepository) GetByUser(userID uuid.UUID, month string) ([]*domain.Budget, error) {
	var out []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID != userID {
			continue
		}
		if month != "" && budget.Month != month {
			continue
		}
		out = append(out, budget)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByCategoryMonth retrieves one budget by its natural key
func (m *MockBudgetRepository) GetByCategoryMonth(userID uuid.UUID, category domain.ExpenseCategory, month string) (*domain.Budget, error) {
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.Category == category && budget.Month == month {
			return budget, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(userID uuid.UUID, id int32) error {
	if budget, ok := m.Budgets[id]; ok && budget.UserID == userID {
		delete(m.Budgets, id)
		return nil
	}
	return domain.ErrBudgetNotFound
}

// MockInvoiceRepository is a mock implementation of domain.InvoiceRepository
type MockInvoiceRepository struct {
	mu        sync.Mutex
	Invoices  map[int32]*domain.Invoice
	NextID    int32
	Sequences map[string]int32
}

// NewMockInvoiceRepository creates a new MockInvoiceRepository
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		Invoices:  make(map[int32]*domain.Invoice),
		NextID:    1,
		Sequences: make(map[string]int32),
	}
}

// Create creates a new invoice with its line items
func (m *MockInvoiceRepository) Create(invoice *domain.Invoice, items []*domain.InvoiceLineItem) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Invoices {
		if existing.UserID == invoice.UserID && existing.InvoiceNumber == invoice.InvoiceNumber {
			return nil, domain.ErrDuplicateInvoiceNumber
		}
	}
	invoice.ID = m.NextID
	m.NextID++
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = invoice.CreatedAt
	for i, item := range items {
		item.ID = int32(i + 1)
		item.InvoiceID = invoice.ID
	}
	invoice.LineItems = items
	m.Invoices[invoice.ID] = invoice
	return invoice, nil
}

// GetByID retrieves an invoice owned by the user
func (m *MockInvoiceRepository) GetByID(userID uuid.UUID, id int32) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if invoice, ok := m.Invoices[id]; ok && invoice.UserID == userID {
		return invoice, nil
	}
	return nil, domain.ErrInvoiceNotFound
}

// GetByUser lists the user's invoices with filtering and pagination
func (m *MockInvoiceRepository) GetByUser(userID uuid.UUID, filters *domain.InvoiceFilters) (*domain.PaginatedInvoices, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Invoice
	for _, invoice := range m.Invoices {
		if invoice.UserID != userID {
			continue
		}
		if filters.Status != nil && invoice.Status != *filters.Status {
			continue
		}
		if filters.ClientID != nil && invoice.ClientID != *filters.ClientID {
			continue
		}
		if filters.StartDate != nil && invoice.InvoiceDate.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && invoice.InvoiceDate.After(*filters.EndDate) {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(invoice.InvoiceNumber), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, invoice)
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch filters.SortBy {
		case "totalAmount":
			less = matched[i].TotalAmount.LessThan(matched[j].TotalAmount)
		case "dueDate":
			less = matched[i].DueDate.Before(matched[j].DueDate)
		default:
			less = matched[i].InvoiceDate.Before(matched[j].InvoiceDate)
		}
		if filters.SortDesc {
			return !less
		}
		return less
	})

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultInvoicePageSize
	}

	total := int64(len(matched))
	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	start := (page - 1) * pageSize
	if int(start) > len(matched) {
		start = int32(len(matched))
	}
	end := start + pageSize
	if int(end) > len(matched) {
		end = int32(len(matched))
	}

	return &domain.PaginatedInvoices{
		Data:       matched[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Update replaces an invoice and its line items
func (m *MockInvoiceRepository) Update(userID uuid.UUID, id int32, invoice *domain.Invoice, items []*domain.InvoiceLineItem) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Invoices[id]
	if !ok || existing.UserID != userID {
		return nil, domain.ErrInvoiceNotFound
	}
	invoice.ID = id
	invoice.UserID = userID
	invoice.InvoiceNumber = existing.InvoiceNumber
	invoice.CreatedAt = existing.CreatedAt
	invoice.UpdatedAt = time.Now()
	for i, item := range items {
		item.ID = int32(i + 1)
		item.InvoiceID = id
	}
	invoice.LineItems = items
	m.Invoices[id] = invoice
	return invoice, nil
}

// Delete removes an invoice
func (m *MockInvoiceRepository) Delete(userID uuid.UUID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if invoice, ok := m.Invoices[id]; ok && invoice.UserID == userID {
		delete(m.Invoices, id)
		return nil
	}
	return domain.ErrInvoiceNotFound
}

// MarkPaid records payment details and flips the status to Paid
func (m *MockInvoiceRepository) MarkPaid(userID uuid.UUID, id int32, payment domain.PaymentDetails) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.Invoices[id]
	if !ok || invoice.UserID != userID {
		return nil, domain.ErrInvoiceNotFound
	}
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaymentDate = &payment.PaymentDate
	invoice.PaymentMethod = payment.PaymentMethod
	invoice.PaymentReference = payment.PaymentReference
	invoice.UpdatedAt = time.Now()
	return invoice, nil
}

// Stats aggregates per-status counts and revenue totals
func (m *MockInvoiceRepository) Stats(userID uuid.UUID) (*domain.InvoiceStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &domain.InvoiceStats{
		TotalRevenue:  decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	for _, invoice := range m.Invoices {
		if invoice.UserID != userID {
			continue
		}
		stats.TotalInvoices++
		switch invoice.Status {
		case domain.InvoiceStatusDraft:
			stats.DraftInvoices++
		case domain.InvoiceStatusSent:
			stats.SentInvoices++
			stats.PendingAmount = stats.PendingAmount.Add(invoice.TotalAmount)
		case domain.InvoiceStatusPaid:
			stats.PaidInvoices++
			stats.TotalRevenue = stats.TotalRevenue.Add(invoice.TotalAmount)
		case domain.InvoiceStatusOverdue:
			stats.OverdueInvoices++
			stats.PendingAmount = stats.PendingAmount.Add(invoice.TotalAmount)
		}
	}
	return stats, nil
}

// NextSequence atomically increments the per-(user, financial year) sequence
func (m *MockInvoiceRepository) NextSequence(userID uuid.UUID, financialYear int32) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%d", userID, financialYear)
	m.Sequences[key]++
	return m.Sequences[key], nil
}

func inRange(date time.Time, from, to *time.Time) bool {
	if from != nil && date.Before(*from) {
		return false
	}
	if to != nil && date.After(*to) {
		return false
	}
	return true
}

func sortedSummaries(byCategory map[string]*domain.CategorySummary) []*domain.CategorySummary {
	out := make([]*domain.CategorySummary, 0, len(byCategory))
	for _, summary := range byCategory {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

func sortedMonthlyTotals(byMonth map[[2]int]*domain.MonthlyTotal) []*domain.MonthlyTotal {
	out := make([]*domain.MonthlyTotal, 0, len(byMonth))
	for _, total := range byMonth {
		out = append(out, total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

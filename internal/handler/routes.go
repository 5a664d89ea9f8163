package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/trubalance/trubalance-backend/internal/middleware"
)

// Handlers bundles every HTTP handler for route registration
type Handlers struct {
	Auth            *AuthHandler
	Client          *ClientHandler
	BusinessProfile *BusinessProfileHandler
	Income          *IncomeHandler
	Expense         *ExpenseHandler
	Budget          *BudgetHandler
	Invoice         *InvoiceHandler
	GST             *GSTHandler
	Stats           *StatsHandler
	Insights        *InsightsHandler
	WebSocket       *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h *Handlers) {
	// API version 1
	api := e.Group("/api/v1")

	// Public auth routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Everything below requires a bearer token
	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate())
	protected.Use(middleware.RateLimitMiddleware(rateLimiter))

	protected.GET("/auth/me", h.Auth.Me)

	// Client routes
	protected.POST("/clients", h.Client.CreateClient)
	protected.GET("/clients", h.Client.GetClients)
	protected.GET("/clients/:id", h.Client.GetClient)
	protected.PUT("/clients/:id", h.Client.UpdateClient)
	protected.DELETE("/clients/:id", h.Client.DeleteClient)

	// Business profile routes
	protected.GET("/business-profile", h.BusinessProfile.GetProfile)
	protected.PUT("/business-profile", h.BusinessProfile.UpsertProfile)
	protected.POST("/business-profile/logo", h.BusinessProfile.UploadLogo)

	// Income routes
	protected.POST("/incomes", h.Income.CreateIncome)
	protected.GET("/incomes", h.Income.GetIncomes)
	protected.GET("/incomes/suggest-category", h.Income.SuggestCategory)
	protected.GET("/incomes/:id", h.Income.GetIncome)
	protected.PUT("/incomes/:id", h.Income.UpdateIncome)
	protected.DELETE("/incomes/:id", h.Income.DeleteIncome)

	// Expense routes
	protected.POST("/expenses", h.Expense.CreateExpense)
	protected.GET("/expenses", h.Expense.GetExpenses)
	protected.GET("/expenses/suggest-category", h.Expense.SuggestCategory)
	protected.GET("/expenses/:id", h.Expense.GetExpense)
	protected.PUT("/expenses/:id", h.Expense.UpdateExpense)
	protected.DELETE("/expenses/:id", h.Expense.DeleteExpense)
	protected.POST("/expenses/:id/receipt", h.Expense.UploadReceipt)
	protected.GET("/expenses/:id/receipt", h.Expense.GetReceiptURL)

	// Budget routes
	protected.PUT("/budgets", h.Budget.SetBudget)
	protected.GET("/budgets", h.Budget.GetBudgets)
	protected.DELETE("/budgets/:id", h.Budget.DeleteBudget)
	protected.POST("/budgets/suggest", h.Budget.SuggestBudget)
	protected.GET("/budgets/suggest/history", h.Budget.SuggestFromHistory)
	protected.GET("/budgets/performance/:month", h.Budget.GetPerformance)
	protected.GET("/budgets/emergency-fund", h.Budget.GetEmergencyFund)

	// Invoice routes
	protected.POST("/invoices", h.Invoice.CreateInvoice)
	protected.GET("/invoices", h.Invoice.GetInvoices)
	protected.GET("/invoices/stats", h.Invoice.GetStats)
	protected.GET("/invoices/:id", h.Invoice.GetInvoice)
	protected.PUT("/invoices/:id", h.Invoice.UpdateInvoice)
	protected.DELETE("/invoices/:id", h.Invoice.DeleteInvoice)
	protected.PATCH("/invoices/:id/mark-paid", h.Invoice.MarkPaid)

	// GST utility routes
	protected.POST("/gst/calculate", h.GST.CalculateGST)
	protected.GET("/gst/validate-gstin", h.GST.ValidateGSTIN)
	protected.GET("/gst/validate-pan", h.GST.ValidatePAN)

	// Stats routes
	protected.GET("/stats/overview", h.Stats.GetOverview)
	protected.GET("/stats/income-by-category", h.Stats.GetIncomeByCategory)
	protected.GET("/stats/expenses-by-category", h.Stats.GetExpensesByCategory)
	protected.GET("/stats/trends", h.Stats.GetMonthlyTrends)

	// Insights routes
	protected.GET("/insights/patterns", h.Insights.GetSpendingPatterns)
	protected.GET("/insights/advice", h.Insights.GetAdvice)
	protected.GET("/insights/report/:month", h.Insights.GetMonthlyReport)

	// WebSocket endpoint (token is validated from the query parameter)
	e.GET("/ws", h.WebSocket.HandleWS)
}

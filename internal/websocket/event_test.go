package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     1,
		"title":  "Office rent",
		"amount": "15000.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeExpense, payload)
	after := time.Now()

	assert.Equal(t, "expense.created", evt.Type)
	assert.Equal(t, EntityTypeExpense, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NewEvent(EventTypePaid, EntityTypeInvoice, map[string]interface{}{
		"id":            float64(7),
		"invoiceNumber": "INV-2025-0007",
	})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "invoice.paid", decoded["type"])
	assert.Equal(t, "invoice", decoded["entity"])
	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "INV-2025-0007", payload["invoiceNumber"])
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{"income created", IncomeCreated(nil), "income.created"},
		{"income updated", IncomeUpdated(nil), "income.updated"},
		{"income deleted", IncomeDeleted(nil), "income.deleted"},
		{"expense created", ExpenseCreated(nil), "expense.created"},
		{"expense updated", ExpenseUpdated(nil), "expense.updated"},
		{"expense deleted", ExpenseDeleted(nil), "expense.deleted"},
		{"budget updated", BudgetUpdated(nil), "budget.updated"},
		{"budget deleted", BudgetDeleted(nil), "budget.deleted"},
		{"invoice created", InvoiceCreated(nil), "invoice.created"},
		{"invoice updated", InvoiceUpdated(nil), "invoice.updated"},
		{"invoice deleted", InvoiceDeleted(nil), "invoice.deleted"},
		{"invoice paid", InvoicePaid(nil), "invoice.paid"},
		{"client created", ClientCreated(nil), "client.created"},
		{"client updated", ClientUpdated(nil), "client.updated"},
		{"client deleted", ClientDeleted(nil), "client.deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Type)
		})
	}
}

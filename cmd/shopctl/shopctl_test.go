package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/example/foodshop/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDemoCatalog(t *testing.T) {
	products := demoCatalog()

	seen := map[string]bool{}
	var flat, counts, details int
	for _, p := range products {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.True(t, p.Active)

		if len(p.StockBySize) == 0 {
			flat++
			continue
		}
		for _, e := range p.StockBySize {
			switch e.Kind {
			case models.SizeEntryCount:
				counts++
			case models.SizeEntryDetail:
				details++
				assert.NotNil(t, e.Price)
			}
		}
	}
	assert.Positive(t, flat)
	assert.Positive(t, counts)
	assert.Positive(t, details)
}

func TestRenderOrders(t *testing.T) {
	var buf bytes.Buffer
	renderOrders(&buf, []models.Order{{
		ID:            "o-123",
		Status:        models.OrderStatusShipped,
		CustomerName:  "Ana",
		Total:         decimal.NewFromInt(2500),
		PaymentMethod: models.PaymentWhatsApp,
		CreatedAt:     time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}})

	out := buf.String()
	assert.Contains(t, out, "o-123")
	assert.Contains(t, out, "2500.00")
	assert.Contains(t, out, "2024-05-01 12:30")
}

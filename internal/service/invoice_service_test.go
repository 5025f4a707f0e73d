package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestNormalizeItems(t *testing.T) {
	items := NormalizeItems([]InvoiceItemInput{
		{Description: "Consulting", Quantity: d("2"), Rate: d("50")},
		{Description: "   ", Quantity: d("3"), Rate: d("10")},
		{Description: "", Quantity: d("1"), Rate: d("99")},
		{Description: "Hosting", Quantity: d("1"), Rate: d("100")},
	})

	require.Len(t, items, 2, "blank descriptions are dropped")
	assert.Equal(t, "Consulting", items[0].Description)
	assert.True(t, items[0].Amount.Equal(d("100")))
	assert.True(t, items[1].Amount.Equal(d("100")))
}

func TestNormalizeItemsNonPositiveAmounts(t *testing.T) {
	items := NormalizeItems([]InvoiceItemInput{
		{Description: "Zero qty", Quantity: d("0"), Rate: d("50")},
		{Description: "Negative rate", Quantity: d("2"), Rate: d("-5")},
		{Description: "Both zero", Quantity: d("0"), Rate: d("0")},
	})

	require.Len(t, items, 3)
	for _, item := range items {
		assert.True(t, item.Amount.IsZero(), item.Description)
	}
}

func TestCalculateInvoiceTotals(t *testing.T) {
	items := NormalizeItems([]InvoiceItemInput{
		{Description: "Consulting", Quantity: d("2"), Rate: d("50")},
		{Description: "Hosting", Quantity: d("1"), Rate: d("100")},
	})

	subtotal, tax, total := CalculateInvoiceTotals(items, d("0.14"))
	assert.True(t, subtotal.Equal(d("200")), "subtotal: %s", subtotal)
	assert.True(t, tax.Equal(d("28")), "tax: %s", tax)
	assert.True(t, total.Equal(d("228")), "total: %s", total)
}

func TestCalculateInvoiceTotalsEmpty(t *testing.T) {
	subtotal, tax, total := CalculateInvoiceTotals(nil, d("0.14"))
	assert.True(t, subtotal.IsZero())
	assert.True(t, tax.IsZero())
	assert.True(t, total.IsZero())

	// All items dropped behaves like an empty invoice
	items := NormalizeItems([]InvoiceItemInput{{Description: "  ", Quantity: d("5"), Rate: d("5")}})
	subtotal, tax, total = CalculateInvoiceTotals(items, d("0.14"))
	assert.True(t, subtotal.IsZero())
	assert.True(t, tax.IsZero())
	assert.True(t, total.IsZero())
}

func TestCalculateInvoiceTotalsZeroRate(t *testing.T) {
	items := NormalizeItems([]InvoiceItemInput{
		{Description: "Consulting", Quantity: d("4"), Rate: d("25")},
	})

	subtotal, tax, total := CalculateInvoiceTotals(items, decimal.Zero)
	assert.True(t, subtotal.Equal(d("100")))
	assert.True(t, tax.IsZero())
	assert.True(t, total.Equal(d("100")))
}

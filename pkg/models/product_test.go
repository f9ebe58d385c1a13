package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeStockMap_UnmarshalMixedEntries(t *testing.T) {
	var m SizeStockMap
	err := json.Unmarshal([]byte(`{"S": 3, "M": {"price": 1000, "stock": 2}, "L": {"sale_price": 900, "stock": null}, "XL": "x"}`), &m)
	require.NoError(t, err)

	require.Equal(t, SizeEntryCount, m["S"].Kind)
	assert.Equal(t, 3, *m["S"].Stock)

	require.Equal(t, SizeEntryDetail, m["M"].Kind)
	assert.Equal(t, 2, *m["M"].Stock)
	assert.True(t, decimal.NewFromInt(1000).Equal(*m["M"].Price))
	assert.Nil(t, m["M"].SalePrice)

	require.Equal(t, SizeEntryDetail, m["L"].Kind)
	assert.Nil(t, m["L"].Stock)
	assert.True(t, decimal.NewFromInt(900).Equal(*m["L"].SalePrice))

	assert.Equal(t, SizeEntryUnknown, m["XL"].Kind)
}

func TestSizeStockMap_ScanValue(t *testing.T) {
	price := decimal.NewFromInt(1500)
	in := SizeStockMap{
		"S": CountEntry(4),
		"M": {Kind: SizeEntryDetail, Price: &price},
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out SizeStockMap
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, 4, *out["S"].Stock)
	assert.Equal(t, SizeEntryDetail, out["M"].Kind)
	assert.Nil(t, out["M"].Stock)
	assert.True(t, price.Equal(*out["M"].Price))

	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)

	nilValue, err := SizeStockMap(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, nilValue)
}

func TestProduct_LookupSize(t *testing.T) {
	p := &Product{StockBySize: SizeStockMap{
		"M":  CountEntry(1),
		"m":  CountEntry(7),
		"XL": CountEntry(2),
	}}

	key, e, ok := p.LookupSize("m")
	require.True(t, ok)
	assert.Equal(t, "m", key)
	assert.Equal(t, 7, *e.Stock)

	key, e, ok = p.LookupSize("xl")
	require.True(t, ok)
	assert.Equal(t, "XL", key)
	assert.Equal(t, 2, *e.Stock)

	_, _, ok = p.LookupSize("S")
	assert.False(t, ok)

	_, _, ok = p.LookupSize("")
	assert.False(t, ok)
}

func TestProduct_EffectivePrice(t *testing.T) {
	p := &Product{Price: decimal.NewFromInt(100)}
	assert.True(t, decimal.NewFromInt(100).Equal(p.EffectivePrice()))

	p.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(80))
	assert.True(t, decimal.NewFromInt(80).Equal(p.EffectivePrice()))
}

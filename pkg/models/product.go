package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string              `gorm:"type:varchar(150);not null" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	Category    string              `gorm:"type:varchar(50);index" json:"category"`
	ImageURL    string              `gorm:"type:varchar(500)" json:"image_url"`
	Price       decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"price"`
	SalePrice   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"sale_price"`
	Stock       *int                `json:"stock"` // nil means unlimited
	StockBySize SizeStockMap        `gorm:"type:json" json:"stock_by_size,omitempty"`
	Active      bool                `gorm:"default:true;index" json:"active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the sale price when one is set, otherwise the base price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// LookupSize finds the per-size entry for size. An exact key match wins;
// otherwise keys are compared case-insensitively in sorted order. The
// returned key is the one stored on the product.
func (p *Product) LookupSize(size string) (string, SizeEntry, bool) {
	if len(p.StockBySize) == 0 || size == "" {
		return "", SizeEntry{}, false
	}
	if e, ok := p.StockBySize[size]; ok {
		return size, e, true
	}

	keys := make([]string, 0, len(p.StockBySize))
	for k := range p.StockBySize {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, size) {
			return k, p.StockBySize[k], true
		}
	}
	return "", SizeEntry{}, false
}

type SizeEntryKind int

const (
	// SizeEntryUnknown is anything that is neither a number nor an object.
	SizeEntryUnknown SizeEntryKind = iota
	SizeEntryCount
	SizeEntryDetail
)

// SizeEntry is one value of a per-size stock map. It is stored either as a
// bare stock count or as an object with its own price, sale price and stock.
type SizeEntry struct {
	Kind      SizeEntryKind
	Stock     *int // nil on a detail entry means unlimited
	Price     *decimal.Decimal
	SalePrice *decimal.Decimal
}

type sizeDetail struct {
	Price     *decimal.Decimal `json:"price,omitempty"`
	Stock     *float64         `json:"stock"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
}

func CountEntry(stock int) SizeEntry {
	return SizeEntry{Kind: SizeEntryCount, Stock: &stock}
}

func (e *SizeEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*e = SizeEntry{}
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '{':
		var d sizeDetail
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return fmt.Errorf("invalid size entry: %w", err)
		}
		e.Kind = SizeEntryDetail
		e.Price = d.Price
		e.SalePrice = d.SalePrice
		if d.Stock != nil {
			n := int(*d.Stock)
			e.Stock = &n
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return fmt.Errorf("invalid size stock: %w", err)
		}
		n := int(f)
		e.Kind = SizeEntryCount
		e.Stock = &n
	}
	return nil
}

func (e SizeEntry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case SizeEntryCount:
		if e.Stock == nil {
			return []byte("null"), nil
		}
		return json.Marshal(*e.Stock)
	case SizeEntryDetail:
		d := sizeDetail{Price: e.Price, SalePrice: e.SalePrice}
		if e.Stock != nil {
			f := float64(*e.Stock)
			d.Stock = &f
		}
		return json.Marshal(d)
	default:
		return []byte("null"), nil
	}
}

// SizeStockMap is persisted as a JSON column.
type SizeStockMap map[string]SizeEntry

func (m SizeStockMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *SizeStockMap) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for stock_by_size")
	}
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		*m = nil
		return nil
	}
	out := SizeStockMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode stock_by_size: %w", err)
	}
	*m = out
	return nil
}

package checkout

import (
	"math"

	"github.com/example/foodshop/pkg/models"
	"github.com/shopspring/decimal"
)

// UnlimitedStock stands in for stock recorded as null. No int quantity exceeds it.
const UnlimitedStock = math.MaxInt

const DefaultSizeLabel = "Único"

type resolution struct {
	Available int
	UnitPrice decimal.Decimal
	Size      string
}

// resolveLine derives the available stock, unit price and size label for
// one cart line from the product record.
func resolveLine(p *models.Product, size string) resolution {
	if key, entry, ok := p.LookupSize(size); ok {
		switch entry.Kind {
		case models.SizeEntryCount:
			return resolution{Available: stockOrUnlimited(entry.Stock), UnitPrice: p.EffectivePrice(), Size: key}
		case models.SizeEntryDetail:
			r := resolution{Available: stockOrUnlimited(entry.Stock), UnitPrice: p.EffectivePrice(), Size: key}
			if entry.SalePrice != nil {
				r.UnitPrice = *entry.SalePrice
			} else if entry.Price != nil {
				r.UnitPrice = *entry.Price
			}
			return r
		}
	}

	r := resolution{Available: stockOrUnlimited(p.Stock), UnitPrice: p.EffectivePrice(), Size: size}
	if r.Size == "" {
		r.Size = DefaultSizeLabel
	}
	return r
}

func stockOrUnlimited(stock *int) int {
	if stock == nil {
		return UnlimitedStock
	}
	return *stock
}

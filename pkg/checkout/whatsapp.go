package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/example/foodshop/pkg/models"
	"github.com/shopspring/decimal"
)

// WhatsAppMessage renders the order summary the customer sends to the shop.
func WhatsAppMessage(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "¡Hola! Quiero confirmar mi pedido #%s\n\n", o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %d x %s", it.Quantity, it.ProductName)
		if it.Size != "" && it.Size != DefaultSizeLabel {
			fmt.Fprintf(&b, " (%s)", it.Size)
		}
		fmt.Fprintf(&b, " - $%s\n", it.PriceAtTime.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2))
	}
	if o.ShippingCost.IsPositive() {
		fmt.Fprintf(&b, "\nEnvío: $%s", o.ShippingCost.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n\n", o.Total.StringFixed(2))
	fmt.Fprintf(&b, "Nombre: %s\nTeléfono: %s\nDirección: %s, %s", o.CustomerName, o.CustomerPhone, o.Address, o.City)
	if o.Neighborhood != "" {
		fmt.Fprintf(&b, " (%s)", o.Neighborhood)
	}
	if o.Notes != "" {
		fmt.Fprintf(&b, "\nNotas: %s", o.Notes)
	}
	return b.String()
}

// WhatsAppURL is a wa.me link with the summary pre-filled, or "" when no
// shop phone is configured.
func WhatsAppURL(phone string, o *models.Order) string {
	phone = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if phone == "" {
		return ""
	}
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(WhatsAppMessage(o))
}

package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/example/foodshop/pkg/models"
)

var shippedTmpl = template.Must(template.New("shipped").Parse(`<h2>¡Tu pedido está en camino!</h2>
<p>Hola {{.CustomerName}}, tu pedido <strong>#{{.ID}}</strong> fue despachado.</p>
{{if .Carrier}}<p>Transporte: {{.Carrier}}</p>{{end}}
{{if .TrackingNumber}}<p>Número de seguimiento: <strong>{{.TrackingNumber}}</strong></p>{{end}}
<p>Total: ${{.Total.StringFixed 2}}</p>`))

var newOrderTmpl = template.Must(template.New("new-order").Parse(`<h2>Nuevo pedido #{{.ID}}</h2>
<p>{{.CustomerName}} ({{.CustomerEmail}}, {{.CustomerPhone}})</p>
<p>{{.Address}}, {{.City}}{{if .Neighborhood}} ({{.Neighborhood}}){{end}}</p>
<ul>{{range .Items}}<li>{{.Quantity}} x {{.ProductName}} [{{.Size}}] ${{.PriceAtTime.StringFixed 2}}</li>{{end}}</ul>
<p>Envío: ${{.ShippingCost.StringFixed 2}} · Total: ${{.Total.StringFixed 2}} · Pago: {{.PaymentMethod}}</p>
{{if .Notes}}<p>Notas: {{.Notes}}</p>{{end}}`))

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// ShippedEmail tells the customer the order left with the carrier.
func ShippedEmail(o *models.Order) (*Email, error) {
	html, err := render(shippedTmpl, o)
	if err != nil {
		return nil, err
	}
	return &Email{
		To:      []string{o.CustomerEmail},
		Subject: fmt.Sprintf("Tu pedido #%s fue enviado", o.ID),
		HTML:    html,
	}, nil
}

// NewOrderEmail alerts the shop admins about a freshly placed order.
func NewOrderEmail(o *models.Order, admins []string) (*Email, error) {
	html, err := render(newOrderTmpl, o)
	if err != nil {
		return nil, err
	}
	return &Email{
		To:      admins,
		Subject: fmt.Sprintf("Nuevo pedido #%s (%s)", o.ID, o.PaymentMethod),
		HTML:    html,
	}, nil
}

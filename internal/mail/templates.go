package mail

import (
	"bytes"
	"html/template"

	"joyeria/internal/domain"
	"joyeria/internal/pricing"
)

var orderTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"clp": pricing.FormatCLP,
}).Parse(`<p>Hola {{.CustomerName}},</p>
<p>Recibimos el pago de tu pedido <strong>{{.ID}}</strong>.</p>
<ul>{{range .Items}}
<li>{{.Name}}{{if .VariationLabel}} ({{.VariationLabel}}){{end}} x{{.Qty}}: {{clp .Subtotal}}</li>{{end}}
</ul>
<p>Total: <strong>{{clp .Total}}</strong></p>`))

// OrderConfirmation renders the paid-order message for the customer.
func OrderConfirmation(o domain.Order) (Message, error) {
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, o); err != nil {
		return Message{}, err
	}
	return Message{To: o.CustomerEmail, Subject: "Pedido " + o.ID + " confirmado", Body: buf.String()}, nil
}

func Welcome(email string) Message {
	return Message{
		To:      email,
		Subject: "Bienvenida al newsletter",
		Body:    "<p>Gracias por suscribirte. Te avisaremos de nuevas colecciones.</p>",
	}
}

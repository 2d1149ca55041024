package libs

import (
	"fmt"
	"html/template"
	"strings"

	"storefront/models"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass, from string) (*Mailer, error) {
	if host == "" || user == "" || pass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}

	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}, nil
}

func (m *Mailer) OrderConfirmed(toEmail string, order *models.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s", shortOrderID(order.ID)))
	body, err := OrderConfirmationBody(order)
	if err != nil {
		return err
	}
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func shortOrderID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Thank you for your order!</h2>
    <p><strong>Order Number:</strong> {{.Number}}</p>
    <table>
        <tr><th>Item</th><th>Qty</th><th>Subtotal</th></tr>
        {{range .Items}}<tr><td>{{.Name}} ({{.Size}})</td><td>{{.Quantity}}</td><td>{{.Subtotal}}</td></tr>
        {{end}}
    </table>
    <p><strong>Total:</strong> {{.Total}}</p>
    <p><strong>Shipping to:</strong> {{.ShippingAddress}}</p>
    <p>Estimated delivery: {{.EstimatedDelivery}}</p>
</body>
</html>
`))

type confirmationRow struct {
	Name     string
	Size     string
	Quantity int
	Subtotal string
}

// OrderConfirmationBody renders the HTML confirmation for an order. Item
// names and the address are escaped.
func OrderConfirmationBody(order *models.Order) (string, error) {
	rows := make([]confirmationRow, 0, len(order.Items))
	for _, item := range order.Items {
		rows = append(rows, confirmationRow{
			Name:     item.Name,
			Size:     item.Size,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal().StringFixed(2),
		})
	}

	var body strings.Builder
	err := orderConfirmationTmpl.Execute(&body, map[string]interface{}{
		"Number":            shortOrderID(order.ID),
		"Items":             rows,
		"Total":             order.Total.StringFixed(2),
		"ShippingAddress":   order.ShippingAddress,
		"EstimatedDelivery": order.EstimatedDelivery.Format("January 2, 2006"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render order email: %w", err)
	}
	return body.String(), nil
}

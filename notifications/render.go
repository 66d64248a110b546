// Package notifications emails the shop owner about new orders.
package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Kariqs/magnets-api/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var orderCreatedTemplate = template.Must(
	template.New("order_created.html").
		Funcs(template.FuncMap{"money": formatMoney}).
		ParseFS(templateFS, "templates/order_created.html"),
)

type orderEmailData struct {
	models.Order
	Customer     models.Customer
	Shipping     models.ShippingAddress
	Currency     string
	DashboardURL string
}

func formatMoney(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// RenderOrderCreated builds the owner notification for order.
func RenderOrderCreated(order models.Order, currency, appURL string) (subject, html string, err error) {
	data := orderEmailData{
		Order:        order,
		Shipping:     order.Address(),
		Currency:     currency,
		DashboardURL: strings.TrimRight(appURL, "/") + "/admin/dashboard",
	}
	if order.Customer != nil {
		data.Customer = *order.Customer
	}

	var body bytes.Buffer
	if err := orderCreatedTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("template execution error: %w", err)
	}
	return "New Order #" + order.OrderNumber, body.String(), nil
}

package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaming(t *testing.T) {
	tests := []struct {
		in                   string
		snake, pascal, camel string
	}{
		{in: "OrderItem", snake: "order_item", pascal: "OrderItem", camel: "orderItem"},
		{in: "order_item", snake: "order_item", pascal: "OrderItem", camel: "orderItem"},
		{in: "customer_id", snake: "customer_id", pascal: "CustomerID", camel: "customerID"},
		{in: "ProductSKU", snake: "product_sku", pascal: "ProductSKU", camel: "productSKU"},
		{in: "HTTPCode", snake: "http_code", pascal: "HTTPCode", camel: "httpCode"},
		{in: "UserIDs", snake: "user_ids", pascal: "UserIds", camel: "userIds"},
		{in: "api_url", snake: "api_url", pascal: "APIURL", camel: "apiURL"},
		{in: "placed-at", snake: "placed-at", pascal: "PlacedAt", camel: "placedAt"},
		{in: "sku", snake: "sku", pascal: "SKU", camel: "sku"},
		{in: "", snake: "", pascal: "", camel: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, Snake(tt.in), "snake")
			assert.Equal(t, tt.pascal, Pascal(tt.in), "pascal")
			assert.Equal(t, tt.camel, Camel(tt.in), "camel")
		})
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "order-item", kebab("OrderItem"))
	assert.Equal(t, "order-items", kebab("order_items"))
	assert.Equal(t, "Placed At", title("placed_at"))
	assert.Equal(t, "Unit Price", title("UnitPrice"))
	assert.Equal(t, "Customer Id", title("customer_id"))
}

func TestReceiver(t *testing.T) {
	tests := map[string]string{
		"Customer":        "c",
		"OrderItem":       "oi",
		"CustomerService": "cs",
		"*Order":          "o",
		"[]Product":       "p",
		"A":               "a",
		// "fmt" is imported by generated files.
		"FooMaxTime": "fomati",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, receiver(in))
		})
	}
}

func TestInflection(t *testing.T) {
	tests := []struct{ singular, plural string }{
		{"Category", "Categories"},
		{"Address", "Addresses"},
		{"OrderItem", "OrderItems"},
		{"Box", "Boxes"},
		{"tag", "tags"},
	}
	for _, tt := range tests {
		t.Run(tt.singular, func(t *testing.T) {
			assert.Equal(t, tt.plural, Pluralize(tt.singular))
			assert.Equal(t, tt.singular, Singularize(tt.plural))
		})
	}
}

func TestAddAcronym(t *testing.T) {
	AddAcronym("gtin")
	assert.Equal(t, "ProductGTIN", Pascal("product_gtin"))
	assert.Equal(t, "productGTIN", Camel("product_gtin"))
	assert.Equal(t, "gtinCode", Camel("gtin_code"))
}

func TestIsSeparator(t *testing.T) {
	for _, r := range "_- \t" {
		assert.True(t, isSeparator(r), "%q", r)
	}
	for _, r := range "a1Z" {
		assert.False(t, isSeparator(r), "%q", r)
	}
}

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-gallery/internal/domain"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

type nested struct {
	ShopifyID string `json:"shopifyId" validate:"required"`
}

type payload struct {
	Name    string   `json:"name" validate:"required,max=5"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Product *nested  `json:"product" validate:"required"`
	Tags    []string `json:"tags" validate:"max=2,dive,max=3"`
}

func TestStruct(t *testing.T) {
	v := New()

	cases := []struct {
		name    string
		in      payload
		message string
	}{
		{"missing name", payload{Product: &nested{ShopifyID: "1"}}, "Missing required field: name"},
		{"long name", payload{Name: "abcdefg", Product: &nested{ShopifyID: "1"}}, "Invalid name"},
		{"bad email", payload{Name: "a", Email: "nope", Product: &nested{ShopifyID: "1"}}, "Invalid email format"},
		{"missing product", payload{Name: "a"}, "Missing required field: product"},
		{"missing nested", payload{Name: "a", Product: &nested{}}, "Missing required field: product.shopifyId"},
		{"long tag", payload{Name: "a", Product: &nested{ShopifyID: "1"}, Tags: []string{"abcd"}}, "Invalid tags[0]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.in)
			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, 400, de.HTTPStatus)
			assert.Equal(t, tc.message, de.Message)
		})
	}

	assert.NoError(t, v.Struct(payload{Name: "a", Product: &nested{ShopifyID: "1"}, Tags: []string{"abc"}}))
}

type pricedProduct struct {
	Price string `json:"price" validate:"price"`
}

type pricedPayload struct {
	Product pricedProduct `json:"product"`
}

func TestStructPrice(t *testing.T) {
	v := New()

	for _, ok := range []string{"", "0", "12.5", "12.50", "9999999999.99"} {
		assert.NoError(t, v.Struct(pricedPayload{Product: pricedProduct{Price: ok}}), ok)
	}

	for _, bad := range []string{"-12.50", "123456789012.99", "12.505", "abc", "1e3", ".5"} {
		err := v.Struct(pricedPayload{Product: pricedProduct{Price: bad}})
		require.Error(t, err, bad)
		de := apperrors.ToDomainError(err)
		assert.Equal(t, 400, de.HTTPStatus)
		assert.Equal(t, domain.PriceMessage, de.Message, bad)
	}
}

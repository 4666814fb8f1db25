package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNeverNilEntities(t *testing.T) {
	it := New(KindCheckout, nil)
	assert.NotNil(t, it.Entities)
}

func TestStringAccessor(t *testing.T) {
	it := New(KindSearch, map[string]any{EntityQuery: "backpack", "qty": 2})
	assert.Equal(t, "backpack", it.String(EntityQuery))
	assert.Equal(t, "", it.String("absent"))
	assert.Equal(t, "", it.String("qty"))
}

func TestBoolAccessor(t *testing.T) {
	it := New(KindAddToCartFlow, map[string]any{EntityVerifyPrice: true})
	assert.True(t, it.Bool(EntityVerifyPrice))
	assert.False(t, it.Bool("absent"))
}

func TestStepsHandlesBothSliceShapes(t *testing.T) {
	it := New(KindFullCheckout, map[string]any{EntitySteps: []string{"login", "add_to_cart"}})
	assert.Equal(t, []string{"login", "add_to_cart"}, it.Steps())

	// Decoded JSON carries []any.
	it = New(KindFullCheckout, map[string]any{EntitySteps: []any{"login", "add_to_cart"}})
	assert.Equal(t, []string{"login", "add_to_cart"}, it.Steps())

	it = New(KindFullCheckout, nil)
	assert.Nil(t, it.Steps())
}

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()
	registry.Register(handler, "PartConsumed", "PaymentRecorded")

	assert.Len(t, registry.GetHandlers("PartConsumed"), 1)
	assert.Len(t, registry.GetHandlers("PaymentRecorded"), 1)
	assert.Empty(t, registry.GetHandlers("PurchaseOrderReceived"))
}

func TestHandlerRegistry_WildcardFollowsSpecific(t *testing.T) {
	registry := NewHandlerRegistry()
	specific := newTestHandler()
	wildcard := newTestHandler()
	registry.Register(wildcard)
	registry.Register(specific, "PartConsumed")

	handlers := registry.GetHandlers("PartConsumed")
	assert.Len(t, handlers, 2)
	assert.Same(t, specific, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	assert.Len(t, registry.GetHandlers("Other"), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()
	registry.Register(h1, "PartConsumed")
	registry.Register(h2, "PartConsumed")
	registry.Register(h1)

	registry.Unregister(h1)

	handlers := registry.GetHandlers("PartConsumed")
	assert.Len(t, handlers, 1)
	assert.Same(t, h2, handlers[0])

	registry.Unregister(h2)
	assert.Empty(t, registry.GetHandlers("PartConsumed"))
}

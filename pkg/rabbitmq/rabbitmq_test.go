package rabbitmq

import (
	"errors"
	"testing"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleDelivery(t *testing.T) {
	var got models.ProductEvent
	err := handleDelivery([]byte(`{"type":"product.created","productId":"p-1","name":"Widget"}`), func(evt models.ProductEvent) error {
		got = evt
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventProductCreated, got.Type)
	assert.Equal(t, "p-1", got.ProductID)
	assert.Equal(t, "Widget", got.Name)
}

func TestHandleDelivery_InvalidBody(t *testing.T) {
	called := false
	err := handleDelivery([]byte("not json"), func(models.ProductEvent) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestHandleDelivery_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	err := handleDelivery([]byte(`{"type":"product.deleted"}`), func(models.ProductEvent) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

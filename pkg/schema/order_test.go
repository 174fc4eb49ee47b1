package schema

import (
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderConfirmedV1(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		vMarshal := OrderConfirmedV1{
			OrderID: "ORD-20251207-AB12F98C",
			UserID:  "userA",
			Items: []OrderItemV1{
				{ProductID: 1, ProductName: "Laptop Dell", Price: "999.99", Quantity: 3},
				{ProductID: 5, ProductName: "Apple Watch", Price: "399.99", Quantity: 1},
			},
			Total:       "3399.96",
			TotalItems:  4,
			ConfirmedAt: time.Date(2025, 12, 7, 10, 30, 0, 0, time.UTC),
		}

		var orderSchema avro.Schema

		require.NotPanics(t, func() {
			orderSchema = OrderConfirmedV1Avro()
		})

		data, err := avro.Marshal(orderSchema, vMarshal)
		require.NoError(t, err)

		var vUnmarshal OrderConfirmedV1
		err = avro.Unmarshal(orderSchema, data, &vUnmarshal)
		require.NoError(t, err)

		assert.Equal(t, vMarshal.OrderID, vUnmarshal.OrderID)
		assert.Equal(t, vMarshal.UserID, vUnmarshal.UserID)
		assert.Equal(t, vMarshal.Total, vUnmarshal.Total)
		assert.Equal(t, vMarshal.TotalItems, vUnmarshal.TotalItems)
		assert.True(t, vMarshal.ConfirmedAt.Equal(vUnmarshal.ConfirmedAt))

		require.Len(t, vUnmarshal.Items, len(vMarshal.Items))
		for i, v := range vUnmarshal.Items {
			assert.Equal(t, vMarshal.Items[i], v)
		}
	})

	t.Run("NilItems", func(t *testing.T) {
		vMarshal := OrderConfirmedV1{
			OrderID:     "ORD-20251207-AB12F98C",
			UserID:      "userA",
			Total:       "0",
			ConfirmedAt: time.Date(2025, 12, 7, 10, 30, 0, 0, time.UTC),
		}

		data, err := avro.Marshal(OrderConfirmedV1Avro(), vMarshal)
		require.NoError(t, err)

		var vUnmarshal OrderConfirmedV1
		err = avro.Unmarshal(OrderConfirmedV1Avro(), data, &vUnmarshal)
		require.NoError(t, err)
		assert.Empty(t, vUnmarshal.Items)
	})
}

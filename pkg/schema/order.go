package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const OrderConfirmedSchemaTextV1 = `{
	"type": "record",
	"namespace": "orders",
	"name": "order_confirmed",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "user_id", "type": "string"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_item",
				"fields": [
					{"name": "product_id", "type": "long"},
					{"name": "product_name", "type": "string"},
					{"name": "price", "type": "string"},
					{"name": "quantity", "type": "long"}
				]
			}
		}},
		{"name": "total", "type": "string"},
		{"name": "total_items", "type": "long"},
		{"name": "confirmed_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// Money values are decimal strings, e.g. "2999.97".
type (
	OrderConfirmedV1 struct {
		OrderID     string        `avro:"order_id"`
		UserID      string        `avro:"user_id"`
		Items       []OrderItemV1 `avro:"items"`
		Total       string        `avro:"total"`
		TotalItems  int64         `avro:"total_items"`
		ConfirmedAt time.Time     `avro:"confirmed_at"`
	}

	OrderItemV1 struct {
		ProductID   int64  `avro:"product_id"`
		ProductName string `avro:"product_name"`
		Price       string `avro:"price"`
		Quantity    int64  `avro:"quantity"`
	}
)

func OrderConfirmedV1Avro() avro.Schema {
	return avro.MustParse(OrderConfirmedSchemaTextV1)
}

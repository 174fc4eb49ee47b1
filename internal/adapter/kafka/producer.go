package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.OrdersProducer = (*OrdersProducer)(nil)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An OrdersProducer used for produce [domain.OrderConfirmed].
//
// Records are keyed by order id.
type OrdersProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewOrdersProducer(
	opts ...ProducerOpt,
) (OrdersProducer, error) {
	const op = "NewOrdersProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return OrdersProducer{}, opErr(err, op)
		}
	}

	opPrefix := "OrdersProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return OrdersProducer{
		producer: p,
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p OrdersProducer) Close() {
	p.producer.close()
}

func (p OrdersProducer) ProduceOrderConfirmed(
	ctx context.Context, v domain.OrderConfirmed,
) error {
	const op = "ProduceOrderConfirmed"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(v)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	return nil
}

func (p OrdersProducer) createRecord(
	v domain.OrderConfirmed,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := orderConfirmedToSchemaV1(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.OrderID), Value: b}, nil
}

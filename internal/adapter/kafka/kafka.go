package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/pkg/schema"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		cl, err := kgo.NewClient(
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		)
		if err != nil {
			return err
		}

		if err := checkTopic(ctx, cl, topic); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// checkTopic asks the cluster for the topic metadata, failing when the
// brokers are unreachable or the topic does not exist.
func checkTopic(ctx context.Context, cl kmsg.Requestor, topic string) error {
	req := kmsg.NewPtrMetadataRequest()
	reqTopic := kmsg.NewMetadataRequestTopic()
	reqTopic.Topic = kmsg.StringPtr(topic)
	req.Topics = append(req.Topics, reqTopic)

	resp, err := req.RequestWith(ctx, cl)
	if err != nil {
		return err
	}
	if len(resp.Topics) != 1 {
		return fmt.Errorf("topic %q: unexpected metadata response", topic)
	}
	if err := kerr.ErrorForCode(resp.Topics[0].ErrorCode); err != nil {
		return fmt.Errorf("topic %q: %w", topic, err)
	}
	return nil
}

// ProducerWithClientOpt sets a ready client, mostly for tests.
func ProducerWithClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func orderConfirmedToSchemaV1(
	v domain.OrderConfirmed,
) (s schema.OrderConfirmedV1) {
	s.OrderID = v.OrderID
	s.UserID = v.UserID
	s.Total = v.Total.StringFixed(2)
	s.TotalItems = int64(v.TotalItems)
	s.ConfirmedAt = v.ConfirmedAt.UTC()

	s.Items = make([]schema.OrderItemV1, len(v.Items))
	for i, item := range v.Items {
		s.Items[i].ProductID = int64(item.ProductID)
		s.Items[i].ProductName = item.ProductName
		s.Items[i].Price = item.Price.StringFixed(2)
		s.Items[i].Quantity = int64(item.Quantity)
	}
	return
}

package schema

import (
	"context"

	"github.com/twmb/franz-go/pkg/sr"
)

// A SchemaIdentifier returns the registry id of the schema text under subject.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject, avroSchemaText string) (int, error)
}

type schemaRegistryClient interface {
	CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error)
}

// A SchemaCreater registers schemas in the schema registry,
// registering an already known schema returns its existing id.
type SchemaCreater struct {
	cl schemaRegistryClient
}

func NewSchemaCreater(cl schemaRegistryClient) SchemaCreater {
	return SchemaCreater{cl}
}

func (c SchemaCreater) DetermineID(
	ctx context.Context, subject, avroSchemaText string,
) (int, error) {
	ss, err := c.cl.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, err
	}
	return ss.ID, nil
}

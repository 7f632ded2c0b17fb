package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"redirect-lookup-go/internal/config"
	"redirect-lookup-go/internal/model"
)

// GetItemAPI is the subset of the DynamoDB client used by DynamoStore.
type GetItemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore looks redirects up in a DynamoDB table with a string hash key
// "domain" and a string range key "path".
type DynamoStore struct {
	api            GetItemAPI
	table          string
	consistentRead bool
	logger         *slog.Logger
}

// OpenDynamo creates a DynamoStore backed by an SDK client built from the
// default credential chain. The SDK client pools connections and is shared
// by every lookup.
func OpenDynamo(ctx context.Context, cfg config.DynamoDBConfig, logger *slog.Logger) (*DynamoStore, error) {
	var opts []func(*awscfg.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awscfg.WithRegion(cfg.Region))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewDynamoStore(client, cfg.Table, cfg.ConsistentRead, logger), nil
}

// NewDynamoStore wraps an existing GetItem client.
func NewDynamoStore(api GetItemAPI, table string, consistentRead bool, logger *slog.Logger) *DynamoStore {
	return &DynamoStore{
		api:            api,
		table:          table,
		consistentRead: consistentRead,
		logger:         logger.With("component", "dynamodb_store", "table", table),
	}
}

// Lookup issues a single GetItem for key.
func (s *DynamoStore) Lookup(ctx context.Context, key model.RedirectKey) (model.RedirectRecord, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			AttrDomain: &types.AttributeValueMemberS{Value: key.Domain},
			AttrPath:   &types.AttributeValueMemberS{Value: key.Path},
		},
		ConsistentRead: aws.Bool(s.consistentRead),
	})
	if err != nil {
		return model.RedirectRecord{}, fmt.Errorf("dynamodb get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return model.RedirectRecord{}, ErrNoRecord
	}

	rec := model.RedirectRecord{Domain: key.Domain, Path: key.Path}
	switch v := out.Item[AttrTarget].(type) {
	case *types.AttributeValueMemberS:
		rec.Target = v.Value
	case nil:
		s.logger.Debug("record has no target attribute", "domain", key.Domain, "path", key.Path)
	default:
		s.logger.Debug("record target is not a string", "domain", key.Domain, "path", key.Path, "type", fmt.Sprintf("%T", v))
	}
	return rec, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error { return nil }

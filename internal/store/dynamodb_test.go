package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redirect-lookup-go/internal/model"
)

type fakeGetItem struct {
	items map[model.RedirectKey]map[string]types.AttributeValue
	err   error
	calls []*dynamodb.GetItemInput
}

func (f *fakeGetItem) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.calls = append(f.calls, in)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	domain := in.Key[AttrDomain].(*types.AttributeValueMemberS).Value
	path := in.Key[AttrPath].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[model.RedirectKey{Domain: domain, Path: path}]}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDynamoStore_Lookup(t *testing.T) {
	key := model.RedirectKey{Domain: "example.com", Path: "promo123"}
	api := &fakeGetItem{items: map[model.RedirectKey]map[string]types.AttributeValue{
		key: {
			AttrDomain: &types.AttributeValueMemberS{Value: "example.com"},
			AttrPath:   &types.AttributeValueMemberS{Value: "promo123"},
			AttrTarget: &types.AttributeValueMemberS{Value: "https://example.com/landing"},
		},
	}}
	s := NewDynamoStore(api, "RedirectLookupTable", true, discardLogger())

	rec, err := s.Lookup(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, model.RedirectRecord{Domain: "example.com", Path: "promo123", Target: "https://example.com/landing"}, rec)

	require.Len(t, api.calls, 1)
	in := api.calls[0]
	assert.Equal(t, "RedirectLookupTable", aws.ToString(in.TableName))
	assert.True(t, aws.ToBool(in.ConsistentRead))
	assert.Len(t, in.Key, 2)
}

func TestDynamoStore_NoItem(t *testing.T) {
	s := NewDynamoStore(&fakeGetItem{}, "t", false, discardLogger())

	_, err := s.Lookup(context.Background(), model.RedirectKey{Domain: "example.com", Path: "unknownpath"})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestDynamoStore_CaseSensitiveKey(t *testing.T) {
	api := &fakeGetItem{items: map[model.RedirectKey]map[string]types.AttributeValue{
		{Domain: "example.com", Path: "go"}: {AttrTarget: &types.AttributeValueMemberS{Value: "https://t"}},
	}}
	s := NewDynamoStore(api, "t", false, discardLogger())

	_, err := s.Lookup(context.Background(), model.RedirectKey{Domain: "Example.com", Path: "go"})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestDynamoStore_TargetMissingOrWrongType(t *testing.T) {
	tests := []struct {
		name string
		item map[string]types.AttributeValue
	}{
		{"missing", map[string]types.AttributeValue{
			AttrDomain: &types.AttributeValueMemberS{Value: "d"},
		}},
		{"number", map[string]types.AttributeValue{
			AttrTarget: &types.AttributeValueMemberN{Value: "42"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := model.RedirectKey{Domain: "d", Path: "p"}
			api := &fakeGetItem{items: map[model.RedirectKey]map[string]types.AttributeValue{key: tt.item}}
			s := NewDynamoStore(api, "t", false, discardLogger())

			rec, err := s.Lookup(context.Background(), key)
			require.NoError(t, err)
			assert.Equal(t, key, rec.Key())
			assert.Empty(t, rec.Target)
		})
	}
}

func TestDynamoStore_TransportError(t *testing.T) {
	cause := errors.New("ProvisionedThroughputExceededException")
	s := NewDynamoStore(&fakeGetItem{err: cause}, "t", false, discardLogger())

	_, err := s.Lookup(context.Background(), model.RedirectKey{Domain: "d", Path: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNoRecord)
}

func TestDynamoStore_CanceledContext(t *testing.T) {
	s := NewDynamoStore(&fakeGetItem{}, "t", false, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Lookup(ctx, model.RedirectKey{Domain: "d", Path: "p"})
	assert.ErrorIs(t, err, context.Canceled)
}

package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/meshgo/snapshot"
)

// ErrConcurrentModification is returned when another writer published the
// same version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Catalog records published snapshot versions in DynamoDB. Archives live
// in the wrapped store; the table maps (base_uri, version) to an archive
// name.
//
// Table schema:
//   - Partition key: base_uri (string)
//   - Sort key: version (number), starting at 1
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name meshgo-snapshots \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	store     snapshot.Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// Entry is a published snapshot version.
type Entry struct {
	Version uint64
	Name    string
}

// NewCatalog creates a catalog over store. baseURI (for example
// "s3://bucket/meshes") partitions the table between independent datasets.
func NewCatalog(store snapshot.Store, ddbClient DDBClient, tableName, baseURI string) *Catalog {
	return &Catalog{
		store:     store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

var _ snapshot.Store = (*Catalog)(nil)

// Store returns the archive store.
func (c *Catalog) Store() snapshot.Store { return c.store }

// Put publishes the archive as a new version. It lets a Catalog stand in
// for a plain snapshot.Store.
func (c *Catalog) Put(ctx context.Context, name string, data []byte) error {
	_, err := c.Publish(ctx, name, data)
	return err
}

// Get reads an archive by name from the wrapped store.
func (c *Catalog) Get(ctx context.Context, name string) ([]byte, error) {
	return c.store.Get(ctx, name)
}

// Delete removes an archive from the wrapped store. Catalog entries that
// reference it are kept; use Forget to drop them.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	return c.store.Delete(ctx, name)
}

// List lists archives of the wrapped store.
func (c *Catalog) List(ctx context.Context, prefix string) ([]string, error) {
	return c.store.List(ctx, prefix)
}

// Publish writes the archive under name and claims the next version for it.
// A lost race returns ErrConcurrentModification; the archive stays in the
// store and can be published again.
func (c *Catalog) Publish(ctx context.Context, name string, data []byte) (uint64, error) {
	if err := c.store.Put(ctx, name, data); err != nil {
		return 0, err
	}

	latest, err := c.Latest(ctx)
	if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
		return 0, err
	}
	version := latest.Version + 1

	_, err = c.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: c.baseURI},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"name":     &types.AttributeValueMemberS{Value: name},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentModification
		}
		return 0, fmt.Errorf("failed to publish version to DynamoDB: %w", err)
	}
	return version, nil
}

// Latest returns the newest published version.
func (c *Catalog) Latest(ctx context.Context) (Entry, error) {
	resp, err := c.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: c.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	if len(resp.Items) == 0 {
		return Entry{}, snapshot.ErrNotFound
	}
	return parseEntry(resp.Items[0])
}

// Version returns a specific published version.
func (c *Catalog) Version(ctx context.Context, version uint64) (Entry, error) {
	resp, err := c.ddbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(version),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read DynamoDB item: %w", err)
	}
	if len(resp.Item) == 0 {
		return Entry{}, snapshot.ErrNotFound
	}
	return parseEntry(resp.Item)
}

// Load reads the archive of a published version.
func (c *Catalog) Load(ctx context.Context, version uint64) ([]byte, error) {
	e, err := c.Version(ctx, version)
	if err != nil {
		return nil, err
	}
	return c.store.Get(ctx, e.Name)
}

// LoadLatest reads the archive of the newest published version.
func (c *Catalog) LoadLatest(ctx context.Context) ([]byte, Entry, error) {
	e, err := c.Latest(ctx)
	if err != nil {
		return nil, Entry{}, err
	}
	data, err := c.store.Get(ctx, e.Name)
	if err != nil {
		return nil, Entry{}, err
	}
	return data, e, nil
}

// Forget removes a version from the catalog. The archive is not deleted.
func (c *Catalog) Forget(ctx context.Context, version uint64) error {
	_, err := c.ddbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(version),
	})
	return err
}

func (c *Catalog) itemKey(version uint64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"base_uri": &types.AttributeValueMemberS{Value: c.baseURI},
		"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
	}
}

func parseEntry(item map[string]types.AttributeValue) (Entry, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Entry{}, errors.New("invalid version attribute in DynamoDB")
	}
	nameAttr, ok := item["name"].(*types.AttributeValueMemberS)
	if !ok {
		return Entry{}, errors.New("invalid name attribute in DynamoDB")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to parse version: %w", err)
	}
	return Entry{Version: version, Name: nameAttr.Value}, nil
}

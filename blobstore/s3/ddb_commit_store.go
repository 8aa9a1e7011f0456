package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/hugegraph/blobstore"
)

// DDBCommitter implements blobstore.Committer using DynamoDB conditional
// writes as the version log. This enables safe concurrent writers.
//
// Table schema:
//   - Partition key: series (string) - base URI and series name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name hugegraph-commits \
//	  --attribute-definitions AttributeName=series,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=series,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitter struct {
	ddbClient DDBClient
	tableName string
	baseURI   string
}

var _ blobstore.Committer = (*DDBCommitter)(nil)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// NewDDBCommitter creates a committer writing to tableName. baseURI
// (e.g. "s3://bucket/prefix") namespaces the series of one store.
func NewDDBCommitter(ddbClient DDBClient, tableName, baseURI string) *DDBCommitter {
	return &DDBCommitter{
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

func (c *DDBCommitter) series(name string) string {
	return c.baseURI + "#" + name
}

// Latest queries DynamoDB for the latest committed version.
func (c *DDBCommitter) Latest(ctx context.Context, name string) (uint64, string, error) {
	resp, err := c.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("series = :s"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: c.series(name)},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", blobstore.ErrNotFound
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}
	pathAttr, ok := item["path"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid path attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	return version, pathAttr.Value, nil
}

// Commit atomically records path as the next version of name. It returns
// blobstore.ErrConcurrentModification if another writer took that version.
func (c *DDBCommitter) Commit(ctx context.Context, name, path string) (uint64, error) {
	current, _, err := c.Latest(ctx, name)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return 0, err
	}

	next := current + 1

	// Conditional put: only succeed if this version doesn't exist yet
	_, err = c.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"series":  &types.AttributeValueMemberS{Value: c.series(name)},
			"version": &types.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			"path":    &types.AttributeValueMemberS{Value: path},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, blobstore.ErrConcurrentModification
		}
		return 0, fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return next, nil
}

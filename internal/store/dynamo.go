package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/claims-pipeline/internal/claims"
)

// claimIDAttr is the partition key attribute on both tables.
const claimIDAttr = "claimId"

// DynamoStore implements ClaimStore against the reports and raw
// results tables.
type DynamoStore struct {
	client       *dynamodb.Client
	reportsTable string
	resultsTable string
}

// Compile-time interface check.
var _ ClaimStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given tables.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client *dynamodb.Client, reportsTable, resultsTable string) *DynamoStore {
	return &DynamoStore{
		client:       client,
		reportsTable: reportsTable,
		resultsTable: resultsTable,
	}
}

func (s *DynamoStore) GetReport(ctx context.Context, claimID string) (*claims.ClaimReport, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.reportsTable,
		Key: map[string]types.AttributeValue{
			claimIDAttr: &types.AttributeValueMemberS{Value: claimID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem claimId=%s: %w", claimID, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var report claims.ClaimReport
	if err := attributevalue.UnmarshalMap(result.Item, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report claimId=%s: %w", claimID, err)
	}
	report.ClaimID = claimID
	return &report, nil
}

// PutReport writes the report with a condition that no report row
// exists yet. A report, once written, is never overwritten.
func (s *DynamoStore) PutReport(ctx context.Context, report *claims.ClaimReport) error {
	item, err := attributevalue.MarshalMap(report)
	if err != nil {
		return fmt.Errorf("marshal report claimId=%s: %w", report.ClaimID, err)
	}
	item[claimIDAttr] = &types.AttributeValueMemberS{Value: report.ClaimID}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.reportsTable,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(claimId)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("claimId=%s: %w", report.ClaimID, ErrReportExists)
		}
		return fmt.Errorf("PutItem claimId=%s: %w", report.ClaimID, err)
	}

	log.Debug().
		Str("claimId", report.ClaimID).
		Int("riskScore", report.RiskScore).
		Str("recommendedAction", report.RecommendedAction).
		Msg("Claim report persisted")
	return nil
}

func (s *DynamoStore) QueryInferenceRecords(ctx context.Context, claimID string) ([]claims.DocumentInferenceRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.resultsTable,
		KeyConditionExpression: aws.String("claimId = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: claimID},
		},
	}

	var records []claims.DocumentInferenceRecord

	// Handle pagination — DynamoDB returns up to 1MB per Query call.
	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("Query claimId=%s: %w", claimID, err)
		}

		for _, item := range result.Items {
			var rec claims.DocumentInferenceRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				log.Warn().Err(err).Str("claimId", claimID).Msg("Failed to unmarshal inference record, skipping")
				continue
			}
			rec.ClaimID = claimID
			records = append(records, rec)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return records, nil
}

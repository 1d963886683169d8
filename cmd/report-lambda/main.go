// Package main provides the report Lambda, a task inside the claim
// processing state machine. It runs twice per claim:
//
// The "aggregate" step merges the per-document inference rows written
// by the extraction stages into one payload and wraps it in the model
// invocation request consumed by the assessment step.
//
// The "persist" step parses the assessment model's text output into the
// canonical report and writes it to the reports table. A report row is
// written at most once; replays of the step leave the existing row alone.
//
// Event format:
//
//	{"type": "aggregate"|"persist", "claimId": "...", ...}
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/claims-pipeline/internal/aggregate"
	"github.com/fpang/claims-pipeline/internal/claims"
	"github.com/fpang/claims-pipeline/internal/lambdaboot"
	"github.com/fpang/claims-pipeline/internal/logging"
	"github.com/fpang/claims-pipeline/internal/store"
)

// AWS clients and components initialized at cold start.
var (
	claimStore store.ClaimStore
	aggregator *aggregate.Aggregator
)

// taskEvent is the typed input routed to a step implementation.
type taskEvent struct {
	Type    string `json:"type"`
	ClaimID string `json:"claimId"`

	// ModelOutput is the assessment model's raw text response,
	// present only on persist events.
	ModelOutput string `json:"modelOutput,omitempty"`
}

// aggregateResult is returned to the state machine by the aggregate step.
type aggregateResult struct {
	ClaimID   string                       `json:"claimId"`
	Documents int                          `json:"documents"`
	Request   *aggregate.AssessmentRequest `json:"request"`
}

// persistResult is returned to the state machine by the persist step.
type persistResult struct {
	ClaimID string `json:"claimId"`
	Written bool   `json:"written"`
}

func handler(ctx context.Context, event taskEvent) (interface{}, error) {
	log.Info().Str("type", event.Type).Str("claimId", event.ClaimID).Msg("Report task received")

	if event.ClaimID == "" {
		return nil, fmt.Errorf("%w: claimId is required", claims.ErrInvalidArgument)
	}

	switch event.Type {
	case "aggregate":
		return handleAggregate(ctx, event)
	case "persist":
		return handlePersist(ctx, event)
	default:
		return nil, fmt.Errorf("%w: unknown task type %q", claims.ErrInvalidArgument, event.Type)
	}
}

func handleAggregate(ctx context.Context, event taskEvent) (*aggregateResult, error) {
	merged, err := aggregator.Merge(ctx, event.ClaimID)
	if err != nil {
		log.Error().Err(err).Str("claimId", event.ClaimID).Msg("Failed to merge inference records")
		return nil, err
	}

	request, err := aggregate.BuildAssessmentRequest(merged)
	if err != nil {
		return nil, err
	}

	// claimId is one of the merged keys, the rest are documents.
	documents := len(merged)
	if documents > 0 {
		documents--
	}

	log.Info().Str("claimId", event.ClaimID).Int("documents", documents).Msg("Assessment request built")
	return &aggregateResult{
		ClaimID:   event.ClaimID,
		Documents: documents,
		Request:   request,
	}, nil
}

func handlePersist(ctx context.Context, event taskEvent) (*persistResult, error) {
	if event.ModelOutput == "" {
		return nil, fmt.Errorf("%w: modelOutput is required for persist", claims.ErrInvalidArgument)
	}

	report, err := aggregate.ParseReport(event.ModelOutput)
	if err != nil {
		log.Error().Err(err).Str("claimId", event.ClaimID).Msg("Assessment model output did not parse as a report")
		return nil, err
	}
	if report.ClaimID == "" {
		report.ClaimID = event.ClaimID
	}

	if err := claimStore.PutReport(ctx, report); err != nil {
		if errors.Is(err, store.ErrReportExists) {
			// Step replays must not clobber the first report.
			log.Warn().Str("claimId", event.ClaimID).Msg("Report already exists, persist skipped")
			return &persistResult{ClaimID: event.ClaimID, Written: false}, nil
		}
		return nil, err
	}

	log.Info().
		Str("claimId", event.ClaimID).
		Int("riskScore", report.RiskScore).
		Str("recommendedAction", report.RecommendedAction).
		Msg("Claim report written")
	return &persistResult{ClaimID: event.ClaimID, Written: true}, nil
}

func main() {
	initStart := time.Now()
	logging.Init()

	aws := lambdaboot.InitAWS()
	claimStore = lambdaboot.InitStore(aws.Config, "CLAIMS_REPORTS_TABLE", "CLAIMS_RESULTS_TABLE")
	aggregator = aggregate.New(claimStore)

	lambdaboot.StartupLog("report-lambda", initStart).
		DynamoTable("reports", os.Getenv("CLAIMS_REPORTS_TABLE")).
		DynamoTable("results", os.Getenv("CLAIMS_RESULTS_TABLE")).
		Log()

	lambda.Start(handler)
}

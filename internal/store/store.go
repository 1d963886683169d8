// Package store provides the DynamoDB-backed job store for the claim
// pipeline. Two tables are in scope: the reports table (one canonical
// assessment report per claim, key claimId) and the raw results table
// (per-document inference rows, partition key claimId).
//
// Both tables are append-only from this codebase's point of view:
// inference rows are written by the workflow stages and never mutated,
// and a report row is written once and never overwritten.
package store

import (
	"context"
	"errors"

	"github.com/fpang/claims-pipeline/internal/claims"
)

// ErrReportExists is returned by PutReport when a report row already
// exists for the claim. The first writer wins; later writes are rejected.
var ErrReportExists = errors.New("report already exists")

// ClaimStore is the job store capability consumed by the pipeline.
// Each method is safe for concurrent use.
type ClaimStore interface {
	// GetReport retrieves the canonical report for a claim.
	// Returns nil, nil when no report exists yet.
	GetReport(ctx context.Context, claimID string) (*claims.ClaimReport, error)

	// PutReport writes the canonical report for a claim. Fails with
	// ErrReportExists if a report is already present.
	PutReport(ctx context.Context, report *claims.ClaimReport) error

	// QueryInferenceRecords returns all per-document inference rows for
	// a claim. Row order is not significant. Rows that cannot be
	// unmarshaled are skipped with a logged warning, never an error.
	QueryInferenceRecords(ctx context.Context, claimID string) ([]claims.DocumentInferenceRecord, error)
}

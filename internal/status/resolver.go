// Package status derives the lifecycle phase of a claim for polling
// clients. A claim has no persisted status field; the phase is computed
// from two signals read at poll time:
//
//  1. The reports table. A report row is authoritative proof of
//     completion and short-circuits everything else.
//  2. The workflow engine's recent executions. The engine has no index
//     from claim ID to execution, so the resolver scans a bounded
//     newest-first window and matches the claim ID embedded in each
//     execution's start input.
//
// The resolver is fail-open: every backend failure, window miss, or
// deadline overrun folds into PROCESSING. A polling client always gets
// one of exactly three values, never an error. Swallowed failures are
// logged and counted in CloudWatch EMF metrics for operators.
package status

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/claims-pipeline/internal/claims"
	"github.com/fpang/claims-pipeline/internal/metrics"
	"github.com/fpang/claims-pipeline/internal/workflow"
)

// ExecutionScanWindow is how many recent executions the resolver
// inspects when matching a claim to its execution. A claim whose
// execution has scrolled past this window resolves to PROCESSING; the
// window bounds the scan's latency and cost at that price.
const ExecutionScanWindow = 50

// ResolveTimeout is the shared deadline for one whole resolve call,
// covering the report lookup, the list call, and every describe call.
const ResolveTimeout = 25 * time.Second

// ReportGetter is the slice of the job store the resolver needs.
type ReportGetter interface {
	GetReport(ctx context.Context, claimID string) (*claims.ClaimReport, error)
}

// Resolver derives claim status from the job store and workflow engine.
// It is a pure read path: stateless, lock-free, and safe for unlimited
// concurrent callers.
type Resolver struct {
	store  ReportGetter
	engine workflow.Engine

	scanWindow int32
	timeout    time.Duration
}

// New creates a Resolver with the default scan window and deadline.
func New(store ReportGetter, engine workflow.Engine) *Resolver {
	return &Resolver{
		store:      store,
		engine:     engine,
		scanWindow: ExecutionScanWindow,
		timeout:    ResolveTimeout,
	}
}

// Resolve returns the claim's current lifecycle phase.
//
// A succeeded execution whose report has not yet appeared in the
// reports table is indistinguishable from a still-running one: both
// return PROCESSING. That eventual-consistency gap between the
// execution finishing and the report row materializing is inherent to
// the two independently-written stores, and callers are expected to
// keep polling through it.
func (r *Resolver) Resolve(ctx context.Context, claimID string) claims.JobStatus {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// A report row wins unconditionally, even while the originating
	// execution still reports a non-terminal state.
	report, err := r.store.GetReport(ctx, claimID)
	if err != nil {
		r.recordFailure(claimID, "report-lookup", err)
		return claims.StatusProcessing
	}
	if report != nil {
		return claims.StatusCompleted
	}

	executions, err := r.engine.ListExecutions(ctx, r.scanWindow)
	if err != nil {
		r.recordFailure(claimID, "list-executions", err)
		return claims.StatusProcessing
	}

	for _, ex := range executions {
		detail, err := r.engine.DescribeExecution(ctx, ex.ExecutionArn)
		if err != nil {
			r.recordFailure(claimID, "describe-execution", err)
			return claims.StatusProcessing
		}

		var input claims.ExecutionInput
		if err := json.Unmarshal([]byte(detail.Input), &input); err != nil {
			log.Warn().Err(err).
				Str("executionArn", ex.ExecutionArn).
				Msg("Unparseable execution input, skipping")
			continue
		}
		if input.ClaimID != claimID {
			continue
		}

		// First match wins; executions in the window are assumed not
		// to share claim IDs.
		if detail.Status == workflow.StatusFailed {
			log.Info().
				Str("claimId", claimID).
				Str("executionArn", ex.ExecutionArn).
				Msg("Claim resolved to FAILED from execution status")
			return claims.StatusFailed
		}
		return claims.StatusProcessing
	}

	// No execution in the window carries this claim ID. Either the
	// claim was never submitted or its execution has scrolled out of
	// the window; both look like PROCESSING to the client.
	log.Debug().
		Str("claimId", claimID).
		Int32("window", r.scanWindow).
		Msg("Claim not found in execution scan window")
	return claims.StatusProcessing
}

// recordFailure makes a swallowed backend error visible to operators
// without surfacing it to the polling client.
func (r *Resolver) recordFailure(claimID, stage string, err error) {
	log.Error().Err(err).
		Str("claimId", claimID).
		Str("stage", stage).
		Msg("Status resolution error folded into PROCESSING")

	metrics.New().
		Dimension("Stage", stage).
		Count("StatusResolveError").
		Property("claimId", claimID).
		Flush()
}

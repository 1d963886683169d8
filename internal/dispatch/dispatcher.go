// Package dispatch starts a new claim processing run on the workflow
// engine from submitted claim metadata.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/claims-pipeline/internal/claims"
	"github.com/fpang/claims-pipeline/internal/workflow"
)

// Submission is the claim metadata accepted by Submit. All four fields
// are required and are carried verbatim in the execution input.
type Submission struct {
	ClaimID      string
	InputBucket  string
	OutputBucket string
	ProjectArn   string
}

// Dispatcher starts claim processing executions. It performs no
// deduplication: submitting the same claim ID twice starts two
// independent executions, by contract the caller's responsibility.
type Dispatcher struct {
	engine workflow.Engine
}

// New creates a Dispatcher backed by the given workflow engine.
func New(engine workflow.Engine) *Dispatcher {
	return &Dispatcher{engine: engine}
}

// Submit validates the submission, builds the execution input payload,
// and starts a new execution. Returns the engine-assigned execution ARN.
//
// Fails with claims.ErrInvalidArgument on malformed input and
// claims.ErrEngineUnavailable when the start call errors after retry.
func (d *Dispatcher) Submit(ctx context.Context, sub Submission) (string, error) {
	if err := validate(sub); err != nil {
		return "", err
	}

	input, err := json.Marshal(claims.ExecutionInput{
		ClaimID:      sub.ClaimID,
		InputBucket:  sub.InputBucket,
		OutputBucket: sub.OutputBucket,
		ProjectArn:   sub.ProjectArn,
	})
	if err != nil {
		return "", fmt.Errorf("marshal execution input: %w", err)
	}

	// Execution names must be unique per state machine, so a repeated
	// submission of the same claim gets a fresh random suffix.
	name := executionName(sub.ClaimID)

	arn, err := d.engine.StartExecution(ctx, name, string(input))
	if err != nil {
		log.Error().Err(err).Str("claimId", sub.ClaimID).Msg("Failed to start claim processing execution")
		return "", fmt.Errorf("%w: %v", claims.ErrEngineUnavailable, err)
	}

	log.Info().
		Str("claimId", sub.ClaimID).
		Str("executionArn", arn).
		Str("inputBucket", sub.InputBucket).
		Str("outputBucket", sub.OutputBucket).
		Msg("Claim dispatched to processing pipeline")
	return arn, nil
}

func validate(sub Submission) error {
	for _, f := range []struct{ name, value string }{
		{"claimId", sub.ClaimID},
		{"inputBucket", sub.InputBucket},
		{"outputBucket", sub.OutputBucket},
		{"projectArn", sub.ProjectArn},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", claims.ErrInvalidArgument, f.name)
		}
	}
	return nil
}

// executionName builds a valid, unique Step Functions execution name
// from the claim ID. Names are limited to 80 characters and a restricted
// character set, so the claim ID is sanitized and truncated before the
// random suffix is appended.
func executionName(claimID string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, claimID)
	if len(sanitized) > 40 {
		sanitized = sanitized[:40]
	}
	return sanitized + "-" + uuid.NewString()
}

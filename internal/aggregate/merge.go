// Package aggregate merges the heterogeneous per-document inference
// rows of a claim into one payload for the assessment model. This is a
// normalization step only: transformation into the final report schema
// is the assessment model's job, driven by the fixed instruction
// document in prompt.go.
package aggregate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fpang/claims-pipeline/internal/claims"
)

// RecordQuerier is the slice of the job store the aggregator needs.
type RecordQuerier interface {
	QueryInferenceRecords(ctx context.Context, claimID string) ([]claims.DocumentInferenceRecord, error)
}

// Aggregator merges per-document inference rows. It never mutates the
// underlying rows and is idempotent over unchanged data.
type Aggregator struct {
	store RecordQuerier
}

// New creates an Aggregator backed by the given store.
func New(store RecordQuerier) *Aggregator {
	return &Aggregator{store: store}
}

// Merge reads all inference rows for the claim and folds them into a
// single mapping keyed by document name, plus a top-level claimId field.
//
// Per row, the merged value is the structured inference result, except
// for the Others document variant where the audio-derived summary is
// used instead. Each document gets a fraudWarning field from the row's
// fraud flag, defaulting to the "None" sentinel.
//
// Zero rows yield an empty payload — the caller decides whether that
// means not-ready or failure. A malformed row is skipped with a logged
// warning; one bad row never aborts the merge. A whole-query failure
// returns claims.ErrStoreUnavailable.
func (a *Aggregator) Merge(ctx context.Context, claimID string) (claims.MergedClaim, error) {
	records, err := a.store.QueryInferenceRecords(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("%w: query inference records for %s: %v", claims.ErrStoreUnavailable, claimID, err)
	}

	merged := claims.MergedClaim{}
	if len(records) == 0 {
		log.Debug().Str("claimId", claimID).Msg("No inference records to merge")
		return merged, nil
	}

	var skipped int
	for _, rec := range records {
		value, ok := documentValue(rec)
		if !ok {
			skipped++
			log.Warn().
				Str("claimId", claimID).
				Str("document", rec.DocumentName).
				Str("documentType", string(rec.DocumentType)).
				Msg("Malformed inference record, skipping")
			continue
		}
		merged["claimId"] = claimID
		merged[rec.DocumentName] = value
	}

	log.Debug().
		Str("claimId", claimID).
		Int("records", len(records)).
		Int("skipped", skipped).
		Msg("Inference records merged")
	return merged, nil
}

// documentValue selects the mergeable value for a record by its
// document type tag and attaches the per-document fraud warning.
// Returns false for rows missing their required fields. The row's maps
// are copied, never written to.
func documentValue(rec claims.DocumentInferenceRecord) (map[string]interface{}, bool) {
	if rec.DocumentName == "" {
		return nil, false
	}

	source := rec.InferenceResult
	if rec.DocumentType == claims.DocumentTypeOther {
		source = rec.AudioSummary
	}
	if source == nil {
		return nil, false
	}

	value := make(map[string]interface{}, len(source)+1)
	for k, v := range source {
		value[k] = v
	}

	if rec.FraudDetection != nil {
		value["fraudWarning"] = rec.FraudDetection
	} else {
		value["fraudWarning"] = claims.FraudWarningNone
	}
	return value, true
}

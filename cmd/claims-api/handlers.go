package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/claims-pipeline/internal/claims"
	"github.com/fpang/claims-pipeline/internal/dispatch"
	"github.com/fpang/claims-pipeline/internal/lambdaboot"
)

// --- Health ---

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "claims-pipeline",
	})
}

// --- Submit ---

// POST /api/claims/submit
// Body: {"claimId": "...", "inputBucket": "...", "outputBucket": "...", "projectArn": "..."}
// Buckets and project ARN fall back to the deployment defaults when omitted.
func handleSubmit(w http.ResponseWriter, r *http.Request) {
	log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("Handler entry: handleSubmit")

	if r.Method != http.MethodPost {
		log.Warn().Str("param", "method").Msg("Method not allowed")
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		ClaimID      string `json:"claimId"`
		InputBucket  string `json:"inputBucket,omitempty"`
		OutputBucket string `json:"outputBucket,omitempty"`
		ProjectArn   string `json:"projectArn,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Str("param", "body").Msg("Invalid request body")
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateClaimID(req.ClaimID); err != nil {
		log.Warn().Str("param", "claimId").Msg("ClaimId validation failed")
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := dispatch.Submission{
		ClaimID:      req.ClaimID,
		InputBucket:  req.InputBucket,
		OutputBucket: req.OutputBucket,
		ProjectArn:   req.ProjectArn,
	}
	if sub.InputBucket == "" {
		sub.InputBucket = defaultInputBucket
	}
	if sub.OutputBucket == "" {
		sub.OutputBucket = defaultOutputBucket
	}
	if sub.ProjectArn == "" {
		sub.ProjectArn = defaultProjectArn
	}

	ctx, cancel := context.WithTimeout(r.Context(), lambdaboot.CallTimeout)
	defer cancel()

	executionArn, err := dispatcher.Submit(ctx, sub)
	switch {
	case errors.Is(err, claims.ErrInvalidArgument):
		httpError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, claims.ErrEngineUnavailable):
		httpError(w, http.StatusBadGateway, "failed to start claim processing", err.Error())
		return
	case err != nil:
		httpError(w, http.StatusInternalServerError, "failed to start claim processing", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"claimId":     req.ClaimID,
		"executionId": executionArn,
	})
}

// --- Claim Routes ---

// handleClaimRoutes dispatches /api/claims/{id}/{action}.
func handleClaimRoutes(w http.ResponseWriter, r *http.Request) {
	claimID, action, ok := parseClaimRoute(r.URL.Path)
	if !ok || validateClaimID(claimID) != nil {
		httpError(w, http.StatusNotFound, "not found")
		return
	}

	switch action {
	case "status":
		handleStatus(w, r, claimID)
	case "report":
		handleReport(w, r, claimID)
	case "documents":
		handleDocuments(w, r, claimID)
	default:
		httpError(w, http.StatusNotFound, "not found")
	}
}

// parseClaimRoute extracts the claim ID and action from a URL path like
// /api/claims/{id}/{action}.
func parseClaimRoute(path string) (claimID, action string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/api/claims/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// --- Status ---

// GET /api/claims/{id}/status
//
// Always answers 200 with one of COMPLETED, FAILED, PROCESSING. The
// resolver is fail-open: transient backend failures surface to the
// client as PROCESSING, never as an error body.
func handleStatus(w http.ResponseWriter, r *http.Request, claimID string) {
	log.Debug().Str("method", r.Method).Str("claimId", claimID).Msg("Handler entry: handleStatus")

	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st := resolver.Resolve(r.Context(), claimID)

	respondJSON(w, http.StatusOK, map[string]string{
		"claimId": claimID,
		"status":  string(st),
	})
}

// --- Report ---

// GET /api/claims/{id}/report
func handleReport(w http.ResponseWriter, r *http.Request, claimID string) {
	log.Debug().Str("method", r.Method).Str("claimId", claimID).Msg("Handler entry: handleReport")

	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), lambdaboot.CallTimeout)
	defer cancel()

	report, err := claimStore.GetReport(ctx, claimID)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to read report", err.Error())
		return
	}
	if report == nil {
		log.Debug().Str("claimId", claimID).Msg("Report not yet available")
		httpError(w, http.StatusNotFound, "report not found")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// --- Documents ---

// GET /api/claims/{id}/documents
//
// Lists the artifacts uploaded for the claim under claims/{id}/ in the
// input bucket, so callers can see what the pipeline will process.
func handleDocuments(w http.ResponseWriter, r *http.Request, claimID string) {
	log.Debug().Str("method", r.Method).Str("claimId", claimID).Msg("Handler entry: handleDocuments")

	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), lambdaboot.CallTimeout)
	defer cancel()

	prefix := "claims/" + claimID + "/"
	out, err := s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: &inputBucket,
		Prefix: &prefix,
	})
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to list documents", err.Error())
		return
	}

	type document struct {
		Key          string `json:"key"`
		SizeBytes    int64  `json:"sizeBytes"`
		LastModified string `json:"lastModified,omitempty"`
	}
	documents := make([]document, 0, len(out.Contents))
	for _, obj := range out.Contents {
		d := document{
			Key:       strings.TrimPrefix(aws.ToString(obj.Key), prefix),
			SizeBytes: aws.ToInt64(obj.Size),
		}
		if obj.LastModified != nil {
			d.LastModified = obj.LastModified.UTC().Format("2006-01-02T15:04:05Z")
		}
		documents = append(documents, d)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"claimId":   claimID,
		"documents": documents,
	})
}

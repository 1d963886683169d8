package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fpang/claims-pipeline/internal/claims"
	"github.com/fpang/claims-pipeline/internal/dispatch"
	"github.com/fpang/claims-pipeline/internal/status"
	"github.com/fpang/claims-pipeline/internal/workflow"
)

// --- Fakes ---

type fakeStore struct {
	reports map[string]*claims.ClaimReport
	err     error
}

func (f *fakeStore) GetReport(ctx context.Context, claimID string) (*claims.ClaimReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reports[claimID], nil
}

func (f *fakeStore) PutReport(ctx context.Context, report *claims.ClaimReport) error {
	f.reports[report.ClaimID] = report
	return nil
}

func (f *fakeStore) QueryInferenceRecords(ctx context.Context, claimID string) ([]claims.DocumentInferenceRecord, error) {
	return nil, nil
}

type fakeEngine struct {
	startErr   error
	executions []workflow.ExecutionSummary
	details    map[string]*workflow.ExecutionDetail
}

func (f *fakeEngine) StartExecution(ctx context.Context, name, input string) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return "arn:aws:states:us-east-1:123456789012:execution:claims:" + name, nil
}

func (f *fakeEngine) ListExecutions(ctx context.Context, limit int32) ([]workflow.ExecutionSummary, error) {
	return f.executions, nil
}

func (f *fakeEngine) DescribeExecution(ctx context.Context, arn string) (*workflow.ExecutionDetail, error) {
	d, ok := f.details[arn]
	if !ok {
		return nil, errors.New("execution not found")
	}
	return d, nil
}

// setupAPI wires the package globals to fakes and returns the mux.
func setupAPI(t *testing.T, storeFake *fakeStore, engine *fakeEngine) http.Handler {
	t.Helper()

	claimStore = storeFake
	dispatcher = dispatch.New(engine)
	resolver = status.New(storeFake, engine)
	defaultInputBucket = "claims-input"
	defaultOutputBucket = "claims-output"
	defaultProjectArn = "arn:aws:bedrock:us-east-1:123456789012:data-automation-project/test"

	return newMux()
}

func emptyStore() *fakeStore {
	return &fakeStore{reports: make(map[string]*claims.ClaimReport)}
}

// --- Submit ---

func TestSubmit_OK(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/claims/submit",
		strings.NewReader(`{"claimId": "CLM-1"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["claimId"] != "CLM-1" || resp["executionId"] == "" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestSubmit_MissingClaimID(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/claims/submit", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestSubmit_BadClaimID(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/claims/submit",
		strings.NewReader(`{"claimId": "../escape"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestSubmit_EngineDown(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{startErr: errors.New("states down")})

	req := httptest.NewRequest(http.MethodPost, "/api/claims/submit",
		strings.NewReader(`{"claimId": "CLM-1"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rr.Code)
	}
}

func TestSubmit_GetNotAllowed(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/claims/submit", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

// --- Status ---

// The status endpoint always answers 200 with one of the three phases,
// even when every backend is down.
func TestStatus_AlwaysAnswers(t *testing.T) {
	h := setupAPI(t, &fakeStore{err: errors.New("dynamo down")}, &fakeEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/claims/CLM-1/status", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["status"] != "PROCESSING" || resp["claimId"] != "CLM-1" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestStatus_Completed(t *testing.T) {
	storeFake := emptyStore()
	storeFake.reports["CLM-1"] = &claims.ClaimReport{ClaimID: "CLM-1", RiskScore: 3}
	h := setupAPI(t, storeFake, &fakeEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/claims/CLM-1/status", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "COMPLETED" {
		t.Errorf("expected COMPLETED, got %v", resp)
	}
}

func TestStatus_Failed(t *testing.T) {
	input, _ := json.Marshal(claims.ExecutionInput{ClaimID: "CLM-1", InputBucket: "in", OutputBucket: "out", ProjectArn: "arn"})
	engine := &fakeEngine{
		executions: []workflow.ExecutionSummary{{ExecutionArn: "e1", Status: workflow.StatusFailed}},
		details: map[string]*workflow.ExecutionDetail{
			"e1": {Status: workflow.StatusFailed, Input: string(input)},
		},
	}
	h := setupAPI(t, emptyStore(), engine)

	req := httptest.NewRequest(http.MethodGet, "/api/claims/CLM-1/status", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "FAILED" {
		t.Errorf("expected FAILED, got %v", resp)
	}
}

// --- Report ---

func TestReport_NotYetAvailable(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/claims/CLM-1/report", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestReport_OK(t *testing.T) {
	storeFake := emptyStore()
	storeFake.reports["CLM-1"] = &claims.ClaimReport{
		ClaimID:           "CLM-1",
		RiskScore:         6,
		RecommendedAction: "INVESTIGATE - vendor estimates inconsistent",
	}
	h := setupAPI(t, storeFake, &fakeEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/claims/CLM-1/report", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var report claims.ClaimReport
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if report.ClaimID != "CLM-1" || report.RiskScore != 6 {
		t.Errorf("unexpected report: %+v", report)
	}
}

// --- Routing ---

func TestClaimRoutes_UnknownAction(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/claims/CLM-1/bogus", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestClaimRoutes_MalformedPath(t *testing.T) {
	h := setupAPI(t, emptyStore(), &fakeEngine{})

	for _, path := range []string{"/api/claims/", "/api/claims/CLM-1", "/api/claims//status"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rr.Code)
		}
	}
}

package status

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fpang/claims-pipeline/internal/claims"
	"github.com/fpang/claims-pipeline/internal/workflow"
)

// --- Fakes ---

type fakeStore struct {
	report *claims.ClaimReport
	err    error
}

func (f *fakeStore) GetReport(ctx context.Context, claimID string) (*claims.ClaimReport, error) {
	return f.report, f.err
}

type fakeEngine struct {
	executions  []workflow.ExecutionSummary
	details     map[string]*workflow.ExecutionDetail
	listErr     error
	describeErr error

	describeCalls int
}

func (f *fakeEngine) StartExecution(ctx context.Context, name, input string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeEngine) ListExecutions(ctx context.Context, limit int32) ([]workflow.ExecutionSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if int(limit) < len(f.executions) {
		return f.executions[:limit], nil
	}
	return f.executions, nil
}

func (f *fakeEngine) DescribeExecution(ctx context.Context, executionArn string) (*workflow.ExecutionDetail, error) {
	f.describeCalls++
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	d, ok := f.details[executionArn]
	if !ok {
		return nil, errors.New("execution not found")
	}
	return d, nil
}

func executionInput(t *testing.T, claimID string) string {
	t.Helper()
	data, err := json.Marshal(claims.ExecutionInput{
		ClaimID:      claimID,
		InputBucket:  "input",
		OutputBucket: "output",
		ProjectArn:   "arn:aws:bedrock:us-east-1:123456789012:data-automation-project/test",
	})
	if err != nil {
		t.Fatalf("marshal execution input: %v", err)
	}
	return string(data)
}

// --- Tests ---

func TestResolve_ReportPresent(t *testing.T) {
	r := New(&fakeStore{report: &claims.ClaimReport{ClaimID: "C2", RiskScore: 6}}, &fakeEngine{})

	if got := r.Resolve(context.Background(), "C2"); got != claims.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", got)
	}
}

// A report row wins even while the originating execution still reports
// a non-terminal state.
func TestResolve_ReportPreemptsRunningExecution(t *testing.T) {
	engine := &fakeEngine{
		executions: []workflow.ExecutionSummary{{ExecutionArn: "e2", Status: workflow.StatusRunning}},
		details: map[string]*workflow.ExecutionDetail{
			"e2": {Status: workflow.StatusRunning, Input: executionInput(t, "C2")},
		},
	}
	r := New(&fakeStore{report: &claims.ClaimReport{ClaimID: "C2", RiskScore: 6}}, engine)

	if got := r.Resolve(context.Background(), "C2"); got != claims.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", got)
	}
	if engine.describeCalls != 0 {
		t.Errorf("expected no describe calls after report short-circuit, got %d", engine.describeCalls)
	}
}

func TestResolve_FailedExecutionInWindow(t *testing.T) {
	engine := &fakeEngine{
		executions: []workflow.ExecutionSummary{{ExecutionArn: "e1", Status: workflow.StatusFailed}},
		details: map[string]*workflow.ExecutionDetail{
			"e1": {Status: workflow.StatusFailed, Input: executionInput(t, "C1")},
		},
	}
	r := New(&fakeStore{}, engine)

	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusFailed {
		t.Errorf("expected FAILED, got %s", got)
	}
}

func TestResolve_AbsentEverywhere(t *testing.T) {
	r := New(&fakeStore{}, &fakeEngine{})

	if got := r.Resolve(context.Background(), "nowhere"); got != claims.StatusProcessing {
		t.Errorf("expected PROCESSING, got %s", got)
	}
}

// Non-FAILED terminal states are indistinguishable from still-running:
// a succeeded execution whose report has not materialized yet must keep
// reporting PROCESSING, not COMPLETED.
func TestResolve_NonFailedStatesAreProcessing(t *testing.T) {
	for _, st := range []workflow.ExecutionStatus{
		workflow.StatusRunning,
		workflow.StatusSucceeded,
		workflow.StatusTimedOut,
		workflow.StatusAborted,
	} {
		engine := &fakeEngine{
			executions: []workflow.ExecutionSummary{{ExecutionArn: "e1", Status: st}},
			details: map[string]*workflow.ExecutionDetail{
				"e1": {Status: st, Input: executionInput(t, "C1")},
			},
		}
		r := New(&fakeStore{}, engine)

		if got := r.Resolve(context.Background(), "C1"); got != claims.StatusProcessing {
			t.Errorf("status %s: expected PROCESSING, got %s", st, got)
		}
	}
}

func TestResolve_StopsAtFirstMatch(t *testing.T) {
	engine := &fakeEngine{
		executions: []workflow.ExecutionSummary{
			{ExecutionArn: "newer", Status: workflow.StatusRunning},
			{ExecutionArn: "older", Status: workflow.StatusFailed},
		},
		details: map[string]*workflow.ExecutionDetail{
			"newer": {Status: workflow.StatusRunning, Input: executionInput(t, "C1")},
			"older": {Status: workflow.StatusFailed, Input: executionInput(t, "C1")},
		},
	}
	r := New(&fakeStore{}, engine)

	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusProcessing {
		t.Errorf("expected PROCESSING from newest match, got %s", got)
	}
	if engine.describeCalls != 1 {
		t.Errorf("expected scan to stop at first match, got %d describe calls", engine.describeCalls)
	}
}

func TestResolve_SkipsOtherClaims(t *testing.T) {
	engine := &fakeEngine{
		executions: []workflow.ExecutionSummary{
			{ExecutionArn: "other", Status: workflow.StatusRunning},
			{ExecutionArn: "mine", Status: workflow.StatusFailed},
		},
		details: map[string]*workflow.ExecutionDetail{
			"other": {Status: workflow.StatusRunning, Input: executionInput(t, "someone-else")},
			"mine":  {Status: workflow.StatusFailed, Input: executionInput(t, "C1")},
		},
	}
	r := New(&fakeStore{}, engine)

	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusFailed {
		t.Errorf("expected FAILED, got %s", got)
	}
}

func TestResolve_UnparseableInputSkipped(t *testing.T) {
	engine := &fakeEngine{
		executions: []workflow.ExecutionSummary{
			{ExecutionArn: "garbled", Status: workflow.StatusRunning},
			{ExecutionArn: "mine", Status: workflow.StatusFailed},
		},
		details: map[string]*workflow.ExecutionDetail{
			"garbled": {Status: workflow.StatusRunning, Input: "not json"},
			"mine":    {Status: workflow.StatusFailed, Input: executionInput(t, "C1")},
		},
	}
	r := New(&fakeStore{}, engine)

	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusFailed {
		t.Errorf("expected FAILED, got %s", got)
	}
}

// --- Fail-open: every backend failure folds into PROCESSING ---

func TestResolve_StoreErrorFailsOpen(t *testing.T) {
	r := New(&fakeStore{err: errors.New("dynamo down")}, &fakeEngine{})

	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusProcessing {
		t.Errorf("expected PROCESSING, got %s", got)
	}
}

func TestResolve_ListErrorFailsOpen(t *testing.T) {
	r := New(&fakeStore{}, &fakeEngine{listErr: errors.New("throttled")})

	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusProcessing {
		t.Errorf("expected PROCESSING, got %s", got)
	}
}

func TestResolve_DescribeErrorFailsOpen(t *testing.T) {
	engine := &fakeEngine{
		executions:  []workflow.ExecutionSummary{{ExecutionArn: "e1", Status: workflow.StatusFailed}},
		describeErr: errors.New("throttled"),
	}
	r := New(&fakeStore{}, engine)

	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusProcessing {
		t.Errorf("expected PROCESSING, got %s", got)
	}
}

func TestResolve_WindowBoundsScan(t *testing.T) {
	engine := &fakeEngine{
		executions: []workflow.ExecutionSummary{
			{ExecutionArn: "e1", Status: workflow.StatusRunning},
			{ExecutionArn: "e2", Status: workflow.StatusFailed},
		},
		details: map[string]*workflow.ExecutionDetail{
			"e1": {Status: workflow.StatusRunning, Input: executionInput(t, "other")},
			"e2": {Status: workflow.StatusFailed, Input: executionInput(t, "C1")},
		},
	}
	r := New(&fakeStore{}, engine)
	r.scanWindow = 1

	// C1's execution has scrolled out of the window, so the claim looks
	// in-progress even though its execution failed.
	if got := r.Resolve(context.Background(), "C1"); got != claims.StatusProcessing {
		t.Errorf("expected PROCESSING for claim outside window, got %s", got)
	}
}

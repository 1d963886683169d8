// Package workflow wraps the Step Functions API behind a small Engine
// interface: start an execution, list recent executions, describe one.
// The pipeline's state machine is otherwise opaque to this codebase.
//
// The interface exists so the dispatcher and status resolver can be
// exercised against in-memory fakes; production code always uses the
// SFN-backed implementation.
package workflow

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
)

// ExecutionStatus is the lifecycle state of one state machine execution.
type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "RUNNING"
	StatusSucceeded ExecutionStatus = "SUCCEEDED"
	StatusFailed    ExecutionStatus = "FAILED"
	StatusTimedOut  ExecutionStatus = "TIMED_OUT"
	StatusAborted   ExecutionStatus = "ABORTED"
)

// ExecutionSummary is one entry from a list-executions call.
type ExecutionSummary struct {
	ExecutionArn string
	Status       ExecutionStatus
}

// ExecutionDetail is the describe-execution result: the status plus the
// original start-input JSON. The input is the only place the claim ID
// of an execution is recorded.
type ExecutionDetail struct {
	Status ExecutionStatus
	Input  string
}

// Engine is the workflow engine capability consumed by the pipeline.
// ListExecutions returns at most limit executions, newest first.
type Engine interface {
	StartExecution(ctx context.Context, name, input string) (executionArn string, err error)
	ListExecutions(ctx context.Context, limit int32) ([]ExecutionSummary, error)
	DescribeExecution(ctx context.Context, executionArn string) (*ExecutionDetail, error)
}

// SFNEngine implements Engine against a fixed state machine ARN.
type SFNEngine struct {
	client          *sfn.Client
	stateMachineArn string
}

// Compile-time interface check.
var _ Engine = (*SFNEngine)(nil)

// NewSFNEngine creates an SFNEngine bound to the given state machine.
// The client should be initialized from the shared AWS config.
func NewSFNEngine(client *sfn.Client, stateMachineArn string) *SFNEngine {
	return &SFNEngine{
		client:          client,
		stateMachineArn: stateMachineArn,
	}
}

func (e *SFNEngine) StartExecution(ctx context.Context, name, input string) (string, error) {
	out, err := e.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(e.stateMachineArn),
		Input:           aws.String(input),
		Name:            aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("StartExecution %s: %w", name, err)
	}
	return aws.ToString(out.ExecutionArn), nil
}

// ListExecutions returns the most recent executions of the state machine.
// Step Functions lists in reverse chronological order, so a single page
// of size limit is exactly the newest-first window the resolver scans.
func (e *SFNEngine) ListExecutions(ctx context.Context, limit int32) ([]ExecutionSummary, error) {
	out, err := e.client.ListExecutions(ctx, &sfn.ListExecutionsInput{
		StateMachineArn: aws.String(e.stateMachineArn),
		MaxResults:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("ListExecutions: %w", err)
	}

	summaries := make([]ExecutionSummary, 0, len(out.Executions))
	for _, ex := range out.Executions {
		summaries = append(summaries, ExecutionSummary{
			ExecutionArn: aws.ToString(ex.ExecutionArn),
			Status:       fromSFNStatus(ex.Status),
		})
	}
	return summaries, nil
}

func (e *SFNEngine) DescribeExecution(ctx context.Context, executionArn string) (*ExecutionDetail, error) {
	out, err := e.client.DescribeExecution(ctx, &sfn.DescribeExecutionInput{
		ExecutionArn: aws.String(executionArn),
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeExecution %s: %w", executionArn, err)
	}
	return &ExecutionDetail{
		Status: fromSFNStatus(out.Status),
		Input:  aws.ToString(out.Input),
	}, nil
}

func fromSFNStatus(s sfntypes.ExecutionStatus) ExecutionStatus {
	return ExecutionStatus(s)
}

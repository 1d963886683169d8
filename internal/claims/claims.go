// Package claims defines the domain model for the claim processing
// pipeline: the submitted claim job, the per-document inference rows
// written by the workflow stages, and the final assessment report.
//
// A claim has no persisted status of its own. Its lifecycle phase is
// derived at poll time from the presence of a report row and the state
// of the originating workflow execution (see internal/status).
package claims

// DocumentType tags the shape of a document's inference output.
// The tag decides which field of the row carries the mergeable value:
// image and audio documents carry a structured inference result, while
// the Others variant carries an audio-derived summary instead.
type DocumentType string

const (
	DocumentTypeImage DocumentType = "Image"
	DocumentTypeAudio DocumentType = "Audio"
	DocumentTypeOther DocumentType = "Others"
)

// JobStatus is the derived lifecycle phase of a claim as reported to
// polling clients. Exactly three values exist; transient backend
// failures and unknown states all fold into StatusProcessing.
type JobStatus string

const (
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
	StatusProcessing JobStatus = "PROCESSING"
)

// ExecutionInput is the start payload handed to the workflow engine.
// Its claimId field is the only link from a running execution back to
// the claim: execution identity is later recovered by describing recent
// executions and matching this field.
type ExecutionInput struct {
	ClaimID      string `json:"claimId"`
	InputBucket  string `json:"inputBucket"`
	OutputBucket string `json:"outputBucket"`
	ProjectArn   string `json:"projectArn"`
}

// DocumentInferenceRecord is one row of raw inference output for a
// single document or call-recording artifact of a claim. Rows are
// written once by the per-document workflow stages and never mutated.
//
// The DynamoDB attribute names match what the extraction stages write:
// claimId is the partition key, name the sort key.
type DocumentInferenceRecord struct {
	ClaimID         string                 `dynamodbav:"claimId" json:"claimId"`
	DocumentName    string                 `dynamodbav:"name" json:"name"`
	DocumentType    DocumentType           `dynamodbav:"documentType" json:"documentType"`
	InferenceResult map[string]interface{} `dynamodbav:"inference_result,omitempty" json:"inferenceResult,omitempty"`
	AudioSummary    map[string]interface{} `dynamodbav:"audio,omitempty" json:"audioSummary,omitempty"`

	// FraudDetection is set by the tampering-detection stage when it
	// flags the document. Absent on clean documents; the aggregator
	// substitutes the "None" sentinel.
	FraudDetection interface{} `dynamodbav:"fraudDetection,omitempty" json:"fraudDetection,omitempty"`
}

// MergedClaim is the aggregator's output: one entry per document keyed
// by document name, plus a top-level claimId field. It is the input to
// the assessment model, not the final report schema.
type MergedClaim map[string]interface{}

// FraudWarningNone is the sentinel attached to documents whose row
// carries no fraud flag.
const FraudWarningNone = "None"

// Package main provides the Lambda entry point for the claim processing API.
//
// It fronts the claim pipeline behind API Gateway: submissions are
// dispatched to the processing state machine, status polls are resolved
// from the reports table and recent executions, and finished reports are
// read back from DynamoDB.
//
// Endpoints:
//
//	GET  /api/health                     — health check
//	POST /api/claims/submit              — start processing a claim
//	GET  /api/claims/{id}/status         — poll claim status
//	GET  /api/claims/{id}/report         — fetch the canonical report
//	GET  /api/claims/{id}/documents      — list uploaded claim artifacts
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/fpang/claims-pipeline/internal/dispatch"
	"github.com/fpang/claims-pipeline/internal/lambdaboot"
	"github.com/fpang/claims-pipeline/internal/logging"
	"github.com/fpang/claims-pipeline/internal/status"
	"github.com/fpang/claims-pipeline/internal/store"
)

// AWS clients and components initialized at cold start.
var (
	claimStore store.ClaimStore
	dispatcher *dispatch.Dispatcher
	resolver   *status.Resolver

	s3Client    *s3.Client
	inputBucket string

	// Submission defaults applied when the request body omits them.
	defaultInputBucket  string
	defaultOutputBucket string
	defaultProjectArn   string
)

// bootstrap performs cold-start initialization. It lives outside init()
// so the handler wiring can be exercised in tests with fakes.
func bootstrap() {
	initStart := time.Now()
	logging.Init()

	aws := lambdaboot.InitAWS()
	claimStore = lambdaboot.InitStore(aws.Config, "CLAIMS_REPORTS_TABLE", "CLAIMS_RESULTS_TABLE")
	engine := lambdaboot.InitEngine(aws.Config, "CLAIM_STATE_MACHINE_ARN")
	s3Client, inputBucket = lambdaboot.InitS3(aws.Config, "CLAIMS_INPUT_BUCKET")

	dispatcher = dispatch.New(engine)
	resolver = status.New(claimStore, engine)

	defaultInputBucket = inputBucket
	defaultOutputBucket = os.Getenv("CLAIMS_OUTPUT_BUCKET")
	defaultProjectArn = lambdaboot.LoadProjectArn(aws.SSM)

	lambdaboot.StartupLog("claims-api", initStart).
		DynamoTable("reports", os.Getenv("CLAIMS_REPORTS_TABLE")).
		DynamoTable("results", os.Getenv("CLAIMS_RESULTS_TABLE")).
		StateMachine("claimProcessing", os.Getenv("CLAIM_STATE_MACHINE_ARN")).
		S3Bucket("input", inputBucket).
		S3Bucket("output", defaultOutputBucket).
		SSMParam("projectArn", logging.EnvOrDefault("SSM_PROJECT_ARN_PARAM", "/claims-pipeline/prod/bda-project-arn")).
		Log()
}

func main() {
	bootstrap()
	lambda.Start(httpadapter.NewV2(newMux()).ProxyWithContext)
}

func newMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", handleHealth)
	mux.HandleFunc("/api/claims/submit", handleSubmit)
	mux.HandleFunc("/api/claims/", handleClaimRoutes)
	return mux
}

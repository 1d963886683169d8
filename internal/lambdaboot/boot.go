// Package lambdaboot provides shared Lambda cold-start bootstrap logic.
//
// Every Lambda in the pipeline needs some subset of: AWS config, the
// DynamoDB claim store, the Step Functions engine, S3, and SSM parameter
// fetch. This package extracts the common init patterns so each Lambda's
// init() is a short composition of helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/claims-pipeline/internal/logging"
	"github.com/fpang/claims-pipeline/internal/store"
	"github.com/fpang/claims-pipeline/internal/workflow"
)

// CallTimeout bounds every external call made from a request handler.
const CallTimeout = 30 * time.Second

// AWSClients holds the core AWS SDK clients used across Lambdas.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// InitAWS loads the default AWS config and returns it along with common
// clients. Transient failures get at most one retry (two attempts);
// non-transient failures are surfaced immediately by the SDK.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRetryMaxAttempts(2),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitStore creates the DynamoDB claim store from the reports and raw
// results table name environment variables. Fatals if either is empty.
func InitStore(cfg aws.Config, reportsEnvVar, resultsEnvVar string) *store.DynamoStore {
	reportsTable := os.Getenv(reportsEnvVar)
	if reportsTable == "" {
		log.Fatal().Str("envVar", reportsEnvVar).Msg("Reports table environment variable is required")
	}
	resultsTable := os.Getenv(resultsEnvVar)
	if resultsTable == "" {
		log.Fatal().Str("envVar", resultsEnvVar).Msg("Results table environment variable is required")
	}
	ddbClient := dynamodb.NewFromConfig(cfg)
	return store.NewDynamoStore(ddbClient, reportsTable, resultsTable)
}

// InitEngine creates the Step Functions engine bound to the state
// machine ARN from the given environment variable. Fatals if empty.
func InitEngine(cfg aws.Config, arnEnvVar string) *workflow.SFNEngine {
	arn := os.Getenv(arnEnvVar)
	if arn == "" {
		log.Fatal().Str("envVar", arnEnvVar).Msg("State machine ARN environment variable is required")
	}
	return workflow.NewSFNEngine(sfn.NewFromConfig(cfg), arn)
}

// InitS3 creates an S3 client and reads the bucket name from the given
// environment variable. Fatals if the env var is empty.
func InitS3(cfg aws.Config, bucketEnvVar string) (*s3.Client, string) {
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		log.Fatal().Str("envVar", bucketEnvVar).Msg("Bucket environment variable is required")
	}
	return s3.NewFromConfig(cfg), bucket
}

// LoadProjectArn resolves the data-automation project ARN used as the
// default for submissions that don't carry their own. The env var wins;
// otherwise the value is fetched from SSM Parameter Store.
func LoadProjectArn(ssmClient *ssm.Client) string {
	if arn := os.Getenv("BDA_PROJECT_ARN"); arn != "" {
		return arn
	}
	paramName := logging.EnvOrDefault("SSM_PROJECT_ARN_PARAM", "/claims-pipeline/prod/bda-project-arn")

	ssmStart := time.Now()
	result, err := ssmClient.GetParameter(context.Background(), &ssm.GetParameterInput{
		Name: &paramName,
	})
	if err != nil {
		log.Warn().Err(err).Str("param", paramName).Msg("Project ARN not found in SSM — submissions must carry their own")
		return ""
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Project ARN loaded from SSM")
	return *result.Parameter.Value
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}

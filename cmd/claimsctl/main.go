// Package main provides claimsctl, a small operator CLI for the claim
// processing API. It wraps the HTTP surface exposed by claims-api:
// submit a claim, poll its status, and fetch the finished report.
//
// Examples:
//
//	claimsctl submit CLM-2024-0042 --input-bucket claims-input --output-bucket claims-output
//	claimsctl status CLM-2024-0042
//	claimsctl watch CLM-2024-0042 --interval 10s
//	claimsctl report CLM-2024-0042
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/claims-pipeline/internal/logging"
)

// CLI flags
var (
	apiBaseFlag      string
	inputBucketFlag  string
	outputBucketFlag string
	projectArnFlag   string
	intervalFlag     time.Duration
	timeoutFlag      time.Duration
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

var rootCmd = &cobra.Command{
	Use:   "claimsctl",
	Short: "Operator CLI for the claim processing pipeline",
	Long: `claimsctl drives the claim processing API from a terminal.

The API base URL is taken from --api or the CLAIMS_API_URL environment
variable. Claim IDs are opaque strings chosen by the caller; submitting
the same claim ID twice starts two independent pipeline runs.`,
	SilenceUsage: true,
}

var submitCmd = &cobra.Command{
	Use:   "submit <claimId>",
	Short: "Start processing a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := json.Marshal(map[string]string{
			"claimId":      args[0],
			"inputBucket":  inputBucketFlag,
			"outputBucket": outputBucketFlag,
			"projectArn":   projectArnFlag,
		})

		resp, err := httpClient.Post(apiBase()+"/api/claims/submit", "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("submit claim: %w", err)
		}
		defer resp.Body.Close()
		return printResponse(resp)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <claimId>",
	Short: "Poll the current status of a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := httpClient.Get(apiBase() + "/api/claims/" + args[0] + "/status")
		if err != nil {
			return fmt.Errorf("poll status: %w", err)
		}
		defer resp.Body.Close()
		return printResponse(resp)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <claimId>",
	Short: "Poll a claim's status until it completes or fails",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deadline := time.Now().Add(timeoutFlag)
		for {
			status, err := fetchStatus(args[0])
			if err != nil {
				return err
			}
			log.Info().Str("claimId", args[0]).Str("status", status).Msg("Status")

			if status == "COMPLETED" || status == "FAILED" {
				fmt.Println(status)
				return nil
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("claim %s still %s after %s", args[0], status, timeoutFlag)
			}
			time.Sleep(intervalFlag)
		}
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <claimId>",
	Short: "Fetch the canonical report for a completed claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := httpClient.Get(apiBase() + "/api/claims/" + args[0] + "/report")
		if err != nil {
			return fmt.Errorf("fetch report: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("no report for claim %s yet", args[0])
		}
		return printResponse(resp)
	},
}

func apiBase() string {
	if apiBaseFlag != "" {
		return apiBaseFlag
	}
	return os.Getenv("CLAIMS_API_URL")
}

func fetchStatus(claimID string) (string, error) {
	resp, err := httpClient.Get(apiBase() + "/api/claims/" + claimID + "/status")
	if err != nil {
		return "", fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return out.Status, nil
}

// printResponse pretty-prints a JSON response body to stdout.
func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBaseFlag, "api", "", "API base URL (default: CLAIMS_API_URL env var)")

	submitCmd.Flags().StringVar(&inputBucketFlag, "input-bucket", "", "S3 bucket holding the claim's uploaded documents")
	submitCmd.Flags().StringVar(&outputBucketFlag, "output-bucket", "", "S3 bucket for pipeline outputs")
	submitCmd.Flags().StringVar(&projectArnFlag, "project-arn", "", "Data automation project ARN")

	watchCmd.Flags().DurationVar(&intervalFlag, "interval", 10*time.Second, "Polling interval")
	watchCmd.Flags().DurationVar(&timeoutFlag, "timeout", 15*time.Minute, "Give up after this long")

	rootCmd.AddCommand(submitCmd, statusCmd, watchCmd, reportCmd)
}

func main() {
	logging.Init()

	if apiBase() == "" && len(os.Args) > 1 && os.Args[1] != "help" && os.Args[1] != "--help" {
		log.Warn().Msg("No API base URL set — pass --api or set CLAIMS_API_URL")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

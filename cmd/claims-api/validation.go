package main

import (
	"fmt"
	"regexp"
)

// claimIDRegex allows alphanumeric, dots, hyphens, and underscores; up
// to 128 characters. Claim IDs are embedded in S3 prefixes, execution
// names, and log lines, so the charset is kept conservative.
var claimIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

func validateClaimID(id string) error {
	if id == "" {
		return fmt.Errorf("claimId is required")
	}
	if !claimIDRegex.MatchString(id) {
		return fmt.Errorf("invalid claimId: only alphanumeric, dots, hyphens, and underscores allowed (max 128 chars)")
	}
	return nil
}

package aggregate

import (
	"fmt"

	"github.com/fpang/claims-pipeline/internal/claims"
	"github.com/fpang/claims-pipeline/internal/jsonutil"
)

// ParseReport parses the assessment model's raw text output into the
// canonical report. The model is instructed to emit bare JSON, but
// responses are parsed tolerantly in case of markdown fences or prose.
func ParseReport(raw string) (*claims.ClaimReport, error) {
	report, err := jsonutil.ParseJSON[claims.ClaimReport](raw)
	if err != nil {
		return nil, fmt.Errorf("parse assessment output: %w", err)
	}
	return &report, nil
}

package validators

import (
	"context"
	"os"
	"strings"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// spdxMarkers are license families recognized in a LICENSE file.
var spdxMarkers = []string{
	"MIT", "Apache License", "BSD", "GNU GENERAL PUBLIC LICENSE",
	"GNU LESSER", "Mozilla Public License", "ISC", "The Unlicense",
}

// ComplianceValidator checks license and policy hygiene.
type ComplianceValidator struct{}

// NewComplianceValidator creates the compliance criterion validator.
func NewComplianceValidator() *ComplianceValidator {
	return &ComplianceValidator{}
}

// Criterion implements criteria.Validator.
func (v *ComplianceValidator) Criterion() criteria.Criterion { return criteria.Compliance }

// Evaluate scores license presence and recognizability, code ownership, and
// security policy files.
func (v *ComplianceValidator) Evaluate(ctx context.Context, projectRoot string) (*criteria.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var score float64
	var issues []criteria.Issue

	license := firstExisting(projectRoot, "LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING")
	if license == "" {
		issues = append(issues, issue(criteria.SeverityError, "no LICENSE file"))
	} else {
		score += 40
		if recognizedLicense(license) {
			score += 20
		} else {
			issues = append(issues, issue(criteria.SeverityWarning,
				"LICENSE does not match a recognized license family"))
		}
	}

	if firstExisting(projectRoot, "CODEOWNERS", ".github/CODEOWNERS", "docs/CODEOWNERS") != "" {
		score += 20
	} else {
		issues = append(issues, issue(criteria.SeverityInfo, "no CODEOWNERS file"))
	}

	if firstExisting(projectRoot, "SECURITY.md", ".github/SECURITY.md") != "" {
		score += 20
	} else {
		issues = append(issues, issue(criteria.SeverityInfo, "no SECURITY.md policy"))
	}

	return criteria.NewResult(criteria.Compliance, statusFor(score, 60), score, issues...), nil
}

func recognizedLicense(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	text := string(content)
	for _, marker := range spdxMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Fix is intentionally absent: choosing a license is a legal decision the
// tool must not make. The exoskeleton generator scaffolds policy stubs
// instead.
var _ criteria.Validator = (*ComplianceValidator)(nil)

package validators

import "github.com/fyrsmithlabs/dodctl/internal/criteria"

// DefaultSet returns the closed validator table for the registry. One
// validator per criterion; the registry rejects the table if any criterion
// is left unbound.
func DefaultSet() map[criteria.Criterion]criteria.Validator {
	return map[criteria.Criterion]criteria.Validator{
		criteria.Testing:       NewTestingValidator(),
		criteria.Security:      NewSecurityValidator(),
		criteria.CodeQuality:   NewCodeQualityValidator(),
		criteria.Documentation: NewDocumentationValidator(),
		criteria.Performance:   NewPerformanceValidator(),
		criteria.Compliance:    NewComplianceValidator(),
		criteria.DevOps:        NewDevOpsValidator(),
	}
}

package audit

import (
	"errors"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/report"
)

const (
	structuralNonComplianceMessageConstant = "structural audit found non-compliant repositories"
	uncoveredRequirementsMessageConstant   = "traceability audit found uncovered requirements"
	scopeResolutionFailedMessageConstant   = "one or more requested repositories could not be resolved"
)

// Sentinel errors returned after the report has been rendered so the process
// exit code reflects the audit outcome.
var (
	// ErrStructuralNonCompliance reports at least one repository missing a required pattern.
	ErrStructuralNonCompliance = errors.New(structuralNonComplianceMessageConstant)
	// ErrUncoveredRequirements reports at least one requirement without a verifying test.
	ErrUncoveredRequirements = errors.New(uncoveredRequirementsMessageConstant)
	// ErrScopeResolutionFailed reports repository names that did not resolve.
	ErrScopeResolutionFailed = errors.New(scopeResolutionFailedMessageConstant)
)

// RunIdentifierProvider supplies the identifier stamped on audit reports.
type RunIdentifierProvider func() string

// StructureOptions parameterizes one structural audit run.
type StructureOptions struct {
	WorkingDirectory string
	RepositoryNames  []string
	Format           report.Format
	Configuration    CommandConfiguration
}

// TraceabilityOptions parameterizes one traceability audit run.
type TraceabilityOptions struct {
	WorkingDirectory string
	RepositoryNames  []string
	Format           report.Format
	WarnOnly         bool
	Configuration    CommandConfiguration
}

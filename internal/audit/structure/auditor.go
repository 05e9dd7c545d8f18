package structure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/roles"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/templates"
)

// FindingStatus classifies a single structural observation.
type FindingStatus string

const (
	// FindingStatusPresent marks a template pattern with at least one match.
	FindingStatusPresent FindingStatus = "present"
	// FindingStatusMissing marks a template pattern with no match.
	FindingStatusMissing FindingStatus = "missing"
	// FindingStatusUnexpected marks a denylisted entry found at the repository root.
	FindingStatusUnexpected FindingStatus = "unexpected"
)

const (
	patternMatchMessageTemplateConstant   = "unable to match pattern %s: %s"
	repositoryScanMessageTemplateConstant = "unable to scan repository root %s: %s"

	npmLockFileNameConstant    = "package-lock.json"
	yarnLockFileNameConstant   = "yarn.lock"
	pnpmLockFileNameConstant   = "pnpm-lock.yaml"
	poetryLockFileNameConstant = "poetry.lock"
	cargoLockFileNameConstant  = "Cargo.lock"
)

// Finding records one structural observation for a repository.
type Finding struct {
	Path     string             `json:"path"`
	Status   FindingStatus      `json:"status"`
	Severity templates.Severity `json:"severity"`
	Service  string             `json:"service,omitempty"`
}

// RepositoryStructureResult aggregates the structural verdict for one
// repository. Compliant stays true while no required pattern is missing.
type RepositoryStructureResult struct {
	Repository  string     `json:"repository"`
	Role        roles.Role `json:"role"`
	Findings    []Finding  `json:"findings"`
	Compliant   bool       `json:"compliant"`
	RoleUnknown bool       `json:"role_unknown"`
}

// PatternMatchError reports a template pattern the glob engine rejected.
type PatternMatchError struct {
	Pattern string
	Cause   error
}

func (matchError PatternMatchError) Error() string {
	return fmt.Sprintf(patternMatchMessageTemplateConstant, matchError.Pattern, matchError.Cause)
}

func (matchError PatternMatchError) Unwrap() error {
	return matchError.Cause
}

// RepositoryScanError reports a repository root that could not be listed.
type RepositoryScanError struct {
	RepositoryPath string
	Cause          error
}

func (scanError RepositoryScanError) Error() string {
	return fmt.Sprintf(repositoryScanMessageTemplateConstant, scanError.RepositoryPath, scanError.Cause)
}

func (scanError RepositoryScanError) Unwrap() error {
	return scanError.Cause
}

// DefaultUnexpectedEntryNames lists root entries flagged as unexpected.
func DefaultUnexpectedEntryNames() []string {
	return []string{
		npmLockFileNameConstant,
		yarnLockFileNameConstant,
		pnpmLockFileNameConstant,
		poetryLockFileNameConstant,
		cargoLockFileNameConstant,
	}
}

// Auditor checks repository trees against golden templates without modifying
// them.
type Auditor struct {
	registry             templates.Registry
	serviceExclusions    []string
	unexpectedEntryNames []string
}

// NewAuditor builds an auditor over the given template registry. Nil exclusion
// and denylist slices fall back to the defaults.
func NewAuditor(registry templates.Registry, serviceExclusions []string, unexpectedEntryNames []string) Auditor {
	if serviceExclusions == nil {
		serviceExclusions = templates.DefaultServiceExclusions()
	}
	if unexpectedEntryNames == nil {
		unexpectedEntryNames = DefaultUnexpectedEntryNames()
	}
	return Auditor{
		registry:             registry,
		serviceExclusions:    serviceExclusions,
		unexpectedEntryNames: unexpectedEntryNames,
	}
}

// AuditRepository evaluates one repository tree against the template for its
// role. Repositories without a known role produce no template findings and
// keep a compliant verdict.
func (auditor Auditor) AuditRepository(repositoryPath string, repositoryName string, repositoryRole roles.Role, roleKnown bool) (RepositoryStructureResult, error) {
	auditResult := RepositoryStructureResult{
		Repository:  repositoryName,
		Role:        repositoryRole,
		Compliant:   true,
		RoleUnknown: !roleKnown,
	}
	if !roleKnown {
		return auditResult, nil
	}

	goldenTemplate, templateFound := auditor.registry.TemplateFor(repositoryRole)
	if !templateFound {
		auditResult.RoleUnknown = true
		return auditResult, nil
	}

	var serviceNames []string
	if goldenTemplate.Layout == roles.LayoutMonorepo {
		discoveredServices, discoveryError := templates.DiscoverServices(repositoryPath, auditor.serviceExclusions)
		if discoveryError != nil {
			return RepositoryStructureResult{}, discoveryError
		}
		serviceNames = discoveredServices
	}

	expandedPatterns := templates.Expand(goldenTemplate, serviceNames)
	findings := make([]Finding, 0, len(expandedPatterns))
	for _, expandedPattern := range expandedPatterns {
		matches, matchError := doublestar.FilepathGlob(filepath.Join(repositoryPath, expandedPattern.Pattern))
		if matchError != nil {
			return RepositoryStructureResult{}, PatternMatchError{Pattern: expandedPattern.Pattern, Cause: matchError}
		}
		finding := Finding{
			Path:     expandedPattern.Pattern,
			Severity: expandedPattern.Severity,
			Service:  expandedPattern.Service,
		}
		if len(matches) > 0 {
			finding.Status = FindingStatusPresent
		} else {
			finding.Status = FindingStatusMissing
			if expandedPattern.Severity == templates.SeverityRequired {
				auditResult.Compliant = false
			}
		}
		findings = append(findings, finding)
	}

	unexpectedFindings, scanError := auditor.scanUnexpectedEntries(repositoryPath)
	if scanError != nil {
		return RepositoryStructureResult{}, scanError
	}
	auditResult.Findings = append(findings, unexpectedFindings...)
	return auditResult, nil
}

func (auditor Auditor) scanUnexpectedEntries(repositoryPath string) ([]Finding, error) {
	directoryEntries, readError := os.ReadDir(repositoryPath)
	if readError != nil {
		return nil, RepositoryScanError{RepositoryPath: repositoryPath, Cause: readError}
	}

	denylistSet := make(map[string]struct{}, len(auditor.unexpectedEntryNames))
	for _, unexpectedEntryName := range auditor.unexpectedEntryNames {
		denylistSet[unexpectedEntryName] = struct{}{}
	}

	var unexpectedFindings []Finding
	for _, directoryEntry := range directoryEntries {
		if _, denied := denylistSet[directoryEntry.Name()]; !denied {
			continue
		}
		unexpectedFindings = append(unexpectedFindings, Finding{
			Path:     directoryEntry.Name(),
			Status:   FindingStatusUnexpected,
			Severity: templates.SeverityRecommended,
		})
	}
	return unexpectedFindings, nil
}

package templates

import (
	"fmt"
	"strings"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/roles"
)

// Severity ranks how strongly a template pattern is expected to match.
type Severity string

const (
	// SeverityRequired marks patterns whose absence breaks compliance.
	SeverityRequired Severity = "required"
	// SeverityRecommended marks advisory patterns.
	SeverityRecommended Severity = "recommended"
)

const (
	invalidSeverityMessageTemplateConstant = "invalid severity %q: expected required or recommended"
)

// InvalidSeverityError reports a severity value outside the known set.
type InvalidSeverityError struct {
	Value string
}

func (invalidError InvalidSeverityError) Error() string {
	return fmt.Sprintf(invalidSeverityMessageTemplateConstant, invalidError.Value)
}

// ParseSeverity normalizes and validates a severity value.
func ParseSeverity(value string) (Severity, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch Severity(normalizedValue) {
	case SeverityRequired:
		return SeverityRequired, nil
	case SeverityRecommended:
		return SeverityRecommended, nil
	default:
		return "", InvalidSeverityError{Value: value}
	}
}

// ServicePlaceholderConstant is replaced by each discovered service name when
// service patterns expand.
const ServicePlaceholderConstant = "<service>"

const (
	ciWorkflowPatternConstant             = ".github/workflows/ci.yml"
	codeOwnersPatternConstant             = ".github/CODEOWNERS"
	coreRequirementsPatternConstant       = "website/docs/requirements/functional.md"
	docusaurusConfigPatternConstant       = "website/docusaurus.config.js"
	globalVersionPatternConstant          = "GLOBAL_VERSION"
	functionalRequirementsPatternConstant = "docs/requirements/functional.md"
	integrationTestsPatternConstant       = "tests/integration"
	rootMainPatternConstant               = "src/main.py"
	rootRequirementsPatternConstant       = "requirements.txt"
	rootDockerfilePatternConstant         = "Dockerfile"
	testsDirectoryPatternConstant         = "tests"
	requirementsDocumentPatternConstant   = "docs/requirements.md"
	readmePatternConstant                 = "README.md"
	docsDirectoryPatternConstant          = "docs"

	serviceMainPatternConstant         = "<service>/src/main.py"
	serviceRequirementsPatternConstant = "<service>/requirements.txt"
	serviceDockerfilePatternConstant   = "<service>/Dockerfile"
	serviceVersionPatternConstant      = "<service>/VERSION"
)

// TemplatePattern pairs a doublestar glob, relative to the repository root,
// with the severity of a miss.
type TemplatePattern struct {
	Pattern  string
	Severity Severity
}

// GoldenTemplate describes the expected tree for one repository role.
// ServicePatterns apply only to monorepo layouts and carry the literal
// ServicePlaceholderConstant placeholder.
type GoldenTemplate struct {
	Role               roles.Role
	Layout             roles.LayoutKind
	RepositoryPatterns []TemplatePattern
	ServicePatterns    []TemplatePattern
}

// ExpandedPattern is a template pattern after service substitution. Service is
// empty for repository-level patterns.
type ExpandedPattern struct {
	Pattern  string
	Severity Severity
	Service  string
}

// Registry resolves golden templates by role.
type Registry struct {
	templatesByRole map[roles.Role]GoldenTemplate
}

// NewRegistry copies the provided role-to-template mapping into a registry.
func NewRegistry(templatesByRole map[roles.Role]GoldenTemplate) Registry {
	copiedTemplates := make(map[roles.Role]GoldenTemplate, len(templatesByRole))
	for role, template := range templatesByRole {
		copiedTemplates[role] = template
	}
	return Registry{templatesByRole: copiedTemplates}
}

// TemplateFor returns the template registered for the role.
func (registry Registry) TemplateFor(role roles.Role) (GoldenTemplate, bool) {
	template, found := registry.templatesByRole[role]
	return template, found
}

// WithOverrides returns a registry where overriding templates replace the
// registered ones for their roles. Roles absent from the override map keep
// their existing templates.
func (registry Registry) WithOverrides(overridingTemplates map[roles.Role]GoldenTemplate) Registry {
	mergedTemplates := make(map[roles.Role]GoldenTemplate, len(registry.templatesByRole)+len(overridingTemplates))
	for role, template := range registry.templatesByRole {
		mergedTemplates[role] = template
	}
	for role, template := range overridingTemplates {
		mergedTemplates[role] = template
	}
	return Registry{templatesByRole: mergedTemplates}
}

// DefaultRegistry returns the built-in templates for every role.
func DefaultRegistry() Registry {
	return NewRegistry(map[roles.Role]GoldenTemplate{
		roles.RoleCore: {
			Role:   roles.RoleCore,
			Layout: roles.LayoutMonorepo,
			RepositoryPatterns: []TemplatePattern{
				{Pattern: ciWorkflowPatternConstant, Severity: SeverityRequired},
				{Pattern: codeOwnersPatternConstant, Severity: SeverityRequired},
				{Pattern: coreRequirementsPatternConstant, Severity: SeverityRequired},
				{Pattern: docusaurusConfigPatternConstant, Severity: SeverityRequired},
				{Pattern: globalVersionPatternConstant, Severity: SeverityRecommended},
			},
			ServicePatterns: defaultServicePatterns(),
		},
		roles.RoleEnabler: {
			Role:               roles.RoleEnabler,
			Layout:             roles.LayoutMonorepo,
			RepositoryPatterns: defaultDomainRepositoryPatterns(),
			ServicePatterns:    defaultServicePatterns(),
		},
		roles.RoleSector: {
			Role:               roles.RoleSector,
			Layout:             roles.LayoutMonorepo,
			RepositoryPatterns: defaultDomainRepositoryPatterns(),
			ServicePatterns:    defaultServicePatterns(),
		},
		roles.RoleWorker: {
			Role:   roles.RoleWorker,
			Layout: roles.LayoutRootOnly,
			RepositoryPatterns: []TemplatePattern{
				{Pattern: rootMainPatternConstant, Severity: SeverityRequired},
				{Pattern: rootRequirementsPatternConstant, Severity: SeverityRequired},
				{Pattern: rootDockerfilePatternConstant, Severity: SeverityRequired},
				{Pattern: testsDirectoryPatternConstant, Severity: SeverityRequired},
				{Pattern: requirementsDocumentPatternConstant, Severity: SeverityRecommended},
			},
		},
		roles.RoleTooling: {
			Role:   roles.RoleTooling,
			Layout: roles.LayoutRootOnly,
			RepositoryPatterns: []TemplatePattern{
				{Pattern: readmePatternConstant, Severity: SeverityRequired},
				{Pattern: ciWorkflowPatternConstant, Severity: SeverityRequired},
				{Pattern: testsDirectoryPatternConstant, Severity: SeverityRecommended},
			},
		},
		roles.RoleGovernance: {
			Role:   roles.RoleGovernance,
			Layout: roles.LayoutRootOnly,
			RepositoryPatterns: []TemplatePattern{
				{Pattern: readmePatternConstant, Severity: SeverityRequired},
				{Pattern: docsDirectoryPatternConstant, Severity: SeverityRequired},
				{Pattern: codeOwnersPatternConstant, Severity: SeverityRecommended},
			},
		},
		roles.RoleMeta: {
			Role:   roles.RoleMeta,
			Layout: roles.LayoutRootOnly,
			RepositoryPatterns: []TemplatePattern{
				{Pattern: readmePatternConstant, Severity: SeverityRequired},
				{Pattern: docsDirectoryPatternConstant, Severity: SeverityRecommended},
			},
		},
	})
}

func defaultDomainRepositoryPatterns() []TemplatePattern {
	return []TemplatePattern{
		{Pattern: ciWorkflowPatternConstant, Severity: SeverityRequired},
		{Pattern: functionalRequirementsPatternConstant, Severity: SeverityRequired},
		{Pattern: integrationTestsPatternConstant, Severity: SeverityRequired},
		{Pattern: globalVersionPatternConstant, Severity: SeverityRecommended},
	}
}

func defaultServicePatterns() []TemplatePattern {
	return []TemplatePattern{
		{Pattern: serviceMainPatternConstant, Severity: SeverityRequired},
		{Pattern: serviceRequirementsPatternConstant, Severity: SeverityRequired},
		{Pattern: serviceDockerfilePatternConstant, Severity: SeverityRequired},
		{Pattern: serviceVersionPatternConstant, Severity: SeverityRecommended},
	}
}

// Expand flattens a template into concrete patterns. Repository patterns come
// first in template order, then service patterns once per service in the order
// the services are given. Non-monorepo layouts ignore service patterns.
func Expand(template GoldenTemplate, serviceNames []string) []ExpandedPattern {
	expandedPatterns := make([]ExpandedPattern, 0, len(template.RepositoryPatterns)+len(template.ServicePatterns)*len(serviceNames))
	for _, repositoryPattern := range template.RepositoryPatterns {
		expandedPatterns = append(expandedPatterns, ExpandedPattern{
			Pattern:  repositoryPattern.Pattern,
			Severity: repositoryPattern.Severity,
		})
	}
	if template.Layout != roles.LayoutMonorepo {
		return expandedPatterns
	}
	for _, serviceName := range serviceNames {
		for _, servicePattern := range template.ServicePatterns {
			expandedPatterns = append(expandedPatterns, ExpandedPattern{
				Pattern:  strings.ReplaceAll(servicePattern.Pattern, ServicePlaceholderConstant, serviceName),
				Severity: servicePattern.Severity,
				Service:  serviceName,
			})
		}
	}
	return expandedPatterns
}

package audit

import (
	"strings"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/scope"
)

const (
	configurationRepositoriesRootKeyConstant = "repositories_root"
	configurationWorkersKeyConstant          = "workers"
	configurationFormatKeyConstant           = "format"
	configurationRolePrecedenceKeyConstant   = "role_precedence"
	configurationStructureKeyConstant        = "structure"
	configurationTraceabilityKeyConstant     = "traceability"
	configurationTemplateFileKeyConstant     = "template_file"
	configurationWarnOnlyKeyConstant         = "warn_only"
	configurationKeySeparatorConstant        = "."

	defaultWorkerCountConstant = 4
	defaultFormatNameConstant  = "text"
)

// StructureConfiguration captures persisted settings for the structural audit.
type StructureConfiguration struct {
	TemplateFile      string   `mapstructure:"template_file"`
	UnexpectedEntries []string `mapstructure:"unexpected"`
	ServiceExclusions []string `mapstructure:"service_exclusions"`
}

// TraceabilityConfiguration captures persisted settings for the traceability audit.
type TraceabilityConfiguration struct {
	RequirementGlobs  []string `mapstructure:"requirement_globs"`
	VerificationGlobs []string `mapstructure:"verification_globs"`
	WarnOnly          bool     `mapstructure:"warn_only"`
}

// CommandConfiguration captures persisted settings for the audit command family.
type CommandConfiguration struct {
	RepositoriesRoot string                    `mapstructure:"repositories_root"`
	WorkerCount      int                       `mapstructure:"workers"`
	Format           string                    `mapstructure:"format"`
	RolePrecedence   []string                  `mapstructure:"role_precedence"`
	RoleAliases      map[string]string         `mapstructure:"role_aliases"`
	Structure        StructureConfiguration    `mapstructure:"structure"`
	Traceability     TraceabilityConfiguration `mapstructure:"traceability"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoriesRoot: scope.DefaultRepositoriesDirectoryNameConstant,
		WorkerCount:      defaultWorkerCountConstant,
		Format:           defaultFormatNameConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the audit command family.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoriesRootKeyConstant: defaults.RepositoriesRoot,
		rootKey + configurationKeySeparatorConstant + configurationWorkersKeyConstant:          defaults.WorkerCount,
		rootKey + configurationKeySeparatorConstant + configurationFormatKeyConstant:           defaults.Format,
		rootKey + configurationKeySeparatorConstant + configurationRolePrecedenceKeyConstant:   defaults.RolePrecedence,
		rootKey + configurationKeySeparatorConstant + configurationStructureKeyConstant + configurationKeySeparatorConstant + configurationTemplateFileKeyConstant: defaults.Structure.TemplateFile,
		rootKey + configurationKeySeparatorConstant + configurationTraceabilityKeyConstant + configurationKeySeparatorConstant + configurationWarnOnlyKeyConstant:  defaults.Traceability.WarnOnly,
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RepositoriesRoot = strings.TrimSpace(configuration.RepositoriesRoot)
	if len(sanitized.RepositoriesRoot) == 0 {
		sanitized.RepositoriesRoot = scope.DefaultRepositoriesDirectoryNameConstant
	}

	if sanitized.WorkerCount <= 0 {
		sanitized.WorkerCount = defaultWorkerCountConstant
	}

	sanitized.Format = strings.TrimSpace(configuration.Format)
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaultFormatNameConstant
	}

	sanitized.RolePrecedence = sanitizeTokenList(configuration.RolePrecedence)
	sanitized.Structure.TemplateFile = strings.TrimSpace(configuration.Structure.TemplateFile)
	sanitized.Structure.UnexpectedEntries = sanitizeOptionalTokenList(configuration.Structure.UnexpectedEntries)
	sanitized.Structure.ServiceExclusions = sanitizeOptionalTokenList(configuration.Structure.ServiceExclusions)
	sanitized.Traceability.RequirementGlobs = sanitizeOptionalTokenList(configuration.Traceability.RequirementGlobs)
	sanitized.Traceability.VerificationGlobs = sanitizeOptionalTokenList(configuration.Traceability.VerificationGlobs)

	return sanitized
}

func sanitizeTokenList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

// sanitizeOptionalTokenList keeps a nil slice nil so downstream defaults apply.
func sanitizeOptionalTokenList(raw []string) []string {
	if raw == nil {
		return nil
	}
	return sanitizeTokenList(raw)
}

package templates

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/roles"
)

const (
	templateFileMessageTemplateConstant       = "unable to load template file %s: %s"
	templateValidationMessageTemplateConstant = "invalid template entry %q in %s: %s"
	emptyTemplatePatternMessageConstant       = "template pattern must not be empty"
)

// ErrEmptyTemplatePattern rejects override patterns without a glob.
var ErrEmptyTemplatePattern = errors.New(emptyTemplatePatternMessageConstant)

// TemplateFileError reports an override file that could not be read or parsed.
type TemplateFileError struct {
	Path  string
	Cause error
}

func (fileError TemplateFileError) Error() string {
	return fmt.Sprintf(templateFileMessageTemplateConstant, fileError.Path, fileError.Cause)
}

func (fileError TemplateFileError) Unwrap() error {
	return fileError.Cause
}

// TemplateValidationError reports an override entry with an unknown role,
// layout, or severity.
type TemplateValidationError struct {
	Path  string
	Entry string
	Cause error
}

func (validationError TemplateValidationError) Error() string {
	return fmt.Sprintf(templateValidationMessageTemplateConstant, validationError.Entry, validationError.Path, validationError.Cause)
}

func (validationError TemplateValidationError) Unwrap() error {
	return validationError.Cause
}

type templateOverrideFile struct {
	Templates map[string]templateOverrideEntry `yaml:"templates"`
}

type templateOverrideEntry struct {
	Layout             string                    `yaml:"layout"`
	RepositoryPatterns []templateOverridePattern `yaml:"repository_patterns"`
	ServicePatterns    []templateOverridePattern `yaml:"service_patterns"`
}

type templateOverridePattern struct {
	Pattern  string `yaml:"pattern"`
	Severity string `yaml:"severity"`
}

// LoadTemplateOverrides reads a YAML override file and returns the templates
// it defines, keyed by role. Entries replace the built-in template for their
// role; unknown roles, layouts, and severities fail validation.
func LoadTemplateOverrides(path string) (map[roles.Role]GoldenTemplate, error) {
	fileContent, readError := os.ReadFile(path)
	if readError != nil {
		return nil, TemplateFileError{Path: path, Cause: readError}
	}

	var overrideFile templateOverrideFile
	if unmarshalError := yaml.Unmarshal(fileContent, &overrideFile); unmarshalError != nil {
		return nil, TemplateFileError{Path: path, Cause: unmarshalError}
	}

	overridingTemplates := make(map[roles.Role]GoldenTemplate, len(overrideFile.Templates))
	for roleName, overrideEntry := range overrideFile.Templates {
		parsedRole, roleParseError := roles.ParseRole(roleName)
		if roleParseError != nil {
			return nil, TemplateValidationError{Path: path, Entry: roleName, Cause: roleParseError}
		}

		templateLayout := parsedRole.Layout()
		if strings.TrimSpace(overrideEntry.Layout) != "" {
			parsedLayout, layoutParseError := roles.ParseLayoutKind(overrideEntry.Layout)
			if layoutParseError != nil {
				return nil, TemplateValidationError{Path: path, Entry: roleName, Cause: layoutParseError}
			}
			templateLayout = parsedLayout
		}

		repositoryPatterns, repositoryPatternError := convertOverridePatterns(overrideEntry.RepositoryPatterns)
		if repositoryPatternError != nil {
			return nil, TemplateValidationError{Path: path, Entry: roleName, Cause: repositoryPatternError}
		}

		servicePatterns, servicePatternError := convertOverridePatterns(overrideEntry.ServicePatterns)
		if servicePatternError != nil {
			return nil, TemplateValidationError{Path: path, Entry: roleName, Cause: servicePatternError}
		}

		overridingTemplates[parsedRole] = GoldenTemplate{
			Role:               parsedRole,
			Layout:             templateLayout,
			RepositoryPatterns: repositoryPatterns,
			ServicePatterns:    servicePatterns,
		}
	}
	return overridingTemplates, nil
}

func convertOverridePatterns(overridePatterns []templateOverridePattern) ([]TemplatePattern, error) {
	convertedPatterns := make([]TemplatePattern, 0, len(overridePatterns))
	for _, overridePattern := range overridePatterns {
		trimmedPattern := strings.TrimSpace(overridePattern.Pattern)
		if trimmedPattern == "" {
			return nil, ErrEmptyTemplatePattern
		}
		parsedSeverity, severityParseError := ParseSeverity(overridePattern.Severity)
		if severityParseError != nil {
			return nil, severityParseError
		}
		convertedPatterns = append(convertedPatterns, TemplatePattern{Pattern: trimmedPattern, Severity: parsedSeverity})
	}
	return convertedPatterns, nil
}

package versioning

import "strings"

// VersionFileFormat selects how a service stores its version.
type VersionFileFormat string

// Supported version file formats.
const (
	// FormatText stores the bare version string with a trailing newline.
	FormatText VersionFileFormat = "text"
	// FormatPackageJSON stores the version in a package.json "version" field.
	FormatPackageJSON VersionFileFormat = "package_json"
)

const (
	// GlobalVersionFileNameConstant names the root-level X.Y marker file.
	GlobalVersionFileNameConstant = "GLOBAL_VERSION"

	textVersionFileNameConstant = "VERSION"
	packageJSONFileNameConstant = "package.json"

	servicesConfigurationKeyConstant  = "services"
	configurationKeySeparatorConstant = "."
)

// ServiceConfiguration maps one service name to its version file.
type ServiceConfiguration struct {
	Name   string `mapstructure:"name"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

// CommandConfiguration captures the configurable service version table.
type CommandConfiguration struct {
	Services []ServiceConfiguration `mapstructure:"services"`
}

// DefaultCommandConfiguration returns the built-in service table.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Services: []ServiceConfiguration{
			{Name: "api", File: "api/" + textVersionFileNameConstant, Format: string(FormatText)},
			{Name: "auth", File: "auth/" + textVersionFileNameConstant, Format: string(FormatText)},
			{Name: "app", File: "app/" + textVersionFileNameConstant, Format: string(FormatText)},
			{Name: "website", File: "website/" + packageJSONFileNameConstant, Format: string(FormatPackageJSON)},
		},
	}
}

// DefaultConfigurationValues exposes the defaults as dotted configuration keys.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	serviceEntries := make([]map[string]any, 0, len(defaults.Services))
	for _, serviceConfiguration := range defaults.Services {
		serviceEntries = append(serviceEntries, map[string]any{
			"name":   serviceConfiguration.Name,
			"file":   serviceConfiguration.File,
			"format": serviceConfiguration.Format,
		})
	}
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + servicesConfigurationKeyConstant: serviceEntries,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{}
	for _, serviceConfiguration := range configuration.Services {
		trimmedName := strings.TrimSpace(serviceConfiguration.Name)
		trimmedFile := strings.TrimSpace(serviceConfiguration.File)
		if len(trimmedName) == 0 || len(trimmedFile) == 0 {
			continue
		}
		trimmedFormat := strings.ToLower(strings.TrimSpace(serviceConfiguration.Format))
		if len(trimmedFormat) == 0 {
			trimmedFormat = string(FormatText)
		}
		sanitized.Services = append(sanitized.Services, ServiceConfiguration{
			Name:   trimmedName,
			File:   trimmedFile,
			Format: trimmedFormat,
		})
	}
	if len(sanitized.Services) == 0 {
		return DefaultCommandConfiguration()
	}
	return sanitized
}

// serviceNames lists the configured service names in table order.
func (configuration CommandConfiguration) serviceNames() []string {
	names := make([]string, 0, len(configuration.Services))
	for _, serviceConfiguration := range configuration.Services {
		names = append(names, serviceConfiguration.Name)
	}
	return names
}

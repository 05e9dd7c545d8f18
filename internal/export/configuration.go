package export

import "strings"

const (
	// DefaultOutputFileNameConstant names the generated export file.
	DefaultOutputFileNameConstant = "novaeco-export.txt"

	outputConfigurationKeyConstant              = "output"
	excludedDirectoriesConfigurationKeyConstant = "excluded_directories"
	excludedExtensionsConfigurationKeyConstant  = "excluded_extensions"
	excludedFileNamesConfigurationKeyConstant   = "excluded_file_names"
	configurationKeySeparatorConstant           = "."
)

// DefaultExcludedDirectoryNames lists directory names pruned from the walk.
func DefaultExcludedDirectoryNames() []string {
	return []string{".git", "node_modules", "__pycache__", ".venv", "venv", "dist", "build", ".next", "coverage"}
}

// DefaultExcludedExtensions lists file extensions excluded from the export.
func DefaultExcludedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".ico", ".pdf", ".zip", ".gz", ".pyc", ".lock"}
}

// DefaultExcludedFileNames lists exact file names excluded from the export.
func DefaultExcludedFileNames() []string {
	return []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "poetry.lock", "Cargo.lock"}
}

// CommandConfiguration captures configurable export behavior.
type CommandConfiguration struct {
	Output              string   `mapstructure:"output"`
	ExcludedDirectories []string `mapstructure:"excluded_directories"`
	ExcludedExtensions  []string `mapstructure:"excluded_extensions"`
	ExcludedFileNames   []string `mapstructure:"excluded_file_names"`
}

// DefaultCommandConfiguration returns the built-in export defaults.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Output:              DefaultOutputFileNameConstant,
		ExcludedDirectories: DefaultExcludedDirectoryNames(),
		ExcludedExtensions:  DefaultExcludedExtensions(),
		ExcludedFileNames:   DefaultExcludedFileNames(),
	}
}

// DefaultConfigurationValues exposes the defaults as dotted configuration keys.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + outputConfigurationKeyConstant:              defaults.Output,
		rootKey + configurationKeySeparatorConstant + excludedDirectoriesConfigurationKeyConstant: defaults.ExcludedDirectories,
		rootKey + configurationKeySeparatorConstant + excludedExtensionsConfigurationKeyConstant:  defaults.ExcludedExtensions,
		rootKey + configurationKeySeparatorConstant + excludedFileNamesConfigurationKeyConstant:   defaults.ExcludedFileNames,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()
	if len(strings.TrimSpace(sanitized.Output)) == 0 {
		sanitized.Output = defaults.Output
	}
	if sanitized.ExcludedDirectories == nil {
		sanitized.ExcludedDirectories = defaults.ExcludedDirectories
	}
	if sanitized.ExcludedExtensions == nil {
		sanitized.ExcludedExtensions = defaults.ExcludedExtensions
	}
	if sanitized.ExcludedFileNames == nil {
		sanitized.ExcludedFileNames = defaults.ExcludedFileNames
	}
	return sanitized
}

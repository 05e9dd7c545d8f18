package workspace

import "strings"

const (
	// DefaultOrganizationConstant names the GitHub organization bootstrapped by default.
	DefaultOrganizationConstant = "novaeco-tech"
	// DefaultRepositoriesRootConstant names the workspace subdirectory holding clones.
	DefaultRepositoriesRootConstant = "repos"
	// DefaultListLimitConstant caps the organization listing.
	DefaultListLimitConstant = 1000
	// DefaultWorkspaceFileNameConstant names the generated editor workspace file.
	DefaultWorkspaceFileNameConstant = "novaeco.code-workspace"

	organizationConfigurationKeyConstant     = "organization"
	repositoriesRootConfigurationKeyConstant = "repositories_root"
	listLimitConfigurationKeyConstant        = "list_limit"
	workspaceFileConfigurationKeyConstant    = "workspace_file"
	configurationKeySeparatorConstant        = "."
)

// CommandConfiguration captures configurable workspace bootstrap behavior.
type CommandConfiguration struct {
	Organization     string `mapstructure:"organization"`
	RepositoriesRoot string `mapstructure:"repositories_root"`
	ListLimit        int    `mapstructure:"list_limit"`
	WorkspaceFile    string `mapstructure:"workspace_file"`
}

// DefaultCommandConfiguration returns the built-in workspace defaults.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Organization:     DefaultOrganizationConstant,
		RepositoriesRoot: DefaultRepositoriesRootConstant,
		ListLimit:        DefaultListLimitConstant,
		WorkspaceFile:    DefaultWorkspaceFileNameConstant,
	}
}

// DefaultConfigurationValues exposes the defaults as dotted configuration keys.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + organizationConfigurationKeyConstant:     defaults.Organization,
		rootKey + configurationKeySeparatorConstant + repositoriesRootConfigurationKeyConstant: defaults.RepositoriesRoot,
		rootKey + configurationKeySeparatorConstant + listLimitConfigurationKeyConstant:        defaults.ListLimit,
		rootKey + configurationKeySeparatorConstant + workspaceFileConfigurationKeyConstant:    defaults.WorkspaceFile,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()
	if len(strings.TrimSpace(sanitized.Organization)) == 0 {
		sanitized.Organization = defaults.Organization
	}
	if len(strings.TrimSpace(sanitized.RepositoriesRoot)) == 0 {
		sanitized.RepositoriesRoot = defaults.RepositoriesRoot
	}
	if sanitized.ListLimit <= 0 {
		sanitized.ListLimit = defaults.ListLimit
	}
	if len(strings.TrimSpace(sanitized.WorkspaceFile)) == 0 {
		sanitized.WorkspaceFile = defaults.WorkspaceFile
	}
	return sanitized
}

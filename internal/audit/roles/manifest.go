package roles

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// RepositoryManifestFileNameConstant names the per-repository metadata file.
	RepositoryManifestFileNameConstant = ".novaeco.yaml"

	manifestParseErrorTemplateConstant = "repository manifest %s: %s"
)

// RepositoryManifest carries the role metadata a repository declares about itself.
type RepositoryManifest struct {
	Role   string   `yaml:"role"`
	Topics []string `yaml:"topics"`
}

// ManifestParseError indicates an unreadable or invalid repository manifest.
type ManifestParseError struct {
	Path  string
	Cause error
}

// Error describes the manifest failure.
func (parseError ManifestParseError) Error() string {
	return fmt.Sprintf(manifestParseErrorTemplateConstant, parseError.Path, parseError.Cause)
}

// Unwrap exposes the underlying cause.
func (parseError ManifestParseError) Unwrap() error {
	return parseError.Cause
}

// LoadRepositoryManifest reads .novaeco.yaml from a repository root.
//
// A missing manifest is not an error; the second return value reports presence.
func LoadRepositoryManifest(repositoryPath string) (RepositoryManifest, bool, error) {
	manifestPath := filepath.Join(repositoryPath, RepositoryManifestFileNameConstant)
	manifestContent, readError := os.ReadFile(manifestPath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return RepositoryManifest{}, false, nil
		}
		return RepositoryManifest{}, false, ManifestParseError{Path: manifestPath, Cause: readError}
	}

	var manifest RepositoryManifest
	if unmarshalError := yaml.Unmarshal(manifestContent, &manifest); unmarshalError != nil {
		return RepositoryManifest{}, false, ManifestParseError{Path: manifestPath, Cause: unmarshalError}
	}

	return manifest, true, nil
}

// TopicTokens flattens the manifest into classifier input.
func (manifest RepositoryManifest) TopicTokens() []string {
	tokens := append([]string{}, manifest.Topics...)
	if len(manifest.Role) > 0 {
		tokens = append(tokens, manifest.Role)
	}
	return tokens
}

// WorkspaceManifestFileNameConstant names the workspace-level metadata file
// written by workspace bootstrap and consulted during classification.
const WorkspaceManifestFileNameConstant = "novaeco-workspace.yaml"

// WorkspaceManifestEntry carries the recorded metadata for one repository.
type WorkspaceManifestEntry struct {
	Role   string   `yaml:"role,omitempty"`
	Topics []string `yaml:"topics,omitempty"`
	SSHURL string   `yaml:"ssh_url,omitempty"`
}

// TopicTokens flattens the entry into classifier input.
func (entry WorkspaceManifestEntry) TopicTokens() []string {
	tokens := append([]string{}, entry.Topics...)
	if len(entry.Role) > 0 {
		tokens = append(tokens, entry.Role)
	}
	return tokens
}

// WorkspaceManifest maps repository names to their recorded metadata.
type WorkspaceManifest struct {
	Organization string                            `yaml:"organization,omitempty"`
	Repositories map[string]WorkspaceManifestEntry `yaml:"repositories"`
}

// LoadWorkspaceManifest reads a workspace manifest from the given path.
//
// A missing manifest is not an error; the second return value reports presence.
func LoadWorkspaceManifest(manifestPath string) (WorkspaceManifest, bool, error) {
	manifestContent, readError := os.ReadFile(manifestPath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return WorkspaceManifest{}, false, nil
		}
		return WorkspaceManifest{}, false, ManifestParseError{Path: manifestPath, Cause: readError}
	}

	var manifest WorkspaceManifest
	if unmarshalError := yaml.Unmarshal(manifestContent, &manifest); unmarshalError != nil {
		return WorkspaceManifest{}, false, ManifestParseError{Path: manifestPath, Cause: unmarshalError}
	}

	return manifest, true, nil
}

package shared

import (
	"context"
	"io/fs"
	"time"

	"github.com/novaeco-tech/novaeco-devtools/internal/execshell"
	"github.com/novaeco-tech/novaeco-devtools/internal/githubcli"
)

const (
	// OriginRemoteNameConstant identifies the default upstream remote used for GitHub repositories.
	OriginRemoteNameConstant = "origin"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes filesystem operations required by workspace services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Rename(oldPath string, newPath string) error
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
}

// ConfirmationResult captures the outcome of a user confirmation prompt.
type ConfirmationResult struct {
	Confirmed  bool
	ApplyToAll bool
}

// ConfirmationPrompter collects user confirmations prior to mutating actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (ConfirmationResult, error)
}

// GitExecutor exposes the subset of shell execution used by workspace services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes repository-level git operations.
type GitRepositoryManager interface {
	CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	CheckIsRepository(executionContext context.Context, repositoryPath string) (bool, error)
}

// GitHubMetadataResolver resolves canonical repository metadata via GitHub CLI.
type GitHubMetadataResolver interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
}

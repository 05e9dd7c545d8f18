package audit

import (
	"context"

	"github.com/novaeco-tech/novaeco-devtools/internal/githubcli"
)

// RemoteURLReader resolves the URL configured for a repository remote.
type RemoteURLReader interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// GitHubMetadataResolver resolves repository metadata, topics included, via GitHub CLI.
type GitHubMetadataResolver interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
}

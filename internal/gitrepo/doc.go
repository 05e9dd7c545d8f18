// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for cloning repositories and inspecting remotes,
// along with remote URL parsing utilities consumed by workspace services that
// need structured Git operations.
package gitrepo

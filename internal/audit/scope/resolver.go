package scope

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultRepositoriesDirectoryNameConstant names the workspace subdirectory holding clones.
	DefaultRepositoriesDirectoryNameConstant = "repos"

	gitDirectoryEntryNameConstant         = ".git"
	repositoryManifestFileNameConstant    = ".novaeco.yaml"
	hiddenEntryPrefixConstant             = "."
	notADirectoryReasonMessageConstant    = "not a directory"
	scopeResolutionErrorTemplateConstant  = "unable to resolve audit scope from %s; run inside a repository or a workspace root, or pass explicit repository names"
	repositoryLookupErrorTemplateConstant = "repository %s not found at %s: %s"
)

// Mode identifies how the repository set for a run was derived.
type Mode string

// Supported scope modes.
const (
	ModeLocal     Mode = "local"
	ModeNamed     Mode = "named"
	ModeWorkspace Mode = "workspace"
)

// RepositoryRef identifies one repository in scope for a run.
type RepositoryRef struct {
	Name string
	Path string
}

// Scope captures the resolved repository set for a single invocation.
type Scope struct {
	Mode         Mode
	Repositories []RepositoryRef
}

// ScopeResolutionError indicates the working directory matches no recognized layout.
type ScopeResolutionError struct {
	WorkingDirectory string
}

// Error describes the resolution failure.
func (resolutionError ScopeResolutionError) Error() string {
	return fmt.Sprintf(scopeResolutionErrorTemplateConstant, resolutionError.WorkingDirectory)
}

// RepositoryLookupError indicates a named repository could not be located.
type RepositoryLookupError struct {
	Name   string
	Path   string
	Reason error
}

// Error describes the lookup failure.
func (lookupError RepositoryLookupError) Error() string {
	return fmt.Sprintf(repositoryLookupErrorTemplateConstant, lookupError.Name, lookupError.Path, lookupError.Reason)
}

// Unwrap exposes the underlying cause.
func (lookupError RepositoryLookupError) Unwrap() error {
	return lookupError.Reason
}

type notADirectoryError struct{}

func (notADirectoryError) Error() string {
	return notADirectoryReasonMessageConstant
}

// Resolver derives the repository scope from the invocation context.
type Resolver struct {
	repositoriesDirectoryName string
}

// NewResolver constructs a Resolver; an empty directory name selects the default.
func NewResolver(repositoriesDirectoryName string) *Resolver {
	trimmedDirectoryName := strings.TrimSpace(repositoriesDirectoryName)
	if len(trimmedDirectoryName) == 0 {
		trimmedDirectoryName = DefaultRepositoriesDirectoryNameConstant
	}
	return &Resolver{repositoriesDirectoryName: trimmedDirectoryName}
}

// Resolve maps the working directory and positional names to a repository scope.
//
// Explicit names win over location detection; a local repository wins over a
// surrounding workspace. Lookup failures are collected per name so remaining
// names still resolve.
func (resolver *Resolver) Resolve(workingDirectory string, repositoryNames []string) (Scope, []error) {
	absoluteWorkingDirectory, absoluteError := filepath.Abs(workingDirectory)
	if absoluteError != nil {
		return Scope{}, []error{ScopeResolutionError{WorkingDirectory: workingDirectory}}
	}

	requestedNames := sanitizeRepositoryNames(repositoryNames)
	if len(requestedNames) > 0 {
		return resolver.resolveNamed(absoluteWorkingDirectory, requestedNames)
	}

	if resolver.isRepositoryRoot(absoluteWorkingDirectory) {
		localReference := RepositoryRef{Name: filepath.Base(absoluteWorkingDirectory), Path: absoluteWorkingDirectory}
		return Scope{Mode: ModeLocal, Repositories: []RepositoryRef{localReference}}, nil
	}

	repositoriesRoot := filepath.Join(absoluteWorkingDirectory, resolver.repositoriesDirectoryName)
	repositoriesRootInfo, statError := os.Stat(repositoriesRoot)
	if statError == nil && repositoriesRootInfo.IsDir() {
		return resolver.resolveWorkspace(absoluteWorkingDirectory, repositoriesRoot)
	}

	return Scope{}, []error{ScopeResolutionError{WorkingDirectory: absoluteWorkingDirectory}}
}

func (resolver *Resolver) resolveNamed(workingDirectory string, repositoryNames []string) (Scope, []error) {
	references := make([]RepositoryRef, 0, len(repositoryNames))
	var lookupErrors []error

	for _, repositoryName := range repositoryNames {
		candidatePath := filepath.Join(workingDirectory, resolver.repositoriesDirectoryName, repositoryName)
		candidateInfo, statError := os.Stat(candidatePath)
		if statError != nil {
			lookupErrors = append(lookupErrors, RepositoryLookupError{Name: repositoryName, Path: candidatePath, Reason: statError})
			continue
		}
		if !candidateInfo.IsDir() {
			lookupErrors = append(lookupErrors, RepositoryLookupError{Name: repositoryName, Path: candidatePath, Reason: notADirectoryError{}})
			continue
		}
		references = append(references, RepositoryRef{Name: repositoryName, Path: candidatePath})
	}

	return Scope{Mode: ModeNamed, Repositories: references}, lookupErrors
}

func (resolver *Resolver) resolveWorkspace(workingDirectory string, repositoriesRoot string) (Scope, []error) {
	directoryEntries, readError := os.ReadDir(repositoriesRoot)
	if readError != nil {
		return Scope{}, []error{ScopeResolutionError{WorkingDirectory: workingDirectory}}
	}

	references := make([]RepositoryRef, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		entryName := directoryEntry.Name()
		if strings.HasPrefix(entryName, hiddenEntryPrefixConstant) {
			continue
		}
		references = append(references, RepositoryRef{Name: entryName, Path: filepath.Join(repositoriesRoot, entryName)})
	}

	return Scope{Mode: ModeWorkspace, Repositories: references}, nil
}

func (resolver *Resolver) isRepositoryRoot(candidatePath string) bool {
	if _, statError := os.Stat(filepath.Join(candidatePath, gitDirectoryEntryNameConstant)); statError == nil {
		return true
	}
	manifestInfo, manifestStatError := os.Stat(filepath.Join(candidatePath, repositoryManifestFileNameConstant))
	if manifestStatError == nil && !manifestInfo.IsDir() {
		return true
	}
	return false
}

func sanitizeRepositoryNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

package templates

import (
	"fmt"
	"os"
	"strings"
)

const (
	hiddenEntryPrefixConstant               = "."
	serviceDiscoveryMessageTemplateConstant = "unable to list services under %s: %s"

	websiteExclusionConstant     = "website"
	docsExclusionConstant        = "docs"
	testsExclusionConstant       = "tests"
	reposExclusionConstant       = "repos"
	nodeModulesExclusionConstant = "node_modules"
	distExclusionConstant        = "dist"
	buildExclusionConstant       = "build"
)

// ServiceDiscoveryError reports a repository root that could not be listed.
type ServiceDiscoveryError struct {
	RepositoryPath string
	Cause          error
}

func (discoveryError ServiceDiscoveryError) Error() string {
	return fmt.Sprintf(serviceDiscoveryMessageTemplateConstant, discoveryError.RepositoryPath, discoveryError.Cause)
}

func (discoveryError ServiceDiscoveryError) Unwrap() error {
	return discoveryError.Cause
}

// DefaultServiceExclusions lists directory names that never count as services.
func DefaultServiceExclusions() []string {
	return []string{
		websiteExclusionConstant,
		docsExclusionConstant,
		testsExclusionConstant,
		reposExclusionConstant,
		nodeModulesExclusionConstant,
		distExclusionConstant,
		buildExclusionConstant,
	}
}

// DiscoverServices returns the immediate subdirectories of the repository root
// that look like services, sorted by name. Dot-directories and excluded names
// are skipped.
func DiscoverServices(repositoryRoot string, excludedNames []string) ([]string, error) {
	directoryEntries, readError := os.ReadDir(repositoryRoot)
	if readError != nil {
		return nil, ServiceDiscoveryError{RepositoryPath: repositoryRoot, Cause: readError}
	}

	exclusionSet := make(map[string]struct{}, len(excludedNames))
	for _, excludedName := range excludedNames {
		exclusionSet[excludedName] = struct{}{}
	}

	serviceNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		entryName := directoryEntry.Name()
		if strings.HasPrefix(entryName, hiddenEntryPrefixConstant) {
			continue
		}
		if _, excluded := exclusionSet[entryName]; excluded {
			continue
		}
		serviceNames = append(serviceNames, entryName)
	}
	return serviceNames, nil
}

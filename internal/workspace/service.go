package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/roles"
	"github.com/novaeco-tech/novaeco-devtools/internal/githubcli"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/shared"
)

const (
	unassignedGroupNameConstant = "unassigned"

	cloneFailuresMessageConstant = "one or more repositories could not be cloned"

	planCloneLineTemplateConstant         = "PLAN-CLONE: %s <- %s\n"
	planWriteLineTemplateConstant         = "PLAN-WRITE: %s\n"
	cloneSkipExistsLineTemplateConstant   = "CLONE-SKIP (exists): %s\n"
	cloneSkipDeclinedLineTemplateConstant = "CLONE-SKIP (declined): %s\n"
	clonedLineTemplateConstant            = "CLONED: %s\n"
	cloneErrorLineTemplateConstant        = "ERROR: clone failed for %s: %s\n"
	unassignedLineTemplateConstant        = "WORKSPACE-UNASSIGNED: %s (topics: %s)\n"
	wroteLineTemplateConstant             = "WROTE: %s\n"
	clonePromptTemplateConstant           = "Clone '%s' into '%s'? [a/N/y] "

	noTopicsLabelConstant       = "none"
	topicListSeparatorConstant  = ", "
	folderNameSeparatorConstant = "/"

	workspaceJSONIndentConstant = "  "

	directoryPermissionConstant = fs.FileMode(0o755)
	filePermissionConstant      = fs.FileMode(0o644)

	repositoriesListedDebugMessage  = "organization repositories listed"
	logFieldOrganizationConstant    = "organization"
	logFieldRepositoryCountConstant = "count"
)

// Lockfile names hidden from the editor workspace view.
var workspaceExcludedFileNames = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"poetry.lock",
	"Cargo.lock",
}

// ErrCloneFailures reports that at least one repository clone failed.
var ErrCloneFailures = errors.New(cloneFailuresMessageConstant)

// OrganizationRepositoryLister enumerates an organization's repositories.
type OrganizationRepositoryLister interface {
	ListOrganizationRepositories(executionContext context.Context, owner string, resultLimit int) ([]githubcli.OrganizationRepository, error)
}

// RepositoryCloner clones repositories from their remotes.
type RepositoryCloner interface {
	CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error
}

// FileSystem is the filesystem surface workspace bootstrap writes through.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// InitOptions parameterizes one bootstrap run.
type InitOptions struct {
	WorkingDirectory string
	DryRun           bool
	AssumeYes        bool
	Configuration    CommandConfiguration
}

// Service bootstraps the local workspace from the organization listing.
type Service struct {
	logger     *zap.Logger
	lister     OrganizationRepositoryLister
	cloner     RepositoryCloner
	fileSystem FileSystem
	prompter   shared.ConfirmationPrompter
	classifier *roles.Classifier
	output     io.Writer
	errors     io.Writer
}

// NewService constructs a workspace bootstrap service. A nil classifier selects
// the default precedence and aliases; a nil prompter disables confirmation.
func NewService(logger *zap.Logger, lister OrganizationRepositoryLister, cloner RepositoryCloner, fileSystem FileSystem, prompter shared.ConfirmationPrompter, classifier *roles.Classifier, output io.Writer, errorOutput io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = roles.NewClassifier(nil, nil)
	}
	return &Service{
		logger:     logger,
		lister:     lister,
		cloner:     cloner,
		fileSystem: fileSystem,
		prompter:   prompter,
		classifier: classifier,
		output:     output,
		errors:     errorOutput,
	}
}

// classifiedRepository pairs a listed repository with its resolved role group.
type classifiedRepository struct {
	repository githubcli.OrganizationRepository
	group      string
	role       roles.Role
	roleKnown  bool
}

// Init lists, classifies, clones, and writes the workspace artifacts.
//
// Clone failures are reported per repository without stopping the run; the
// returned error carries ErrCloneFailures when any occurred.
func (service *Service) Init(executionContext context.Context, options InitOptions) error {
	configuration := options.Configuration.sanitize()

	listedRepositories, listError := service.lister.ListOrganizationRepositories(executionContext, configuration.Organization, configuration.ListLimit)
	if listError != nil {
		return listError
	}
	service.logger.Debug(
		repositoriesListedDebugMessage,
		zap.String(logFieldOrganizationConstant, configuration.Organization),
		zap.Int(logFieldRepositoryCountConstant, len(listedRepositories)),
	)

	classifiedRepositories := service.classifyRepositories(listedRepositories)

	cloneFailureCount := service.cloneRepositories(executionContext, configuration, classifiedRepositories, options)

	if writeError := service.writeWorkspaceFile(configuration, classifiedRepositories, options); writeError != nil {
		return writeError
	}
	if writeError := service.writeWorkspaceManifest(configuration, classifiedRepositories, options); writeError != nil {
		return writeError
	}

	if cloneFailureCount > 0 {
		return ErrCloneFailures
	}
	return nil
}

func (service *Service) classifyRepositories(listedRepositories []githubcli.OrganizationRepository) []classifiedRepository {
	classifiedRepositories := make([]classifiedRepository, 0, len(listedRepositories))
	for _, listedRepository := range listedRepositories {
		classified := classifiedRepository{repository: listedRepository, group: unassignedGroupNameConstant}
		resolvedRole, classificationError := service.classifier.Classify(listedRepository.Name, listedRepository.Topics)
		if classificationError == nil {
			classified.role = resolvedRole
			classified.roleKnown = true
			classified.group = string(resolvedRole)
		} else {
			topicList := noTopicsLabelConstant
			if len(listedRepository.Topics) > 0 {
				topicList = strings.Join(listedRepository.Topics, topicListSeparatorConstant)
			}
			service.printfOutput(unassignedLineTemplateConstant, listedRepository.Name, topicList)
		}
		classifiedRepositories = append(classifiedRepositories, classified)
	}

	sort.Slice(classifiedRepositories, func(firstIndex int, secondIndex int) bool {
		return classifiedRepositories[firstIndex].repository.Name < classifiedRepositories[secondIndex].repository.Name
	})
	return classifiedRepositories
}

func (service *Service) cloneRepositories(executionContext context.Context, configuration CommandConfiguration, classifiedRepositories []classifiedRepository, options InitOptions) int {
	repositoriesRoot := filepath.Join(options.WorkingDirectory, configuration.RepositoriesRoot)
	confirmationPolicy := shared.ConfirmationPolicyFromBool(options.AssumeYes)
	cloneFailureCount := 0

	for _, classified := range classifiedRepositories {
		repositoryName := classified.repository.Name
		destinationPath := filepath.Join(repositoriesRoot, repositoryName)

		if _, statError := service.fileSystem.Stat(destinationPath); statError == nil {
			service.printfOutput(cloneSkipExistsLineTemplateConstant, repositoryName)
			continue
		}

		if options.DryRun {
			service.printfOutput(planCloneLineTemplateConstant, repositoryName, classified.repository.SSHURL)
			continue
		}

		if confirmationPolicy.ShouldPrompt() && service.prompter != nil {
			prompt := fmt.Sprintf(clonePromptTemplateConstant, repositoryName, destinationPath)
			confirmationResult, promptError := service.prompter.Confirm(prompt)
			if promptError != nil {
				service.printfError(cloneErrorLineTemplateConstant, repositoryName, promptError)
				cloneFailureCount++
				continue
			}
			if confirmationResult.ApplyToAll {
				confirmationPolicy = shared.ConfirmationAssumeYes
			}
			if !confirmationResult.Confirmed {
				service.printfOutput(cloneSkipDeclinedLineTemplateConstant, repositoryName)
				continue
			}
		}

		if mkdirError := service.fileSystem.MkdirAll(repositoriesRoot, directoryPermissionConstant); mkdirError != nil {
			service.printfError(cloneErrorLineTemplateConstant, repositoryName, mkdirError)
			cloneFailureCount++
			continue
		}

		if cloneError := service.cloner.CloneRepository(executionContext, classified.repository.SSHURL, destinationPath); cloneError != nil {
			service.printfError(cloneErrorLineTemplateConstant, repositoryName, cloneError)
			cloneFailureCount++
			continue
		}
		service.printfOutput(clonedLineTemplateConstant, repositoryName)
	}

	return cloneFailureCount
}

// workspaceFolder is one folder entry of the editor workspace document.
type workspaceFolder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type workspaceSettings struct {
	FilesExclude map[string]bool `json:"files.exclude"`
}

type workspaceDocument struct {
	Folders  []workspaceFolder `json:"folders"`
	Settings workspaceSettings `json:"settings"`
}

func (service *Service) writeWorkspaceFile(configuration CommandConfiguration, classifiedRepositories []classifiedRepository, options InitOptions) error {
	workspaceFilePath := filepath.Join(options.WorkingDirectory, configuration.WorkspaceFile)
	if options.DryRun {
		service.printfOutput(planWriteLineTemplateConstant, configuration.WorkspaceFile)
		return nil
	}

	document := workspaceDocument{
		Folders:  service.buildWorkspaceFolders(configuration, classifiedRepositories),
		Settings: workspaceSettings{FilesExclude: buildFileExclusions()},
	}

	encodedDocument, marshalError := json.MarshalIndent(document, "", workspaceJSONIndentConstant)
	if marshalError != nil {
		return marshalError
	}
	encodedDocument = append(encodedDocument, '\n')

	if writeError := service.fileSystem.WriteFile(workspaceFilePath, encodedDocument, filePermissionConstant); writeError != nil {
		return writeError
	}
	service.printfOutput(wroteLineTemplateConstant, configuration.WorkspaceFile)
	return nil
}

// buildWorkspaceFolders groups folders by role in precedence order, the
// unassigned group last, repositories sorted by name inside each group.
func (service *Service) buildWorkspaceFolders(configuration CommandConfiguration, classifiedRepositories []classifiedRepository) []workspaceFolder {
	groupOrder := make([]string, 0, len(roles.DefaultPrecedence())+1)
	for _, role := range roles.DefaultPrecedence() {
		groupOrder = append(groupOrder, string(role))
	}
	groupOrder = append(groupOrder, unassignedGroupNameConstant)

	folders := make([]workspaceFolder, 0, len(classifiedRepositories))
	for _, groupName := range groupOrder {
		for _, classified := range classifiedRepositories {
			if classified.group != groupName {
				continue
			}
			folders = append(folders, workspaceFolder{
				Name: groupName + folderNameSeparatorConstant + classified.repository.Name,
				Path: path.Join(configuration.RepositoriesRoot, classified.repository.Name),
			})
		}
	}
	return folders
}

func buildFileExclusions() map[string]bool {
	exclusions := make(map[string]bool, len(workspaceExcludedFileNames))
	for _, excludedFileName := range workspaceExcludedFileNames {
		exclusions["**/"+excludedFileName] = true
	}
	return exclusions
}

func (service *Service) writeWorkspaceManifest(configuration CommandConfiguration, classifiedRepositories []classifiedRepository, options InitOptions) error {
	manifestPath := filepath.Join(options.WorkingDirectory, roles.WorkspaceManifestFileNameConstant)
	if options.DryRun {
		service.printfOutput(planWriteLineTemplateConstant, roles.WorkspaceManifestFileNameConstant)
		return nil
	}

	manifest := roles.WorkspaceManifest{
		Organization: configuration.Organization,
		Repositories: make(map[string]roles.WorkspaceManifestEntry, len(classifiedRepositories)),
	}
	for _, classified := range classifiedRepositories {
		entry := roles.WorkspaceManifestEntry{
			Topics: classified.repository.Topics,
			SSHURL: classified.repository.SSHURL,
		}
		if classified.roleKnown {
			entry.Role = string(classified.role)
		}
		manifest.Repositories[classified.repository.Name] = entry
	}

	encodedManifest, marshalError := yaml.Marshal(manifest)
	if marshalError != nil {
		return marshalError
	}

	if writeError := service.fileSystem.WriteFile(manifestPath, encodedManifest, filePermissionConstant); writeError != nil {
		return writeError
	}
	service.printfOutput(wroteLineTemplateConstant, roles.WorkspaceManifestFileNameConstant)
	return nil
}

func (service *Service) printfOutput(format string, arguments ...any) {
	if service.output == nil {
		return
	}
	fmt.Fprintf(service.output, format, arguments...)
}

func (service *Service) printfError(format string, arguments ...any) {
	if service.errors == nil {
		return
	}
	fmt.Fprintf(service.errors, format, arguments...)
}

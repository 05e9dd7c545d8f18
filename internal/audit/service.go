package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/report"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/requirements"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/roles"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/scope"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/structure"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/templates"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/traceability"
	"github.com/novaeco-tech/novaeco-devtools/internal/audit/verification"
	"github.com/novaeco-tech/novaeco-devtools/internal/gitrepo"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/shared"
	"github.com/novaeco-tech/novaeco-devtools/internal/utils"
)

const (
	scopeErrorLineTemplateConstant      = "ERROR: %s\n"
	repositoryWarnLineTemplateConstant  = "WARNING: %s: %s\n"
	ownerRepositorySeparatorConstant    = "/"
	repositoryTopicsDebugMessage        = "repository topics resolved"
	repositoryAuditFailedWarnMessage    = "repository audit failed"
	repositoryScanFailedWarnMessage     = "repository scan failed"
	manifestUnreadableWarnMessage       = "repository manifest unreadable"
	workspaceManifestUnreadableMessage  = "workspace manifest unreadable"
	topicMetadataUnavailableWarnMessage = "repository topic metadata unavailable"
	invalidPrecedenceRoleWarnMessage    = "ignoring invalid role in configured precedence"
	invalidAliasRoleWarnMessage         = "ignoring invalid role alias target"
	logFieldRepositoryConstant          = "repository"
	logFieldRoleConstant                = "role"
	logFieldTopicsConstant              = "topics"
	logFieldValueConstant               = "value"
)

// Service runs structural and traceability audits over a resolved scope.
//
// Repository topic lookups are cached for the lifetime of the service, which
// callers scope to a single command invocation.
type Service struct {
	logger                *zap.Logger
	remoteReader          RemoteURLReader
	githubResolver        GitHubMetadataResolver
	outputWriter          io.Writer
	errorWriter           io.Writer
	clock                 shared.Clock
	runIdentifierProvider RunIdentifierProvider

	topicCacheMutex sync.Mutex
	topicCache      map[string][]string
}

// NewService constructs an audit service. The remote reader and GitHub
// resolver may be nil, in which case classification relies on manifests alone.
func NewService(logger *zap.Logger, remoteReader RemoteURLReader, githubResolver GitHubMetadataResolver, outputWriter io.Writer, errorWriter io.Writer, clock shared.Clock, runIdentifierProvider RunIdentifierProvider) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if runIdentifierProvider == nil {
		runIdentifierProvider = uuid.NewString
	}
	return &Service{
		logger:                logger,
		remoteReader:          remoteReader,
		githubResolver:        githubResolver,
		outputWriter:          outputWriter,
		errorWriter:           errorWriter,
		clock:                 clock,
		runIdentifierProvider: runIdentifierProvider,
		topicCache:            make(map[string][]string),
	}
}

// RunStructure audits every repository in scope against the golden template
// for its role and renders the aggregate report. It returns
// ErrStructuralNonCompliance when any repository misses a required pattern and
// ErrScopeResolutionFailed when any requested name did not resolve.
func (service *Service) RunStructure(executionContext context.Context, options StructureOptions) error {
	configuration := options.Configuration.sanitize()

	resolvedScope, inputErrorCount, scopeError := service.resolveScope(configuration, options.WorkingDirectory, options.RepositoryNames)
	if scopeError != nil {
		return scopeError
	}

	registry, registryError := service.buildRegistry(configuration.Structure)
	if registryError != nil {
		return registryError
	}
	auditor := structure.NewAuditor(registry, configuration.Structure.ServiceExclusions, configuration.Structure.UnexpectedEntries)
	classifier := service.buildClassifier(configuration)

	repositories := resolvedScope.Repositories
	structureResults := make([]*structure.RepositoryStructureResult, len(repositories))

	auditGroup, groupContext := errgroup.WithContext(executionContext)
	auditGroup.SetLimit(configuration.WorkerCount)
	for repositoryIndex, repositoryReference := range repositories {
		repositoryIndex, repositoryReference := repositoryIndex, repositoryReference
		auditGroup.Go(func() error {
			repositoryTopics := service.resolveRepositoryTopics(groupContext, options.WorkingDirectory, repositoryReference)
			repositoryRole, classificationError := classifier.Classify(repositoryReference.Name, repositoryTopics)
			service.logger.Debug(
				repositoryTopicsDebugMessage,
				zap.String(logFieldRepositoryConstant, repositoryReference.Name),
				zap.String(logFieldRoleConstant, string(repositoryRole)),
				zap.Strings(logFieldTopicsConstant, repositoryTopics),
			)

			auditResult, auditError := auditor.AuditRepository(repositoryReference.Path, repositoryReference.Name, repositoryRole, classificationError == nil)
			if auditError != nil {
				service.reportRepositoryWarning(repositoryReference.Name, auditError, repositoryAuditFailedWarnMessage)
				return nil
			}
			structureResults[repositoryIndex] = &auditResult
			return nil
		})
	}
	if waitError := auditGroup.Wait(); waitError != nil {
		return waitError
	}

	auditReport := report.Report{
		RunID:       service.runIdentifierProvider(),
		GeneratedAt: service.clock.Now().UTC(),
		Structure:   flattenStructureResults(structureResults),
	}
	if renderError := report.Render(utils.NewFlushingWriter(service.outputWriter), auditReport, options.Format); renderError != nil {
		return renderError
	}

	var complianceError error
	if countNonCompliant(auditReport.Structure) > 0 {
		complianceError = ErrStructuralNonCompliance
	}
	return errors.Join(complianceError, inputError(inputErrorCount))
}

// RunTraceability builds the requirement coverage matrix for every repository
// in scope and renders the aggregate report. It returns
// ErrUncoveredRequirements when coverage gaps exist and warn-only is disabled.
func (service *Service) RunTraceability(executionContext context.Context, options TraceabilityOptions) error {
	configuration := options.Configuration.sanitize()

	resolvedScope, inputErrorCount, scopeError := service.resolveScope(configuration, options.WorkingDirectory, options.RepositoryNames)
	if scopeError != nil {
		return scopeError
	}

	requirementExtractor := requirements.NewExtractor(configuration.Traceability.RequirementGlobs)
	verificationExtractor := verification.NewExtractor(configuration.Traceability.VerificationGlobs)

	repositories := resolvedScope.Repositories
	traceabilityResults := make([]*report.RepositoryTraceability, len(repositories))

	auditGroup, _ := errgroup.WithContext(executionContext)
	auditGroup.SetLimit(configuration.WorkerCount)
	for repositoryIndex, repositoryReference := range repositories {
		repositoryIndex, repositoryReference := repositoryIndex, repositoryReference
		auditGroup.Go(func() error {
			var requirementExtraction requirements.Extraction
			var verificationExtraction verification.Extraction

			var extractionGroup errgroup.Group
			extractionGroup.Go(func() error {
				extraction, extractionError := requirementExtractor.Extract(repositoryReference.Path)
				requirementExtraction = extraction
				return extractionError
			})
			extractionGroup.Go(func() error {
				extraction, extractionError := verificationExtractor.Extract(repositoryReference.Path)
				verificationExtraction = extraction
				return extractionError
			})
			if extractionError := extractionGroup.Wait(); extractionError != nil {
				service.reportRepositoryWarning(repositoryReference.Name, extractionError, repositoryScanFailedWarnMessage)
				return nil
			}

			coverageMatrix := traceability.BuildMatrix(requirementExtraction.Requirements, verificationExtraction.Links)
			traceabilityResults[repositoryIndex] = &report.RepositoryTraceability{
				Repository: repositoryReference.Name,
				Matrix:     coverageMatrix,
				Warnings:   collectExtractionWarnings(requirementExtraction, verificationExtraction),
			}
			return nil
		})
	}
	if waitError := auditGroup.Wait(); waitError != nil {
		return waitError
	}

	auditReport := report.Report{
		RunID:        service.runIdentifierProvider(),
		GeneratedAt:  service.clock.Now().UTC(),
		Traceability: flattenTraceabilityResults(traceabilityResults),
	}
	if renderError := report.Render(utils.NewFlushingWriter(service.outputWriter), auditReport, options.Format); renderError != nil {
		return renderError
	}

	var coverageError error
	if !options.WarnOnly && countUncovered(auditReport.Traceability) > 0 {
		coverageError = ErrUncoveredRequirements
	}
	return errors.Join(coverageError, inputError(inputErrorCount))
}

// resolveScope maps the invocation context to a repository scope. Lookup
// failures for explicit names are reported and counted without stopping the
// run; an unrecognized location is fatal.
func (service *Service) resolveScope(configuration CommandConfiguration, workingDirectory string, repositoryNames []string) (scope.Scope, int, error) {
	scopeResolver := scope.NewResolver(configuration.RepositoriesRoot)
	resolvedScope, resolutionErrors := scopeResolver.Resolve(workingDirectory, repositoryNames)

	inputErrorCount := 0
	for _, resolutionError := range resolutionErrors {
		resolutionFailure := scope.ScopeResolutionError{}
		if errors.As(resolutionError, &resolutionFailure) {
			return scope.Scope{}, 0, resolutionError
		}
		fmt.Fprintf(service.errorWriter, scopeErrorLineTemplateConstant, resolutionError)
		inputErrorCount++
	}
	return resolvedScope, inputErrorCount, nil
}

func (service *Service) buildRegistry(configuration StructureConfiguration) (templates.Registry, error) {
	registry := templates.DefaultRegistry()
	if len(configuration.TemplateFile) == 0 {
		return registry, nil
	}
	overridingTemplates, loadError := templates.LoadTemplateOverrides(configuration.TemplateFile)
	if loadError != nil {
		return templates.Registry{}, loadError
	}
	return registry.WithOverrides(overridingTemplates), nil
}

func (service *Service) buildClassifier(configuration CommandConfiguration) *roles.Classifier {
	var precedence []roles.Role
	for _, roleName := range configuration.RolePrecedence {
		parsedRole, parseError := roles.ParseRole(roleName)
		if parseError != nil {
			service.logger.Warn(invalidPrecedenceRoleWarnMessage, zap.String(logFieldValueConstant, roleName))
			continue
		}
		precedence = append(precedence, parsedRole)
	}

	var aliases map[string]roles.Role
	if len(configuration.RoleAliases) > 0 {
		aliases = make(map[string]roles.Role, len(configuration.RoleAliases))
		for aliasTopic, roleName := range configuration.RoleAliases {
			parsedRole, parseError := roles.ParseRole(roleName)
			if parseError != nil {
				service.logger.Warn(invalidAliasRoleWarnMessage, zap.String(logFieldValueConstant, roleName))
				continue
			}
			aliases[aliasTopic] = parsedRole
		}
	}

	return roles.NewClassifier(precedence, aliases)
}

// resolveRepositoryTopics consults the repository manifest, then the workspace
// manifest, then GitHub metadata. Results are cached for the run.
func (service *Service) resolveRepositoryTopics(executionContext context.Context, workingDirectory string, repositoryReference scope.RepositoryRef) []string {
	service.topicCacheMutex.Lock()
	cachedTopics, cacheHit := service.topicCache[repositoryReference.Path]
	service.topicCacheMutex.Unlock()
	if cacheHit {
		return cachedTopics
	}

	resolvedTopics := service.lookupRepositoryTopics(executionContext, workingDirectory, repositoryReference)

	service.topicCacheMutex.Lock()
	service.topicCache[repositoryReference.Path] = resolvedTopics
	service.topicCacheMutex.Unlock()
	return resolvedTopics
}

func (service *Service) lookupRepositoryTopics(executionContext context.Context, workingDirectory string, repositoryReference scope.RepositoryRef) []string {
	repositoryManifest, manifestPresent, manifestError := roles.LoadRepositoryManifest(repositoryReference.Path)
	if manifestError != nil {
		service.reportRepositoryWarning(repositoryReference.Name, manifestError, manifestUnreadableWarnMessage)
	}
	if manifestPresent && len(repositoryManifest.TopicTokens()) > 0 {
		return repositoryManifest.TopicTokens()
	}

	workspaceManifestPath := filepath.Join(workingDirectory, roles.WorkspaceManifestFileNameConstant)
	workspaceManifest, workspacePresent, workspaceError := roles.LoadWorkspaceManifest(workspaceManifestPath)
	if workspaceError != nil {
		service.reportRepositoryWarning(repositoryReference.Name, workspaceError, workspaceManifestUnreadableMessage)
	}
	if workspacePresent {
		if manifestEntry, entryFound := workspaceManifest.Repositories[repositoryReference.Name]; entryFound && len(manifestEntry.TopicTokens()) > 0 {
			return manifestEntry.TopicTokens()
		}
	}

	return service.lookupRemoteTopics(executionContext, repositoryReference)
}

func (service *Service) lookupRemoteTopics(executionContext context.Context, repositoryReference scope.RepositoryRef) []string {
	if service.remoteReader == nil || service.githubResolver == nil {
		return nil
	}

	remoteURL, remoteError := service.remoteReader.GetRemoteURL(executionContext, repositoryReference.Path, shared.OriginRemoteNameConstant)
	if remoteError != nil {
		return nil
	}
	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		service.reportRepositoryWarning(repositoryReference.Name, parseError, topicMetadataUnavailableWarnMessage)
		return nil
	}

	repositoryIdentifier := parsedRemote.Owner + ownerRepositorySeparatorConstant + parsedRemote.Repository
	repositoryMetadata, metadataError := service.githubResolver.ResolveRepoMetadata(executionContext, repositoryIdentifier)
	if metadataError != nil {
		service.reportRepositoryWarning(repositoryReference.Name, metadataError, topicMetadataUnavailableWarnMessage)
		return nil
	}
	return repositoryMetadata.Topics
}

func (service *Service) reportRepositoryWarning(repositoryName string, cause error, message string) {
	service.logger.Warn(message, zap.String(logFieldRepositoryConstant, repositoryName), zap.Error(cause))
	fmt.Fprintf(service.errorWriter, repositoryWarnLineTemplateConstant, repositoryName, cause)
}

func flattenStructureResults(structureResults []*structure.RepositoryStructureResult) []structure.RepositoryStructureResult {
	flattened := make([]structure.RepositoryStructureResult, 0, len(structureResults))
	for _, structureResult := range structureResults {
		if structureResult == nil {
			continue
		}
		flattened = append(flattened, *structureResult)
	}
	return flattened
}

func flattenTraceabilityResults(traceabilityResults []*report.RepositoryTraceability) []report.RepositoryTraceability {
	flattened := make([]report.RepositoryTraceability, 0, len(traceabilityResults))
	for _, traceabilityResult := range traceabilityResults {
		if traceabilityResult == nil {
			continue
		}
		flattened = append(flattened, *traceabilityResult)
	}
	return flattened
}

func collectExtractionWarnings(requirementExtraction requirements.Extraction, verificationExtraction verification.Extraction) []string {
	var warnings []string
	for _, duplicateFinding := range requirementExtraction.Duplicates {
		warnings = append(warnings, duplicateFinding.Error())
	}
	for _, malformedFinding := range verificationExtraction.Malformed {
		warnings = append(warnings, malformedFinding.Error())
	}
	for _, skippedFile := range requirementExtraction.Skipped {
		warnings = append(warnings, skippedFile.Path+": "+skippedFile.Reason)
	}
	for _, skippedFile := range verificationExtraction.Skipped {
		warnings = append(warnings, skippedFile.Path+": "+skippedFile.Reason)
	}
	return warnings
}

func countNonCompliant(structureResults []structure.RepositoryStructureResult) int {
	nonCompliantCount := 0
	for _, structureResult := range structureResults {
		if !structureResult.Compliant {
			nonCompliantCount++
		}
	}
	return nonCompliantCount
}

func countUncovered(traceabilityResults []report.RepositoryTraceability) int {
	uncoveredCount := 0
	for _, traceabilityResult := range traceabilityResults {
		uncoveredCount += traceabilityResult.Matrix.UncoveredCount()
	}
	return uncoveredCount
}

func inputError(inputErrorCount int) error {
	if inputErrorCount == 0 {
		return nil
	}
	return ErrScopeResolutionFailed
}

package audit

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/report"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/dependencies"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/shared"
	"github.com/novaeco-tech/novaeco-devtools/internal/utils/flags"
)

const (
	auditCommandUseConstant   = "audit"
	auditCommandShortConstant = "Audit workspace repositories against golden templates and requirement coverage"
	auditCommandLongConstant  = "audit inspects the repositories in scope: structure checks each tree against the golden template for its role, traceability joins declared requirements with the tests that verify them."

	structureCommandUseConstant   = "structure [repository...]"
	structureCommandShortConstant = "Check repository layouts against their golden templates"
	structureCommandLongConstant  = "structure resolves the audit scope, classifies each repository by its role topics, and reports present, missing, and unexpected entries. Missing required entries make the repository non-compliant."

	traceabilityCommandUseConstant   = "traceability [repository...]"
	traceabilityCommandShortConstant = "Build the requirement-to-test coverage matrix"
	traceabilityCommandLongConstant  = "traceability extracts requirement identifiers from documentation and verification tags from test suites, then reports coverage per requirement. Uncovered requirements fail the run unless warn-only is set."

	formatFlagNameConstant        = "format"
	formatFlagDescriptionConstant = "report output format"
	warnOnlyFlagNameConstant      = "warn-only"
	warnOnlyFlagUsageConstant     = "Report uncovered requirements without failing the run."
	workersFlagNameConstant       = "workers"
	workersFlagUsageConstant      = "Number of repositories audited concurrently."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the audit command family with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	WorkingDirectory             string
	GitExecutor                  shared.GitExecutor
	GitManager                   shared.GitRepositoryManager
	GitHubResolver               shared.GitHubMetadataResolver
	Clock                        shared.Clock
	RunIdentifierProvider        RunIdentifierProvider
}

// Build constructs the audit parent command with its structure and
// traceability subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	auditCommand := &cobra.Command{
		Use:   auditCommandUseConstant,
		Short: auditCommandShortConstant,
		Long:  auditCommandLongConstant,
	}
	auditCommand.PersistentFlags().Int(workersFlagNameConstant, DefaultCommandConfiguration().WorkerCount, workersFlagUsageConstant)

	structureCommand := &cobra.Command{
		Use:   structureCommandUseConstant,
		Short: structureCommandShortConstant,
		Long:  structureCommandLongConstant,
		RunE:  builder.runStructure,
	}
	builder.registerFormatFlag(structureCommand)

	traceabilityCommand := &cobra.Command{
		Use:   traceabilityCommandUseConstant,
		Short: traceabilityCommandShortConstant,
		Long:  traceabilityCommandLongConstant,
		RunE:  builder.runTraceability,
	}
	builder.registerFormatFlag(traceabilityCommand)
	traceabilityCommand.Flags().Bool(warnOnlyFlagNameConstant, DefaultCommandConfiguration().Traceability.WarnOnly, warnOnlyFlagUsageConstant)

	auditCommand.AddCommand(structureCommand, traceabilityCommand)
	return auditCommand, nil
}

func (builder *CommandBuilder) registerFormatFlag(command *cobra.Command) {
	command.Flags().String(
		formatFlagNameConstant,
		defaultFormatNameConstant,
		flags.FormatChoiceUsage(defaultFormatNameConstant, report.SupportedFormatNames(), formatFlagDescriptionConstant),
	)
}

func (builder *CommandBuilder) runStructure(command *cobra.Command, arguments []string) error {
	configuration, reportFormat, workingDirectory, optionsError := builder.resolveRunInputs(command)
	if optionsError != nil {
		return optionsError
	}

	service, serviceError := builder.resolveService(command)
	if serviceError != nil {
		return serviceError
	}

	return service.RunStructure(command.Context(), StructureOptions{
		WorkingDirectory: workingDirectory,
		RepositoryNames:  arguments,
		Format:           reportFormat,
		Configuration:    configuration,
	})
}

func (builder *CommandBuilder) runTraceability(command *cobra.Command, arguments []string) error {
	configuration, reportFormat, workingDirectory, optionsError := builder.resolveRunInputs(command)
	if optionsError != nil {
		return optionsError
	}

	warnOnly := configuration.Traceability.WarnOnly
	if command.Flags().Changed(warnOnlyFlagNameConstant) {
		warnOnly, _ = command.Flags().GetBool(warnOnlyFlagNameConstant)
	}

	service, serviceError := builder.resolveService(command)
	if serviceError != nil {
		return serviceError
	}

	return service.RunTraceability(command.Context(), TraceabilityOptions{
		WorkingDirectory: workingDirectory,
		RepositoryNames:  arguments,
		Format:           reportFormat,
		WarnOnly:         warnOnly,
		Configuration:    configuration,
	})
}

func (builder *CommandBuilder) resolveRunInputs(command *cobra.Command) (CommandConfiguration, report.Format, string, error) {
	configuration := builder.resolveConfiguration()

	formatValue := configuration.Format
	if command.Flags().Changed(formatFlagNameConstant) {
		formatValue, _ = command.Flags().GetString(formatFlagNameConstant)
	}
	reportFormat, formatError := report.ParseFormat(formatValue)
	if formatError != nil {
		return CommandConfiguration{}, "", "", formatError
	}

	if command.Flags().Changed(workersFlagNameConstant) {
		workerCount, _ := command.Flags().GetInt(workersFlagNameConstant)
		configuration.WorkerCount = workerCount
	}

	workingDirectory := builder.WorkingDirectory
	if len(workingDirectory) == 0 {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return CommandConfiguration{}, "", "", workingDirectoryError
		}
		workingDirectory = currentDirectory
	}

	return configuration, reportFormat, workingDirectory, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, error) {
	logger := builder.resolveLogger()

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLoggingEnabled())
	if executorError != nil {
		return nil, executorError
	}

	gitManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitManager, gitExecutor)
	if managerError != nil {
		return nil, managerError
	}

	githubResolver, resolverError := dependencies.ResolveGitHubResolver(builder.GitHubResolver, gitExecutor)
	if resolverError != nil {
		return nil, resolverError
	}

	return NewService(
		logger,
		gitManager,
		githubResolver,
		command.OutOrStdout(),
		command.ErrOrStderr(),
		dependencies.ResolveClock(builder.Clock),
		builder.RunIdentifierProvider,
	), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

package workspace

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novaeco-tech/novaeco-devtools/internal/githubauth"
	"github.com/novaeco-tech/novaeco-devtools/internal/githubcli"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/dependencies"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/filesystem"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/prompt"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/shared"
)

const (
	workspaceCommandUseConstant   = "workspace"
	workspaceCommandShortConstant = "Manage the local multi-repository workspace"
	workspaceCommandLongConstant  = "workspace groups commands that maintain the local checkout of the organization's repositories."

	initCommandUseConstant   = "init"
	initCommandShortConstant = "Clone organization repositories and write the workspace files"
	initCommandLongConstant  = "init lists the organization's repositories, classifies them by role topics, clones the missing ones under the repositories root, and writes the editor workspace file together with the workspace manifest."

	dryRunFlagNameConstant        = "dry-run"
	dryRunFlagUsageConstant       = "Preview clones and writes without executing them."
	yesFlagNameConstant           = "yes"
	yesFlagUsageConstant          = "Clone without per-repository confirmation."
	organizationFlagNameConstant  = "organization"
	organizationFlagUsageConstant = "GitHub organization to bootstrap from."

	missingTokenLogMessageConstant = "no GitHub token found in environment; relying on the gh CLI session"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the workspace command family with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	WorkingDirectory             string
	GitExecutor                  shared.GitExecutor
	GitManager                   shared.GitRepositoryManager
	Lister                       OrganizationRepositoryLister
	FileSystem                   FileSystem
	Prompter                     shared.ConfirmationPrompter
}

// Build constructs the workspace parent command with its init subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	workspaceCommand := &cobra.Command{
		Use:   workspaceCommandUseConstant,
		Short: workspaceCommandShortConstant,
		Long:  workspaceCommandLongConstant,
	}

	initCommand := &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortConstant,
		Long:  initCommandLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runInit,
	}
	initCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	initCommand.Flags().Bool(yesFlagNameConstant, false, yesFlagUsageConstant)
	initCommand.Flags().String(organizationFlagNameConstant, "", organizationFlagUsageConstant)

	workspaceCommand.AddCommand(initCommand)
	return workspaceCommand, nil
}

func (builder *CommandBuilder) runInit(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(organizationFlagNameConstant) {
		organization, _ := command.Flags().GetString(organizationFlagNameConstant)
		configuration.Organization = organization
	}

	dryRun, _ := command.Flags().GetBool(dryRunFlagNameConstant)
	assumeYes, _ := command.Flags().GetBool(yesFlagNameConstant)

	workingDirectory := builder.WorkingDirectory
	if len(workingDirectory) == 0 {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return workingDirectoryError
		}
		workingDirectory = currentDirectory
	}

	service, serviceError := builder.resolveService(command)
	if serviceError != nil {
		return serviceError
	}

	return service.Init(command.Context(), InitOptions{
		WorkingDirectory: workingDirectory,
		DryRun:           dryRun,
		AssumeYes:        assumeYes,
		Configuration:    configuration,
	})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) (*Service, error) {
	logger := builder.resolveLogger()

	if _, tokenAvailable := githubauth.ResolveToken(nil); !tokenAvailable {
		logger.Debug(missingTokenLogMessageConstant)
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLoggingEnabled())
	if executorError != nil {
		return nil, executorError
	}

	gitManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitManager, gitExecutor)
	if managerError != nil {
		return nil, managerError
	}

	lister := builder.Lister
	if lister == nil {
		client, clientError := githubcli.NewClient(gitExecutor)
		if clientError != nil {
			return nil, clientError
		}
		lister = client
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	return NewService(
		logger,
		lister,
		gitManager,
		fileSystem,
		prompter,
		nil,
		command.OutOrStdout(),
		command.ErrOrStderr(),
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

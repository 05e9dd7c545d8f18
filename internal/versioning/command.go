package versioning

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novaeco-tech/novaeco-devtools/internal/repos/filesystem"
)

const (
	versionCommandUseConstant   = "version"
	versionCommandShortConstant = "Maintain service version files and the global version"
	versionCommandLongConstant  = "version updates the per-service VERSION and package.json files and the root GLOBAL_VERSION marker."

	patchCommandUseConstant   = "patch <service>"
	patchCommandShortConstant = "Increment the patch component of one service"
	patchCommandLongConstant  = "patch bumps Z in the named service's X.Y.Z version file, leaving every other service and the global version untouched."

	releaseCommandUseConstant   = "release <minor|major>"
	releaseCommandShortConstant = "Bump the global version and realign every service"
	releaseCommandLongConstant  = "release advances GLOBAL_VERSION (minor: Y+1; major: X+1 with Y reset) and rewrites every configured service version to X.Y.0."

	versionDryRunFlagNameConstant  = "dry-run"
	versionDryRunFlagUsageConstant = "Print the version plan without writing files."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the version command family with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	WorkingDirectory      string
	FileSystem            FileSystem
}

// Build constructs the version parent command with its patch and release subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	versionCommand := &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortConstant,
		Long:  versionCommandLongConstant,
	}
	versionCommand.PersistentFlags().Bool(versionDryRunFlagNameConstant, false, versionDryRunFlagUsageConstant)

	patchCommand := &cobra.Command{
		Use:   patchCommandUseConstant,
		Short: patchCommandShortConstant,
		Long:  patchCommandLongConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runPatch,
	}

	releaseCommand := &cobra.Command{
		Use:   releaseCommandUseConstant,
		Short: releaseCommandShortConstant,
		Long:  releaseCommandLongConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runRelease,
	}

	versionCommand.AddCommand(patchCommand, releaseCommand)
	return versionCommand, nil
}

func (builder *CommandBuilder) runPatch(command *cobra.Command, arguments []string) error {
	workingDirectory, dryRun, resolveError := builder.resolveRunInputs(command)
	if resolveError != nil {
		return resolveError
	}

	return builder.resolveService(command).Patch(PatchOptions{
		WorkingDirectory: workingDirectory,
		ServiceName:      arguments[0],
		DryRun:           dryRun,
		Configuration:    builder.resolveConfiguration(),
	})
}

func (builder *CommandBuilder) runRelease(command *cobra.Command, arguments []string) error {
	releaseLevel, levelError := ParseReleaseLevel(arguments[0])
	if levelError != nil {
		return levelError
	}

	workingDirectory, dryRun, resolveError := builder.resolveRunInputs(command)
	if resolveError != nil {
		return resolveError
	}

	return builder.resolveService(command).Release(ReleaseOptions{
		WorkingDirectory: workingDirectory,
		Level:            releaseLevel,
		DryRun:           dryRun,
		Configuration:    builder.resolveConfiguration(),
	})
}

func (builder *CommandBuilder) resolveRunInputs(command *cobra.Command) (string, bool, error) {
	dryRun, _ := command.Flags().GetBool(versionDryRunFlagNameConstant)

	workingDirectory := builder.WorkingDirectory
	if len(workingDirectory) == 0 {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", false, workingDirectoryError
		}
		workingDirectory = currentDirectory
	}
	return workingDirectory, dryRun, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveService(command *cobra.Command) *Service {
	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}

	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}

	return NewService(logger, fileSystem, command.OutOrStdout())
}

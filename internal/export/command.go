package export

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pathutils "github.com/novaeco-tech/novaeco-devtools/internal/utils/path"
)

const (
	exportCommandUseConstant   = "export [path]"
	exportCommandShortConstant = "Flatten a directory tree into one annotated text file"
	exportCommandLongConstant  = "export walks the tree, skips binaries, lockfiles, and generated directories, and writes every remaining file under a '### FILE:' banner into a single text file."

	outputFlagNameConstant  = "output"
	outputFlagUsageConstant = "Path of the generated export file."

	defaultExportRootConstant = "."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the export command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	WorkingDirectory      string
}

// Build constructs the export command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	exportCommand := &cobra.Command{
		Use:   exportCommandUseConstant,
		Short: exportCommandShortConstant,
		Long:  exportCommandLongConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.runExport,
	}
	exportCommand.Flags().String(outputFlagNameConstant, DefaultOutputFileNameConstant, outputFlagUsageConstant)
	return exportCommand, nil
}

func (builder *CommandBuilder) runExport(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(outputFlagNameConstant) {
		outputValue, _ := command.Flags().GetString(outputFlagNameConstant)
		configuration.Output = outputValue
	}

	homeExpander := pathutils.NewHomeExpander()
	configuration.Output = homeExpander.Expand(configuration.Output)

	exportRoot := defaultExportRootConstant
	if len(arguments) == 1 {
		exportRoot = homeExpander.Expand(arguments[0])
	}
	if len(builder.WorkingDirectory) > 0 && !filepath.IsAbs(exportRoot) {
		exportRoot = filepath.Join(builder.WorkingDirectory, exportRoot)
	}

	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}

	service := NewService(logger, command.OutOrStdout(), command.ErrOrStderr())
	return service.Export(ExportOptions{
		Root:          exportRoot,
		Configuration: configuration,
	})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

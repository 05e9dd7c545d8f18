package execshell

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	commandFailedErrorTemplateConstant    = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant = "%s could not be executed: %s"
)

// CommandName identifies a supported executable.
type CommandName string

// Supported executables.
const (
	// CommandGit invokes the git binary.
	CommandGit CommandName = "git"
	// CommandGitHub invokes the GitHub CLI binary.
	CommandGitHub CommandName = "gh"
)

// Sentinel validation errors for executor construction.
var (
	// ErrLoggerNotConfigured indicates NewShellExecutor received a nil logger.
	ErrLoggerNotConfigured = errors.New("logger not configured")
	// ErrCommandRunnerNotConfigured indicates NewShellExecutor received a nil runner.
	ErrCommandRunnerNotConfigured = errors.New("command runner not configured")
)

// CommandDetails describes the invocation parameters for an external tool.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of running a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the failure including trailing standard error output when present.
func (failedError CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(
		commandFailedErrorTemplateConstant,
		formatter.formatCommandLabel(failedError.Command),
		failedError.Result.ExitCode,
		formatter.formatStandardErrorSuffix(failedError.Result.StandardError),
	)
}

// CommandExecutionError reports a command that never produced an exit code.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error renders the execution failure with its underlying cause.
func (executionError CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(
		commandExecutionErrorTemplateConstant,
		formatter.formatCommandLabel(executionError.Command),
		formatter.describeFailure(executionError.Cause),
	)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs external tools with structured logging and lifecycle events.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
	formatter     CommandMessageFormatter
}

// NewShellExecutor validates collaborators and constructs an executor without console events.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, commandRunner, noopCommandEventObserver{})
}

// NewShellExecutorWithObserver validates collaborators and constructs an executor publishing lifecycle events.
func NewShellExecutorWithObserver(logger *zap.Logger, commandRunner CommandRunner, eventObserver CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if eventObserver == nil {
		eventObserver = noopCommandEventObserver{}
	}

	return &ShellExecutor{
		logger:        logger,
		commandRunner: commandRunner,
		eventObserver: eventObserver,
		formatter:     CommandMessageFormatter{},
	}, nil
}

// Execute runs the supplied command, logging its lifecycle and translating failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)
	if executor.formatter.shouldLogStartMessage(command) {
		executor.logger.Info(executor.formatter.BuildStartedMessage(command))
	}

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.eventObserver.CommandExecutionFailed(command, runError)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError))
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Warn(executor.formatter.BuildFailureMessage(command, executionResult))
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessage(command))
	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs the GitHub CLI with the provided details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGitHub, Details: details})
}

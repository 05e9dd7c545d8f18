package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/novaeco-tech/novaeco-devtools/internal/execshell"
)

const (
	cloneSubcommandConstant                 = "clone"
	remoteSubcommandConstant                = "remote"
	remoteGetURLSubcommandConstant          = "get-url"
	revParseSubcommandConstant              = "rev-parse"
	workTreeFlagConstant                    = "--is-inside-work-tree"
	workTreeAffirmativeOutputConstant       = "true"
	remoteURLInputNameConstant              = "remote url"
	destinationInputNameConstant            = "destination path"
	repositoryPathInputNameConstant         = "repository path"
	remoteNameInputNameConstant             = "remote name"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "git executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	cloneOperationNameConstant              = OperationName("CloneRepository")
	remoteURLOperationNameConstant          = OperationName("GetRemoteURL")
	workTreeOperationNameConstant           = OperationName("CheckIsRepository")
)

// OperationName describes a named git workflow supported by the manager.
type OperationName string

// GitCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

var (
	// ErrExecutorNotConfigured indicates the manager was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for git operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager coordinates git invocations through execshell.
type RepositoryManager struct {
	executor GitCommandExecutor
}

// NewRepositoryManager constructs a git repository manager.
func NewRepositoryManager(executor GitCommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CloneRepository clones the remote repository into the destination path using git clone.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error {
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	if len(trimmedRemoteURL) == 0 {
		return InvalidInputError{FieldName: remoteURLInputNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedDestination := strings.TrimSpace(destinationPath)
	if len(trimmedDestination) == 0 {
		return InvalidInputError{FieldName: destinationInputNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{cloneSubcommandConstant, trimmedRemoteURL, trimmedDestination},
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: cloneOperationNameConstant, Cause: executionError}
	}

	return nil
}

// GetRemoteURL resolves the URL configured for a named remote using git remote get-url.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", InvalidInputError{FieldName: repositoryPathInputNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return "", InvalidInputError{FieldName: remoteNameInputNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{remoteSubcommandConstant, remoteGetURLSubcommandConstant, trimmedRemoteName},
		WorkingDirectory: trimmedRepositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", OperationError{Operation: remoteURLOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CheckIsRepository reports whether the path resides inside a git work tree.
//
// A non-zero git exit code is treated as a negative answer rather than an
// error so callers can probe candidate directories without special casing.
func (manager *RepositoryManager) CheckIsRepository(executionContext context.Context, repositoryPath string) (bool, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return false, InvalidInputError{FieldName: repositoryPathInputNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, workTreeFlagConstant},
		WorkingDirectory: trimmedRepositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, OperationError{Operation: workTreeOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput) == workTreeAffirmativeOutputConstant, nil
}

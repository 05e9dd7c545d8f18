package githubcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novaeco-tech/novaeco-devtools/internal/execshell"
	"github.com/novaeco-tech/novaeco-devtools/internal/githubcli"
)

const (
	testRepositoryIdentifierConstant             = "novaeco-tech/herpetarium"
	testOrganizationOwnerConstant                = "novaeco-tech"
	testRepositoryNameConstant                   = "herpetarium"
	testRepositorySSHURLConstant                 = "git@github.com:novaeco-tech/herpetarium.git"
	testWorkerTopicConstant                      = "worker"
	testResolveSuccessCaseNameConstant           = "resolve_success"
	testResolveDecodeFailureCaseNameConstant     = "resolve_decode_failure"
	testResolveCommandFailureCaseNameConstant    = "resolve_command_failure"
	testResolveInputFailureCaseNameConstant      = "resolve_input_failure"
	testListSuccessCaseNameConstant              = "list_success"
	testListDefaultLimitCaseNameConstant         = "list_default_limit"
	testListDecodeFailureCaseNameConstant        = "list_decode_failure"
	testListCommandFailureCaseNameConstant       = "list_command_failure"
	testListOwnerValidationCaseNameConstant      = "list_owner_validation"
	testRepositoryListDefaultLimitValueConstant  = "1000"
	testRepositoryListExplicitLimitValueConstant = "25"
)

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := githubcli.NewClient(nil)
		require.Error(testInstance, creationError)
		require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestResolveRepoMetadata(testInstance *testing.T) {
	testCases := []struct {
		name        string
		repository  string
		executor    *stubGitHubExecutor
		expectError bool
		errorType   any
		verify      func(testInstance *testing.T, metadata githubcli.RepositoryMetadata, executor *stubGitHubExecutor)
	}{
		{
			name:       testResolveSuccessCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			executor: &stubGitHubExecutor{
				executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{StandardOutput: `{"name":"herpetarium","nameWithOwner":"novaeco-tech/herpetarium","description":"Reptile facility service","defaultBranchRef":{"name":"main"},"repositoryTopics":[{"name":"worker"},{"name":"iot"}]}`}, nil
				},
			},
			verify: func(testInstance *testing.T, metadata githubcli.RepositoryMetadata, executor *stubGitHubExecutor) {
				require.Equal(testInstance, testRepositoryNameConstant, metadata.Name)
				require.Equal(testInstance, testRepositoryIdentifierConstant, metadata.NameWithOwner)
				require.Equal(testInstance, "Reptile facility service", metadata.Description)
				require.Equal(testInstance, "main", metadata.DefaultBranch)
				require.Equal(testInstance, []string{testWorkerTopicConstant, "iot"}, metadata.Topics)
				require.Len(testInstance, executor.recordedDetails, 1)
				require.Contains(testInstance, executor.recordedDetails[0].Arguments, testRepositoryIdentifierConstant)
			},
		},
		{
			name:       testResolveDecodeFailureCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: "not-json"}, nil
			}},
			expectError: true,
			errorType:   githubcli.ResponseDecodingError{},
		},
		{
			name:       testResolveCommandFailureCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandGitHub}, Result: execshell.ExecutionResult{ExitCode: 1}}
			}},
			expectError: true,
			errorType:   githubcli.OperationError{},
		},
		{
			name:        testResolveInputFailureCaseNameConstant,
			repository:  "  ",
			executor:    &stubGitHubExecutor{},
			expectError: true,
			errorType:   githubcli.InvalidInputError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			metadata, resolutionError := client.ResolveRepoMetadata(context.Background(), testCase.repository)
			if testCase.expectError {
				require.Error(testInstance, resolutionError)
				require.IsType(testInstance, testCase.errorType, resolutionError)
			} else {
				require.NoError(testInstance, resolutionError)
				require.NotNil(testInstance, testCase.verify)
				testCase.verify(testInstance, metadata, testCase.executor)
			}
		})
	}
}

func TestListOrganizationRepositories(testInstance *testing.T) {
	testCases := []struct {
		name        string
		owner       string
		resultLimit int
		executor    *stubGitHubExecutor
		expectError bool
		errorType   any
		verify      func(testInstance *testing.T, repositories []githubcli.OrganizationRepository, executor *stubGitHubExecutor)
	}{
		{
			name:        testListSuccessCaseNameConstant,
			owner:       testOrganizationOwnerConstant,
			resultLimit: 25,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: `[{"name":"herpetarium","sshUrl":"git@github.com:novaeco-tech/herpetarium.git","repositoryTopics":[{"name":"worker"}]},{"name":"novaeco-docs","sshUrl":"git@github.com:novaeco-tech/novaeco-docs.git","repositoryTopics":[]}]`}, nil
			}},
			verify: func(testInstance *testing.T, repositories []githubcli.OrganizationRepository, executor *stubGitHubExecutor) {
				require.Len(testInstance, repositories, 2)
				require.Equal(testInstance, testRepositoryNameConstant, repositories[0].Name)
				require.Equal(testInstance, testRepositorySSHURLConstant, repositories[0].SSHURL)
				require.Equal(testInstance, []string{testWorkerTopicConstant}, repositories[0].Topics)
				require.Empty(testInstance, repositories[1].Topics)
				require.Len(testInstance, executor.recordedDetails, 1)
				require.Contains(testInstance, executor.recordedDetails[0].Arguments, testOrganizationOwnerConstant)
				require.Contains(testInstance, executor.recordedDetails[0].Arguments, testRepositoryListExplicitLimitValueConstant)
				require.Contains(testInstance, executor.recordedDetails[0].Arguments, "--no-archived")
			},
		},
		{
			name:  testListDefaultLimitCaseNameConstant,
			owner: testOrganizationOwnerConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: `[]`}, nil
			}},
			verify: func(testInstance *testing.T, repositories []githubcli.OrganizationRepository, executor *stubGitHubExecutor) {
				require.Empty(testInstance, repositories)
				require.Len(testInstance, executor.recordedDetails, 1)
				require.Contains(testInstance, executor.recordedDetails[0].Arguments, testRepositoryListDefaultLimitValueConstant)
			},
		},
		{
			name:  testListDecodeFailureCaseNameConstant,
			owner: testOrganizationOwnerConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: "not-json"}, nil
			}},
			expectError: true,
			errorType:   githubcli.ResponseDecodingError{},
		},
		{
			name:  testListCommandFailureCaseNameConstant,
			owner: testOrganizationOwnerConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGitHub}, Cause: errors.New("failed")}
			}},
			expectError: true,
			errorType:   githubcli.OperationError{},
		},
		{
			name:        testListOwnerValidationCaseNameConstant,
			owner:       "  ",
			executor:    &stubGitHubExecutor{},
			expectError: true,
			errorType:   githubcli.InvalidInputError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			repositories, listError := client.ListOrganizationRepositories(context.Background(), testCase.owner, testCase.resultLimit)
			if testCase.expectError {
				require.Error(testInstance, listError)
				require.IsType(testInstance, testCase.errorType, listError)
			} else {
				require.NoError(testInstance, listError)
				require.NotNil(testInstance, testCase.verify)
				testCase.verify(testInstance, repositories, testCase.executor)
			}
		})
	}
}

package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/novaeco-tech/novaeco-devtools/internal/execshell"
)

const (
	repoSubcommandConstant                   = "repo"
	viewSubcommandConstant                   = "view"
	listSubcommandConstant                   = "list"
	jsonFlagConstant                         = "--json"
	limitFlagConstant                        = "--limit"
	noArchivedFlagConstant                   = "--no-archived"
	repositoryFieldNameConstant              = "repository"
	ownerFieldNameConstant                   = "owner"
	requiredValueMessageConstant             = "value required"
	executorNotConfiguredMessageConstant     = "github cli executor not configured"
	repositoryListLimitDefaultValueConstant  = 1000
	repoViewJSONFieldsConstant               = "name,nameWithOwner,description,defaultBranchRef,repositoryTopics"
	repoListJSONFieldsConstant               = "name,sshUrl,repositoryTopics"
	operationErrorMessageTemplateConstant    = "%s operation failed"
	operationErrorWithCauseTemplateConstant  = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	repositoryMetadataOperationNameConstant  = OperationName("ResolveRepoMetadata")
	listRepositoriesOperationNameConstant    = OperationName("ListOrganizationRepositories")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	Name          string
	NameWithOwner string
	Description   string
	DefaultBranch string
	Topics        []string
}

// OrganizationRepository summarizes one repository returned by gh repo list.
type OrganizationRepository struct {
	Name   string
	SSHURL string
	Topics []string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
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

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

type topicEntry struct {
	Name string `json:"name"`
}

func topicNames(entries []topicEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		trimmedName := strings.TrimSpace(entry.Name)
		if len(trimmedName) == 0 {
			continue
		}
		names = append(names, trimmedName)
	}
	return names
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return RepositoryMetadata{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Name             string `json:"name"`
		NameWithOwner    string `json:"nameWithOwner"`
		Description      string `json:"description"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
		RepositoryTopics []topicEntry `json:"repositoryTopics"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		Name:          response.Name,
		NameWithOwner: response.NameWithOwner,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranchRef.Name,
		Topics:        topicNames(response.RepositoryTopics),
	}, nil
}

// ListOrganizationRepositories enumerates active repositories owned by an organization using gh repo list.
func (client *Client) ListOrganizationRepositories(executionContext context.Context, owner string, resultLimit int) ([]OrganizationRepository, error) {
	ownerIdentifier := strings.TrimSpace(owner)
	if len(ownerIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if resultLimit <= 0 {
		resultLimit = repositoryListLimitDefaultValueConstant
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			listSubcommandConstant,
			ownerIdentifier,
			limitFlagConstant,
			strconv.Itoa(resultLimit),
			jsonFlagConstant,
			repoListJSONFieldsConstant,
			noArchivedFlagConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listRepositoriesOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Name             string       `json:"name"`
		SSHURL           string       `json:"sshUrl"`
		RepositoryTopics []topicEntry `json:"repositoryTopics"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listRepositoriesOperationNameConstant, Cause: decodingError}
	}

	repositories := make([]OrganizationRepository, 0, len(response))
	for _, repositoryEntry := range response {
		repositories = append(repositories, OrganizationRepository{
			Name:   repositoryEntry.Name,
			SSHURL: repositoryEntry.SSHURL,
			Topics: topicNames(repositoryEntry.RepositoryTopics),
		})
	}

	return repositories, nil
}

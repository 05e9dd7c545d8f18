package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCloneSubcommandNameConstant        = "clone"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitWorkTreeFlagConstant               = "--is-inside-work-tree"
)

const (
	gitCloneStartTemplateConstant                   = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant                 = "Cloned %s into %s"
	gitCloneFailureTemplateConstant                 = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant        = "Unable to clone %s into %s: %s"
	gitRemoteLookupStartTemplateConstant            = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant          = "%s remote for %s points to %s"
	gitRemoteLookupFailureTemplateConstant          = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplateConstant = "Unable to read %s remote for %s: %s"
	gitWorkTreeStartTemplateConstant                = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant              = "%s is a Git repository"
	gitWorkTreeFailureTemplateConstant              = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant     = "Could not analyze %s: %s"
)

const (
	githubRepoSubcommandNameConstant                  = "repo"
	githubRepoViewSubcommandNameConstant              = "view"
	githubRepoListSubcommandNameConstant              = "list"
	githubCurrentRepositoryLabelConstant              = "current repository"
	githubRepoViewIdentificationArgumentCountConstant = 2
)

const (
	githubRepoViewStartTemplateConstant            = "Retrieving repository details for %s"
	githubRepoViewSuccessTemplateConstant          = "Retrieved repository details for %s"
	githubRepoViewFailureTemplateConstant          = "Failed to retrieve repository details for %s (exit code %d%s)"
	githubRepoViewExecutionFailureTemplateConstant = "Unable to retrieve repository details for %s: %s"
	githubRepoListStartTemplateConstant            = "Listing repositories for %s"
	githubRepoListSuccessTemplateConstant          = "Listed repositories for %s"
	githubRepoListFailureTemplateConstant          = "Failed to list repositories for %s (exit code %d%s)"
	githubRepoListExecutionFailureTemplateConstant = "Unable to list repositories for %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) shouldLogStartMessage(command ShellCommand) bool {
	if command.Name != CommandGitHub {
		return true
	}
	if formatter.isGitHubRepoViewCommand(command.Details.Arguments) {
		return false
	}
	return true
}

func (formatter CommandMessageFormatter) isGitHubRepoViewCommand(arguments []string) bool {
	if len(arguments) < githubRepoViewIdentificationArgumentCountConstant {
		return false
	}
	primaryArgument := strings.TrimSpace(arguments[0])
	secondaryArgument := strings.TrimSpace(arguments[1])
	return primaryArgument == githubRepoSubcommandNameConstant && secondaryArgument == githubRepoViewSubcommandNameConstant
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	remoteURL := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
	destination := formatter.argumentAtIndex(arguments, 2)
	if len(strings.TrimSpace(destination)) == 0 {
		destination = formatter.describeWorkingDirectory(command)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCloneStartTemplateConstant, remoteURL, destination)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, remoteURL, destination)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, remoteURL, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, remoteURL, destination, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))

	if len(arguments) > 1 && strings.TrimSpace(arguments[1]) == gitRemoteGetURLSubcommandNameConstant {
		remoteURL := strings.TrimSpace(result.StandardOutput)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory, formatter.ensureValue(remoteURL))
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteLookupFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRemoteLookupExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitWorkTreeFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitWorkTreeStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitWorkTreeSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitWorkTreeFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitWorkTreeExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < githubRepoViewIdentificationArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	if strings.TrimSpace(arguments[0]) != githubRepoSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[1]) {
	case githubRepoViewSubcommandNameConstant:
		repository := formatter.resolveGitHubTarget(arguments, 2)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoViewStartTemplateConstant, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoViewSuccessTemplateConstant, repository)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoViewFailureTemplateConstant, repository, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoViewExecutionFailureTemplateConstant, repository, formatter.describeFailure(failure))
		}
	case githubRepoListSubcommandNameConstant:
		owner := formatter.resolveGitHubTarget(arguments, 2)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoListStartTemplateConstant, owner)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoListSuccessTemplateConstant, owner)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoListFailureTemplateConstant, owner, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoListExecutionFailureTemplateConstant, owner, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) resolveGitHubTarget(arguments []string, startIndex int) string {
	for index := startIndex; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			break
		}
		return trimmed
	}
	return githubCurrentRepositoryLabelConstant
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

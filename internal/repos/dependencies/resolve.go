package dependencies

import (
	"go.uber.org/zap"

	"github.com/novaeco-tech/novaeco-devtools/internal/execshell"
	"github.com/novaeco-tech/novaeco-devtools/internal/githubcli"
	"github.com/novaeco-tech/novaeco-devtools/internal/gitrepo"
	"github.com/novaeco-tech/novaeco-devtools/internal/repos/shared"
	"github.com/novaeco-tech/novaeco-devtools/internal/ui"
)

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging swaps structured command telemetry for console events.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	if humanReadableLogging {
		consoleObserver := ui.NewConsoleCommandEventLogger(logger)
		return execshell.NewShellExecutorWithObserver(zap.NewNop(), commandRunner, consoleObserver)
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveGitRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

// ResolveGitHubResolver returns the provided resolver or creates a GitHub CLI-backed implementation.
func ResolveGitHubResolver(existing shared.GitHubMetadataResolver, executor shared.GitExecutor) (shared.GitHubMetadataResolver, error) {
	if existing != nil {
		return existing, nil
	}
	return githubcli.NewClient(executor)
}

// ResolveClock returns the provided clock or the system clock.
func ResolveClock(existing shared.Clock) shared.Clock {
	if existing != nil {
		return existing
	}
	return shared.SystemClock{}
}

package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	integrationCommandTimeout          = 30 * time.Second
	integrationBinaryNameConstant      = "novaeco"
	integrationBuildSubcommandConstant = "build"
	integrationOutputFlagConstant      = "-o"
	integrationModulePathConstant      = "."
	integrationPathVariableName        = "PATH"
	integrationLogLevelFlagConstant    = "--log-level"
	integrationErrorLogLevelConstant   = "error"
	integrationStubPermissions         = 0o755
)

var (
	integrationBinaryOnce sync.Once
	integrationBinaryPath string
	integrationBinaryErr  error
)

// buildIntegrationBinary compiles the CLI once per test run and returns the
// binary path. Subsequent callers share the first build.
func buildIntegrationBinary(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()

	integrationBinaryOnce.Do(func() {
		binaryDirectory, temporaryError := os.MkdirTemp("", "novaeco-integration-*")
		if temporaryError != nil {
			integrationBinaryErr = temporaryError
			return
		}

		integrationBinaryPath = filepath.Join(binaryDirectory, integrationBinaryNameConstant)
		buildCommand := exec.Command("go", integrationBuildSubcommandConstant, integrationOutputFlagConstant, integrationBinaryPath, integrationModulePathConstant)
		buildCommand.Dir = repositoryRoot
		if buildOutput, buildError := buildCommand.CombinedOutput(); buildError != nil {
			integrationBinaryErr = &integrationBuildError{output: string(buildOutput), cause: buildError}
		}
	})

	if integrationBinaryErr != nil {
		testInstance.Fatalf("unable to build integration binary: %v", integrationBinaryErr)
	}
	return integrationBinaryPath
}

type integrationBuildError struct {
	output string
	cause  error
}

func (buildError *integrationBuildError) Error() string {
	return buildError.cause.Error() + "\n" + buildError.output
}

// runBinaryIntegrationCommand executes the compiled CLI inside workingDirectory
// and returns the combined output together with the execution error.
func runBinaryIntegrationCommand(
	testInstance *testing.T,
	binaryPath string,
	workingDirectory string,
	environmentOverrides map[string]string,
	timeout time.Duration,
	arguments []string,
) (string, error) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory

	environment := append([]string{}, os.Environ()...)
	for variableName, variableValue := range environmentOverrides {
		environment = append(environment, variableName+"="+variableValue)
	}
	command.Env = environment

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

// writeStubExecutable installs a shell script under directory so tests can
// intercept external tools via PATH.
func writeStubExecutable(testInstance *testing.T, directory string, executableName string, script string) {
	testInstance.Helper()

	stubPath := filepath.Join(directory, executableName)
	if writeError := os.WriteFile(stubPath, []byte(script), integrationStubPermissions); writeError != nil {
		testInstance.Fatalf("unable to write %s stub: %v", executableName, writeError)
	}
}

// prependToPathVariable builds a PATH value with directory ahead of the
// inherited search path.
func prependToPathVariable(directory string) string {
	return directory + string(os.PathListSeparator) + os.Getenv(integrationPathVariableName)
}

// filterStructuredOutput drops structured JSON log lines so assertions see
// only the human-facing report output.
func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, "\n") + "\n"
}

func writeIntegrationFile(testInstance *testing.T, rootDirectory string, relativePath string, content string) {
	testInstance.Helper()

	absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
	if directoryError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); directoryError != nil {
		testInstance.Fatalf("unable to create directory for %s: %v", relativePath, directoryError)
	}
	if writeError := os.WriteFile(absolutePath, []byte(content), 0o644); writeError != nil {
		testInstance.Fatalf("unable to write %s: %v", relativePath, writeError)
	}
}

func repositoryRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		testInstance.Fatalf("unable to resolve working directory: %v", workingDirectoryError)
	}
	return filepath.Dir(workingDirectory)
}

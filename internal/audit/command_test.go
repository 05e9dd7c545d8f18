package audit_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit"
)

const (
	commandTestRepositoryNameConstant = "brook-worker"
	structureSubcommandNameConstant   = "structure"
	traceabilitySubcommandConstant    = "traceability"
)

func buildAuditCommand(testInstance *testing.T, workingDirectory string, configuration audit.CommandConfiguration) *cobra.Command {
	testInstance.Helper()
	builder := &audit.CommandBuilder{
		ConfigurationProvider: func() audit.CommandConfiguration {
			return configuration
		},
		WorkingDirectory: workingDirectory,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	return command
}

func executeAuditCommand(testInstance *testing.T, workingDirectory string, configuration audit.CommandConfiguration, arguments ...string) (string, string, error) {
	testInstance.Helper()
	command := buildAuditCommand(testInstance, workingDirectory, configuration)

	var outputBuffer, errorBuffer bytes.Buffer
	command.SetOut(&outputBuffer)
	command.SetErr(&errorBuffer)
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	executionError := command.Execute()
	return outputBuffer.String(), errorBuffer.String(), executionError
}

func createCommandTestWorkspace(testInstance *testing.T) string {
	testInstance.Helper()
	workspaceRoot := testInstance.TempDir()
	repositoryRoot := filepath.Join(workspaceRoot, "repos", commandTestRepositoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryRoot, "src"), 0o755))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryRoot, "tests"), 0o755))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryRoot, "docs"), 0o755))
	fixtureFiles := map[string]string{
		".novaeco.yaml":        "role: worker\n",
		"src/main.py":          "print('pump')\n",
		"requirements.txt":     "fastapi\n",
		"Dockerfile":           "FROM python:3.12\n",
		"docs/requirements.md": "## REQ-AQUA-FUNC-001: Pump duty cycle is configurable\n",
		"tests/test_pump.py":   "# requirement(REQ-AQUA-FUNC-001)\ndef test_duty_cycle():\n    pass\n",
	}
	for relativePath, content := range fixtureFiles {
		absolutePath := filepath.Join(repositoryRoot, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), 0o644))
	}
	return workspaceRoot
}

func TestAuditCommandExposesSubcommands(testInstance *testing.T) {
	command := buildAuditCommand(testInstance, testInstance.TempDir(), audit.DefaultCommandConfiguration())

	subcommandNames := make([]string, 0, len(command.Commands()))
	for _, subcommand := range command.Commands() {
		subcommandNames = append(subcommandNames, subcommand.Name())
	}
	require.Contains(testInstance, subcommandNames, structureSubcommandNameConstant)
	require.Contains(testInstance, subcommandNames, traceabilitySubcommandConstant)
}

func TestStructureCommandAuditsWorkspace(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)

	output, _, executionError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), structureSubcommandNameConstant)

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "STRUCTURE-OK: "+commandTestRepositoryNameConstant+" (role=worker)")
}

func TestStructureCommandJSONFormatFlag(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)

	output, _, executionError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), structureSubcommandNameConstant, "--format", "json")

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, `"run_id"`)
	require.Contains(testInstance, output, `"compliant": true`)
}

func TestStructureCommandRejectsUnknownFormat(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)

	_, _, executionError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), structureSubcommandNameConstant, "--format", "xml")

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "invalid report format")
}

func TestStructureCommandReportsNonCompliance(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)
	require.NoError(testInstance, os.Remove(filepath.Join(workspaceRoot, "repos", commandTestRepositoryNameConstant, "Dockerfile")))

	output, _, executionError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), structureSubcommandNameConstant)

	require.ErrorIs(testInstance, executionError, audit.ErrStructuralNonCompliance)
	require.Contains(testInstance, output, "STRUCTURE-FAIL: "+commandTestRepositoryNameConstant)
}

func TestTraceabilityCommandReportsCoverage(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)

	output, _, executionError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), traceabilitySubcommandConstant)

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "TRACE-ROW: "+commandTestRepositoryNameConstant+" REQ-AQUA-FUNC-001 tests=1 covered=yes")
}

func TestTraceabilityCommandWarnOnlyFlag(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)
	testFilePath := filepath.Join(workspaceRoot, "repos", commandTestRepositoryNameConstant, "tests", "test_pump.py")
	require.NoError(testInstance, os.WriteFile(testFilePath, []byte("def test_idle():\n    pass\n"), 0o644))

	_, _, failingError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), traceabilitySubcommandConstant)
	require.ErrorIs(testInstance, failingError, audit.ErrUncoveredRequirements)

	_, _, warnOnlyError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), traceabilitySubcommandConstant, "--warn-only")
	require.NoError(testInstance, warnOnlyError)
}

func TestTraceabilityCommandConfiguredWarnOnly(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)
	testFilePath := filepath.Join(workspaceRoot, "repos", commandTestRepositoryNameConstant, "tests", "test_pump.py")
	require.NoError(testInstance, os.WriteFile(testFilePath, []byte("def test_idle():\n    pass\n"), 0o644))

	configuration := audit.DefaultCommandConfiguration()
	configuration.Traceability.WarnOnly = true

	_, _, executionError := executeAuditCommand(testInstance, workspaceRoot, configuration, traceabilitySubcommandConstant)
	require.NoError(testInstance, executionError)
}

func TestStructureCommandWorkersFlagOverride(testInstance *testing.T) {
	workspaceRoot := createCommandTestWorkspace(testInstance)

	output, _, executionError := executeAuditCommand(testInstance, workspaceRoot, audit.DefaultCommandConfiguration(), structureSubcommandNameConstant, "--workers", "1")

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "SUMMARY: 1 repositories audited")
}

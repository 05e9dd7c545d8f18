package tests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	exportIntegrationDefaultOutputName = "novaeco-export.txt"
	exportIntegrationReadmeContent     = "# Pond Worker\n"
	exportIntegrationSourceContent     = "print(\"cycle\")\n"
)

func createExportTree(testInstance *testing.T) string {
	testInstance.Helper()

	treeRoot := testInstance.TempDir()
	writeIntegrationFile(testInstance, treeRoot, "README.md", exportIntegrationReadmeContent)
	writeIntegrationFile(testInstance, treeRoot, "src/main.py", exportIntegrationSourceContent)
	writeIntegrationFile(testInstance, treeRoot, "node_modules/library/index.js", "module.exports = {}\n")
	writeIntegrationFile(testInstance, treeRoot, "package-lock.json", "{}\n")
	require.NoError(testInstance, os.WriteFile(filepath.Join(treeRoot, "diagram.png"), []byte{0x89, 0x50, 0x4e, 0x47}, 0o644))
	return treeRoot
}

func TestExportIntegration(testInstance *testing.T) {
	binaryPath := buildIntegrationBinary(testInstance, repositoryRootDirectory(testInstance))

	testInstance.Run("writes_annotated_export_file", func(subtestInstance *testing.T) {
		treeRoot := createExportTree(subtestInstance)

		outputText, runError := runBinaryIntegrationCommand(
			subtestInstance,
			binaryPath,
			treeRoot,
			nil,
			integrationCommandTimeout,
			[]string{integrationLogLevelFlagConstant, integrationErrorLogLevelConstant, "export"},
		)

		require.NoError(subtestInstance, runError, outputText)
		require.Contains(subtestInstance, filterStructuredOutput(outputText), "EXPORTED: 2 files -> ")

		exportContent, readError := os.ReadFile(filepath.Join(treeRoot, exportIntegrationDefaultOutputName))
		require.NoError(subtestInstance, readError)
		exportText := string(exportContent)
		require.Contains(subtestInstance, exportText, "### FILE: README.md\n"+exportIntegrationReadmeContent)
		require.Contains(subtestInstance, exportText, "### FILE: src/main.py\n"+exportIntegrationSourceContent)
		require.NotContains(subtestInstance, exportText, "node_modules")
		require.NotContains(subtestInstance, exportText, "package-lock.json")
		require.NotContains(subtestInstance, exportText, "diagram.png")
		require.Less(subtestInstance, strings.Index(exportText, "### FILE: README.md"), strings.Index(exportText, "### FILE: src/main.py"))
	})

	testInstance.Run("honors_output_flag", func(subtestInstance *testing.T) {
		treeRoot := createExportTree(subtestInstance)

		outputText, runError := runBinaryIntegrationCommand(
			subtestInstance,
			binaryPath,
			treeRoot,
			nil,
			integrationCommandTimeout,
			[]string{integrationLogLevelFlagConstant, integrationErrorLogLevelConstant, "export", ".", "--output", "snapshot.txt"},
		)

		require.NoError(subtestInstance, runError, outputText)

		snapshotContent, readError := os.ReadFile(filepath.Join(treeRoot, "snapshot.txt"))
		require.NoError(subtestInstance, readError)
		require.Contains(subtestInstance, string(snapshotContent), "### FILE: README.md")

		_, defaultStatError := os.Stat(filepath.Join(treeRoot, exportIntegrationDefaultOutputName))
		require.True(subtestInstance, os.IsNotExist(defaultStatError))
	})
}

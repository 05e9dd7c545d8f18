package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/novaeco-tech/novaeco-devtools/cmd/cli"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	configurationTypeConstant        = "yaml"
	parentDirectoryReferenceConstant = ".."
	expectedServiceCountConstant     = 4
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessage         = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

func TestReadmeConfigurationSnippetParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessage)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	configurationReader := viper.New()
	configurationReader.SetConfigType(configurationTypeConstant)
	require.NoError(testInstance, configurationReader.ReadConfig(strings.NewReader(snippetContent)))

	var applicationConfiguration cli.ApplicationConfiguration
	require.NoError(testInstance, configurationReader.Unmarshal(&applicationConfiguration))

	require.Equal(testInstance, "info", applicationConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", applicationConfiguration.Common.LogFormat)
	require.Equal(testInstance, "repos", applicationConfiguration.Tools.Audit.RepositoriesRoot)
	require.Equal(testInstance, "novaeco-tech", applicationConfiguration.Tools.Workspace.Organization)
	require.Equal(testInstance, "novaeco.code-workspace", applicationConfiguration.Tools.Workspace.WorkspaceFile)
	require.Equal(testInstance, "novaeco-export.txt", applicationConfiguration.Tools.Export.Output)

	require.Len(testInstance, applicationConfiguration.Tools.Version.Services, expectedServiceCountConstant)
	seenServiceNames := make(map[string]struct{}, len(applicationConfiguration.Tools.Version.Services))
	for _, serviceConfiguration := range applicationConfiguration.Tools.Version.Services {
		require.NotEmpty(testInstance, serviceConfiguration.Name)
		require.NotEmpty(testInstance, serviceConfiguration.File)
		_, duplicate := seenServiceNames[serviceConfiguration.Name]
		require.Falsef(testInstance, duplicate, "duplicate service %s", serviceConfiguration.Name)
		seenServiceNames[serviceConfiguration.Name] = struct{}{}
	}
}

// TestReadmeSnippetMatchesEmbeddedDefaults guards against the README example
// and the embedded defaults drifting apart.
func TestReadmeSnippetMatchesEmbeddedDefaults(testInstance *testing.T) {
	embeddedContent, embeddedType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, embeddedType)

	embeddedReader := viper.New()
	embeddedReader.SetConfigType(configurationTypeConstant)
	require.NoError(testInstance, embeddedReader.ReadConfig(strings.NewReader(string(embeddedContent))))

	var embeddedConfiguration cli.ApplicationConfiguration
	require.NoError(testInstance, embeddedReader.Unmarshal(&embeddedConfiguration))

	require.Equal(testInstance, "novaeco-tech", embeddedConfiguration.Tools.Workspace.Organization)
	require.Len(testInstance, embeddedConfiguration.Tools.Version.Services, expectedServiceCountConstant)
}

package requirements_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novaeco-tech/novaeco-devtools/internal/audit/requirements"
)

const (
	testFunctionalDocumentPathConstant = "docs/requirements/functional.md"
	testOverviewDocumentPathConstant   = "docs/overview.md"
	testRequirementIdentifierConstant  = "REQ-AGRO-FUNC-001"
	testDuplicateIdentifierConstant    = "REQ-CORE-FUNC-001"
)

func writeCorpusFile(testInstance *testing.T, repositoryRoot string, relativePath string, content string) {
	testInstance.Helper()
	absolutePath := filepath.Join(repositoryRoot, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), 0o644))
}

func TestExtractRegistersIdentifiersWithDescriptions(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeCorpusFile(testInstance, repositoryRoot, testFunctionalDocumentPathConstant,
		"# Functional requirements\n"+
			"REQ-AGRO-FUNC-001: Track enclosure humidity\n"+
			"REQ-AGRO-FUNC-002 - Record feeding schedules\n"+
			"REQ-AGRO-FUNC-003\n")

	extraction, extractionError := requirements.NewExtractor(nil).Extract(repositoryRoot)

	require.NoError(testInstance, extractionError)
	require.Empty(testInstance, extraction.Duplicates)
	require.Empty(testInstance, extraction.Skipped)
	require.Len(testInstance, extraction.Requirements, 3)

	firstRequirement := extraction.Requirements[0]
	require.Equal(testInstance, testRequirementIdentifierConstant, firstRequirement.Identifier)
	require.Equal(testInstance, "Track enclosure humidity", firstRequirement.Description)
	require.Equal(testInstance, testFunctionalDocumentPathConstant, firstRequirement.SourcePath)
	require.Equal(testInstance, 2, firstRequirement.Line)

	require.Equal(testInstance, "Record feeding schedules", extraction.Requirements[1].Description)
	require.Empty(testInstance, extraction.Requirements[2].Description)
}

func TestExtractIgnoresMalformedIdentifiers(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeCorpusFile(testInstance, repositoryRoot, testFunctionalDocumentPathConstant,
		"REQ-AG-FUNC-001 too short\n"+
			"REQ-AGRO-FUNC-01 too few digits\n"+
			"REQ-AGRO-FUNC-0015 too many digits\n"+
			"XREQ-AGRO-FUNC-001 glued prefix\n"+
			"req-agro-func-001 lowercase\n")

	extraction, extractionError := requirements.NewExtractor(nil).Extract(repositoryRoot)

	require.NoError(testInstance, extractionError)
	require.Empty(testInstance, extraction.Requirements)
}

func TestExtractReportsDuplicatesAndKeepsFirstDefinition(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeCorpusFile(testInstance, repositoryRoot, testFunctionalDocumentPathConstant,
		"REQ-CORE-FUNC-001: First definition\n"+
			"REQ-CORE-FUNC-001: Second definition\n")

	extraction, extractionError := requirements.NewExtractor(nil).Extract(repositoryRoot)

	require.NoError(testInstance, extractionError)
	require.Len(testInstance, extraction.Requirements, 1)
	require.Equal(testInstance, "First definition", extraction.Requirements[0].Description)

	require.Len(testInstance, extraction.Duplicates, 1)
	duplicateFinding := extraction.Duplicates[0]
	require.Equal(testInstance, testDuplicateIdentifierConstant, duplicateFinding.Identifier)
	require.Equal(testInstance, 1, duplicateFinding.FirstLine)
	require.Equal(testInstance, 2, duplicateFinding.DuplicateLine)
}

func TestExtractCountsEveryOccurrenceOnALine(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeCorpusFile(testInstance, repositoryRoot, testFunctionalDocumentPathConstant,
		"REQ-AGRO-FUNC-001 supersedes REQ-AGRO-FUNC-002\n")

	extraction, extractionError := requirements.NewExtractor(nil).Extract(repositoryRoot)

	require.NoError(testInstance, extractionError)
	require.Len(testInstance, extraction.Requirements, 2)
	require.Equal(testInstance, "supersedes REQ-AGRO-FUNC-002", extraction.Requirements[0].Description)
	require.Empty(testInstance, extraction.Requirements[1].Description)
}

func TestExtractDeduplicatesOverlappingGlobs(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeCorpusFile(testInstance, repositoryRoot, testFunctionalDocumentPathConstant,
		testRequirementIdentifierConstant+": Defined once\n")

	extraction, extractionError := requirements.NewExtractor(nil).Extract(repositoryRoot)

	require.NoError(testInstance, extractionError)
	require.Len(testInstance, extraction.Requirements, 1)
	require.Empty(testInstance, extraction.Duplicates)
}

func TestExtractSkipsFilesOutsideCorpus(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeCorpusFile(testInstance, repositoryRoot, "README.md",
		testRequirementIdentifierConstant+": Not part of the corpus\n")

	extraction, extractionError := requirements.NewExtractor(nil).Extract(repositoryRoot)

	require.NoError(testInstance, extractionError)
	require.Empty(testInstance, extraction.Requirements)
}

func TestExtractSkipsInvalidEncodingWithWarning(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	invalidPath := filepath.Join(repositoryRoot, filepath.FromSlash(testOverviewDocumentPathConstant))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(invalidPath), 0o755))
	require.NoError(testInstance, os.WriteFile(invalidPath, []byte{0xff, 0xfe, 0x52, 0x45, 0x51}, 0o644))
	writeCorpusFile(testInstance, repositoryRoot, testFunctionalDocumentPathConstant,
		testRequirementIdentifierConstant+": Readable definition\n")

	extraction, extractionError := requirements.NewExtractor(nil).Extract(repositoryRoot)

	require.NoError(testInstance, extractionError)
	require.Len(testInstance, extraction.Requirements, 1)
	require.Len(testInstance, extraction.Skipped, 1)
	require.Equal(testInstance, testOverviewDocumentPathConstant, extraction.Skipped[0].Path)
}

func TestExtractIsDeterministicAcrossRuns(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeCorpusFile(testInstance, repositoryRoot, "docs/requirements/alpha.md", "REQ-AGRO-FUNC-010: Alpha\n")
	writeCorpusFile(testInstance, repositoryRoot, "docs/requirements/beta.md", "REQ-AGRO-FUNC-020: Beta\n")

	extractor := requirements.NewExtractor(nil)
	firstExtraction, firstError := extractor.Extract(repositoryRoot)
	secondExtraction, secondError := extractor.Extract(repositoryRoot)

	require.NoError(testInstance, firstError)
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, firstExtraction, secondExtraction)
	require.Equal(testInstance, "REQ-AGRO-FUNC-010", firstExtraction.Requirements[0].Identifier)
	require.Equal(testInstance, "REQ-AGRO-FUNC-020", firstExtraction.Requirements[1].Identifier)
}

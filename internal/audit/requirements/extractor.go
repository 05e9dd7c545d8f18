package requirements

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	requirementIdentifierPatternConstant = `\bREQ-[A-Z]{4}-[A-Z]{4}-[0-9]{3}\b`

	coreRequirementsGlobConstant   = "website/docs/requirements/**/*.md"
	domainRequirementsGlobConstant = "docs/requirements/**/*.md"
	documentationGlobConstant      = "docs/**/*.md"

	descriptionSeparatorCutSetConstant = ":-"
	lineSeparatorConstant              = "\n"

	duplicateRequirementMessageTemplateConstant = "duplicate requirement %s at %s:%d; first defined at %s:%d"
	corpusPatternMessageTemplateConstant        = "unable to match corpus pattern %s: %s"
	unreadableFileReasonTemplateConstant        = "unable to read file: %s"
	invalidEncodingReasonConstant               = "file is not valid UTF-8"
)

var requirementIdentifierExpression = regexp.MustCompile(requirementIdentifierPatternConstant)

// Requirement is one identifier definition found in the documentation corpus.
type Requirement struct {
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
	SourcePath  string `json:"source_path"`
	Line        int    `json:"line"`
}

// SkippedFile records a corpus file left out of the extraction and why.
type SkippedFile struct {
	Path   string
	Reason string
}

// DuplicateRequirementError reports an identifier defined more than once. The
// first definition stays authoritative.
type DuplicateRequirementError struct {
	Identifier    string
	FirstPath     string
	FirstLine     int
	DuplicatePath string
	DuplicateLine int
}

func (duplicateError DuplicateRequirementError) Error() string {
	return fmt.Sprintf(
		duplicateRequirementMessageTemplateConstant,
		duplicateError.Identifier,
		duplicateError.DuplicatePath,
		duplicateError.DuplicateLine,
		duplicateError.FirstPath,
		duplicateError.FirstLine,
	)
}

// CorpusPatternError reports a corpus glob the glob engine rejected.
type CorpusPatternError struct {
	Pattern string
	Cause   error
}

func (patternError CorpusPatternError) Error() string {
	return fmt.Sprintf(corpusPatternMessageTemplateConstant, patternError.Pattern, patternError.Cause)
}

func (patternError CorpusPatternError) Unwrap() error {
	return patternError.Cause
}

// Extraction is the outcome of scanning one repository's corpus.
type Extraction struct {
	Requirements []Requirement
	Duplicates   []DuplicateRequirementError
	Skipped      []SkippedFile
}

// DefaultCorpusGlobs lists the documentation globs scanned for requirement
// identifiers, relative to the repository root.
func DefaultCorpusGlobs() []string {
	return []string{
		coreRequirementsGlobConstant,
		domainRequirementsGlobConstant,
		documentationGlobConstant,
	}
}

// Extractor scans documentation corpora for requirement identifiers.
type Extractor struct {
	corpusGlobs []string
}

// NewExtractor builds an extractor over the given corpus globs. A nil slice
// falls back to the defaults.
func NewExtractor(corpusGlobs []string) Extractor {
	if corpusGlobs == nil {
		corpusGlobs = DefaultCorpusGlobs()
	}
	return Extractor{corpusGlobs: corpusGlobs}
}

// Extract scans the repository's corpus files in sorted order and registers
// every identifier occurrence. Re-occurrences of an identifier become
// duplicate findings; unreadable or non-UTF-8 files are skipped with a note.
func (extractor Extractor) Extract(repositoryRoot string) (Extraction, error) {
	corpusFiles, collectionError := extractor.collectCorpusFiles(repositoryRoot)
	if collectionError != nil {
		return Extraction{}, collectionError
	}

	extraction := Extraction{}
	firstDefinitions := make(map[string]Requirement)
	for _, corpusFile := range corpusFiles {
		relativePath := relativeCorpusPath(repositoryRoot, corpusFile)
		fileContent, readError := os.ReadFile(corpusFile)
		if readError != nil {
			extraction.Skipped = append(extraction.Skipped, SkippedFile{
				Path:   relativePath,
				Reason: fmt.Sprintf(unreadableFileReasonTemplateConstant, readError),
			})
			continue
		}
		if !utf8.Valid(fileContent) {
			extraction.Skipped = append(extraction.Skipped, SkippedFile{
				Path:   relativePath,
				Reason: invalidEncodingReasonConstant,
			})
			continue
		}

		fileLines := strings.Split(string(fileContent), lineSeparatorConstant)
		for lineIndex, lineContent := range fileLines {
			identifierSpans := requirementIdentifierExpression.FindAllStringIndex(lineContent, -1)
			for _, identifierSpan := range identifierSpans {
				requirement := Requirement{
					Identifier:  lineContent[identifierSpan[0]:identifierSpan[1]],
					Description: trimDescription(lineContent[identifierSpan[1]:]),
					SourcePath:  relativePath,
					Line:        lineIndex + 1,
				}
				firstDefinition, alreadyDefined := firstDefinitions[requirement.Identifier]
				if alreadyDefined {
					extraction.Duplicates = append(extraction.Duplicates, DuplicateRequirementError{
						Identifier:    requirement.Identifier,
						FirstPath:     firstDefinition.SourcePath,
						FirstLine:     firstDefinition.Line,
						DuplicatePath: requirement.SourcePath,
						DuplicateLine: requirement.Line,
					})
					continue
				}
				firstDefinitions[requirement.Identifier] = requirement
				extraction.Requirements = append(extraction.Requirements, requirement)
			}
		}
	}
	return extraction, nil
}

func (extractor Extractor) collectCorpusFiles(repositoryRoot string) ([]string, error) {
	matchedFiles := make(map[string]struct{})
	for _, corpusGlob := range extractor.corpusGlobs {
		matches, matchError := doublestar.FilepathGlob(filepath.Join(repositoryRoot, corpusGlob))
		if matchError != nil {
			return nil, CorpusPatternError{Pattern: corpusGlob, Cause: matchError}
		}
		for _, matchedPath := range matches {
			pathInformation, statError := os.Stat(matchedPath)
			if statError != nil || pathInformation.IsDir() {
				continue
			}
			matchedFiles[matchedPath] = struct{}{}
		}
	}

	corpusFiles := make([]string, 0, len(matchedFiles))
	for matchedFile := range matchedFiles {
		corpusFiles = append(corpusFiles, matchedFile)
	}
	sort.Strings(corpusFiles)
	return corpusFiles, nil
}

func trimDescription(lineRemainder string) string {
	trimmedRemainder := strings.TrimSpace(lineRemainder)
	trimmedRemainder = strings.TrimLeft(trimmedRemainder, descriptionSeparatorCutSetConstant)
	return strings.TrimSpace(trimmedRemainder)
}

func relativeCorpusPath(repositoryRoot string, corpusFile string) string {
	relativePath, relativeError := filepath.Rel(repositoryRoot, corpusFile)
	if relativeError != nil {
		return filepath.ToSlash(corpusFile)
	}
	return filepath.ToSlash(relativePath)
}

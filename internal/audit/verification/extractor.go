package verification

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
	verificationTagPatternConstant = `\brequirement\(([^)]*)\)`
	testDefinitionPatternConstant  = `^\s*(?:async\s+)?def\s+(test_[A-Za-z0-9_]*)`
	tagIdentifierPatternConstant   = `^REQ-[A-Z]{4}-[A-Z]{4}-[0-9]{3}$`

	testPrefixGlobConstant = "tests/**/test_*.py"
	testSuffixGlobConstant = "tests/**/*_test.py"

	testIdentifierSeparatorConstant = "::"
	identifierListSeparatorConstant = ","
	singleQuoteConstant             = `'`
	doubleQuoteConstant             = `"`
	lineSeparatorConstant           = "\n"

	malformedTagMessageTemplateConstant  = "malformed verification tag at %s:%d (%s): %s"
	corpusPatternMessageTemplateConstant = "unable to match corpus pattern %s: %s"
	unreadableFileReasonTemplateConstant = "unable to read file: %s"
	invalidEncodingReasonConstant        = "file is not valid UTF-8"

	emptyIdentifierListReasonConstant       = "empty identifier list"
	invalidIdentifierReasonTemplateConstant = "invalid identifier %q"
	danglingTagReasonConstant               = "no test definition follows the tag"
)

var (
	verificationTagExpression = regexp.MustCompile(verificationTagPatternConstant)
	testDefinitionExpression  = regexp.MustCompile(testDefinitionPatternConstant)
	tagIdentifierExpression   = regexp.MustCompile(tagIdentifierPatternConstant)
)

// VerificationLink ties one requirement identifier to one qualified test name.
type VerificationLink struct {
	RequirementID string `json:"requirement_id"`
	TestID        string `json:"test_id"`
	SourcePath    string `json:"source_path"`
	Line          int    `json:"line"`
}

// SkippedFile records a verification source left out of the extraction.
type SkippedFile struct {
	Path   string
	Reason string
}

// MalformedTagError reports a verification tag that contributes no links.
type MalformedTagError struct {
	SourcePath string
	Line       int
	Tag        string
	Reason     string
}

func (tagError MalformedTagError) Error() string {
	return fmt.Sprintf(malformedTagMessageTemplateConstant, tagError.SourcePath, tagError.Line, tagError.Tag, tagError.Reason)
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

// Extraction is the outcome of scanning one repository's verification sources.
type Extraction struct {
	Links     []VerificationLink
	Malformed []MalformedTagError
	Skipped   []SkippedFile
}

// DefaultCorpusGlobs lists the verification source globs, relative to the
// repository root.
func DefaultCorpusGlobs() []string {
	return []string{testPrefixGlobConstant, testSuffixGlobConstant}
}

// pendingTag is a parsed tag waiting for the next test definition.
type pendingTag struct {
	identifiers []string
	line        int
}

// Extractor scans verification sources for requirement tags and binds them to
// the test definitions that follow.
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

// Extract scans the repository's verification sources in sorted order. A tag
// line binds every listed identifier to the next test definition in the same
// file; malformed and dangling tags become findings without stopping the scan.
func (extractor Extractor) Extract(repositoryRoot string) (Extraction, error) {
	verificationFiles, collectionError := extractor.collectVerificationFiles(repositoryRoot)
	if collectionError != nil {
		return Extraction{}, collectionError
	}

	extraction := Extraction{}
	for _, verificationFile := range verificationFiles {
		relativePath := relativeVerificationPath(repositoryRoot, verificationFile)
		fileContent, readError := os.ReadFile(verificationFile)
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
		extractor.scanFile(relativePath, string(fileContent), &extraction)
	}
	return extraction, nil
}

func (extractor Extractor) scanFile(relativePath string, fileContent string, extraction *Extraction) {
	var pendingTags []pendingTag
	fileLines := strings.Split(fileContent, lineSeparatorConstant)
	for lineIndex, lineContent := range fileLines {
		lineNumber := lineIndex + 1

		definitionMatch := testDefinitionExpression.FindStringSubmatch(lineContent)
		if definitionMatch != nil {
			testIdentifier := relativePath + testIdentifierSeparatorConstant + definitionMatch[1]
			for _, boundTag := range pendingTags {
				for _, requirementIdentifier := range boundTag.identifiers {
					extraction.Links = append(extraction.Links, VerificationLink{
						RequirementID: requirementIdentifier,
						TestID:        testIdentifier,
						SourcePath:    relativePath,
						Line:          boundTag.line,
					})
				}
			}
			pendingTags = nil
		}

		tagMatches := verificationTagExpression.FindAllStringSubmatch(lineContent, -1)
		for _, tagMatch := range tagMatches {
			identifiers, parseReason := parseTagIdentifiers(tagMatch[1])
			if parseReason != "" {
				extraction.Malformed = append(extraction.Malformed, MalformedTagError{
					SourcePath: relativePath,
					Line:       lineNumber,
					Tag:        tagMatch[0],
					Reason:     parseReason,
				})
				continue
			}
			pendingTags = append(pendingTags, pendingTag{identifiers: identifiers, line: lineNumber})
		}
	}

	for _, danglingTag := range pendingTags {
		extraction.Malformed = append(extraction.Malformed, MalformedTagError{
			SourcePath: relativePath,
			Line:       danglingTag.line,
			Tag:        strings.Join(danglingTag.identifiers, identifierListSeparatorConstant+" "),
			Reason:     danglingTagReasonConstant,
		})
	}
}

// parseTagIdentifiers validates the comma-separated identifier list of one
// tag. A non-empty reason rejects the whole tag.
func parseTagIdentifiers(argumentList string) ([]string, string) {
	rawIdentifiers := strings.Split(argumentList, identifierListSeparatorConstant)
	identifiers := make([]string, 0, len(rawIdentifiers))
	for _, rawIdentifier := range rawIdentifiers {
		trimmedIdentifier := strings.TrimSpace(rawIdentifier)
		if trimmedIdentifier == "" {
			continue
		}
		unquotedIdentifier := stripMatchingQuotes(trimmedIdentifier)
		if !tagIdentifierExpression.MatchString(unquotedIdentifier) {
			return nil, fmt.Sprintf(invalidIdentifierReasonTemplateConstant, trimmedIdentifier)
		}
		identifiers = append(identifiers, unquotedIdentifier)
	}
	if len(identifiers) == 0 {
		return nil, emptyIdentifierListReasonConstant
	}
	return identifiers, ""
}

func stripMatchingQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	firstCharacter := string(value[0])
	lastCharacter := string(value[len(value)-1])
	if firstCharacter != lastCharacter {
		return value
	}
	if firstCharacter != singleQuoteConstant && firstCharacter != doubleQuoteConstant {
		return value
	}
	return value[1 : len(value)-1]
}

func (extractor Extractor) collectVerificationFiles(repositoryRoot string) ([]string, error) {
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

	verificationFiles := make([]string, 0, len(matchedFiles))
	for matchedFile := range matchedFiles {
		verificationFiles = append(verificationFiles, matchedFile)
	}
	sort.Strings(verificationFiles)
	return verificationFiles, nil
}

func relativeVerificationPath(repositoryRoot string, verificationFile string) string {
	relativePath, relativeError := filepath.Rel(repositoryRoot, verificationFile)
	if relativeError != nil {
		return filepath.ToSlash(verificationFile)
	}
	return filepath.ToSlash(relativePath)
}

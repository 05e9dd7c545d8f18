package export

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	fileBannerTemplateConstant = "### FILE: %s\n"

	skipEncodingLineTemplateConstant = "WARNING: %s: not valid UTF-8, skipped\n"
	skipReadLineTemplateConstant     = "WARNING: %s: %s, skipped\n"
	exportedLineTemplateConstant     = "EXPORTED: %d files -> %s\n"

	exportFilePermissionConstant = fs.FileMode(0o644)
	trailingNewlineConstant      = "\n"

	treeExportedDebugMessage = "tree exported"
	logFieldRootConstant     = "root"
	logFieldFileCountField   = "files"
)

// ExportOptions parameterizes one export run.
type ExportOptions struct {
	Root          string
	Configuration CommandConfiguration
}

// Service flattens directory trees into annotated export files.
type Service struct {
	logger *zap.Logger
	output io.Writer
	errors io.Writer
}

// NewService constructs an export service.
func NewService(logger *zap.Logger, output io.Writer, errorOutput io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, output: output, errors: errorOutput}
}

// Export walks the root depth-first in lexical order and writes every included
// file under a banner line to the configured output file. The output file is
// never exported, even when it sits inside the tree from a previous run.
func (service *Service) Export(options ExportOptions) error {
	configuration := options.Configuration.sanitize()

	absoluteRoot, absoluteError := filepath.Abs(options.Root)
	if absoluteError != nil {
		return absoluteError
	}

	outputPath := configuration.Output
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(absoluteRoot, outputPath)
	}
	absoluteOutputPath, outputAbsoluteError := filepath.Abs(outputPath)
	if outputAbsoluteError != nil {
		return outputAbsoluteError
	}

	excludedDirectories := stringSet(configuration.ExcludedDirectories)
	excludedExtensions := stringSet(configuration.ExcludedExtensions)
	excludedFileNames := stringSet(configuration.ExcludedFileNames)

	var exportBuilder strings.Builder
	exportedFileCount := 0

	walkError := filepath.WalkDir(absoluteRoot, func(currentPath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			service.printfError(skipReadLineTemplateConstant, currentPath, entryError)
			if directoryEntry != nil && directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if directoryEntry.IsDir() {
			if currentPath != absoluteRoot {
				if _, excluded := excludedDirectories[directoryEntry.Name()]; excluded {
					return fs.SkipDir
				}
			}
			return nil
		}

		if currentPath == absoluteOutputPath {
			return nil
		}
		if _, excluded := excludedFileNames[directoryEntry.Name()]; excluded {
			return nil
		}
		if _, excluded := excludedExtensions[strings.ToLower(filepath.Ext(directoryEntry.Name()))]; excluded {
			return nil
		}

		relativePath, relativeError := filepath.Rel(absoluteRoot, currentPath)
		if relativeError != nil {
			relativePath = currentPath
		}
		relativePath = filepath.ToSlash(relativePath)

		fileContent, readError := os.ReadFile(currentPath)
		if readError != nil {
			service.printfError(skipReadLineTemplateConstant, relativePath, readError)
			return nil
		}
		if !utf8.Valid(fileContent) {
			service.printfError(skipEncodingLineTemplateConstant, relativePath)
			return nil
		}

		exportBuilder.WriteString(fmt.Sprintf(fileBannerTemplateConstant, relativePath))
		exportBuilder.Write(fileContent)
		if !strings.HasSuffix(string(fileContent), trailingNewlineConstant) {
			exportBuilder.WriteString(trailingNewlineConstant)
		}
		exportedFileCount++
		return nil
	})
	if walkError != nil {
		return walkError
	}

	if writeError := os.WriteFile(absoluteOutputPath, []byte(exportBuilder.String()), exportFilePermissionConstant); writeError != nil {
		return writeError
	}

	service.logger.Debug(
		treeExportedDebugMessage,
		zap.String(logFieldRootConstant, absoluteRoot),
		zap.Int(logFieldFileCountField, exportedFileCount),
	)
	service.printfOutput(exportedLineTemplateConstant, exportedFileCount, configuration.Output)
	return nil
}

func stringSet(values []string) map[string]struct{} {
	valueSet := make(map[string]struct{}, len(values))
	for _, value := range values {
		valueSet[value] = struct{}{}
	}
	return valueSet
}

func (service *Service) printfOutput(format string, arguments ...any) {
	if service.output == nil {
		return
	}
	fmt.Fprintf(service.output, format, arguments...)
}

func (service *Service) printfError(format string, arguments ...any) {
	if service.errors == nil {
		return
	}
	fmt.Fprintf(service.errors, format, arguments...)
}

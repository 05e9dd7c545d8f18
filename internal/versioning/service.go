package versioning

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	packageJSONVersionFieldPatternConstant = `("version"\s*:\s*")([^"]*)(")`

	unknownServiceMessageTemplateConstant      = "unknown service %q: known services are %s"
	missingVersionFieldMessageTemplateConstant = "no version field found in %s"

	planVersionLineTemplateConstant = "PLAN-VERSION: %s %s -> %s\n"
	versionLineTemplateConstant     = "VERSION: %s %s -> %s\n"
	planGlobalLineTemplateConstant  = "PLAN-GLOBAL-VERSION: %s -> %s\n"
	globalLineTemplateConstant      = "GLOBAL-VERSION: %s -> %s\n"
	serviceListSeparatorConstant    = ", "
	temporaryFileSuffixConstant     = ".tmp"
	versionFilePermissionConstant   = fs.FileMode(0o644)
	trailingNewlineConstant         = "\n"

	versionBumpedDebugMessage = "version bumped"
	logFieldServiceConstant   = "service"
	logFieldVersionConstant   = "version"
)

var packageJSONVersionFieldExpression = regexp.MustCompile(packageJSONVersionFieldPatternConstant)

// UnknownServiceError reports a patch target outside the configured table.
type UnknownServiceError struct {
	Name          string
	KnownServices []string
}

func (serviceError UnknownServiceError) Error() string {
	return fmt.Sprintf(unknownServiceMessageTemplateConstant, serviceError.Name, strings.Join(serviceError.KnownServices, serviceListSeparatorConstant))
}

// MissingVersionFieldError reports a package.json without a version field.
type MissingVersionFieldError struct {
	Path string
}

func (fieldError MissingVersionFieldError) Error() string {
	return fmt.Sprintf(missingVersionFieldMessageTemplateConstant, fieldError.Path)
}

// FileSystem is the filesystem surface version updates go through.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Rename(oldPath string, newPath string) error
}

// PatchOptions parameterizes a single-service patch bump.
type PatchOptions struct {
	WorkingDirectory string
	ServiceName      string
	DryRun           bool
	Configuration    CommandConfiguration
}

// ReleaseOptions parameterizes a coordinated release bump.
type ReleaseOptions struct {
	WorkingDirectory string
	Level            ReleaseLevel
	DryRun           bool
	Configuration    CommandConfiguration
}

// Service applies version bumps to the configured version files.
type Service struct {
	logger     *zap.Logger
	fileSystem FileSystem
	output     io.Writer
}

// NewService constructs a versioning service.
func NewService(logger *zap.Logger, fileSystem FileSystem, output io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, fileSystem: fileSystem, output: output}
}

// Patch increments the patch component of one service's version.
func (service *Service) Patch(options PatchOptions) error {
	configuration := options.Configuration.sanitize()

	serviceConfiguration, serviceFound := findService(configuration, options.ServiceName)
	if !serviceFound {
		return UnknownServiceError{Name: options.ServiceName, KnownServices: configuration.serviceNames()}
	}

	currentVersion, readError := service.readServiceVersion(options.WorkingDirectory, serviceConfiguration)
	if readError != nil {
		return readError
	}

	bumpedVersion := currentVersion.BumpPatch()
	return service.applyServiceVersion(options.WorkingDirectory, serviceConfiguration, currentVersion, bumpedVersion, options.DryRun)
}

// Release bumps the global version at the requested level and aligns every
// configured service to X.Y.0.
func (service *Service) Release(options ReleaseOptions) error {
	configuration := options.Configuration.sanitize()

	globalPath := filepath.Join(options.WorkingDirectory, GlobalVersionFileNameConstant)
	globalContent, readError := service.fileSystem.ReadFile(globalPath)
	if readError != nil {
		return readError
	}
	currentGlobal, parseError := ParseVersion(string(globalContent), GlobalVersionFileNameConstant)
	if parseError != nil {
		return parseError
	}

	bumpedGlobal := currentGlobal.BumpRelease(options.Level)
	alignedService := bumpedGlobal.AlignedServiceVersion()

	// Validate every service file before touching anything so a malformed
	// file cannot leave the workspace half-released.
	currentVersions := make([]Version, len(configuration.Services))
	for serviceIndex, serviceConfiguration := range configuration.Services {
		currentVersion, serviceReadError := service.readServiceVersion(options.WorkingDirectory, serviceConfiguration)
		if serviceReadError != nil {
			return serviceReadError
		}
		currentVersions[serviceIndex] = currentVersion
	}

	if options.DryRun {
		service.printfOutput(planGlobalLineTemplateConstant, currentGlobal, bumpedGlobal)
	} else {
		if writeError := service.writeFileAtomically(globalPath, []byte(bumpedGlobal.String()+trailingNewlineConstant)); writeError != nil {
			return writeError
		}
		service.printfOutput(globalLineTemplateConstant, currentGlobal, bumpedGlobal)
	}

	for serviceIndex, serviceConfiguration := range configuration.Services {
		if applyError := service.applyServiceVersion(options.WorkingDirectory, serviceConfiguration, currentVersions[serviceIndex], alignedService, options.DryRun); applyError != nil {
			return applyError
		}
	}
	return nil
}

func findService(configuration CommandConfiguration, serviceName string) (ServiceConfiguration, bool) {
	trimmedName := strings.TrimSpace(serviceName)
	for _, serviceConfiguration := range configuration.Services {
		if serviceConfiguration.Name == trimmedName {
			return serviceConfiguration, true
		}
	}
	return ServiceConfiguration{}, false
}

func (service *Service) readServiceVersion(workingDirectory string, serviceConfiguration ServiceConfiguration) (Version, error) {
	versionFilePath := filepath.Join(workingDirectory, filepath.FromSlash(serviceConfiguration.File))
	fileContent, readError := service.fileSystem.ReadFile(versionFilePath)
	if readError != nil {
		return Version{}, readError
	}

	if VersionFileFormat(serviceConfiguration.Format) == FormatPackageJSON {
		fieldMatch := packageJSONVersionFieldExpression.FindSubmatch(fileContent)
		if fieldMatch == nil {
			return Version{}, MissingVersionFieldError{Path: serviceConfiguration.File}
		}
		return ParseVersion(string(fieldMatch[2]), serviceConfiguration.File)
	}

	return ParseVersion(string(fileContent), serviceConfiguration.File)
}

func (service *Service) applyServiceVersion(workingDirectory string, serviceConfiguration ServiceConfiguration, currentVersion Version, nextVersion Version, dryRun bool) error {
	if dryRun {
		service.printfOutput(planVersionLineTemplateConstant, serviceConfiguration.Name, currentVersion, nextVersion)
		return nil
	}

	versionFilePath := filepath.Join(workingDirectory, filepath.FromSlash(serviceConfiguration.File))

	var updatedContent []byte
	if VersionFileFormat(serviceConfiguration.Format) == FormatPackageJSON {
		fileContent, readError := service.fileSystem.ReadFile(versionFilePath)
		if readError != nil {
			return readError
		}
		updatedContent = packageJSONVersionFieldExpression.ReplaceAll(fileContent, []byte("${1}"+nextVersion.String()+"${3}"))
	} else {
		updatedContent = []byte(nextVersion.String() + trailingNewlineConstant)
	}

	if writeError := service.writeFileAtomically(versionFilePath, updatedContent); writeError != nil {
		return writeError
	}

	service.logger.Debug(
		versionBumpedDebugMessage,
		zap.String(logFieldServiceConstant, serviceConfiguration.Name),
		zap.String(logFieldVersionConstant, nextVersion.String()),
	)
	service.printfOutput(versionLineTemplateConstant, serviceConfiguration.Name, currentVersion, nextVersion)
	return nil
}

// writeFileAtomically stages the content beside the target and renames it into
// place so readers never observe a partial write.
func (service *Service) writeFileAtomically(path string, content []byte) error {
	temporaryPath := path + temporaryFileSuffixConstant
	if writeError := service.fileSystem.WriteFile(temporaryPath, content, versionFilePermissionConstant); writeError != nil {
		return writeError
	}
	return service.fileSystem.Rename(temporaryPath, path)
}

func (service *Service) printfOutput(format string, arguments ...any) {
	if service.output == nil {
		return
	}
	fmt.Fprintf(service.output, format, arguments...)
}

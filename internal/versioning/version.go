package versioning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	versionPatternConstant = `^\d+\.\d+(\.\d+)?$`

	versionComponentSeparatorConstant = "."

	malformedVersionMessageTemplateConstant = "malformed version %q in %s: expected X.Y or X.Y.Z"
)

var versionExpression = regexp.MustCompile(versionPatternConstant)

// ReleaseLevel selects which global version component a release bumps.
type ReleaseLevel string

// Supported release levels.
const (
	ReleaseLevelMinor ReleaseLevel = "minor"
	ReleaseLevelMajor ReleaseLevel = "major"
)

// InvalidReleaseLevelError reports a release level outside minor/major.
type InvalidReleaseLevelError struct {
	Value string
}

func (levelError InvalidReleaseLevelError) Error() string {
	return fmt.Sprintf("invalid release level %q: expected %s or %s", levelError.Value, ReleaseLevelMinor, ReleaseLevelMajor)
}

// ParseReleaseLevel validates a textual release level.
func ParseReleaseLevel(candidate string) (ReleaseLevel, error) {
	normalized := ReleaseLevel(strings.ToLower(strings.TrimSpace(candidate)))
	switch normalized {
	case ReleaseLevelMinor, ReleaseLevelMajor:
		return normalized, nil
	default:
		return "", InvalidReleaseLevelError{Value: candidate}
	}
}

// MalformedVersionError reports version file content outside X.Y[.Z].
type MalformedVersionError struct {
	Path  string
	Value string
}

func (versionError MalformedVersionError) Error() string {
	return fmt.Sprintf(malformedVersionMessageTemplateConstant, versionError.Value, versionError.Path)
}

// Version is a parsed X.Y or X.Y.Z value.
type Version struct {
	Major    int
	Minor    int
	Patch    int
	HasPatch bool
}

// ParseVersion validates and decomposes a version string; the path names the
// source file in errors.
func ParseVersion(value string, path string) (Version, error) {
	trimmedValue := strings.TrimSpace(value)
	if !versionExpression.MatchString(trimmedValue) {
		return Version{}, MalformedVersionError{Path: path, Value: trimmedValue}
	}

	components := strings.Split(trimmedValue, versionComponentSeparatorConstant)
	major, _ := strconv.Atoi(components[0])
	minor, _ := strconv.Atoi(components[1])
	parsed := Version{Major: major, Minor: minor}
	if len(components) == 3 {
		patch, _ := strconv.Atoi(components[2])
		parsed.Patch = patch
		parsed.HasPatch = true
	}
	return parsed, nil
}

// String renders the version with the precision it was parsed with.
func (version Version) String() string {
	if version.HasPatch {
		return fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)
	}
	return fmt.Sprintf("%d.%d", version.Major, version.Minor)
}

// BumpPatch returns the version with Z incremented.
func (version Version) BumpPatch() Version {
	bumped := version
	bumped.Patch++
	bumped.HasPatch = true
	return bumped
}

// BumpRelease returns the version advanced at the release level, Y reset for
// major releases and Z dropped in both cases.
func (version Version) BumpRelease(level ReleaseLevel) Version {
	bumped := Version{Major: version.Major, Minor: version.Minor}
	switch level {
	case ReleaseLevelMajor:
		bumped.Major++
		bumped.Minor = 0
	default:
		bumped.Minor++
	}
	return bumped
}

// AlignedServiceVersion returns the X.Y.0 version services adopt after a release.
func (version Version) AlignedServiceVersion() Version {
	return Version{Major: version.Major, Minor: version.Minor, Patch: 0, HasPatch: true}
}

package roles

import (
	"fmt"
	"strings"
)

const (
	unknownRoleErrorTemplateConstant = "repository %s carries no role topic (topics: %s)"
	invalidRoleErrorTemplateConstant = "invalid role %q"
	noTopicsLabelConstant            = "none"
	topicListSeparatorConstant       = ", "
)

// Role classifies a repository's architectural position in the workspace.
type Role string

// Supported roles.
const (
	RoleCore       Role = "core"
	RoleEnabler    Role = "enabler"
	RoleSector     Role = "sector"
	RoleWorker     Role = "worker"
	RoleTooling    Role = "tooling"
	RoleGovernance Role = "governance"
	RoleMeta       Role = "meta"
)

// LayoutKind describes which golden-template layout a role uses.
type LayoutKind string

// Supported layout kinds.
const (
	LayoutMonorepo LayoutKind = "monorepo"
	LayoutRootOnly LayoutKind = "rootonly"
)

// Layout reports the template layout associated with the role.
func (role Role) Layout() LayoutKind {
	switch role {
	case RoleCore, RoleEnabler, RoleSector:
		return LayoutMonorepo
	default:
		return LayoutRootOnly
	}
}

// InvalidRoleError indicates a value outside the role enumeration.
type InvalidRoleError struct {
	Value string
}

// Error describes the invalid role.
func (roleError InvalidRoleError) Error() string {
	return fmt.Sprintf(invalidRoleErrorTemplateConstant, roleError.Value)
}

// ParseRole validates a textual role value.
func ParseRole(candidate string) (Role, error) {
	normalized := Role(strings.ToLower(strings.TrimSpace(candidate)))
	switch normalized {
	case RoleCore, RoleEnabler, RoleSector, RoleWorker, RoleTooling, RoleGovernance, RoleMeta:
		return normalized, nil
	default:
		return "", InvalidRoleError{Value: candidate}
	}
}

// InvalidLayoutError indicates a value outside the layout enumeration.
type InvalidLayoutError struct {
	Value string
}

// Error describes the invalid layout.
func (layoutError InvalidLayoutError) Error() string {
	return fmt.Sprintf(invalidRoleErrorTemplateConstant, layoutError.Value)
}

// ParseLayoutKind validates a textual layout value.
func ParseLayoutKind(candidate string) (LayoutKind, error) {
	normalized := LayoutKind(strings.ToLower(strings.TrimSpace(candidate)))
	switch normalized {
	case LayoutMonorepo, LayoutRootOnly:
		return normalized, nil
	default:
		return "", InvalidLayoutError{Value: candidate}
	}
}

// UnknownRoleError reports a repository whose topics name no known role.
type UnknownRoleError struct {
	Repository string
	Topics     []string
}

// Error describes the classification failure.
func (roleError UnknownRoleError) Error() string {
	topicList := noTopicsLabelConstant
	if len(roleError.Topics) > 0 {
		topicList = strings.Join(roleError.Topics, topicListSeparatorConstant)
	}
	return fmt.Sprintf(unknownRoleErrorTemplateConstant, roleError.Repository, topicList)
}

// DefaultPrecedence returns the role resolution order, most specific first.
func DefaultPrecedence() []Role {
	return []Role{RoleWorker, RoleSector, RoleEnabler, RoleCore, RoleTooling, RoleGovernance, RoleMeta}
}

// DefaultAliases maps legacy topic spellings onto roles.
func DefaultAliases() map[string]Role {
	return map[string]Role{
		"product":   RoleCore,
		"ecosystem": RoleMeta,
	}
}

// Classifier assigns roles from repository topic lists.
type Classifier struct {
	precedence []Role
	aliases    map[string]Role
}

// NewClassifier constructs a classifier; nil precedence or aliases select the defaults.
func NewClassifier(precedence []Role, aliases map[string]Role) *Classifier {
	if len(precedence) == 0 {
		precedence = DefaultPrecedence()
	}
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Classifier{precedence: precedence, aliases: aliases}
}

// Classify resolves the repository role from its topics.
//
// The first role in precedence order whose topic token appears wins; aliases
// count as their target role. No role topic at all yields UnknownRoleError.
func (classifier *Classifier) Classify(repositoryName string, topics []string) (Role, error) {
	presentRoles := make(map[Role]struct{}, len(topics))
	for _, topic := range topics {
		normalizedTopic := strings.ToLower(strings.TrimSpace(topic))
		if len(normalizedTopic) == 0 {
			continue
		}
		if aliasedRole, aliased := classifier.aliases[normalizedTopic]; aliased {
			presentRoles[aliasedRole] = struct{}{}
			continue
		}
		if parsedRole, parseError := ParseRole(normalizedTopic); parseError == nil {
			presentRoles[parsedRole] = struct{}{}
		}
	}

	for _, candidateRole := range classifier.precedence {
		if _, present := presentRoles[candidateRole]; present {
			return candidateRole, nil
		}
	}

	return "", UnknownRoleError{Repository: repositoryName, Topics: topics}
}

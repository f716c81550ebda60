package discovery

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const (
	pathNotFoundMessageConstant         = "path not found"
	permissionDeniedMessageConstant     = "permission denied"
	notADirectoryMessageConstant        = "not a directory"
	discoveryErrorTemplateConstant      = "%s: %s"
	discoveryErrorCauseTemplateConstant = "%s: %s: %s"
)

var (
	// ErrPathNotFound marks a root that does not exist or is not a directory.
	ErrPathNotFound = errors.New(pathNotFoundMessageConstant)
	// ErrPermissionDenied marks a directory that could not be read.
	ErrPermissionDenied = errors.New(permissionDeniedMessageConstant)

	errNotADirectory = errors.New(notADirectoryMessageConstant)
)

// DiscoveryError reports a per-path discovery condition. Kind is ErrPathNotFound or ErrPermissionDenied.
type DiscoveryError struct {
	Kind  error
	Path  string
	Cause error
}

// Error describes the condition.
func (discoveryError DiscoveryError) Error() string {
	kindMessage := pathNotFoundMessageConstant
	if discoveryError.Kind != nil {
		kindMessage = discoveryError.Kind.Error()
	}
	if discoveryError.Cause == nil {
		return fmt.Sprintf(discoveryErrorTemplateConstant, kindMessage, discoveryError.Path)
	}
	return fmt.Sprintf(discoveryErrorCauseTemplateConstant, kindMessage, discoveryError.Path, discoveryError.Cause.Error())
}

// Is matches the error kind.
func (discoveryError DiscoveryError) Is(target error) bool {
	return discoveryError.Kind != nil && target == discoveryError.Kind
}

// Unwrap exposes the underlying filesystem error.
func (discoveryError DiscoveryError) Unwrap() error {
	return discoveryError.Cause
}

package shellinit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	defaultFunctionNameConstant         = "clone"
	defaultBinaryNameConstant           = "git-tools"
	invalidFunctionNameTemplateConstant = "%q"
	functionTemplateConstant            = `%[1]s() {
    local %[1]s_argument %[1]s_target
    for %[1]s_argument in "$@"; do
        case "$%[1]s_argument" in
            %[3]s)
                command %[2]s clone "$@"
                return
                ;;
        esac
    done
    %[1]s_target="$(command %[2]s clone "$@")" || return
    cd "$%[1]s_target" || return
}
`
)

// PassthroughArguments are the arguments that make the function delegate to the binary
// without changing directory. Only exact matches count.
var PassthroughArguments = []string{"-h", "--help", "help", "-v", "--version"}

var functionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidFunctionName indicates a function name the shell would reject.
var ErrInvalidFunctionName = errors.New("invalid shell function name")

// RenderFunction returns a POSIX function named functionName for bash and zsh.
func RenderFunction(functionName string, binaryName string) (string, error) {
	trimmedName := strings.TrimSpace(functionName)
	if len(trimmedName) == 0 {
		trimmedName = defaultFunctionNameConstant
	}
	if !functionNamePattern.MatchString(trimmedName) {
		return "", errors.Wrapf(ErrInvalidFunctionName, invalidFunctionNameTemplateConstant, functionName)
	}

	trimmedBinary := strings.TrimSpace(binaryName)
	if len(trimmedBinary) == 0 {
		trimmedBinary = defaultBinaryNameConstant
	}

	return fmt.Sprintf(functionTemplateConstant, trimmedName, trimmedBinary, strings.Join(PassthroughArguments, "|")), nil
}

package shellinit

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	commandUseConstant              = "shell-init"
	commandShortDescriptionConstant = "Print a shell function that clones and changes into the repository"
	commandLongDescriptionConstant  = "shell-init prints a bash/zsh function. Add eval \"$(git-tools shell-init)\" to your shell profile, then clone org/repo leaves you inside the clone."
	flagFunctionNameConstant        = "function"
	flagFunctionDescriptionConstant = "Name of the generated shell function"
)

// CommandBuilder assembles the shell-init command.
type CommandBuilder struct {
	BinaryName string
}

// Build constructs the shell-init command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().String(flagFunctionNameConstant, defaultFunctionNameConstant, flagFunctionDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	functionName, _ := command.Flags().GetString(flagFunctionNameConstant)
	script, renderError := RenderFunction(functionName, builder.BinaryName)
	if renderError != nil {
		return renderError
	}
	_, writeError := fmt.Fprint(command.OutOrStdout(), script)
	return writeError
}

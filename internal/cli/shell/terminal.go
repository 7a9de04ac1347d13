package shell

import "github.com/marmos91/dirserve/internal/cli/prompt"

// TerminalPrompter reads input interactively from the terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Command() (string, error) {
	return prompt.Input("> Ingrese comando", "")
}

func (TerminalPrompter) ConfirmSave() (bool, error) {
	return prompt.Confirm("¿Desea guardar el archivo localmente?", false)
}

func (TerminalPrompter) Filename() (string, error) {
	return prompt.InputRequired("Nombre del archivo local")
}

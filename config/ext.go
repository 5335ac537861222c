package config

import (
	"os/exec"
)

// ShellCommand is argv, the first element is the program.
type ShellCommand []string

func (s ShellCommand) Empty() bool {
	return len(s) == 0
}

func (s ShellCommand) ToCommand() *exec.Cmd {
	if len(s) == 0 {
		return nil
	}

	return exec.Command(s[0], s[1:]...)
}

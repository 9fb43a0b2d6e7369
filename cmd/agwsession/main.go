package main

import (
	"os"

	cmd "github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands"
)

func main() {
	writer := &cmd.Writer{
		Out: os.Stdout,
		Err: os.Stderr,
	}
	cmd.Execute(writer)
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/forest-fire/firemock-sub000/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// Exit errors have already been reported by the command.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/phonekit/phonekit/internal/cli"
	"github.com/phonekit/phonekit/internal/cli/ui"
)

// Set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		var se *ui.SuggestedError
		if errors.As(err, &se) {
			fmt.Fprint(os.Stderr, ui.FormatError(err.Error(), se.Suggestions...))
		} else {
			fmt.Fprint(os.Stderr, ui.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

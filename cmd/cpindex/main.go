package main

import (
	"context"
	"os"

	"github.com/agbru/cpindex/internal/app"
	"github.com/agbru/cpindex/internal/cli"
	"github.com/agbru/cpindex/internal/ui"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(0)
		}
		ui.InitTheme("dark", false, os.Stderr)
		os.Exit(cli.CLITablePresenter{}.HandleError(err, os.Stderr))
	}

	exitCode := application.Run(context.Background(), os.Stdout)
	os.Exit(exitCode)
}

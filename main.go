package main

import (
	"errors"
	"os"

	"github.com/GoPowerDNS-Admin/mysqlauth/app"
)

func main() {
	err := app.Execute()
	if err == nil {
		return
	}

	var oe *app.OutcomeError
	if errors.As(err, &oe) {
		os.Exit(oe.Outcome.ExitCode())
	}

	os.Exit(1)
}

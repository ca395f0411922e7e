package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ideamans/go-sheetview/internal/cli"
)

var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if err := cli.Execute(context.Background(),
		version,
		commit,
		date,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

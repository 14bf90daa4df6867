package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/billing/internal/app"
	"github.com/andy/billing/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit.
func run() int {
	// A .env file is optional; real environment variables win over it
	_ = godotenv.Load()

	// If the user asked for help, avoid initializing the full app (which may prompt)
	skipInit := false
	for _, a := range os.Args[1:] {
		if a == "-h" || a == "--help" || a == "help" || a == "completion" {
			skipInit = true
			break
		}
	}

	ctx := context.Background()
	if !skipInit {
		a, err := app.New(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			return 1
		}
		defer a.Close()
		cli.SetApp(a)
	}

	if err := cli.Execute(ctx); err != nil {
		// cobra has already printed the error
		return 1
	}
	return 0
}

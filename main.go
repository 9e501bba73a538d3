package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/abcbank/voxteller/pkg/cli"
)

var version = "dev"

func main() {
	// Missing .env is fine, flags fall back to process environment
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}

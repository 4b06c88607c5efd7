package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/zakariaelb/canrag/cmd"
)

func main() {
	// .env is optional; environment variables win when both are set.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

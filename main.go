package main

import (
	"fmt"
	"os"

	"github.com/voxlog/voxlog/cmd"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists; otherwise rely on the process environment.
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found - using environment variables")
	}
}

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

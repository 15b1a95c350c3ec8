// File: cmd/app/main.go
package main

import (
	"os"

	"composite-client/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

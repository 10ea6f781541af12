// cmd/promptcheck/main.go
package main

import (
	cmd "github.com/promptcheck/promptcheck/internal/cli"
)

// main starts the promptcheck CLI application by delegating to the cobra
// root command defined in the promptcheck package.
func main() {
	cmd.Execute()
}

// Command typecore is the CLI front-end over the gradual type analyzer
// core, grounded on the teacher's cmd/morfx main entry point and its
// demo/cmd cobra command tree (internal/cli's buildConfigFromFlags +
// demo/cmd/main.go's cobra.Command wiring), generalized from "file
// transformation runner" to "type-resolution query front-end".
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load a local .env into the process environment, the teacher's own
	// root-level convention; absence is not an error. The only variable
	// read from it is the libsql store's TYPECORE_LIBSQL_AUTH_TOKEN.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the CLI entrypoint for notation-mapper.
//
// notation-mapper works on entity types annotated with notation markers:
//   - scan finds entity types in Go packages and checks their tags
//   - gen writes the registration file of every scanned package
//   - schema builds the catalog model and prints it as YAML or JSON
//   - ddl and apply render the model as PostgreSQL DDL and run it
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

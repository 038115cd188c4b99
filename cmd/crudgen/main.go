// crudgen generates CRUD scaffolding for a Go project from a YAML schema.
//
//	crudgen generate --schema schema.yaml
//	crudgen rollback --list
package main

import (
	"os"

	"github.com/syssam/crudgen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

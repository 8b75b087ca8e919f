// Command schema writes the JSON schema of the newswatch configuration,
// run via go:generate in pkg/config
package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newswatch/pkg/config"
)

func main() {
	out := "schema.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	changed, err := writeSchema(out)
	if err != nil {
		lgr.Fatalf("[ERROR] %v", err)
	}
	if !changed {
		lgr.Printf("[INFO] schema %s is up to date", out)
		return
	}
	lgr.Printf("[INFO] schema written to %s", out)
}

// writeSchema regenerates the schema file, the file is left untouched when the content is the same
func writeSchema(path string) (changed bool, err error) {
	data, err := json.MarshalIndent(config.GenerateSchema(), "", "  ")
	if err != nil {
		return false, err
	}
	data = append(data, '\n')

	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) { //nolint:gosec // path comes from go:generate
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		return false, err
	}
	return true, nil
}

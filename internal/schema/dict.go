// Package schema provides SchemaProvider implementations that back
// `--schema FILE` and library callers wanting to validate lineage
// against a live catalog instead of a hand-maintained file.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"
	"gopkg.in/yaml.v3"
)

// LoadDictFromFile reads a JSON or YAML schema file (chosen by
// extension; YAML is the fallback) shaped as an object mapping a table
// name (optionally schema- or database-qualified, "." separated) to its
// ordered column list, and returns a lineage.DictSchemaProvider over it.
func LoadDictFromFile(path string) (*lineage.DictSchemaProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", path, err)
	}

	tables := map[string][]string{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &tables); err != nil {
			return nil, fmt.Errorf("parsing schema file %s as JSON: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &tables); err != nil {
			return nil, fmt.Errorf("parsing schema file %s as YAML: %w", path, err)
		}
	}

	return lineage.NewDictSchemaProvider(tables), nil
}

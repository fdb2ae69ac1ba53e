package cmd

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// writeStructured encodes v as JSON or YAML when one of those formats was
// requested. It reports whether it wrote anything.
func writeStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return true, err
		}
		return true, encoder.Close()
	default:
		return false, nil
	}
}

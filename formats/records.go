package formats

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/hwmstore/hwm"
)

// Entry is the document form of one HWM in json and yaml output
type Entry struct {
	QualifiedName string     `json:"qualified_name" yaml:"qualified_name"`
	Record        hwm.Record `json:"record" yaml:"record"`
}

// Entries serializes items in order
func Entries(items []hwm.HWM) ([]Entry, error) {
	out := make([]Entry, 0, len(items))
	for _, h := range items {
		rec, err := h.Serialize()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s: %w", h.QualifiedName(), err)
		}
		out = append(out, Entry{QualifiedName: h.QualifiedName(), Record: rec})
	}
	return out, nil
}

func renderJSON(w io.Writer, items []hwm.HWM) error {
	entries, err := Entries(items)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func renderYAML(w io.Writer, items []hwm.HWM) error {
	entries, err := Entries(items)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	mustRegister(&OutputFormat{Name: "json", Render: renderJSON})
	mustRegister(&OutputFormat{Name: "yaml", Render: renderYAML})
}

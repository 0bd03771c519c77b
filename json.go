package columnar

import (
	"bytes"
	"encoding/json"
	"io"
)

// document is the JSON and YAML shape of one report.
type document struct {
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Header []string `json:"header" yaml:"header"`
	Rows   [][]any  `json:"rows" yaml:"rows"`
}

// JSONGenerator encodes reports as {"name", "header", "rows"} objects: a
// single object for one report, an array for several.
type JSONGenerator struct {
	reportSet
}

// NewJSONGenerator returns an empty JSONGenerator.
func NewJSONGenerator() *JSONGenerator { return &JSONGenerator{} }

// Generate encodes every added report. With no reports the output is empty.
func (g *JSONGenerator) Generate() ([]byte, error) {
	if len(g.entries) == 0 {
		return nil, nil
	}
	docs, err := documents(g.entries)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, docs, g.entries[0].opts.Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(w io.Writer, docs []document, indent string) error {
	enc := json.NewEncoder(w)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if len(docs) == 1 {
		return enc.Encode(docs[0])
	}
	return enc.Encode(docs)
}

func documents(entries []entry) ([]document, error) {
	docs := make([]document, 0, len(entries))
	for _, e := range entries {
		rows, err := e.report.Rows()
		if err != nil {
			return nil, err
		}
		docs = append(docs, document{Name: e.opts.Name, Header: e.report.Header(), Rows: rows})
	}
	return docs, nil
}

package columnar

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLGenerator encodes reports with the same shape as [JSONGenerator].
type YAMLGenerator struct {
	reportSet
}

// NewYAMLGenerator returns an empty YAMLGenerator.
func NewYAMLGenerator() *YAMLGenerator { return &YAMLGenerator{} }

// Generate encodes every added report. With no reports the output is empty.
func (g *YAMLGenerator) Generate() ([]byte, error) {
	if len(g.entries) == 0 {
		return nil, nil
	}
	docs, err := documents(g.entries)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeYAML(&buf, docs, g.entries[0].opts.Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeYAML(w io.Writer, docs []document, indent string) error {
	enc := yaml.NewEncoder(w)
	if indent != "" {
		enc.SetIndent(len(indent))
	}
	if len(docs) == 1 {
		if err := enc.Encode(docs[0]); err != nil {
			return err
		}
	} else {
		if err := enc.Encode(docs); err != nil {
			return err
		}
	}
	return enc.Close()
}

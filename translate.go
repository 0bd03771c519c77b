package columnar

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator looks up a localized label by dotted path. A report without a
// Translator uses raw column keys as headers.
type Translator interface {
	Translate(path string) string
}

// TranslatorFunc adapts a function to [Translator].
type TranslatorFunc func(path string) string

// Translate calls f(path).
func (f TranslatorFunc) Translate(path string) string { return f(path) }

// CatalogTranslator resolves paths against an x/text message catalog for
// one language. Paths missing from the catalog come back unchanged.
type CatalogTranslator struct {
	printer *message.Printer
	known   map[string]struct{}
}

// NewCatalogTranslator builds a translator for tag from a flat path→label
// map.
func NewCatalogTranslator(tag language.Tag, labels map[string]string) (*CatalogTranslator, error) {
	b := catalog.NewBuilder(catalog.Fallback(tag))
	known := make(map[string]struct{}, len(labels))
	for path, label := range labels {
		// Labels are stored as format strings.
		if err := b.SetString(tag, path, strings.ReplaceAll(label, "%", "%%")); err != nil {
			return nil, err
		}
		known[path] = struct{}{}
	}
	return &CatalogTranslator{printer: message.NewPrinter(tag, message.Catalog(b)), known: known}, nil
}

// Translate returns the label for path.
func (t *CatalogTranslator) Translate(path string) string {
	if _, ok := t.known[path]; !ok {
		return path
	}
	return t.printer.Sprintf(path)
}

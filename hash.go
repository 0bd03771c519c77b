package columnar

// Dataset is the structured form of one report.
type Dataset struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Map returns the dataset as {"header": ..., "rows": ...}.
func (d Dataset) Map() map[string]any {
	return map[string]any{"header": d.Header, "rows": d.Rows}
}

// HashGenerator materializes reports into [Dataset] values. It is the
// minimal adapter: no encoding, no escaping.
type HashGenerator struct {
	reportSet
}

// NewHashGenerator returns an empty HashGenerator.
func NewHashGenerator() *HashGenerator { return &HashGenerator{} }

// Generate returns one Dataset per added report, in order. It fails with
// [ErrNoReports] when nothing was added.
func (g *HashGenerator) Generate() ([]Dataset, error) {
	if len(g.entries) == 0 {
		return nil, ErrNoReports
	}
	out := make([]Dataset, 0, len(g.entries))
	for _, e := range g.entries {
		rows, err := e.report.Rows()
		if err != nil {
			return nil, err
		}
		out = append(out, Dataset{Name: e.opts.Name, Header: e.report.Header(), Rows: rows})
	}
	return out, nil
}

type entry struct {
	report *Report
	opts   Options
}

// reportSet implements AddReport for generators that accept any number of
// reports and need no option validation.
type reportSet struct {
	entries []entry
}

// AddReport queues r for the next Generate.
func (s *reportSet) AddReport(r *Report, opts Options) error {
	s.entries = append(s.entries, entry{report: r, opts: opts})
	return nil
}

package columnar

import (
	"fmt"
	"io"
)

// Stream writes r to w in format f. Row-independent formats (CSV, TSV,
// JSONL) are written as rows arrive, so memory stays bounded by the
// source's batch size. Formats that need every row for layout, and
// formats from other packages, are generated in full and then written.
func Stream(w io.Writer, f Format, r *Report, opts Options) error {
	switch f {
	case CSV:
		return writeCSV(w, r, opts)
	case TSV:
		return writeTSV(w, r)
	case JSONL:
		return writeJSONL(w, r)
	case Hash:
		return fmt.Errorf("%w: %q is not an encoding", ErrUnsupportedFormat, f)
	default:
		data, err := r.Export(f, opts)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

package records

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type exportDoc struct {
	Count   int      `yaml:"count"`
	Totals  Totals   `yaml:"totals"`
	Records []Record `yaml:"records"`
}

// ExportYAML writes recs and their totals as a YAML document
func ExportYAML(w io.Writer, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	doc := exportDoc{Count: len(recs), Totals: ComputeTotals(recs), Records: recs}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export records: %w", err)
	}
	return enc.Close()
}

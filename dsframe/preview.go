package dsframe

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// TablePreview is a bounded head of a table in split orientation: column
// names, row index, and row values as separate arrays. It is the shape
// consumed by catalog UIs, and marshals to the conventional
// {"columns": ..., "index": ..., "data": ...} JSON document.
type TablePreview struct {
	Columns []string          `json:"columns"`
	Index   []int             `json:"index"`
	Data    [][]ldvalue.Value `json:"data"`
}

// PreviewOf converts a (presumably already truncated) frame to split
// orientation.
func PreviewOf(f *Frame) TablePreview {
	p := TablePreview{Columns: f.Columns()}
	for i := 0; i < f.NumRows(); i++ {
		p.Index = append(p.Index, i)
		p.Data = append(p.Data, f.Row(i))
	}
	return p
}

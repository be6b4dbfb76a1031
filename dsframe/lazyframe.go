package dsframe

// ScanFunc produces the underlying table of a LazyFrame. It is invoked at
// most once per Collect call, never at LazyFrame construction time.
type ScanFunc func() (*Frame, error)

// LazyFrame is a deferred table: a scan plus a small plan of restrictions
// (column selection, row limit) applied when Collect runs. Until Collect is
// called, no data is read.
//
// LazyFrames are immutable; Select and Head return derived plans that share
// the same scan.
type LazyFrame struct {
	scan    ScanFunc
	columns []string // nil means all
	limit   int      // < 0 means no limit
}

// NewLazyFrame wraps a scan as a LazyFrame with no restrictions.
func NewLazyFrame(scan ScanFunc) *LazyFrame {
	return &LazyFrame{scan: scan, limit: -1}
}

// FromFrame wraps an already materialized frame, so eager data can flow
// through lazy-typed interfaces.
func FromFrame(f *Frame) *LazyFrame {
	return NewLazyFrame(func() (*Frame, error) { return f, nil })
}

// Select restricts the plan to the named columns.
func (lf *LazyFrame) Select(columns ...string) *LazyFrame {
	return &LazyFrame{scan: lf.scan, columns: append([]string(nil), columns...), limit: lf.limit}
}

// Head restricts the plan to at most n leading rows.
func (lf *LazyFrame) Head(n int) *LazyFrame {
	limit := n
	if lf.limit >= 0 && lf.limit < limit {
		limit = lf.limit
	}
	return &LazyFrame{scan: lf.scan, columns: lf.columns, limit: limit}
}

// Collect runs the scan and applies the plan, materializing the result.
func (lf *LazyFrame) Collect() (*Frame, error) {
	f, err := lf.scan()
	if err != nil {
		return nil, err
	}
	if lf.limit >= 0 {
		f = f.Head(lf.limit)
	}
	if lf.columns != nil {
		f, err = f.Select(lf.columns)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

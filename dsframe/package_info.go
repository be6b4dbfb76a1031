// Package dsframe provides the tabular value types moved through dataset
// adapters: Frame, a fully materialized in-memory table; LazyFrame, a
// deferred scan whose contents are only produced by an explicit Collect;
// and TablePreview, a bounded row/column split of a table's head.
//
// Cells are ldvalue.Value so rows can mix present and null values without
// reflection, and so frames round-trip cleanly through JSON-shaped codecs.
package dsframe

package tabio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/parquet-go/parquet-go"

	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
)

// Parquet options recognized in load/save args.
const (
	parquetArgColumns     = "columns"     // load only: restrict to these columns
	parquetArgCompression = "compression" // save only: snappy (default), gzip, zstd, uncompressed
)

// Parquet groups sort fields by name, so the writer records the frame's
// original column order in file metadata and the reader restores it.
const columnOrderMetadataKey = "go-dataset-sdk:column-order"

const columnOrderSeparator = "\x1f"

// WriteParquet encodes a frame as a parquet file.
func WriteParquet(w io.Writer, f *dsframe.Frame, args map[string]ldvalue.Value) error {
	schema, err := frameSchema(f)
	if err != nil {
		return err
	}
	opts := []parquet.WriterOption{
		schema,
		parquet.KeyValueMetadata(columnOrderMetadataKey,
			strings.Join(f.Columns(), columnOrderSeparator)),
	}
	codec, err := compressionCodec(args)
	if err != nil {
		return err
	}
	opts = append(opts, codec)

	pw := parquet.NewGenericWriter[map[string]any](w, opts...)
	columns, types := f.Columns(), f.Types()
	rows := make([]map[string]any, 0, f.NumRows())
	for i := 0; i < f.NumRows(); i++ {
		row := make(map[string]any, len(columns))
		for j, col := range columns {
			cell := f.Cell(i, j)
			if cell.IsNull() {
				continue // missing key encodes null for optional fields
			}
			switch types[j] {
			case dsframe.Bool:
				row[col] = cell.BoolValue()
			case dsframe.Int:
				row[col] = int64(cell.IntValue())
			case dsframe.Float:
				row[col] = cell.Float64Value()
			default:
				row[col] = cell.StringValue()
			}
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			return err
		}
	}
	return pw.Close()
}

// ReadParquet decodes a whole parquet file into a frame.
func ReadParquet(ra io.ReaderAt, size int64, args map[string]ldvalue.Value) (*dsframe.Frame, error) {
	pf, err := parquet.OpenFile(ra, size)
	if err != nil {
		return nil, err
	}
	rows, err := readRows(pf, -1)
	if err != nil {
		return nil, err
	}
	frame, err := frameFromRows(pf, rows)
	if err != nil {
		return nil, err
	}
	if v, ok := args[parquetArgColumns]; ok {
		return frame.Select(stringSlice(v))
	}
	return frame, nil
}

// ReadParquetHead decodes at most nrows leading rows, optionally restricted
// to the named columns. Row groups past the limit are never opened, so the
// cost is bounded by nrows rather than by file size.
func ReadParquetHead(ra io.ReaderAt, size int64, nrows int, columns []string) (*dsframe.Frame, error) {
	pf, err := parquet.OpenFile(ra, size)
	if err != nil {
		return nil, err
	}
	if nrows < 0 {
		nrows = 0
	}
	rows, err := readRows(pf, nrows)
	if err != nil {
		return nil, err
	}
	frame, err := frameFromRows(pf, rows)
	if err != nil {
		return nil, err
	}
	if columns != nil {
		return frame.Select(columns)
	}
	return frame, nil
}

// readRows collects up to limit rows across the file's row groups, in file
// order. A negative limit reads everything. Each Rows iterator may return
// short reads before EOF, so reading loops until the iterator is drained or
// the limit is reached.
func readRows(pf *parquet.File, limit int) ([]parquet.Row, error) {
	if limit == 0 {
		return nil, nil
	}
	var out []parquet.Row
	buf := make([]parquet.Row, 64)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		done, err := func() (bool, error) {
			defer rows.Close()
			for {
				n, err := rows.ReadRows(buf)
				for _, row := range buf[:n] {
					out = append(out, row.Clone())
					if limit >= 0 && len(out) == limit {
						return true, nil
					}
				}
				if errors.Is(err, io.EOF) {
					return false, nil
				}
				if err != nil {
					return true, err
				}
				if n == 0 {
					return false, nil
				}
			}
		}()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return out, nil
}

func frameSchema(f *dsframe.Frame) (*parquet.Schema, error) {
	group := parquet.Group{}
	types := f.Types()
	for i, col := range f.Columns() {
		var node parquet.Node
		switch types[i] {
		case dsframe.Bool:
			node = parquet.Leaf(parquet.BooleanType)
		case dsframe.Int:
			node = parquet.Int(64)
		case dsframe.Float:
			node = parquet.Leaf(parquet.DoubleType)
		case dsframe.String:
			node = parquet.String()
		default:
			return nil, fmt.Errorf("column %q has unsupported type %v", col, types[i])
		}
		group[col] = parquet.Optional(node)
	}
	return parquet.NewSchema("frame", group), nil
}

func frameFromRows(pf *parquet.File, rows []parquet.Row) (*dsframe.Frame, error) {
	var columns []string
	var types []dsframe.ColumnType
	for _, field := range pf.Schema().Fields() {
		columns = append(columns, field.Name())
		switch field.Type().Kind() {
		case parquet.Boolean:
			types = append(types, dsframe.Bool)
		case parquet.Int32, parquet.Int64:
			types = append(types, dsframe.Int)
		case parquet.Float, parquet.Double:
			types = append(types, dsframe.Float)
		default:
			types = append(types, dsframe.String)
		}
	}

	frame, err := dsframe.NewFrame(columns, types)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		cells := make([]ldvalue.Value, len(columns))
		for i := range cells {
			cells[i] = ldvalue.Null()
		}
		for _, v := range row {
			// Flat schema: leaf column index matches field order.
			if i := v.Column(); i >= 0 && i < len(cells) {
				cells[i] = cellValue(v)
			}
		}
		if err := frame.AppendRow(cells...); err != nil {
			return nil, err
		}
	}

	if order, ok := columnOrderFromMetadata(pf); ok && sameNameSet(order, columns) {
		return frame.Select(order)
	}
	return frame, nil
}

func cellValue(v parquet.Value) ldvalue.Value {
	if v.IsNull() {
		return ldvalue.Null()
	}
	switch v.Kind() {
	case parquet.Boolean:
		return ldvalue.Bool(v.Boolean())
	case parquet.Int32:
		return ldvalue.Int(int(v.Int32()))
	case parquet.Int64:
		return ldvalue.Int(int(v.Int64()))
	case parquet.Float:
		return ldvalue.Float64(float64(v.Float()))
	case parquet.Double:
		return ldvalue.Float64(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return ldvalue.String(string(v.ByteArray()))
	default:
		return ldvalue.String(v.String())
	}
}

func columnOrderFromMetadata(pf *parquet.File) ([]string, bool) {
	if value, ok := pf.Lookup(columnOrderMetadataKey); ok && value != "" {
		return strings.Split(value, columnOrderSeparator), true
	}
	return nil, false
}

func sameNameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

func compressionCodec(args map[string]ldvalue.Value) (parquet.WriterOption, error) {
	name := "snappy"
	if v, ok := args[parquetArgCompression]; ok {
		name = strings.ToLower(v.StringValue())
	}
	switch name {
	case "snappy":
		return parquet.Compression(&parquet.Snappy), nil
	case "gzip":
		return parquet.Compression(&parquet.Gzip), nil
	case "zstd":
		return parquet.Compression(&parquet.Zstd), nil
	case "uncompressed", "none":
		return parquet.Compression(&parquet.Uncompressed), nil
	default:
		return nil, fmt.Errorf("unsupported parquet compression %q", name)
	}
}

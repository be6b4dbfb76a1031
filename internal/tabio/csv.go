package tabio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
)

// CSV options recognized in load/save args. Unknown keys are ignored, as
// with every codec.
const (
	csvArgSep       = "sep"        // field separator, default ","
	csvArgHasHeader = "has_header" // default true
	csvArgNullValue = "null_value" // text representing null, default ""
	csvArgColumns   = "columns"    // load only: restrict to these columns
)

func csvSep(args map[string]ldvalue.Value) (rune, error) {
	v, ok := args[csvArgSep]
	if !ok {
		return ',', nil
	}
	s := v.StringValue()
	if len([]rune(s)) != 1 {
		return 0, fmt.Errorf("csv separator must be a single character, got %q", s)
	}
	return []rune(s)[0], nil
}

func csvHasHeader(args map[string]ldvalue.Value) bool {
	if v, ok := args[csvArgHasHeader]; ok {
		return v.BoolValue()
	}
	return true
}

func csvNullValue(args map[string]ldvalue.Value) string {
	if v, ok := args[csvArgNullValue]; ok {
		return v.StringValue()
	}
	return ""
}

// ReadCSV decodes an entire CSV stream into a frame, inferring column
// types from the data: a column where every non-null cell parses as a
// whole number is Int, then Float, then Bool, otherwise String. Blank
// lines are skipped; a single-column null row must be written as a quoted
// empty field, which is what WriteCSV produces.
func ReadCSV(r io.Reader, args map[string]ldvalue.Value) (*dsframe.Frame, error) {
	sep, err := csvSep(args)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		f, _ := dsframe.NewFrame(nil, nil)
		return f, nil
	}

	var columns []string
	if csvHasHeader(args) {
		columns = records[0]
		records = records[1:]
	} else {
		for i := range records[0] {
			columns = append(columns, "column_"+strconv.Itoa(i+1))
		}
	}
	for _, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("csv row has %d fields, expected %d", len(rec), len(columns))
		}
	}

	nullValue := csvNullValue(args)
	types := inferColumnTypes(records, len(columns), nullValue)
	frame, err := dsframe.NewFrame(columns, types)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		cells := make([]ldvalue.Value, len(columns))
		for i, s := range rec {
			cells[i] = parseCell(s, types[i], nullValue)
		}
		if err := frame.AppendRow(cells...); err != nil {
			return nil, err
		}
	}

	if v, ok := args[csvArgColumns]; ok {
		return frame.Select(stringSlice(v))
	}
	return frame, nil
}

// WriteCSV encodes a frame as CSV.
func WriteCSV(w io.Writer, f *dsframe.Frame, args map[string]ldvalue.Value) error {
	sep, err := csvSep(args)
	if err != nil {
		return err
	}
	nullValue := csvNullValue(args)
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if csvHasHeader(args) {
		if err := cw.Write(f.Columns()); err != nil {
			return err
		}
	}
	types := f.Types()
	record := make([]string, f.NumColumns())
	for i := 0; i < f.NumRows(); i++ {
		for j := 0; j < f.NumColumns(); j++ {
			record[j] = formatCell(f.Cell(i, j), types[j], nullValue)
		}
		// A lone empty field would serialize as a blank line, which CSV
		// readers skip. Quote it so the row survives a round trip.
		if len(record) == 1 && record[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func inferColumnTypes(records [][]string, numColumns int, nullValue string) []dsframe.ColumnType {
	types := make([]dsframe.ColumnType, numColumns)
	for col := 0; col < numColumns; col++ {
		isInt, isFloat, isBool, sawValue := true, true, true, false
		for _, rec := range records {
			s := rec[col]
			if s == nullValue {
				continue
			}
			sawValue = true
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
			if s != "true" && s != "false" {
				isBool = false
			}
		}
		switch {
		case !sawValue:
			types[col] = dsframe.String
		case isInt:
			types[col] = dsframe.Int
		case isFloat:
			types[col] = dsframe.Float
		case isBool:
			types[col] = dsframe.Bool
		default:
			types[col] = dsframe.String
		}
	}
	return types
}

func parseCell(s string, t dsframe.ColumnType, nullValue string) ldvalue.Value {
	if s == nullValue {
		return ldvalue.Null()
	}
	switch t {
	case dsframe.Int:
		n, _ := strconv.ParseInt(s, 10, 64)
		return ldvalue.Int(int(n))
	case dsframe.Float:
		x, _ := strconv.ParseFloat(s, 64)
		return ldvalue.Float64(x)
	case dsframe.Bool:
		return ldvalue.Bool(s == "true")
	default:
		return ldvalue.String(s)
	}
}

func formatCell(v ldvalue.Value, t dsframe.ColumnType, nullValue string) string {
	if v.IsNull() {
		return nullValue
	}
	switch t {
	case dsframe.Int:
		return strconv.Itoa(v.IntValue())
	case dsframe.Float:
		return strconv.FormatFloat(v.Float64Value(), 'g', -1, 64)
	case dsframe.Bool:
		return strconv.FormatBool(v.BoolValue())
	default:
		return v.StringValue()
	}
}

func stringSlice(v ldvalue.Value) []string {
	out := make([]string, 0, v.Count())
	for i := 0; i < v.Count(); i++ {
		out = append(out, v.GetByIndex(i).StringValue())
	}
	return out
}

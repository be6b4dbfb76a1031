package sharedtest

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/datacraft-oss/go-dataset-sdk/dsframe"
)

// SampleFrame returns a small frame with one column of each type, used by
// adapter round-trip tests.
func SampleFrame() *dsframe.Frame {
	f, err := dsframe.NewFrame(
		[]string{"name", "age", "score", "active"},
		[]dsframe.ColumnType{dsframe.String, dsframe.Int, dsframe.Float, dsframe.Bool},
	)
	if err != nil {
		panic(err)
	}
	mustAppend(f, ldvalue.String("ada"), ldvalue.Int(36), ldvalue.Float64(9.5), ldvalue.Bool(true))
	mustAppend(f, ldvalue.String("grace"), ldvalue.Int(45), ldvalue.Float64(8.25), ldvalue.Bool(false))
	mustAppend(f, ldvalue.String("alan"), ldvalue.Int(41), ldvalue.Float64(7.75), ldvalue.Bool(true))
	return f
}

// SampleFrameWithNulls returns a frame containing null cells in every column.
func SampleFrameWithNulls() *dsframe.Frame {
	f, err := dsframe.NewFrame(
		[]string{"name", "age", "score"},
		[]dsframe.ColumnType{dsframe.String, dsframe.Int, dsframe.Float},
	)
	if err != nil {
		panic(err)
	}
	mustAppend(f, ldvalue.String("ada"), ldvalue.Null(), ldvalue.Float64(9.5))
	mustAppend(f, ldvalue.Null(), ldvalue.Int(45), ldvalue.Null())
	return f
}

func mustAppend(f *dsframe.Frame, cells ...ldvalue.Value) {
	if err := f.AppendRow(cells...); err != nil {
		panic(err)
	}
}

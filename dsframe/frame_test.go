package dsframe

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFrame(t *testing.T) *Frame {
	f, err := NewFrame([]string{"name", "age"}, []ColumnType{String, Int})
	require.NoError(t, err)
	require.NoError(t, f.AppendRow(ldvalue.String("ada"), ldvalue.Int(36)))
	require.NoError(t, f.AppendRow(ldvalue.String("grace"), ldvalue.Int(45)))
	require.NoError(t, f.AppendRow(ldvalue.String("alan"), ldvalue.Int(41)))
	return f
}

func TestNewFrameValidation(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := NewFrame([]string{"a", "b"}, []ColumnType{Int})
		assert.Error(t, err)
	})
	t.Run("duplicate column", func(t *testing.T) {
		_, err := NewFrame([]string{"a", "a"}, []ColumnType{Int, Int})
		assert.Error(t, err)
	})
}

func TestAppendRowChecksArity(t *testing.T) {
	f, err := NewFrame([]string{"a", "b"}, []ColumnType{Int, Int})
	require.NoError(t, err)
	assert.Error(t, f.AppendRow(ldvalue.Int(1)))
}

func TestFrameAccessors(t *testing.T) {
	f := makeFrame(t)
	assert.Equal(t, []string{"name", "age"}, f.Columns())
	assert.Equal(t, []ColumnType{String, Int}, f.Types())
	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, 2, f.NumColumns())
	assert.Equal(t, ldvalue.String("grace"), f.Cell(1, 0))
	assert.Equal(t, 1, f.ColumnIndex("age"))
	assert.Equal(t, -1, f.ColumnIndex("missing"))
}

func TestFrameHead(t *testing.T) {
	f := makeFrame(t)
	assert.Equal(t, 2, f.Head(2).NumRows())
	assert.Equal(t, 3, f.Head(10).NumRows())
	assert.Equal(t, 0, f.Head(-1).NumRows())
	// Head copies; mutating the head must not affect the source.
	assert.Equal(t, 3, f.NumRows())
}

func TestFrameSelect(t *testing.T) {
	f := makeFrame(t)
	sel, err := f.Select([]string{"age", "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "name"}, sel.Columns())
	assert.Equal(t, []ColumnType{Int, String}, sel.Types())
	assert.Equal(t, ldvalue.Int(36), sel.Cell(0, 0))

	_, err = f.Select([]string{"missing"})
	assert.Error(t, err)
}

func TestFrameEqual(t *testing.T) {
	assert.True(t, makeFrame(t).Equal(makeFrame(t)))
	assert.False(t, makeFrame(t).Equal(nil))
	assert.False(t, makeFrame(t).Equal(makeFrame(t).Head(2)))

	other := makeFrame(t)
	require.NoError(t, other.AppendRow(ldvalue.String("edsger"), ldvalue.Int(72)))
	assert.False(t, makeFrame(t).Equal(other))
}

func TestLazyFrameDefersScan(t *testing.T) {
	scans := 0
	lf := NewLazyFrame(func() (*Frame, error) {
		scans++
		return makeFrame(t), nil
	})
	assert.Equal(t, 0, scans)

	collected, err := lf.Collect()
	require.NoError(t, err)
	assert.Equal(t, 1, scans)
	assert.True(t, collected.Equal(makeFrame(t)))
}

func TestLazyFramePlanComposition(t *testing.T) {
	lf := FromFrame(makeFrame(t)).Head(2).Select("name")

	collected, err := lf.Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, collected.Columns())
	assert.Equal(t, 2, collected.NumRows())
}

func TestLazyFrameHeadKeepsTightestLimit(t *testing.T) {
	lf := FromFrame(makeFrame(t)).Head(1).Head(5)
	collected, err := lf.Collect()
	require.NoError(t, err)
	assert.Equal(t, 1, collected.NumRows())
}

func TestLazyFrameScanErrorPropagates(t *testing.T) {
	scanErr := errors.New("scan failed")
	_, err := NewLazyFrame(func() (*Frame, error) { return nil, scanErr }).Collect()
	assert.True(t, errors.Is(err, scanErr))
}

func TestPreviewOf(t *testing.T) {
	p := PreviewOf(makeFrame(t).Head(2))
	assert.Equal(t, []string{"name", "age"}, p.Columns)
	assert.Equal(t, []int{0, 1}, p.Index)
	require.Len(t, p.Data, 2)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["name","age"],"index":[0,1],"data":[["ada",36],["grace",45]]}`, string(out))
}

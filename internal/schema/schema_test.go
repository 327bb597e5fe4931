package schema

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumns() []string {
	return []string{"MES", "DIA_SEMANA", "HORA_SALIDA", "Flight_AB12", "PortFrom_JFK", "PortTo_LAX"}
}

func testScaler() Scaler {
	return Scaler{
		Features: []string{"MES", "DIA_SEMANA", "HORA_SALIDA"},
		Mean:     []float64{6, 3, 12},
		Scale:    []float64{3, 2, 5},
	}
}

func TestNew_Valid(t *testing.T) {
	s, err := New(testColumns(), testScaler())
	require.NoError(t, err)

	assert.Equal(t, 6, s.Len())
	i, ok := s.ColumnIndex("PortTo_LAX")
	assert.True(t, ok)
	assert.Equal(t, 5, i)

	mean, scale, ok := s.ScalerParams("HORA_SALIDA")
	require.True(t, ok)
	assert.Equal(t, 12.0, mean)
	assert.Equal(t, 5.0, scale)

	_, _, ok = s.ScalerParams("Flight_AB12")
	assert.False(t, ok)
}

func TestNew_CopiesInput(t *testing.T) {
	cols := testColumns()
	sc := testScaler()
	s, err := New(cols, sc)
	require.NoError(t, err)

	cols[0] = "CHANGED"
	sc.Mean[0] = 99

	assert.Equal(t, "MES", s.Columns()[0])
	mean, _, _ := s.ScalerParams("MES")
	assert.Equal(t, 6.0, mean)

	got := s.Columns()
	got[1] = "CHANGED"
	assert.Equal(t, "DIA_SEMANA", s.Columns()[1])
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		scaler  Scaler
	}{
		{"no columns", nil, Scaler{}},
		{"empty column name", []string{"MES", ""}, Scaler{}},
		{"duplicate column", []string{"MES", "MES"}, Scaler{}},
		{
			"length mismatch",
			[]string{"MES"},
			Scaler{Features: []string{"MES"}, Mean: []float64{1, 2}, Scale: []float64{1}},
		},
		{
			"scaler feature not a column",
			[]string{"MES"},
			Scaler{Features: []string{"HORA_SALIDA"}, Mean: []float64{1}, Scale: []float64{1}},
		},
		{
			"duplicate scaler feature",
			[]string{"MES"},
			Scaler{Features: []string{"MES", "MES"}, Mean: []float64{1, 1}, Scale: []float64{1, 1}},
		},
		{
			"zero scale",
			[]string{"MES"},
			Scaler{Features: []string{"MES"}, Mean: []float64{1}, Scale: []float64{0}},
		},
		{
			"nan mean",
			[]string{"MES"},
			Scaler{Features: []string{"MES"}, Mean: []float64{math.NaN()}, Scale: []float64{1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.columns, tt.scaler)
			require.Error(t, err)
			assert.Nil(t, s)

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Problems)
		})
	}
}

func TestNew_EmptyScalerAllowed(t *testing.T) {
	s, err := New([]string{"Flight_AB12"}, Scaler{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

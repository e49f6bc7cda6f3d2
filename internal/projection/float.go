package projection

import (
	"math"
	"strconv"
)

// Float is a float64 that serialises NaN and ±Inf as JSON null.
type Float float64

func (f Float) Valid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// String renders invalid values as an empty cell for tabular output.
func (f Float) String() string {
	if !f.Valid() {
		return ""
	}
	return strconv.FormatFloat(float64(f), 'f', 6, 64)
}

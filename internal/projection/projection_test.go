package projection

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/renewsim/internal/dynamo"
)

func TestTotalCapacity(t *testing.T) {
	got := TotalCapacity(95400, Offsets(3))

	require.Len(t, got, 3)
	assert.Equal(t, 95400.0, got[0])
	assert.InDelta(t, 95400*math.Exp(0.05), got[1], 1e-9)
	assert.InDelta(t, 95400*math.Exp(0.10), got[2], 1e-9)
}

func TestTotalCapacity_Empty(t *testing.T) {
	assert.Empty(t, TotalCapacity(95400, nil))
}

func TestAssemble(t *testing.T) {
	states := []dynamo.State{
		{26200, 2.9, 50},
		{25800, 3.0, 48},
	}
	totals := []float64{95400, 100000}

	res, err := Assemble(2023, states, totals, "business_as_usual")
	require.NoError(t, err)
	require.Equal(t, 2, res.Len())

	assert.Equal(t, []int{2023, 2024}, res.Years())
	first := res.First()
	assert.Equal(t, Float(26200), first.RenewableCapacity)
	assert.InDelta(t, 26200.0/95400*100, float64(first.RenewableShare), 1e-12)
	assert.Equal(t, "business_as_usual", first.Scenario)
	assert.InDelta(t, 25.8, float64(res.Last().RenewableShare), 1e-12)
}

func TestAssemble_ShareIsNotClamped(t *testing.T) {
	res, err := Assemble(2023, []dynamo.State{{250000, 1, 1}, {-10, 1, 1}}, []float64{100000, 100000}, "x")
	require.NoError(t, err)

	assert.InDelta(t, 250.0, float64(res.Rows[0].RenewableShare), 1e-12)
	assert.Less(t, float64(res.Rows[1].RenewableShare), 0.0)
}

func TestAssemble_LengthMismatch(t *testing.T) {
	_, err := Assemble(2023, []dynamo.State{{1, 1, 1}}, []float64{1, 2}, "x")
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Assemble(2023, []dynamo.State{{1, 1}}, []float64{1}, "x")
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestResult_At(t *testing.T) {
	res, err := Assemble(2023, []dynamo.State{{1, 1, 1}, {2, 1, 1}, {3, 1, 1}}, []float64{1, 1, 1}, "x")
	require.NoError(t, err)

	row, ok := res.At(2024)
	require.True(t, ok)
	assert.Equal(t, Float(2), row.RenewableCapacity)

	_, ok = res.At(2022)
	assert.False(t, ok)
	_, ok = res.At(2026)
	assert.False(t, ok)
}

func TestResult_Column(t *testing.T) {
	res, err := Assemble(2023, []dynamo.State{{1, 2, 3}, {4, 5, 6}}, []float64{10, 20}, "x")
	require.NoError(t, err)

	infra, err := res.Column("infrastructure")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6}, infra)

	_, err = res.Column("nope")
	assert.Error(t, err)

	for _, name := range ColumnNames() {
		_, err := res.Column(name)
		assert.NoError(t, err, name)
	}
}

func TestConcat(t *testing.T) {
	a, _ := Assemble(2023, []dynamo.State{{1, 1, 1}, {2, 1, 1}}, []float64{1, 1}, "a")
	b, _ := Assemble(2023, []dynamo.State{{3, 1, 1}}, []float64{1}, "b")

	rows := Concat(a, b)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Scenario)
	assert.Equal(t, "b", rows[2].Scenario)
}

func TestRow_JSONNullForNonFinite(t *testing.T) {
	row := Row{
		Year:              2030,
		RenewableCapacity: Float(math.NaN()),
		Investment:        Float(math.Inf(1)),
		Infrastructure:    1.5,
		TotalCapacity:     100,
		RenewableShare:    Float(math.Inf(-1)),
		Scenario:          "x",
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"year": 2030,
		"renewable_capacity": null,
		"investment": null,
		"infrastructure": 1.5,
		"total_capacity": 100,
		"renewable_share": null,
		"scenario": "x"
	}`, string(data))

	var back Row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.RenewableCapacity.Valid())
	assert.Equal(t, Float(1.5), back.Infrastructure)
}

func TestFloat_String(t *testing.T) {
	assert.Equal(t, "", Float(math.NaN()).String())
	assert.Equal(t, "1.500000", Float(1.5).String())
}

func TestSplit(t *testing.T) {
	rows := []Row{
		{Year: 2023, Scenario: "b"},
		{Year: 2024, Scenario: "b"},
		{Year: 2023, Scenario: "a"},
		{Year: 2024, Scenario: "a"},
	}

	got := Split(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Scenario)
	assert.Equal(t, "a", got[1].Scenario)
	assert.Equal(t, []int{2023, 2024}, got[1].Years())
	assert.Empty(t, Split(nil))
}

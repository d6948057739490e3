package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableInvariants(t *testing.T) {
	all := All()
	require.Len(t, all, Count)

	seen := map[string]bool{}
	for _, p := range all {
		assert.LessOrEqual(t, p.Min, p.Default, p.Name)
		assert.LessOrEqual(t, p.Default, p.Max, p.Name)
		assert.Contains(t, []int{1, 2}, p.Column, p.Name)
		assert.NotEmpty(t, p.Help, p.Name)
		assert.False(t, seen[p.Name], "duplicate %s", p.Name)
		seen[p.Name] = true
	}
}

func TestFeatureOrder(t *testing.T) {
	assert.Equal(t, []string{
		"ambient", "coolant", "u_d", "u_q", "torque", "i_d",
		"i_q", "pm", "stator_yoke", "stator_tooth", "stator_winding",
	}, Names())
}

func TestDefaults(t *testing.T) {
	want := Vector{19.85, 18.80, -0.35, -0.45, 0.19, 0.0, 0.0, 24.55, 18.31, 18.29, 19.08}
	assert.Equal(t, want, Defaults())
	assert.NoError(t, Defaults().Check())
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Min = 1000
	assert.Equal(t, -25.29, All()[0].Min)
}

func TestParseDefaults(t *testing.T) {
	d := Defaults()
	form := map[string]string{}
	for i, name := range Names() {
		form[name] = Format(d[i])
	}
	v, err := Parse(func(name string) string { return form[name] })
	require.NoError(t, err)
	assert.Equal(t, d, v)
}

func TestParseInclusiveBounds(t *testing.T) {
	for _, edge := range []string{"min", "max"} {
		t.Run(edge, func(t *testing.T) {
			form := map[string]string{}
			for _, p := range All() {
				if edge == "min" {
					form[p.Name] = Format(p.Min)
				} else {
					form[p.Name] = Format(p.Max)
				}
			}
			v, err := Parse(func(name string) string { return form[name] })
			require.NoError(t, err)
			if edge == "min" {
				assert.Equal(t, -25.29, v[0])
			} else {
				assert.Equal(t, 141.36, v[Count-1])
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	base := map[string]string{}
	for _, p := range All() {
		base[p.Name] = Format(p.Default)
	}

	tests := []struct {
		name   string
		field  string
		value  string
		rangeE bool
	}{
		{name: "missing", field: "torque", value: ""},
		{name: "not a number", field: "pm", value: "hot"},
		{name: "below min", field: "ambient", value: "-25.3"},
		{name: "above max", field: "i_d", value: "0.06"},
		{name: "nan", field: "coolant", value: "NaN", rangeE: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := map[string]string{}
			for k, v := range base {
				form[k] = v
			}
			form[tt.field] = tt.value
			_, err := Parse(func(name string) string { return form[name] })
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
			if tt.rangeE {
				var re *RangeError
				assert.True(t, errors.As(err, &re))
			}
		})
	}
}

func TestFromMap(t *testing.T) {
	v, err := FromMap(map[string]float64{"torque": 100})
	require.NoError(t, err)
	want := Defaults()
	want[4] = 100
	assert.Equal(t, want, v)

	_, err = FromMap(map[string]float64{"rpm": 1})
	assert.ErrorContains(t, err, "unknown parameter")

	_, err = FromMap(map[string]float64{"pm": 500})
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "pm", re.Param.Name)
}

func TestVectorMapAndSlice(t *testing.T) {
	v := Defaults()
	m := v.Map()
	assert.Equal(t, 24.55, m["pm"])
	s := v.Slice()
	s[0] = 0
	assert.Equal(t, 19.85, v[0])
}

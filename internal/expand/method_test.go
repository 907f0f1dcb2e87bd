package expand

import (
	"testing"

	dferrors "github.com/mztrk/ExpendbyPeriods/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for _, m := range Methods() {
		got, ok := ParseMethod(string(m))
		require.True(t, ok, m)
		assert.Equal(t, m, got)
	}

	got, ok := ParseMethod(" Median ")
	require.True(t, ok)
	assert.Equal(t, Median, got)

	_, ok = ParseMethod("avg")
	assert.False(t, ok)

	assert.Nil(t, Shift.Kernel())
	assert.NotNil(t, Var.Kernel())
}

func TestPassNaming(t *testing.T) {
	tests := []struct {
		method Method
		offset int
		name   string
	}{
		{Shift, 2, "sales_p2"},
		{Shift, -2, "sales_f2"},
		{Mean, 3, "salesmeanPrev3"},
		{Mean, -3, "salesmeanFwd3"},
		{SD, 12, "salessdPrev12"},
		{Prod, -1, "salesprodFwd1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewPlan([]string{string(tt.method)}, []int{tt.offset}, nil, nil, nil)
			require.NoError(t, err)
			require.Len(t, plan.Passes, 1)
			assert.Equal(t, tt.name, plan.Passes[0].Name("sales"))
			assert.Equal(t, tt.name+"Ratio", plan.Passes[0].RatioName("sales"))
		})
	}
}

func TestPlan_CustomSuffixBypassesDirection(t *testing.T) {
	plan, err := NewPlan([]string{"mean", "shift"}, []int{3, -2}, nil, nil,
		map[string]string{"mean": "_avg", "unknown": "_x"})
	require.NoError(t, err)

	names := make([]string, 0, len(plan.Passes))
	for _, p := range plan.Passes {
		names = append(names, p.Name("v"))
	}
	assert.Equal(t, []string{"v_avg3", "v_avg2", "v_p3", "v_f2"}, names)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], `"unknown"`)
}

func TestPlan_UnrecognizedMethodsAreAllReported(t *testing.T) {
	_, err := NewPlan([]string{"mean", "avg", "sum", "stdev"}, []int{1}, nil, nil, nil)
	require.Error(t, err)

	var notRecognized *dferrors.MethodNotRecognizedError
	require.ErrorAs(t, err, &notRecognized)
	assert.Equal(t, []string{"avg", "stdev"}, notRecognized.Methods)
	assert.Equal(t, "method(s) not recognized: avg, stdev", err.Error())
}

func TestPlan_DeduplicatesAndOrdersPasses(t *testing.T) {
	plan, err := NewPlan([]string{"sum", "mean", "SUM"}, []int{2, 1, 2}, nil, nil, nil)
	require.NoError(t, err)

	got := make([]string, 0, len(plan.Passes))
	for _, p := range plan.Passes {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"sum(2)", "sum(1)", "mean(2)", "mean(1)"}, got)
}

func TestPlan_RatioSubsets(t *testing.T) {
	plan, err := NewPlan(
		[]string{"mean", "sum"}, []int{1, 3},
		[]string{"sum", "sd", "bogus"}, []int{3, 6},
		nil,
	)
	require.NoError(t, err)

	ratios := map[string]bool{}
	for _, p := range plan.Passes {
		ratios[p.String()] = plan.HasRatio(p)
	}
	assert.Equal(t, map[string]bool{
		"mean(1)": false,
		"mean(3)": false,
		"sum(1)":  false,
		"sum(3)":  true,
	}, ratios)

	require.Len(t, plan.Warnings, 2)
	assert.Contains(t, plan.Warnings[0], "ratio methods sd, bogus")
	assert.Contains(t, plan.Warnings[1], "ratio offsets [6]")
}

func TestPass_BoundaryDistance(t *testing.T) {
	tests := []struct {
		pass           Pass
		includeCurrent bool
		want           int
	}{
		{Pass{Method: Shift, Offset: 2}, true, 2},
		{Pass{Method: Shift, Offset: 2}, false, 2},
		{Pass{Method: Shift, Offset: -1}, true, 1},
		{Pass{Method: Mean, Offset: 3}, true, 2},
		{Pass{Method: Mean, Offset: 3}, false, 3},
		{Pass{Method: Sum, Offset: -3}, true, 2},
		{Pass{Method: Sum, Offset: 1}, true, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.pass.BoundaryDistance(tt.includeCurrent), "%s include=%v", tt.pass, tt.includeCurrent)
	}
}

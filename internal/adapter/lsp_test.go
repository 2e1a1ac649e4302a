package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/sourceast"
)

func TestRenderDiagnostic_ConvertsToZeroBasedRange(t *testing.T) {
	d := service.Diagnostic{
		Severity: service.SeverityWarning,
		Range:    sourceast.Range{File: "a.bsl", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 9},
		Message:  "widened at call site",
		Code:     "flow.widened",
	}

	out := RenderDiagnostic(d)
	require.Equal(t, "Warning", out.Severity)
	assert.Equal(t, 2, out.SeverityInt)
	assert.Equal(t, LSPRange{StartLine: 2, StartCol: 4, EndLine: 2, EndCol: 8}, out.Range)
	assert.Equal(t, "flow.widened", out.Code)
	assert.Empty(t, out.Related)
}

func TestRenderDiagnostic_ClampsRangeAtZero(t *testing.T) {
	d := service.Diagnostic{Range: sourceast.Range{StartLine: 0, StartCol: 0}}
	out := RenderDiagnostic(d)
	assert.Zero(t, out.Range.StartLine)
	assert.Zero(t, out.Range.StartCol)
}

func TestLSPSeverityInt(t *testing.T) {
	cases := map[service.Severity]int{
		service.SeverityError:   1,
		service.SeverityWarning: 2,
		service.SeverityInfo:    3,
		service.SeverityHint:    4,
	}
	for sev, want := range cases {
		assert.Equal(t, want, LSPSeverityInt(sev))
	}
}

func TestRenderDiagnostics_PreservesOrder(t *testing.T) {
	ds := []service.Diagnostic{
		{Code: "a", Severity: service.SeverityError},
		{Code: "b", Severity: service.SeverityHint},
	}
	out := RenderDiagnostics(ds)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Code)
	assert.Equal(t, "b", out[1].Code)
}

package diagnostic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSARIFFormatter_Format_EmitsValidJSON(t *testing.T) {
	diags := []Diagnostic{
		NewBlockDiagnostic(StageSSA, SeverityWarning, "main", 2, "use of x before any reaching definition"),
		NewFunctionDiagnostic(StageLoader, SeverityError, "broken", "unrecognized opcode \"frobnicate\""),
	}

	var buf bytes.Buffer
	f := NewSARIFFormatterWithWriter(&buf)
	err := f.Format(diags)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "\"version\"")
	assert.Contains(t, out, "ssa")
	assert.Contains(t, out, "loader")
	assert.Contains(t, out, "main#block_2")
}

func TestSARIFFormatter_Format_EmptyDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	f := NewSARIFFormatterWithWriter(&buf)
	err := f.Format(nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"runs\"")
}

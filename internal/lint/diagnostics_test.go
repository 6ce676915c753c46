package lint

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseDiagnostics_Stylish(t *testing.T) {
	out := `/tmp/specfix-123.yaml
  2:6   error  info-description       Info "description" must be present and non-empty string.  info
 14:13  error  operation-operationId  Operation must have "operationId".                        paths./pets.get
 20:1   hint   custom-rule            Something minor

✖ 3 problems (2 errors, 0 warnings, 0 infos, 1 hint)
`
	got := ParseDiagnostics(out)
	want := []Diagnostic{
		{Line: 2, Column: 6, Severity: "error", Code: "info-description", Message: `Info "description" must be present and non-empty string.`, Path: "info"},
		{Line: 14, Column: 13, Severity: "error", Code: "operation-operationId", Message: `Operation must have "operationId".`, Path: "paths./pets.get"},
		{Line: 20, Column: 1, Severity: "hint", Code: "custom-rule", Message: "Something minor"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDiagnostics() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, CountBlocking(got))
}

func TestParseDiagnostics_NoMatches(t *testing.T) {
	assert.Empty(t, ParseDiagnostics("No results with a severity of 'error' found!"))
	assert.Empty(t, ParseDiagnostics(""))
}

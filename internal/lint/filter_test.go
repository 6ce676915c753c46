package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterWarnings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "no warnings",
			in:   "  1:1  error  info-contact  Info object must have contact",
			want: "  1:1  error  info-contact  Info object must have contact",
		},
		{
			name: "drops warning lines and keeps order",
			in: "/tmp/spec.yaml\n" +
				"  1:1  warning  oas3-api-servers  OpenAPI servers must be present\n" +
				"  2:6  error  info-description  Info must have description\n" +
				"  9:9  error  operation-operationId  Operation must have operationId\n",
			want: "/tmp/spec.yaml\n" +
				"  2:6  error  info-description  Info must have description\n" +
				"  9:9  error  operation-operationId  Operation must have operationId\n",
		},
		{
			name: "case insensitive",
			in:   "WARNING: deprecated flag\nWarning here\nkeep me",
			want: "keep me",
		},
		{
			name: "summary line mentions warnings",
			in:   "  2:6  error  a  b\n✖ 2 problems (1 error, 1 warning, 0 infos, 0 hints)",
			want: "  2:6  error  a  b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterWarnings(tt.in))
		})
	}
}

func TestFilterWarnings_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"\n",
		"a\n\n",
		"warning\n",
		"a\nwarning b\n\nc\r\nWARNING\n",
		"  3:1  error  x  y\n  4:1  warning  x  y\n",
	}
	for _, in := range inputs {
		once := FilterWarnings(in)
		assert.Equal(t, once, FilterWarnings(once), "input %q", in)
	}
}

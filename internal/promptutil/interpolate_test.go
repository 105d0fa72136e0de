package promptutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	vars := map[string]string{
		"name":  "Ana",
		"topic": "billing",
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "dollar brace syntax",
			in:   "asking about ${topic}",
			want: "asking about billing",
		},
		{
			name: "single brace syntax",
			in:   "you are {name}",
			want: "you are Ana",
		},
		{
			name: "double brace syntax",
			in:   "you are {{name}}",
			want: "you are Ana",
		},
		{
			name: "mixed syntaxes in one text",
			in:   "You are {{name}} asking about ${topic}",
			want: "You are Ana asking about billing",
		},
		{
			name: "unknown variable left intact",
			in:   "hello {missing}",
			want: "hello {missing}",
		},
		{
			name: "no variables",
			in:   "plain text",
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.in, vars))
		})
	}
}

func TestInterpolateDoesNotDoubleSubstitute(t *testing.T) {
	// A value that itself looks like a reference must not be expanded again.
	vars := map[string]string{
		"outer": "{inner}",
		"inner": "BAD",
	}
	assert.Equal(t, "{inner}", Interpolate("{{outer}}", vars))
}

func TestInterpolateNilVars(t *testing.T) {
	assert.Equal(t, "keep ${this}", Interpolate("keep ${this}", nil))
}

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"fence without info string", "```\n{\"a\":1}\n```", `{"a":1}`, true},
		{"preamble and trailer", `Here you go: {"a":{"b":2}} Hope that helps {"c":3}`, `{"a":{"b":2}}`, true},
		{"braces in strings", `{"a":"}{[","b":"\"}"}`, `{"a":"}{[","b":"\"}"}`, true},
		{"array first", `x [{"a":1}] {"b":2}`, `[{"a":1}]`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"mismatched", `{"a":[1}`, "", false},
		{"no json", "no structured output", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalFlag(t *testing.T) {
	assert.Nil(t, optionalFlag(nil))
	assert.Nil(t, optionalFlag("maybe"))
	assert.True(t, *optionalFlag("TRUE"))
	assert.False(t, *optionalFlag(false))
	assert.False(t, flag(nil))
}

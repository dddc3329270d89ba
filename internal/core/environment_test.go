package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"production":   Production,
		" Production ": Production,
		"prod":         Production,
		"staging":      Staging,
		"testing":      Testing,
		"":             Development,
		"qa":           Development,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEnvironment(in), "input %q", in)
	}
	assert.True(t, ParseEnvironment("production").IsProduction())
	assert.False(t, ParseEnvironment("staging").IsProduction())
}

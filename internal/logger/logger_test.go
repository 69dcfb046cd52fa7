package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	SetFormat("json", &buf)
	defer SetFormat("text", os.Stdout)

	With("session", "s1").Info("session created", "ip", "10.0.0.1")
	out := buf.String()
	assert.Contains(t, out, `"session":"s1"`)
	assert.Contains(t, out, `"ip":"10.0.0.1"`)
	assert.Contains(t, out, `"msg":"session created"`)
}

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetFormat("text", &buf)
	defer SetFormat("text", os.Stdout)
	defer SetLevel("info")

	SetLevel("warn")
	assert.Equal(t, "warn", Level())
	Infof("hidden")
	Warnf("shown %d", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")

	SetLevel("nonsense")
	assert.Equal(t, "info", Level())
}

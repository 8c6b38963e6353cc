package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LogfmtIncludesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Info, Logfmt)

	l.Info("hello", "foo", "bar")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "foo=bar")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Warn, Logfmt)

	l.Info("should be dropped")
	l.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should appear")
}

func TestLogger_WithPrependsStaticFieldsToEveryCall(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Info, Logfmt)
	child := l.With("component", "tracker")

	child.Info("tick")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "component=tracker")
}

func TestLogger_WithIsAdditive(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Info, Logfmt)
	grandchild := l.With("a", "1").With("b", "2")

	grandchild.Info("msg")

	out := buf.String()
	assert.Contains(t, out, "a=1")
	assert.Contains(t, out, "b=2")
}

func TestParseLevel_UnknownDefaultsToInfoWithError(t *testing.T) {
	lvl, err := ParseLevel("bogus")
	assert.Error(t, err)
	assert.Equal(t, Info, lvl)
}

func TestParseFormat_UnknownDefaultsToLogfmtWithError(t *testing.T) {
	f, err := ParseFormat("bogus")
	assert.Error(t, err)
	assert.Equal(t, Logfmt, f)
}

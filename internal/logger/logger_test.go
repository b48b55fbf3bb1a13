// Copyright 2016 Aleksandr Demakin. All rights reserved.

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	a := assert.New(t)
	for in, expected := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		lvl, err := ParseLevel(in)
		a.NoError(err)
		a.Equal(expected, lvl, in)
	}
	_, err := ParseLevel("verbose")
	a.Error(err)
}

func TestLoggerLevelAndFormat(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	l, err := New(Config{Level: "warn", Format: "json", Output: buf})
	require.NoError(t, err)
	l.Info("hidden")
	l.With("name", "m").Warn("shown")
	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, `"name":"m"`))

	buf.Reset()
	l.SetLevel(slog.LevelDebug)
	l.Debug("now visible")
	assert.True(t, strings.Contains(buf.String(), "now visible"))

	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestDefaultLogger(t *testing.T) {
	old := Default()
	defer SetDefault(old)
	d := Discard()
	SetDefault(d)
	assert.Same(t, d, Default())
	SetDefault(nil)
	assert.NotNil(t, Default())
}

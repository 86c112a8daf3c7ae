package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		SetLogLevel("INFO")
	})
	return buf
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"Warning": LevelWarn,
		"error":   LevelError,
		"FATAL":   LevelFatal,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLog(t)

	SetLogLevel("WARN")
	Infof("hidden")
	Warnf("shown %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN] shown 1")
}

func TestComponentPrefix(t *testing.T) {
	buf := captureLog(t)

	SetLogLevel("DEBUG")
	For("chunker").Debugf("chunk %d closed", 2)

	assert.Equal(t, "[DEBUG] [chunker] chunk 2 closed\n", buf.String())
}

func TestSetLogLevelUnknownFallsBackToInfo(t *testing.T) {
	_ = captureLog(t)

	SetLogLevel("loud")
	assert.Equal(t, LevelInfo, Level())
}

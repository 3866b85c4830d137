package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsToStderrAndInfo(t *testing.T) {
	logger := New(nil)
	assert.NotNil(t, logger)
}

func TestForWorkerTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Output: &buf})

	netLogger := ForWorker(logger, "network")
	netLogger.Infof("health check ok")

	assert.Contains(t, buf.String(), "worker=network")
	assert.Contains(t, buf.String(), "health check ok")
}

func TestWarnLevelSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Output: &buf})

	logger.Debugf("should not appear")
	logger.Warnf("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestDefaultAndSetDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New(&Config{Level: "debug", Output: &buf}))
	Default().Infof("via default")
	assert.Contains(t, buf.String(), "via default")
}

func TestNoopDiscardsOutput(t *testing.T) {
	logger := Noop()
	assert.NotPanics(t, func() {
		logger.Infof("discarded")
	})
}

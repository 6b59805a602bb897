package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	logger.Info("processed regions", "regions", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} INFO processed regions regions=3\n$`), out)
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Read 7 events from edges.csv")

	assert.Regexp(t, `Read 7 events from edges.csv \(\d+ms\)`, buf.String())
}

func TestLoadRecords_Logs(t *testing.T) {
	input := setup(t)
	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	ctx := withLogger(context.Background(), c.Logger)

	records, err := c.loadRecords(ctx, input)
	require.NoError(t, err)
	assert.Len(t, records, 7)

	out := buf.String()
	assert.Contains(t, out, "Read 7 events from "+input)
	assert.Contains(t, out, "dropped rows")
	assert.Contains(t, out, "self_references=1")
	assert.Contains(t, out, "rows without formation year")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[len(lines)-1], "Read 7 events", "progress is logged last")
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	assert.Same(t, logger, loggerFromContext(withLogger(context.Background(), logger)))
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	var nilCtx context.Context
	assert.Same(t, log.Default(), loggerFromContext(nilCtx))
	assert.Same(t, logger, loggerFromContext(withLogger(nilCtx, logger)))
}

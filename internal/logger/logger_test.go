// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return &buf
}

func TestDebugQuietByDefault(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(false)

	Debug("state %s", "in_table")
	Info("pages %d", 3)

	assert.Empty(t, buf.String())
	assert.False(t, IsVerbose())
}

func TestVerboseOutput(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(true)

	Debug("state %s", "in_table")
	Info("pages %d", 3)

	assert.Equal(t, "[DEBUG] state in_table\n[INFO] pages 3\n", buf.String())
}

func TestWarnAlwaysPrinted(t *testing.T) {
	buf := withBuffer(t)
	SetVerbose(false)

	Warn("missing %s", "a.pdf")

	assert.Equal(t, "[WARN] missing a.pdf\n", buf.String())
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	dir := t.TempDir()

	log, err := New(dir, "flight-booking", false)
	require.NoError(t, err)
	log.Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "flight-booking.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNew_StdoutOnly(t *testing.T) {
	log, err := New("", "flight-booking", true)
	require.NoError(t, err)
	assert.NotNil(t, log)
}

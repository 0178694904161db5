package config

import (
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
[engine]
MaxIterations = 5000
DisplayRows = 50

[server]
Addr = :8080
TLS = false

[log]
Level = debug
`))
	require.NoError(t, err)
	require.Equal(t, 5000, c.MaxIterations)
	require.Equal(t, 50, c.DisplayRows)
	require.Equal(t, ":8080", c.Addr)
	require.False(t, c.TLS)
	require.Equal(t, 3, c.RateBurst)

	c.SetupLogging()
	require.Equal(t, log.DebugLevel, log.GetLevel())
	log.SetLevel(log.InfoLevel)
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)
	require.Equal(t, 0, c.MaxIterations)
	require.Equal(t, 200, c.DisplayRows)
	require.Equal(t, ":443", c.Addr)
	require.True(t, c.TLS)
	require.Equal(t, "server.crt", c.CertFile)
	require.Equal(t, "info", c.LogLevel)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, `
apiVersion: peerdag/v1
kind: Peer
metadata:
  name: alice
spec: {}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Metadata.Name)
	assert.Equal(t, "./data", cfg.Spec.DataDir)
	assert.Equal(t, "127.0.0.1:7420", cfg.Spec.ListenAddr)
	assert.Equal(t, "info", cfg.Spec.LogLevel)
}

func TestLoadRejectsWrongKind(t *testing.T) {
	path := writeTemp(t, `
kind: Service
metadata:
  name: alice
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadHonorsExplicitFields(t *testing.T) {
	path := writeTemp(t, `
metadata:
  name: bob
spec:
  dataDir: /var/lib/peerdag
  listenAddr: 0.0.0.0:9000
  logLevel: debug
  jsonLogs: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/peerdag", cfg.Spec.DataDir)
	assert.Equal(t, "/var/lib/peerdag/patches.db", cfg.DatabasePath())
	assert.Equal(t, "/var/lib/peerdag/identity.key", cfg.KeystorePath())
	assert.True(t, cfg.Spec.JSONLogs)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

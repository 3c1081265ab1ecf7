/*
Package config loads a peer daemon's runtime configuration from a YAML
file: where it keeps its data, how it reaches its object store, what
address it listens on, and how verbosely it logs. The shape mirrors the
familiar apiVersion/kind resource file applied against a cluster
manager, scaled down to a single peer process.
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Peer is a peer daemon's complete runtime configuration.
type Peer struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       PeerSpec `yaml:"spec"`
}

// Metadata names the peer this configuration belongs to.
type Metadata struct {
	Name string `yaml:"name"`
}

// PeerSpec holds the fields the daemon actually consumes.
type PeerSpec struct {
	// DataDir is where the identity keystore and sqlite database live.
	DataDir string `yaml:"dataDir"`

	// KeystorePassphrase unlocks the on-disk Ed25519 keystore. In
	// production this should come from an environment variable or a
	// secrets manager rather than the file itself; it is accepted here
	// for local development.
	KeystorePassphrase string `yaml:"keystorePassphrase"`

	// ListenAddr is the address the gRPC health server binds to.
	ListenAddr string `yaml:"listenAddr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// JSONLogs selects JSON-structured output over the console writer.
	JSONLogs bool `yaml:"jsonLogs"`
}

const expectedKind = "Peer"

// Load reads and parses a Peer configuration from path, applying defaults
// for kind, dataDir, listenAddr and logLevel when the file leaves them
// unset. Other fields keep their zero values.
func Load(path string) (*Peer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Peer
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Kind != "" && cfg.Kind != expectedKind {
		return nil, fmt.Errorf("config: unsupported kind %q, expected %q", cfg.Kind, expectedKind)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Peer) applyDefaults() {
	if c.Kind == "" {
		c.Kind = expectedKind
	}
	if c.Spec.DataDir == "" {
		c.Spec.DataDir = "./data"
	}
	if c.Spec.ListenAddr == "" {
		c.Spec.ListenAddr = "127.0.0.1:7420"
	}
	if c.Spec.LogLevel == "" {
		c.Spec.LogLevel = "info"
	}
}

// DatabasePath is the sqlite DSN derived from DataDir.
func (c *Peer) DatabasePath() string {
	return c.Spec.DataDir + "/patches.db"
}

// KeystorePath is where the sealed signing key is stored under DataDir.
func (c *Peer) KeystorePath() string {
	return c.Spec.DataDir + "/identity.key"
}

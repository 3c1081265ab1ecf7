package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/latticewire/peerdag/pkg/identity"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a new signing identity under --data-dir",
	Long: `init generates a fresh Ed25519 keypair and seals the private half
under --passphrase using AES-256-GCM, writing it to <data-dir>/identity.key.
Run this once per peer before any other command.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	passphrase, _ := cmd.Flags().GetString("passphrase")
	if passphrase == "" {
		return fmt.Errorf("--passphrase is required")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	keyPath := filepath.Join(dataDir, "identity.key")
	if _, err := os.Stat(keyPath); err == nil {
		return fmt.Errorf("%s already exists; refusing to overwrite an existing identity", keyPath)
	}

	ks, err := identity.Generate()
	if err != nil {
		return fmt.Errorf("generate keypair: %w", err)
	}

	sealed, err := ks.Seal(passphrase)
	if err != nil {
		return fmt.Errorf("seal keystore: %w", err)
	}

	if err := os.WriteFile(keyPath, sealed, 0o600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}

	fmt.Printf("initialized peer %s\nidentity written to %s\n", ks.PeerID(), keyPath)
	return nil
}

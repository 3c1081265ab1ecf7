package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/latticewire/peerdag/pkg/identity"
	"github.com/latticewire/peerdag/pkg/peer"
	"github.com/latticewire/peerdag/pkg/store/sqlstore"
	"github.com/spf13/cobra"
)

// openPeer loads the identity keystore and sqlite store under --data-dir
// and wires them into a *peer.Peer, for every subcommand that needs to
// author or integrate patches.
func openPeer(ctx context.Context, cmd *cobra.Command) (*peer.Peer, *sqlstore.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	passphrase, _ := cmd.Flags().GetString("passphrase")
	if passphrase == "" {
		return nil, nil, fmt.Errorf("--passphrase is required")
	}

	keyPath := filepath.Join(dataDir, "identity.key")
	sealed, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read keystore %s (did you run 'peerdagd init'?): %w", keyPath, err)
	}
	ks, err := identity.Open(passphrase, sealed)
	if err != nil {
		return nil, nil, fmt.Errorf("unlock keystore: %w", err)
	}

	dbPath := filepath.Join(dataDir, "patches.db")
	st, err := sqlstore.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", dbPath, err)
	}

	p, err := peer.New(ctx, ks, st)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("construct peer: %w", err)
	}
	return p, st, nil
}

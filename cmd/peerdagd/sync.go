package main

import (
	"errors"
	"fmt"

	"github.com/latticewire/peerdag/pkg/reconcile"
	"github.com/latticewire/peerdag/pkg/store/sqlstore"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <remote-data-dir>",
	Short: "Pull every patch reachable from a remote store's heads into this peer",
	Long: `sync opens the sqlite store under <remote-data-dir> (no identity
needed there, it is only read) and runs the fetch/integrate fixpoint
until this peer has integrated everything reachable from the remote's
head set, or reports that the remote made no further progress.

This module ships no network transport (a scope decision of the
replication core itself); sync is meant for two stores reachable on the
same filesystem, e.g. a removable drive or a synced folder, not two
processes talking over a socket.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	remoteDir := args[0]

	local, localStore, err := openPeer(ctx, cmd)
	if err != nil {
		return err
	}
	defer localStore.Close()

	remoteStore, err := sqlstore.Open(ctx, remoteDir+"/patches.db")
	if err != nil {
		return fmt.Errorf("open remote store: %w", err)
	}
	defer remoteStore.Close()

	if err := reconcile.Sync(ctx, local, remoteStore); err != nil {
		if errors.Is(err, reconcile.ErrNoProgress) {
			return fmt.Errorf("sync stalled: remote returned the same missing set twice in a row")
		}
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Println("sync complete")
	for _, id := range local.Heads() {
		fmt.Println(id)
	}
	return nil
}

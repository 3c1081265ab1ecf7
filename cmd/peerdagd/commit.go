package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Author and commit a new patch on top of the current heads",
	Long: `commit reads a payload (from --message, or stdin if --message is
omitted), signs it with the peer's identity over the current cached
heads, and commits the resulting patch to the local store.`,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().StringP("message", "m", "", "Patch payload (reads stdin if omitted)")
}

func runCommit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	message, _ := cmd.Flags().GetString("message")
	var payload []byte
	if message != "" {
		payload = []byte(message)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read payload from stdin: %w", err)
		}
		payload = data
	}

	p, st, err := openPeer(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	committed, err := p.Commit(ctx, payload)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Printf("committed %s (%d byte payload, %d parent(s))\n", committed.ID(), len(committed.Payload()), len(committed.Deps()))
	return nil
}

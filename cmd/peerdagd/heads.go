package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var headsCmd = &cobra.Command{
	Use:   "heads",
	Short: "Print the current head set",
	RunE:  runHeads,
}

func runHeads(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, st, err := openPeer(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	heads := p.Heads()
	if len(heads) == 0 {
		fmt.Println("(empty)")
		return nil
	}
	for _, id := range heads {
		fmt.Println(id)
	}
	return nil
}

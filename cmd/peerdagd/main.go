package main

import (
	"fmt"
	"os"

	"github.com/latticewire/peerdag/pkg/config"
	"github.com/latticewire/peerdag/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "peerdagd",
	Short: "peerdagd - a peer in a content-addressed, signed patch DAG",
	Long: `peerdagd holds one participant's local replica of a peer-to-peer
collaborative document store: a directed acyclic graph of immutable,
signed patches. It authors new patches on top of its current heads,
verifies and integrates patches from other peers, and reconciles two
stores until they agree on the same DAG.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"peerdagd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to a Peer config file (YAML); flags below override its values")
	rootCmd.PersistentFlags().String("data-dir", "./data", "Directory holding the identity keystore and sqlite database")
	rootCmd.PersistentFlags().String("passphrase", "", "Passphrase protecting the identity keystore (required after init)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := applyConfigFile(cmd, args); err != nil {
			return err
		}
		initLogging(cmd)
		return nil
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(headsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

// applyConfigFile loads --config, if set, and uses it to fill in any of
// --data-dir, --passphrase, --log-level, --log-json, and (for commands that
// define it) --listen the user did not pass explicitly on the command line.
// Explicit flags always win over the file.
func applyConfigFile(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cmd.Flags().Changed("data-dir") && cfg.Spec.DataDir != "" {
		_ = cmd.Flags().Set("data-dir", cfg.Spec.DataDir)
	}
	if !cmd.Flags().Changed("passphrase") && cfg.Spec.KeystorePassphrase != "" {
		_ = cmd.Flags().Set("passphrase", cfg.Spec.KeystorePassphrase)
	}
	if !cmd.Flags().Changed("log-level") && cfg.Spec.LogLevel != "" {
		_ = cmd.Flags().Set("log-level", cfg.Spec.LogLevel)
	}
	if !cmd.Flags().Changed("log-json") && cfg.Spec.JSONLogs {
		_ = cmd.Flags().Set("log-json", "true")
	}
	if listen := cmd.Flags().Lookup("listen"); listen != nil && !listen.Changed && cfg.Spec.ListenAddr != "" {
		_ = cmd.Flags().Set("listen", cfg.Spec.ListenAddr)
	}
	return nil
}

func initLogging(cmd *cobra.Command) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

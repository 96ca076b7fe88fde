package cli

import (
	"github.com/spf13/cobra"

	"github.com/dotrep-network/dotrep/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Listen address override (host:port)")
	serveCmd.Flags().String("db", "", "SQLite path override (empty string in config disables storage)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reputation API server",
	Long: `Start the daemon: load the config, open storage, and serve the
reputation API until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		host, port, err := daemon.SplitAddr(addr)
		if err != nil {
			return err
		}
		cfg.API.Host, cfg.API.Port = host, port
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path, _ = cmd.Flags().GetString("db")
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	return d.Run(cmd.Context())
}

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/auto-dns/podvis/internal/app"
	"github.com/auto-dns/podvis/internal/config"
)

var forwarderCmd = &cobra.Command{
	Use:   "forwarder",
	Short: "Receive pod events over HTTP and forward container states",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplication(cmd, "forwarder", func(cfg *config.Config, l zerolog.Logger) (application, error) {
			return app.NewForwarder(cfg, l)
		})
	},
}

func init() {
	forwarderCmd.Flags().String("listen-addr", ":8888", "address for inbound pod events")
	forwarderCmd.Flags().String("target-url", "http://podvis.default:8001/", "visualizer reflector URL")
	forwarderCmd.Flags().Duration("timeout", 0, "outbound request timeout (default from config)")
	_ = v.BindPFlag("forwarder.listen_addr", forwarderCmd.Flags().Lookup("listen-addr"))
	_ = v.BindPFlag("forwarder.target_url", forwarderCmd.Flags().Lookup("target-url"))
	_ = v.BindPFlag("forwarder.timeout", forwarderCmd.Flags().Lookup("timeout"))
}

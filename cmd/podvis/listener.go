package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/auto-dns/podvis/internal/app"
	"github.com/auto-dns/podvis/internal/config"
)

var listenerCmd = &cobra.Command{
	Use:   "listener",
	Short: "Serve the pod status page and its event stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplication(cmd, "listener", func(cfg *config.Config, l zerolog.Logger) (application, error) {
			return app.NewListener(cfg, l)
		})
	},
}

func init() {
	listenerCmd.Flags().String("ui-addr", ":8000", "address for the status page and event stream")
	listenerCmd.Flags().String("reflector-addr", ":8001", "address accepting notifications")
	listenerCmd.Flags().String("store", "memory", "snapshot store: memory or etcd")
	_ = v.BindPFlag("listener.ui_addr", listenerCmd.Flags().Lookup("ui-addr"))
	_ = v.BindPFlag("listener.reflector_addr", listenerCmd.Flags().Lookup("reflector-addr"))
	_ = v.BindPFlag("listener.store", listenerCmd.Flags().Lookup("store"))
}

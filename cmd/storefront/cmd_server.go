package main

import (
	httpapi "storefront/internal/api/http"
	"storefront/internal/service"

	"github.com/spf13/cobra"
)

// storefront serve: the storefront over HTTP, for the browser front end.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := current
		a.startConsumer(ctx)

		if err := a.cart.Load(ctx); err != nil {
			a.log.Warn("initial cart load failed", "error", err)
		}

		flows := service.NewFlowRegistry(a.newFlow, a.hub)
		defer flows.Close()
		proxy := httpapi.NewProxy(a.cfg.APIBaseURL, nil, a.auth, a.log)
		handler := httpapi.NewHandler(a.auth, a.cart, a.catalog, a.admin, flows, proxy, a.log)

		return httpapi.StartServer(ctx, a.cfg.HTTPAddr, httpapi.NewRouter(handler, a.cfg.CORSOrigins...), a.log)
	},
}

func init() {
	serveCmd.Flags().StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "listen address")
}

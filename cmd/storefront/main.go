package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/config"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the root command. Cobra skips post-run hooks when a command
// fails, so the app is closed here as well.
func execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

func closeApp() {
	if current != nil {
		current.Close()
		current = nil
	}
}

var cfg = config.Load()

// current is built by the root PersistentPreRunE for every command that talks to the API.
var current *app

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Food ordering storefront: carts, checkout and payment confirmation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "base URL of the order/cart API")
	flags.StringVar(&cfg.Store, "store", cfg.Store, "session store: file, redis or memory")
	flags.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "session file for the file store")
	flags.StringVar(&cfg.Profile, "profile", cfg.Profile, "session profile name")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Catalog
	rootCmd.AddCommand(restaurantsCmd)
	rootCmd.AddCommand(menusCmd)
	rootCmd.AddCommand(ordersCmd)

	// Cart and checkout
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(payCmd)

	// Admin
	rootCmd.AddCommand(adminCmd)

	// Server
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/mockserver"
)

var (
	mockAddrFlag      string
	mockSeedFlag      bool
	mockRateLimitFlag int
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "In-memory storefront backend",
}

func newMockServer() (*mockserver.Server, error) {
	store := mockserver.NewStore()
	if mockSeedFlag {
		if err := mockserver.Seed(store); err != nil {
			return nil, err
		}
	}
	return mockserver.New(store, mockserver.Options{
		RateLimit:      mockRateLimitFlag,
		AllowedOrigins: config.MockCORSOrigins(),
	}), nil
}

// storefront mock serve --addr :8081 --seed
var mockServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mock backend until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv, err := newMockServer()
		if err != nil {
			return err
		}
		addr := mockAddrFlag
		if addr == "" {
			addr = config.MockAddr()
		}
		if mockSeedFlag {
			fmt.Fprintf(cmd.OutOrStdout(), "seeded: manager %s / %s, shopper %s / %s\n",
				mockserver.ManagerEmail, mockserver.ManagerPassword,
				mockserver.ShopperEmail, mockserver.ShopperPassword)
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

// storefront mock routes
var mockRoutesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List every endpoint the mock backend serves",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := newMockServer()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		for _, r := range srv.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Method, r.Path, r.Name)
		}
		return w.Flush()
	},
}

func init() {
	mockServeCmd.Flags().StringVar(&mockAddrFlag, "addr", "", "Listen address (default MOCK_ADDR)")
	mockServeCmd.Flags().BoolVar(&mockSeedFlag, "seed", true, "Start with demo accounts and products")
	mockServeCmd.Flags().IntVar(&mockRateLimitFlag, "rate-limit", 0, "Requests per minute per client, 0 for none")

	mockCmd.AddCommand(mockServeCmd, mockRoutesCmd)
}

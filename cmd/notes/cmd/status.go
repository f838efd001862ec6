package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcserver "noteminder/internal/grpc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the daemon's API is serving",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.GRPC.Address == "" {
			return fmt.Errorf("grpc_address is not configured")
		}
		c, err := grpcserver.Dial(cfg.GRPC.Address)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		st, err := c.Health(ctx)
		if err != nil {
			return fmt.Errorf("daemon not reachable at %s: %w", cfg.GRPC.Address, err)
		}
		if st != healthpb.HealthCheckResponse_SERVING {
			fmt.Fprintln(cmd.OutOrStdout(), warning("daemon at %s reports %s", cfg.GRPC.Address, st))
			return fmt.Errorf("daemon not serving")
		}
		fmt.Fprintln(cmd.OutOrStdout(), success("daemon serving at %s", cfg.GRPC.Address))
		return nil
	},
}

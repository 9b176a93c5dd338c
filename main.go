package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"smartsquare-server/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "smartsquare",
		Short:        "SmartSquare rental marketplace server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		commands.ServeCmd(),
		commands.MigrateCmd(),
		commands.ExpireVerificationsCmd(),
		commands.SetStaffCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

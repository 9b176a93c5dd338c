package commands

import (
	"fmt"
	"time"

	"github.com/kataras/golog"
	"github.com/spf13/cobra"
)

// ExpireVerificationsCmd expires lapsed owner verifications once, or on a
// fixed interval until the command is stopped.
func ExpireVerificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire-verifications",
		Short: "Expire approved verifications past their expiry date",
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, _ := cmd.Flags().GetDuration("interval")
			ctx := cmd.Context()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.svc.Verifications.ExpireDue(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Expired %d verifications.\n", n)
			if interval <= 0 {
				return nil
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if n, err := a.svc.Verifications.ExpireDue(ctx); err != nil {
						golog.Errorf("expire verifications: %v", err)
					} else if n > 0 {
						golog.Infof("expired %d verifications", n)
					}
				}
			}
		},
	}
	cmd.Flags().Duration("interval", 0, "repeat on this interval instead of running once")
	return cmd
}

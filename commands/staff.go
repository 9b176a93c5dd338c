package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func SetStaffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-staff <email>",
		Short: "Grant or revoke staff access for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revoke, _ := cmd.Flags().GetBool("revoke")

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.svc.Users.SetStaff(cmd.Context(), args[0], !revoke)
			if err != nil {
				return err
			}
			fmt.Printf("%s staff=%t\n", user.Email, user.IsStaff)
			return nil
		},
	}
	cmd.Flags().Bool("revoke", false, "remove staff access instead of granting it")
	return cmd
}

package commands

import (
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestSetStaffNeedsEmail(t *testing.T) {
	assert.Error(t, run(SetStaffCmd()))
}

func TestCommandsNeedConfiguration(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/smartsquare")

	for _, cmd := range []*cobra.Command{MigrateCmd(), ExpireVerificationsCmd(), ServeCmd()} {
		err := run(cmd)
		require.Error(t, err, cmd.Name())
		assert.Contains(t, err.Error(), "SECRET_KEY", cmd.Name())
	}
}

func TestFlags(t *testing.T) {
	interval := ExpireVerificationsCmd().Flags().Lookup("interval")
	require.NotNil(t, interval)
	assert.Equal(t, "0s", interval.DefValue)

	revoke := SetStaffCmd().Flags().Lookup("revoke")
	require.NotNil(t, revoke)
	assert.Equal(t, "false", revoke.DefValue)
}

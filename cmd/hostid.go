package cmd

import (
	"github.com/spf13/cobra"
)

// newHostIDCmd re-reads the host id of an installed appliance and prints the
// report again, without running the installer.
func newHostIDCmd(env environment, opts *options, started *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "hostid",
		Short: "Show the host id and connection URL of an installed appliance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*started = true
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true

			inst, log, err := opts.setup(cmd, env)
			if err != nil {
				return err
			}
			defer log.Close()

			_, err = inst.RunHostID(cmd.Context())
			return err
		},
	}
}

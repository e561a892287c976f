package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <name>",
		Short: "Print a signed identity broadcast for name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp(*configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.agent.Broadcast(args[0]).String())
			return err
		},
	}
}

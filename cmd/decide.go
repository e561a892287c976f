package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nstehr/uburu/model"
)

func newDecideCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "decide [file|-]",
		Short: "Run one round offline against a game status document",
		Long:  "decide reads a game status JSON document from a file, or stdin when the argument is - or missing, and prints the categories and support decision.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp(*configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			data, err := readStatus(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			gs, err := model.ParseGameStatus(data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(app.agent.Round(gs))
		},
	}
}

func readStatus(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read game status: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read game status: %w", err)
	}
	return data, nil
}

package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const secretBytes = 32

type teamKeys struct {
	TeamSecret string   `toml:"team_secret"`
	StableIDs  []string `toml:"stable_ids"`
	SlotIndex  int      `toml:"slot_index"`
}

func newKeygenCmd() *cobra.Command {
	var slots int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a team secret and stable ids as a config fragment",
		Long:  "keygen prints a TOML fragment to share with every teammate over a trusted channel. Each player then sets slot_index to their own position in stable_ids.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if slots < 1 {
				return fmt.Errorf("--slots must be at least 1, got %d", slots)
			}
			keys, err := generateTeamKeys(slots)
			if err != nil {
				return err
			}
			data, err := toml.Marshal(keys)
			if err != nil {
				return fmt.Errorf("encode team keys: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().IntVar(&slots, "slots", 6, "number of teammates")
	return cmd
}

func generateTeamKeys(slots int) (teamKeys, error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return teamKeys{}, fmt.Errorf("generate team secret: %w", err)
	}
	ids := make([]string, slots)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return teamKeys{TeamSecret: hex.EncodeToString(secret), StableIDs: ids}, nil
}

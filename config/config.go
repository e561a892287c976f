// Package config loads the agent's team configuration from an optional
// config file, a .env file and UBURU_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nstehr/uburu/team"
)

var (
	ErrMissingSecret   = errors.New("team_secret is required")
	ErrMissingStableID = errors.New("stable_ids and slot_index are required")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

const (
	ModeStrategic = "strategic"
	ModeTeamFirst = "team-first"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportNone  = "none"
)

const (
	keyTeamSecret   = "team_secret"
	keyStableIDs    = "stable_ids"
	keySlotIndex    = "slot_index"
	keyPairingFile  = "pairing_file"
	keyMode         = "mode"
	keySocketPath   = "socket_path"
	keyHTTPAddr     = "http_addr"
	keyMCPTransport = "mcp_transport"
	keyLogLevel     = "log_level"
)

// Config holds everything the agent needs to join its team.
type Config struct {
	TeamSecret   string
	StableIDs    []string
	SlotIndex    int
	PairingFile  string
	Mode         string
	SocketPath   string
	HTTPAddr     string
	MCPTransport string
	LogLevel     string
}

// SelfID is this agent's stable identifier.
func (c *Config) SelfID() string {
	return c.StableIDs[c.SlotIndex]
}

// Load resolves configuration. configFile may be empty, in which case
// uburu.{toml,yaml} is looked up in the working directory and ~/.uburu.
// A missing config file is not an error; missing required keys are.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	v.SetEnvPrefix("UBURU")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyMode, ModeStrategic)
	v.SetDefault(keySocketPath, "/tmp/uburu.sock")
	v.SetDefault(keyHTTPAddr, ":8090")
	v.SetDefault(keyMCPTransport, TransportNone)
	v.SetDefault(keyLogLevel, "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("uburu")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".uburu"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		TeamSecret:   v.GetString(keyTeamSecret),
		StableIDs:    stringList(v.Get(keyStableIDs)),
		SlotIndex:    -1,
		PairingFile:  v.GetString(keyPairingFile),
		Mode:         v.GetString(keyMode),
		SocketPath:   v.GetString(keySocketPath),
		HTTPAddr:     v.GetString(keyHTTPAddr),
		MCPTransport: v.GetString(keyMCPTransport),
		LogLevel:     v.GetString(keyLogLevel),
	}
	if v.IsSet(keySlotIndex) {
		cfg.SlotIndex = v.GetInt(keySlotIndex)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on anything that would let the agent run with an empty
// key or an identity it cannot claim.
func (c *Config) Validate() error {
	if c.TeamSecret == "" {
		return ErrMissingSecret
	}
	if len(c.StableIDs) == 0 || c.SlotIndex < 0 {
		return ErrMissingStableID
	}
	if c.SlotIndex >= len(c.StableIDs) {
		return fmt.Errorf("%w: slot_index %d out of range for %d stable ids", ErrInvalidConfig, c.SlotIndex, len(c.StableIDs))
	}
	for i, id := range c.StableIDs {
		if id == "" || strings.Contains(id, team.Delimiter) {
			return fmt.Errorf("%w: stable id %q must be non-empty and free of %q", ErrInvalidConfig, id, team.Delimiter)
		}
		if slices.Index(c.StableIDs, id) != i {
			return fmt.Errorf("%w: duplicate stable id %q", ErrInvalidConfig, id)
		}
	}
	switch c.Mode {
	case ModeStrategic, ModeTeamFirst:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	switch c.MCPTransport {
	case TransportStdio, TransportHTTP, TransportNone:
	default:
		return fmt.Errorf("%w: unknown mcp_transport %q", ErrInvalidConfig, c.MCPTransport)
	}
	return nil
}

// stringList accepts a list from a config file or a comma separated string
// from the environment. Empty entries are kept so Validate rejects them
// instead of shifting slot_index onto another id.
func stringList(raw any) []string {
	var items []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		items = strings.Split(v, ",")
	case []string:
		items = v
	case []any:
		for _, x := range v {
			items = append(items, fmt.Sprint(x))
		}
	default:
		items = []string{fmt.Sprint(v)}
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/nstehr/uburu/agent"
	"github.com/nstehr/uburu/config"
	"github.com/nstehr/uburu/identity"
	"github.com/nstehr/uburu/metrics"
	"github.com/nstehr/uburu/rules"
	"github.com/nstehr/uburu/team"
)

type app struct {
	cfg   *config.Config
	agent *agent.Agent
}

// wireApp loads configuration and builds the agent. Logs go to logOut so
// stdout stays free for command output and the stdio MCP transport.
func wireApp(configFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(viper.New(), configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	signer, err := identity.NewSigner([]byte(cfg.TeamSecret))
	if err != nil {
		return nil, fmt.Errorf("wire signer: %w", err)
	}

	opts := []team.Option{
		team.WithStableIDs(cfg.StableIDs),
		team.WithObserver(func(o team.Outcome) {
			metrics.BroadcastsTotal.WithLabelValues(string(o)).Inc()
		}),
	}
	if cfg.PairingFile != "" {
		table, err := team.LoadPairingTable(cfg.PairingFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, team.WithPairingTable(table))
	}
	registry, err := team.NewRegistry(signer, cfg.SelfID(), opts...)
	if err != nil {
		return nil, fmt.Errorf("wire team registry: %w", err)
	}

	engine, err := rules.NewEngine(rules.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("wire rule engine: %w", err)
	}

	slog.Debug("agent wired", "stableID", cfg.SelfID(), "mode", cfg.Mode, "rules", engine.RuleNames())
	return &app{cfg: cfg, agent: agent.New(registry, engine, cfg.Mode)}, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("%w: log_level %q", config.ErrInvalidConfig, level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

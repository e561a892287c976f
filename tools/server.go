// Package tools exposes the agent to an LLM orchestrator as MCP tools.
package tools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/nstehr/uburu/agent"
	"github.com/nstehr/uburu/config"
)

// NewServer registers every tool against a. The same server backs the stdio
// transport and the streamable HTTP handler.
func NewServer(a *agent.Agent, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"uburu",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions(a.Mode())),
	)

	h := &handlers{agent: a}
	s.AddTool(addMyNameTool(), h.addMyName)
	s.AddTool(broadcastMessageTool(), h.broadcastMessage)
	s.AddTool(listenForMessageTool(), h.listenForMessage)
	s.AddTool(categorizePlayersTool(), h.categorizePlayers)
	s.AddTool(getSupportersTool(), h.getSupporters)
	s.AddTool(chooseSupportTeammateTool(), h.chooseSupportTeammate)
	s.AddTool(chooseSupportStrategicTool(), h.chooseSupportStrategic)
	s.AddTool(getRosterTool(), h.getRoster)
	return s
}

func instructions(mode string) string {
	support := `Call choose_support_strategic(game_status) once per round and register the returned target.`
	if mode == config.ModeTeamFirst {
		support = `Call choose_support_teammate(game_status) once per poll. If it returns no target, try again on
the next poll. After 4 misses in the same round call choose_support_strategic(game_status) instead.`
	}
	return `Alliance game: rounds are short and you are polled several times per round.

On your first call pick a player name, call add_my_name(name), then broadcast_message(name) and send
the returned broadcast to every player in other_players.

On every poll call listen_for_message(game_status). Send a fresh broadcast_message to each name it
returns as rejoined.

` + support + `

categorize_players, get_supporters and get_roster are read-only helpers.`
}

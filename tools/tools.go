package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nstehr/uburu/agent"
	"github.com/nstehr/uburu/metrics"
	"github.com/nstehr/uburu/model"
	"github.com/nstehr/uburu/rules"
	"github.com/nstehr/uburu/team"
)

const statusArg = "game_status"

func gameStatusParam() mcp.ToolOption {
	return mcp.WithString(statusArg,
		mcp.Required(),
		mcp.Description("The current game status document as JSON"),
	)
}

func addMyNameTool() mcp.Tool {
	return mcp.NewTool("add_my_name",
		mcp.WithDescription("Register the display name you play under. Returns the signed broadcast to send to every other player."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Your display name")),
	)
}

func broadcastMessageTool() mcp.Tool {
	return mcp.NewTool("broadcast_message",
		mcp.WithDescription("Sign a fresh identity broadcast for name. Send it to teammates after they rejoin."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Your current display name")),
	)
}

func listenForMessageTool() mcp.Tool {
	return mcp.NewTool("listen_for_message",
		mcp.WithDescription("Absorb this round's messages and return teammates that rejoined under a new name."),
		gameStatusParam(),
	)
}

func categorizePlayersTool() mcp.Tool {
	return mcp.NewTool("categorize_players",
		mcp.WithDescription("Split non-teammate opponents into leader, supporters, mid tier, strugglers and competitors."),
		gameStatusParam(),
	)
}

func getSupportersTool() mcp.Tool {
	return mcp.NewTool("get_supporters",
		mcp.WithDescription("List who to message this round: every supporter from last round, topped up with others to 6 players."),
		gameStatusParam(),
	)
}

func chooseSupportTeammateTool() mcp.Tool {
	return mcp.NewTool("choose_support_teammate",
		mcp.WithDescription("Return this round's paired teammate, or no target when the partner is absent."),
		gameStatusParam(),
	)
}

func chooseSupportStrategicTool() mcp.Tool {
	return mcp.NewTool("choose_support_strategic",
		mcp.WithDescription("Pick a support target with the priority cascade: reciprocity, leadership, mid tier, messages, closest score."),
		gameStatusParam(),
	)
}

func getRosterTool() mcp.Tool {
	return mcp.NewTool("get_roster",
		mcp.WithDescription("Return the verified teammates present this round and the identity timeline."),
	)
}

type handlers struct {
	agent *agent.Agent
}

type broadcastResult struct {
	Broadcast string `json:"broadcast"`
}

type listenResult struct {
	RejoinedPlayers []string `json:"rejoined_players"`
	Roster          []string `json:"roster"`
}

type rosterResult struct {
	Roster   []string             `json:"roster"`
	Timeline []team.TimelineEntry `json:"timeline"`
}

func (h *handlers) addMyName(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return failure("add_my_name", err), nil
	}
	b := h.agent.Register(name)
	return success("add_my_name", broadcastResult{Broadcast: b.String()})
}

func (h *handlers) broadcastMessage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return failure("broadcast_message", err), nil
	}
	b := h.agent.Broadcast(name)
	return success("broadcast_message", broadcastResult{Broadcast: b.String()})
}

func (h *handlers) listenForMessage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gs, err := gameStatus(req)
	if err != nil {
		return failure("listen_for_message", err), nil
	}
	rejoined := h.agent.Listen(gs)
	if rejoined == nil {
		rejoined = []string{}
	}
	roster := h.agent.Roster()
	if roster == nil {
		roster = []string{}
	}
	return success("listen_for_message", listenResult{RejoinedPlayers: rejoined, Roster: roster})
}

func (h *handlers) categorizePlayers(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gs, err := gameStatus(req)
	if err != nil {
		return failure("categorize_players", err), nil
	}
	return success("categorize_players", h.agent.Categorize(gs))
}

func (h *handlers) getSupporters(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gs, err := gameStatus(req)
	if err != nil {
		return failure("get_supporters", err), nil
	}
	return success("get_supporters", rules.SelectMessageTargets(gs, rules.MaxMessageTargets))
}

func (h *handlers) chooseSupportTeammate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gs, err := gameStatus(req)
	if err != nil {
		return failure("choose_support_teammate", err), nil
	}
	return success("choose_support_teammate", h.agent.ChooseTeammate(gs))
}

func (h *handlers) chooseSupportStrategic(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gs, err := gameStatus(req)
	if err != nil {
		return failure("choose_support_strategic", err), nil
	}
	return success("choose_support_strategic", h.agent.ChooseStrategic(gs))
}

func (h *handlers) getRoster(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roster := h.agent.Roster()
	if roster == nil {
		roster = []string{}
	}
	return success("get_roster", rosterResult{Roster: roster, Timeline: h.agent.Timeline()})
}

func gameStatus(req mcp.CallToolRequest) (model.GameStatus, error) {
	raw, err := req.RequireString(statusArg)
	if err != nil {
		return model.GameStatus{}, err
	}
	return model.ParseGameStatus([]byte(raw))
}

// success renders v as the JSON text content of the result.
func success(tool string, v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(tool, "error").Inc()
		return nil, fmt.Errorf("marshal %s result: %w", tool, err)
	}
	metrics.ToolCallsTotal.WithLabelValues(tool, "ok").Inc()
	return mcp.NewToolResultText(string(data)), nil
}

// failure reports bad input to the caller as a tool error; the session stays up.
func failure(tool string, err error) *mcp.CallToolResult {
	slog.Warn("tool call rejected", "tool", tool, "error", err)
	metrics.ToolCallsTotal.WithLabelValues(tool, "error").Inc()
	return mcp.NewToolResultError(err.Error())
}

package gateways

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ScreenGateway starts detached GNU screen sessions so synthesis runs
// survive the terminal that launched them.
type ScreenGateway struct {
	executor *CommandExecutor
}

// NewScreenGateway creates a new screen gateway
func NewScreenGateway(executor *CommandExecutor) *ScreenGateway {
	return &ScreenGateway{executor: executor}
}

// StartDetached launches command in a named detached session
func (g *ScreenGateway) StartDetached(ctx context.Context, session, command string) error {
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:        "screen",
		Args:        []string{"-dmS", session, "bash", "-c", command},
		Timeout:     time.Minute,
		Description: fmt.Sprintf("screen -dmS %s", session),
	})
	if !result.Success {
		return fmt.Errorf("failed to start screen session %s: %s",
			session, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// ListSessions returns the names of the sessions currently known to screen
func (g *ScreenGateway) ListSessions(ctx context.Context) ([]string, error) {
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:    "screen",
		Args:    []string{"-ls"},
		Timeout: time.Minute,
	})
	// screen -ls exits non-zero when no sessions exist
	if !result.Success && !strings.Contains(result.Stdout, "No Sockets found") {
		if result.Stdout == "" {
			return nil, fmt.Errorf("screen -ls failed: %s", strings.TrimSpace(result.Stderr))
		}
	}
	return ParseScreenSessions(result.Stdout), nil
}

// ParseScreenSessions extracts session names from `screen -ls` output
func ParseScreenSessions(output string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		// Session lines look like "12345.name\t(Detached)"
		if !strings.Contains(trimmed, "(") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}
		parts := strings.SplitN(fields[0], ".", 2)
		if len(parts) != 2 || parts[1] == "" {
			continue
		}
		sessions = append(sessions, parts[1])
	}
	return sessions
}

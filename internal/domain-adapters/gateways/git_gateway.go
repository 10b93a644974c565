package gateways

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GitGateway clones firmware repositories at pinned tags
type GitGateway struct {
	executor *CommandExecutor
}

// NewGitGateway creates a new git gateway
func NewGitGateway(executor *CommandExecutor) *GitGateway {
	return &GitGateway{executor: executor}
}

// CloneTag clones url at tag into dir
func (g *GitGateway) CloneTag(ctx context.Context, url, tag, dir string) error {
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:        "git",
		Args:        []string{"clone", "--depth", "1", "-b", tag, url, dir},
		Timeout:     15 * time.Minute,
		Description: fmt.Sprintf("git clone %s (%s)", url, tag),
	})
	if !result.Success {
		return fmt.Errorf("git clone %s -b %s failed (exit %d): %s",
			url, tag, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Describe returns the output of git describe for a checkout
func (g *GitGateway) Describe(ctx context.Context, dir string) (string, error) {
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:       "git",
		Args:       []string{"describe", "--tags", "--always"},
		WorkingDir: dir,
		Timeout:    time.Minute,
	})
	if !result.Success {
		return "", fmt.Errorf("git describe failed in %s: %s", dir, strings.TrimSpace(result.Stderr))
	}
	return strings.TrimSpace(result.Stdout), nil
}

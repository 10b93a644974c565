package gateways

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ipbbVersionPattern = regexp.MustCompile(`\bversion\b[,:]?\s+(\d+\.\d+\.\d+)`)

// IPBBGateway drives the ipbb build tool used to assemble Vivado work areas
type IPBBGateway struct {
	executor *CommandExecutor
}

// NewIPBBGateway creates a new ipbb gateway
func NewIPBBGateway(executor *CommandExecutor) *IPBBGateway {
	return &IPBBGateway{executor: executor}
}

// Version returns the installed ipbb version string (e.g. "2.0.1")
func (g *IPBBGateway) Version(ctx context.Context) (string, error) {
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:    "ipbb",
		Args:    []string{"--version"},
		Timeout: time.Minute,
	})
	if !result.Success {
		return "", fmt.Errorf("ipbb not available: %s", strings.TrimSpace(result.Stderr))
	}
	return ParseIPBBVersionOutput(result.Stdout)
}

// ParseIPBBVersionOutput extracts the version number from `ipbb --version` output
func ParseIPBBVersionOutput(output string) (string, error) {
	matches := ipbbVersionPattern.FindStringSubmatch(output)
	if matches == nil {
		return "", fmt.Errorf("failed to parse ipbb version from %q", strings.TrimSpace(output))
	}
	return matches[1], nil
}

// Init creates a new ipbb work area at dir
func (g *IPBBGateway) Init(ctx context.Context, dir string) error {
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:        "ipbb",
		Args:        []string{"init", dir},
		Timeout:     5 * time.Minute,
		Description: fmt.Sprintf("ipbb init %s", dir),
	})
	if !result.Success {
		return fmt.Errorf("ipbb init %s failed: %s", dir, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// AddGit adds a source repository at a pinned tag to the work area
func (g *IPBBGateway) AddGit(ctx context.Context, workArea, url, tag string) error {
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:        "ipbb",
		Args:        []string{"add", "git", url, "-b", tag},
		WorkingDir:  workArea,
		Timeout:     15 * time.Minute,
		Description: fmt.Sprintf("ipbb add git %s (%s)", url, tag),
	})
	if !result.Success {
		return fmt.Errorf("ipbb add git %s -b %s failed: %s", url, tag, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// ProjCreate creates a Vivado project for one uGT module inside the work area
func (g *IPBBGateway) ProjCreate(ctx context.Context, workArea, project, component, depFile string) error {
	args := []string{"proj", "create", "vivado", project, component}
	if depFile != "" {
		args = append(args, "-t", depFile)
	}
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:        "ipbb",
		Args:        args,
		WorkingDir:  workArea,
		Timeout:     10 * time.Minute,
		Description: fmt.Sprintf("ipbb proj create vivado %s", project),
	})
	if !result.Success {
		return fmt.Errorf("ipbb proj create %s failed: %s", project, strings.TrimSpace(result.Stderr))
	}
	return nil
}

package gateways

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Message modes accepted by vsim
const (
	MsgModeTran = "tran" // messages to the transcript only
	MsgModeWLF  = "wlf"  // messages to the WLF file only
	MsgModeBoth = "both"
)

// QuestaGateway wraps Mentor QuestaSim command line simulation runs
type QuestaGateway struct {
	simPath  string
	executor *CommandExecutor
}

// NewQuestaGateway creates a gateway for one QuestaSim installation
func NewQuestaGateway(simPath string, executor *CommandExecutor) *QuestaGateway {
	return &QuestaGateway{
		simPath:  simPath,
		executor: executor,
	}
}

// VsimBinary returns the path of the vsim executable
func (g *QuestaGateway) VsimBinary() string {
	return filepath.Join(g.simPath, "bin", "vsim")
}

// Validate checks that the installation provides a vsim binary
func (g *QuestaGateway) Validate() error {
	if _, err := os.Stat(g.VsimBinary()); err != nil {
		return fmt.Errorf("no QuestaSim installation at %s: %w", g.simPath, err)
	}
	return nil
}

// RunDo executes a simulation do-file in console mode. The combined
// transcript is streamed to the given writer so module logs survive
// even when vsim aborts.
func (g *QuestaGateway) RunDo(ctx context.Context, workDir, doFile, modelsimIni, msgMode string, transcript io.Writer, timeout time.Duration) error {
	args := []string{
		"-c",
		"-msgmode", msgMode,
		"-modelsimini", modelsimIni,
		"-do", fmt.Sprintf("do %s; quit -f", doFile),
	}
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Name:        g.VsimBinary(),
		Args:        args,
		WorkingDir:  workDir,
		Timeout:     timeout,
		Output:      transcript,
		Description: fmt.Sprintf("vsim -c -do %s", filepath.Base(doFile)),
	})
	if !result.Success {
		return fmt.Errorf("vsim run failed (exit %d): %s",
			result.ExitCode, lastLines(result.Stdout+result.Stderr, 5))
	}
	return nil
}

// CheckTranscript scans a vsim transcript for reported errors
func CheckTranscript(transcript string) error {
	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# Errors:") || strings.HasPrefix(trimmed, "Errors:") {
			fields := strings.Fields(trimmed)
			for i, f := range fields {
				if strings.HasPrefix(f, "Errors:") && i+1 < len(fields) {
					if fields[i+1] != "0," && fields[i+1] != "0" {
						return fmt.Errorf("vsim reported errors: %s", trimmed)
					}
				}
			}
		}
	}
	return nil
}

package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// CommandExecutor handles execution of external EDA tool commands
type CommandExecutor struct {
	defaultTimeout time.Duration
}

// NewCommandExecutor creates a new command executor
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{
		defaultTimeout: 8 * time.Hour, // Synthesis and simulation runs are long
	}
}

// ExecuteCommandConfig contains configuration for executing a command.
type ExecuteCommandConfig struct {
	Name        string
	Args        []string
	Shell       string // when set, run via /bin/bash -c instead of Name/Args
	WorkingDir  string
	Env         map[string]string
	Timeout     time.Duration
	Description string
	Output      io.Writer // extra sink for combined output (e.g. a transcript log)
}

// ExecuteResult contains the result of command execution
type ExecuteResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Execute runs a command with the given configuration
func (ce *CommandExecutor) Execute(ctx context.Context, config ExecuteCommandConfig) *ExecuteResult {
	startTime := time.Now()
	result := &ExecuteResult{}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = ce.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if config.Shell != "" {
		// Tool environments (settings64.sh) only exist as sourceable scripts
		//nolint:gosec // G204: Command lines are assembled from validated tool paths
		cmd = exec.CommandContext(execCtx, "/bin/bash", "-c", config.Shell)
	} else {
		//nolint:gosec // G204: Command lines are assembled from validated tool paths
		cmd = exec.CommandContext(execCtx, config.Name, config.Args...)
	}

	if config.WorkingDir != "" {
		cmd.Dir = config.WorkingDir
	}

	env := os.Environ()
	for key, value := range config.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	if config.Output != nil {
		cmd.Stdout = io.MultiWriter(&stdout, config.Output)
		cmd.Stderr = io.MultiWriter(&stderr, config.Output)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if config.Description != "" {
		fmt.Fprintf(os.Stderr, "Executing: %s\n", config.Description)
	}

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else if execCtx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Errorf("command timeout after %v", timeout)
			result.ExitCode = -1
		} else {
			result.ExitCode = -1
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// RunShell runs a bash command line, streaming combined output to the
// given writer, and fails on non-zero exit.
func (ce *CommandExecutor) RunShell(ctx context.Context, shell, workDir string, output io.Writer, timeout time.Duration) error {
	result := ce.Execute(ctx, ExecuteCommandConfig{
		Shell:      shell,
		WorkingDir: workDir,
		Output:     output,
		Timeout:    timeout,
	})
	if !result.Success {
		return fmt.Errorf("command failed (exit %d): %w", result.ExitCode, result.Error)
	}
	return nil
}

// isDirectory checks if a path is a directory
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecError describes a command that exited non-zero or wrote to stderr.
type ExecError struct {
	Command    string
	ExitStatus int
	Stderr     string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitStatus, e.Stderr)
}

// ProcessRunner runs commands as child processes. Arguments are handed to the
// process as argv, never through a shell.
type ProcessRunner struct{}

func (ProcessRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	command := exec.CommandContext(ctx, name, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	log.WithField("args", args).Debugf("exec %s", name)
	err := command.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil && stderr.Len() == 0:
		return stdout.Bytes(), nil
	case err == nil:
		return nil, &ExecError{Command: name, Stderr: strings.TrimSpace(stderr.String())}
	case errors.As(err, &exitErr):
		return nil, &ExecError{Command: name, ExitStatus: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
	default:
		return nil, fmt.Errorf("could not run %s: %w", name, err)
	}
}

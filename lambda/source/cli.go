// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"

	"go.amzn.com/lambdalogs/lambda/model"
)

// typecheck interface compliance
var _ Client = (*CLIClient)(nil)

const awsCLI = "aws"

// CLIClient shells out to the AWS CLI (`aws logs ...`) and parses its JSON output.
type CLIClient struct {
	runner Runner
	region string
}

// NewCLIClient returns a client running the aws binary found in PATH.
func NewCLIClient(region string) *CLIClient {
	return NewCLIClientWithRunner(ProcessRunner{}, region)
}

func NewCLIClientWithRunner(runner Runner, region string) *CLIClient {
	return &CLIClient{runner: runner, region: region}
}

func (c *CLIClient) commonArgs(profile string) []string {
	var args []string
	if profile != "" {
		args = append(args, "--profile", profile)
	}
	if c.region != "" {
		args = append(args, "--region", c.region)
	}
	return append(args, "--output", "json")
}

func (c *CLIClient) DescribeLogStreams(ctx context.Context, groupName, profile string) ([]model.LogStream, error) {
	args := append([]string{"logs", "describe-log-streams", "--log-group-name", groupName}, c.commonArgs(profile)...)

	out, err := c.runner.Run(ctx, awsCLI, args...)
	if err != nil {
		return nil, err
	}
	return parseLogStreams(out)
}

// GetLogEvents pages with --next-token until the CLI hands back the token it was given.
// The stream name is a single argv element, so names like 2020/01/01/[$LATEST]abc
// need no escaping.
func (c *CLIClient) GetLogEvents(ctx context.Context, groupName, streamName, profile string) ([]model.LogEvent, error) {
	var (
		events []model.LogEvent
		token  string
	)
	for {
		args := []string{"logs", "get-log-events", "--log-group-name", groupName, "--log-stream-name", streamName, "--start-from-head"}
		if token != "" {
			args = append(args, "--next-token", token)
		}
		args = append(args, c.commonArgs(profile)...)

		out, err := c.runner.Run(ctx, awsCLI, args...)
		if err != nil {
			return nil, missingStream(err)
		}
		page, next, err := parseLogEvents(out)
		if err != nil {
			return nil, err
		}
		events = append(events, page...)
		if next == "" || next == token {
			return events, nil
		}
		token = next
	}
}

// missingStream marks a CLI failure caused by an unknown group or stream.
func missingStream(err error) error {
	var execErr *ExecError
	if errors.As(err, &execErr) && strings.Contains(execErr.Stderr, "ResourceNotFoundException") {
		return fmt.Errorf("%w: %w", ErrStreamNotFound, err)
	}
	return err
}

func parseLogStreams(data []byte) ([]model.LogStream, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: describe-log-streams output: %v", ErrMalformedResponse, err)
	}
	list := v.Get("logStreams")
	if list == nil {
		return nil, fmt.Errorf("%w: describe-log-streams output: missing logStreams", ErrMalformedResponse)
	}
	items, err := list.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: describe-log-streams output: logStreams: %v", ErrMalformedResponse, err)
	}

	streams := make([]model.LogStream, 0, len(items))
	for _, item := range items {
		name := item.GetStringBytes("logStreamName")
		if name == nil {
			return nil, fmt.Errorf("%w: describe-log-streams output: stream without logStreamName", ErrMalformedResponse)
		}
		streams = append(streams, model.LogStream{
			Name:         string(name),
			CreationTime: item.GetInt64("creationTime"),
		})
	}
	return streams, nil
}

func parseLogEvents(data []byte) ([]model.LogEvent, string, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: get-log-events output: %v", ErrMalformedResponse, err)
	}
	list := v.Get("events")
	if list == nil {
		return nil, "", fmt.Errorf("%w: get-log-events output: missing events", ErrMalformedResponse)
	}
	items, err := list.Array()
	if err != nil {
		return nil, "", fmt.Errorf("%w: get-log-events output: events: %v", ErrMalformedResponse, err)
	}

	events := make([]model.LogEvent, 0, len(items))
	for _, item := range items {
		events = append(events, model.LogEvent{
			Timestamp: item.GetInt64("timestamp"),
			Message:   string(item.GetStringBytes("message")),
		})
	}
	return events, string(v.GetStringBytes("nextForwardToken")), nil
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.amzn.com/lambdalogs/lambda/logerror"
	"go.amzn.com/lambdalogs/lambda/model"
	"go.amzn.com/lambdalogs/lambda/pipeline"
)

const dateLayout = "1-2-2006"

type options struct {
	Function     string        `short:"f" long:"function" required:"true" description:"Lambda function name"`
	Start        string        `long:"start" description:"only streams created at or after this time (MM-DD-YYYY, RFC3339 or epoch millis)"`
	End          string        `long:"end" description:"only streams created at or before this time (MM-DD-YYYY, RFC3339 or epoch millis)"`
	Profile      string        `long:"profile" env:"AWS_PROFILE" description:"AWS credential profile"`
	Region       string        `long:"region" env:"AWS_REGION" description:"AWS region"`
	Search       []string      `short:"s" long:"search" description:"keep streams with an event containing any of these words (comma separated, repeatable)"`
	Output       string        `short:"o" long:"output" default:"output" description:"output folder"`
	Source       string        `long:"source" default:"sdk" choice:"sdk" choice:"cli" choice:"archive" description:"where logs are read from"`
	ArchiveDir   string        `long:"archive-dir" description:"directory of CloudWatch Logs subscription payloads, with --source=archive"`
	Concurrency  int           `long:"concurrency" default:"10" description:"maximum concurrent fetches and writes"`
	FetchTimeout time.Duration `long:"fetch-timeout" default:"5m" description:"time limit for fetching one stream"`
	FetchRetries int           `long:"fetch-retries" default:"2" description:"retries for a failed stream fetch"`
	ClipEvents   bool          `long:"clip-events" description:"also drop events whose own timestamp is outside --start/--end"`
	NoProgress   bool          `long:"no-progress" description:"do not draw a progress bar"`
	LogLevel     string        `long:"log-level" default:"info" description:"log level"`
}

// config validates the options and turns them into a pipeline config.
func (o options) config() (pipeline.Config, error) {
	name := strings.TrimSpace(o.Function)
	if name == "" {
		return pipeline.Config{}, logerror.New(logerror.InvalidConfig, "", fmt.Errorf("function name is required"))
	}

	start, err := parseTime(o.Start, time.Local)
	if err != nil {
		return pipeline.Config{}, logerror.New(logerror.InvalidConfig, "start", err)
	}
	end, err := parseTime(o.End, time.Local)
	if err != nil {
		return pipeline.Config{}, logerror.New(logerror.InvalidConfig, "end", err)
	}
	window := model.NewWindow(start, end)
	if err := window.Validate(); err != nil {
		return pipeline.Config{}, err
	}

	return pipeline.Config{
		FunctionName:   name,
		Window:         window,
		Profile:        o.Profile,
		SearchKeywords: splitKeywords(o.Search),
		OutputFolder:   o.Output,
		Concurrency:    o.Concurrency,
		FetchTimeout:   o.FetchTimeout,
		FetchRetries:   o.FetchRetries,
		ClipEvents:     o.ClipEvents,
	}, nil
}

// parseTime reads an optional point in time as epoch millis. Digits only is
// taken as epoch millis, a date as midnight in loc.
func parseTime(value string, loc *time.Location) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if isDigits(value) {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", value, err)
		}
		return &ms, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			ms := t.UnixMilli()
			return &ms, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, expected MM-DD-YYYY, RFC3339 or epoch millis", value)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// splitKeywords accepts repeated and comma separated keywords alike.
func splitKeywords(values []string) []string {
	var keywords []string
	for _, v := range values {
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}
	return keywords
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"time"

	"go.amzn.com/lambdalogs/lambda/logerror"
	"go.amzn.com/lambdalogs/lambda/model"
)

const DefaultOutputFolder = "output"

// Config is the validated input of a run.
type Config struct {
	FunctionName   string
	Window         model.Window
	Profile        string
	SearchKeywords []string
	OutputFolder   string

	// Concurrency caps both the fetch and the export phase.
	Concurrency  int
	FetchTimeout time.Duration
	FetchRetries int
	// ClipEvents additionally drops events whose own timestamp is outside Window.
	ClipEvents bool
}

// Validate checks the config before any I/O happens.
func (c Config) Validate() error {
	if c.FunctionName == "" {
		return logerror.New(logerror.InvalidConfig, "", errors.New("function name is required"))
	}
	return c.Window.Validate()
}

// LogGroupName is the log group of the configured function.
func (c Config) LogGroupName() string {
	return model.LogGroupName(c.FunctionName)
}

func (c Config) outputFolder() string {
	if c.OutputFolder == "" {
		return DefaultOutputFolder
	}
	return c.OutputFolder
}

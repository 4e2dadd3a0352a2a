// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log"
)

// RunSummary is the final state of a completed run.
type RunSummary struct {
	FunctionName  string
	Discovered    int
	Selected      int
	Retained      int
	FilesWritten  int
	FetchFailures int
	WriteFailures int
	OutputDir     string
}

// Reporter formats and prints operator-facing report lines.
type Reporter struct {
	logger *log.Logger
}

// NewReporter is a logger for the report lines of a run.
func NewReporter(output io.Writer) *Reporter {
	prefix, flags := "", 0
	return &Reporter{
		logger: log.New(output, prefix, flags),
	}
}

// LogRunSummary logs a line describing a completed run.
func (r *Reporter) LogRunSummary(s RunSummary) {
	format := "EXPORT\tFunction: %s\tStreams: %d\tSelected: %d\tRetained: %d\tFiles: %d\tOutput: %s"
	line := fmt.Sprintf(format, s.FunctionName, s.Discovered, s.Selected, s.Retained, s.FilesWritten, s.OutputDir)
	if s.FetchFailures > 0 || s.WriteFailures > 0 {
		line += fmt.Sprintf("\tFetch Failures: %d\tWrite Failures: %d", s.FetchFailures, s.WriteFailures)
	}
	r.logger.Println(line)
}

// LogFatal logs a line describing the error that stopped a run.
func (r *Reporter) LogFatal(functionName string, errorType string, err error) {
	r.logger.Printf("FAILED\tFunction: %s\tError Type: %s\tError: %s\n", functionName, errorType, err)
}

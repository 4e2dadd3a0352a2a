// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logexport "go.amzn.com/lambdalogs/lambda/export"
	"go.amzn.com/lambdalogs/lambda/logerror"
)

const archivedPayloads = `{"messageType":"DATA_MESSAGE","owner":"123456789012","logGroup":"/aws/lambda/f","logStream":"2020/03/04/[$LATEST]aaa","subscriptionFilters":["all"],"logEvents":[{"id":"1","timestamp":1583298367089,"message":"START RequestId: 1\n"}]}
{"messageType":"DATA_MESSAGE","owner":"123456789012","logGroup":"/aws/lambda/f","logStream":"2020/03/05/[$LATEST]bbb","subscriptionFilters":["all"],"logEvents":[{"id":"2","timestamp":1583384767089,"message":"[ERROR] boom, \"bad\""}]}
`

func archiveOptions(t *testing.T, function string) options {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")
	require.NoError(t, os.MkdirAll(archive, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(archive, "part-0.json"), []byte(archivedPayloads), 0o644))

	return options{
		Function:     function,
		Output:       filepath.Join(dir, "out"),
		Source:       "archive",
		ArchiveDir:   archive,
		Concurrency:  2,
		FetchTimeout: time.Minute,
		NoProgress:   true,
		LogLevel:     "info",
	}
}

func TestRunExportsArchive(t *testing.T) {
	opts := archiveOptions(t, "f")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), opts, &stdout, &stderr)

	require.Equal(t, 0, code, stdout.String())
	assert.Equal(t, "EXPORT\tFunction: f\tStreams: 2\tSelected: 2\tRetained: 2\tFiles: 2\tOutput: "+filepath.Join(opts.Output, "f")+"\n", stdout.String())

	files, err := filepath.Glob(filepath.Join(opts.Output, "f", "*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		lines := strings.Split(string(content), "\n")
		assert.Len(t, lines, 2)
		assert.Equal(t, `"Date", "Time", "Timestamp", "Message"`, lines[0])
	}
}

func TestRunSearchKeepsMatchingStream(t *testing.T) {
	opts := archiveOptions(t, "f")
	opts.Search = []string{"error"}
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), opts, &stdout, &stderr)

	require.Equal(t, 0, code)
	files, err := filepath.Glob(filepath.Join(opts.Output, "f", "*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), `"1583384767089", "[ERROR] boom. 'bad'"`)
}

func TestRunNoStreamsFound(t *testing.T) {
	opts := archiveOptions(t, "g")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), opts, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "FAILED\tFunction: g\tError Type: Logs.NoStreamsFound\t"))
	_, err := os.Stat(opts.Output)
	assert.True(t, os.IsNotExist(err))
}

func TestRunInvalidTimeRange(t *testing.T) {
	opts := archiveOptions(t, "f")
	opts.Start, opts.End = "03-05-2020", "03-04-2020"
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), opts, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Error Type: Logs.InvalidTimeRange")
}

func TestRunArchiveRequiresDirectory(t *testing.T) {
	opts := archiveOptions(t, "f")
	opts.ArchiveDir = ""
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), opts, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Error Type: Logs.InvalidConfig")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode())
	assert.Equal(t, 0, exitCode(
		logerror.New(logerror.EventFetchFailure, "s", errors.New("ThrottlingException")),
		logerror.New(logerror.WriteFailure, "out/f/1-1-2020--0-0-0.csv", errors.New("disk full")),
	))
	assert.Equal(t, 1, exitCode(logerror.New(logerror.EventFetchFailure, "s", errors.New("x")), errors.New("untyped")))
	assert.Equal(t, 1, exitCode(logerror.New(logerror.StreamDiscoveryFailure, "/aws/lambda/f", errors.New("x"))))
}

func TestRunCompletesWithSkippedStream(t *testing.T) {
	opts := archiveOptions(t, "f")
	// A directory where the first stream's file would go makes that write fail.
	blocked := filepath.Join(opts.Output, "f", logexport.FileName(1583298367089, time.Local))
	require.NoError(t, os.MkdirAll(blocked, 0o755))
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), opts, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Write Failures: 1")
}

func TestNewClient(t *testing.T) {
	for _, kind := range []string{"sdk", "cli"} {
		client, err := newClient(options{Source: kind})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	}

	_, err := newClient(options{Source: "s3"})
	assert.Error(t, err)
}

func TestProgressReporterDrawsOnWriter(t *testing.T) {
	var buf bytes.Buffer
	report := newProgressReporter(&buf)

	report(1, 2)
	report(2, 2)

	assert.Contains(t, buf.String(), "Fetching events")
}

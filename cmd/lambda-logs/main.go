// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go.amzn.com/lambdalogs/lambda/logerror"
	"go.amzn.com/lambdalogs/lambda/logging"
	"go.amzn.com/lambdalogs/lambda/pipeline"
	"go.amzn.com/lambdalogs/lambda/source"
)

func main() {
	opts := getCLIArgs(os.Args[1:])
	logging.SetOutput(os.Stderr)
	if err := logging.SetLogLevel(opts.LogLevel); err != nil {
		log.WithError(err).Fatal("Failed to set log level. Valid log levels are:", log.AllLevels)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(logging.WithRunID(ctx), opts, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func getCLIArgs(args []string) options {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	return opts
}

// run exports the logs described by opts and returns the process exit code.
func run(ctx context.Context, opts options, stdout, stderr io.Writer) int {
	reporter := logging.NewReporter(stdout)

	result, err := export(ctx, opts, stderr)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("Export failed")
		reporter.LogFatal(opts.Function, string(logerror.GetType(err)), err)
		return 1
	}

	reporter.LogRunSummary(logging.RunSummary{
		FunctionName:  opts.Function,
		Discovered:    result.Discovered,
		Selected:      result.Selected,
		Retained:      result.Retained,
		FilesWritten:  len(result.Files),
		FetchFailures: len(result.FetchErrors),
		WriteFailures: len(result.WriteErrors),
		OutputDir:     result.OutputDir,
	})
	return exitCode(append(result.FetchErrors, result.WriteErrors...)...)
}

// exitCode is 1 if any failure of a completed run is fatal. Skipped streams and
// unwritten files alone still exit 0.
func exitCode(failures ...error) int {
	for _, err := range failures {
		if logerror.IsFatal(err) {
			return 1
		}
	}
	return 0
}

func export(ctx context.Context, opts options, stderr io.Writer) (*pipeline.Result, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return newPipeline(client, opts, stderr).Run(ctx, cfg)
}

func newClient(opts options) (source.Client, error) {
	switch source.Kind(opts.Source) {
	case source.KindSDK:
		return source.NewSDKClient(opts.Region), nil
	case source.KindCLI:
		return source.NewCLIClient(opts.Region), nil
	case source.KindArchive:
		if opts.ArchiveDir == "" {
			return nil, logerror.New(logerror.InvalidConfig, "", errors.New("--archive-dir is required with --source=archive"))
		}
		return source.NewArchiveClient(afero.NewOsFs(), opts.ArchiveDir), nil
	}
	return nil, logerror.New(logerror.InvalidConfig, "", fmt.Errorf("unknown source %q", opts.Source))
}

func newPipeline(client source.Client, opts options, stderr io.Writer) *pipeline.Pipeline {
	var pipelineOpts []pipeline.Option
	if !opts.NoProgress {
		pipelineOpts = append(pipelineOpts, pipeline.WithProgress(newProgressReporter(stderr)))
	}
	return pipeline.New(client, pipelineOpts...)
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*
A log export run emits two kinds of output:

 1. Internal logs: the exporter's own application logs (logrus) into stderr, carrying a runID field
    and, where relevant, the stream or file a message concerns.
 2. Report lines: tab separated, operator-facing lines on stdout describing the final state of a run,
    either the summary of what was written or the fatal error that stopped it.

The progress bar of the fetch phase is drawn on stderr by the CLI and is not a log sink.
*/
package logging

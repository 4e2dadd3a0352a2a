// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.amzn.com/lambdalogs/lambda/model"
)

// Header is the first line of every exported file.
const Header = `"Date", "Time", "Timestamp", "Message"`

const fileExt = ".csv"

// messageReplacer keeps each message on one line and free of csv delimiters.
var messageReplacer = strings.NewReplacer(
	"\n", "  ",
	",", ".",
	`"`, "'",
)

// SanitizeMessage applies the lossy message rewrite of exported rows.
func SanitizeMessage(message string) string {
	return messageReplacer.Replace(message)
}

// FormatDate renders M-D-YYYY, unpadded.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", int(t.Month()), t.Day(), t.Year())
}

// FormatTime renders H-M-S on a 24 hour clock, unpadded.
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Hour(), t.Minute(), t.Second())
}

// FileName names the file of a stream created at streamTimestamp (epoch millis).
func FileName(streamTimestamp int64, loc *time.Location) string {
	t := time.UnixMilli(streamTimestamp).In(loc)
	return FormatDate(t) + "--" + FormatTime(t) + fileExt
}

// FormatRow renders one event as a data row.
func FormatRow(e model.LogEvent, loc *time.Location) string {
	t := time.UnixMilli(e.Timestamp).In(loc)
	return fmt.Sprintf(`"%s", "%s", "%d", "%s"`, FormatDate(t), FormatTime(t), e.Timestamp, SanitizeMessage(e.Message))
}

// Render returns the full file content for events: the header, then one row per
// event in order, newline separated without a trailing newline.
func Render(events []model.LogEvent, loc *time.Location) []byte {
	lines := make([]string, 0, len(events)+1)
	lines = append(lines, Header)
	for _, e := range events {
		lines = append(lines, FormatRow(e, loc))
	}
	return []byte(strings.Join(lines, "\n"))
}

// fileNames assigns a file name to every record. Records created within the same
// second would collide; they get a -2, -3, ... suffix in (StreamTimestamp, StreamName)
// order, so a stream keeps its name whatever order the records arrived in.
func fileNames(records []model.LogRecord, loc *time.Location) []string {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		if ra.StreamTimestamp != rb.StreamTimestamp {
			return ra.StreamTimestamp < rb.StreamTimestamp
		}
		return ra.StreamName < rb.StreamName
	})

	names := make([]string, len(records))
	used := make(map[string]int, len(records))
	for _, i := range order {
		name := FileName(records[i].StreamTimestamp, loc)
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, fileExt), n, fileExt)
		}
		names[i] = name
	}
	return names
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aggregator

import (
	"strings"

	"go.amzn.com/lambdalogs/lambda/model"
)

// NormalizeKeywords lower-cases and trims keywords, dropping empty and repeated ones.
func NormalizeKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	return keywords
}

// Matches reports whether any event message of r contains any of the normalized keywords.
func Matches(r model.LogRecord, keywords []string) bool {
	for _, e := range r.Events {
		message := strings.ToLower(e.Message)
		for _, k := range keywords {
			if strings.Contains(message, k) {
				return true
			}
		}
	}
	return false
}

// Search keeps the records with at least one event matching at least one keyword,
// case-insensitively, and removes the others. Surviving records are untouched.
// An empty keyword set leaves the collection as is.
func (c *Collection) Search(keywords []string) (removed int) {
	keywords = NormalizeKeywords(keywords)
	if len(keywords) == 0 {
		return 0
	}
	return c.retain(func(r model.LogRecord) bool {
		return Matches(r, keywords)
	})
}

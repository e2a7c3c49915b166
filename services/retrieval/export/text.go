// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package export

import "strings"

// nodeTextLimit caps display text picked off a node before word clipping.
const nodeTextLimit = 140

// nodeTextWords is the word budget for a node in a rendered path.
const nodeTextWords = 12

// escapeReplacer decodes the literal unicode escape sequences that
// commonly leak into ingested text and break terminal/LLM rendering.
var escapeReplacer = strings.NewReplacer(
	`\u2013`, "-", // en dash
	`\u2014`, "--", // em dash
	`\u2019`, "'", // right single quote
	`\u201c`, `"`, // left double quote
	`\u201d`, `"`, // right double quote
)

// decodeEscapes cleans unicode escape sequences from display text.
func decodeEscapes(text string) string {
	return escapeReplacer.Replace(text)
}

// firstNWords returns the first n whitespace-separated words of text.
func firstNWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ")
}

// pickDisplayText selects a node's display text: the first non-empty of
// title, name, text, summary, description, capped at nodeTextLimit.
func pickDisplayText(props map[string]any) string {
	for _, key := range []string{"title", "name", "text", "summary", "description"} {
		if value, ok := props[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return truncate(trimmed, nodeTextLimit)
			}
		}
	}
	return ""
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return strings.TrimRight(value[:limit-3], " ") + "..."
}

// propString fetches a string property, "" when absent or non-string.
func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

// quoteCypherLiteral escapes backslash and double quote and wraps the
// value in double quotes for embedding in a reconstructable query.
func quoteCypherLiteral(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// cypherNodePattern renders one aliased node match on a literal id.
func cypherNodePattern(alias, nodeID string) string {
	return "(" + alias + " {id: " + quoteCypherLiteral(nodeID) + "})"
}

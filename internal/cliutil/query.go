// Package cliutil provides small helpers shared by the pertsim CLI
// commands, including ad-hoc JSON queries against a serialized Result.
package cliutil

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// QueryResultFile reads the JSON file at path and evaluates the gjson
// path expression against it, returning the matched value's string
// representation. It is the implementation behind `pertsim result get
// <result.json> <path>`, letting a caller pull out a single field (for
// example "percentiles.P90" or "task_criticality.0.id") without
// parsing the whole Result struct.
func QueryResultFile(path, query string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read result file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%s does not contain valid JSON", path)
	}

	result := gjson.GetBytes(data, query)
	if !result.Exists() {
		return "", fmt.Errorf("path %q not found in %s", query, path)
	}
	return result.String(), nil
}

// QueryResultBytes is QueryResultFile's in-memory counterpart, used by
// tests and by callers that already hold the serialized Result.
func QueryResultBytes(data []byte, query string) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("input does not contain valid JSON")
	}
	result := gjson.GetBytes(data, query)
	if !result.Exists() {
		return "", fmt.Errorf("path %q not found", query)
	}
	return result.String(), nil
}

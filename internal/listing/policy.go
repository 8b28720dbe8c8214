package listing

import (
	"fmt"
	"slices"
	"strings"
)

// ErrorPolicy decides what happens when a subdirectory cannot be listed.
type ErrorPolicy string

const (
	// Skip records the directory and carries on with its siblings.
	Skip ErrorPolicy = "skip"
	// Fail aborts the operation with the listing error.
	Fail ErrorPolicy = "fail"
)

// Policies lists the accepted error policies.
//
//nolint:gochecknoglobals // Config constant
var Policies = []ErrorPolicy{Skip, Fail}

// ParseErrorPolicy validates s as an ErrorPolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	p := ErrorPolicy(strings.ToLower(s))
	if p == "" {
		return Skip, nil
	}

	if !slices.Contains(Policies, p) {
		return "", fmt.Errorf("invalid error policy %q: must be one of %v", s, Policies)
	}

	return p, nil
}

// Skipped describes a directory that could not be listed.
type Skipped struct {
	// Path is the directory path.
	Path string `json:"path" yaml:"path"`
	// Error is the listing error message.
	Error string `json:"error" yaml:"error"`
}

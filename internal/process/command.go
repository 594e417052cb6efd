package process

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ParseCommand splits a command line on whitespace into the executable and
// its arguments. Quoting is not interpreted: launchers that need shell
// semantics should spell the shell out (e.g., "sh -c ./start.sh").
func ParseCommand(command string) (name string, args []string, err error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("parse command %q: %w", command, ErrEmptyCommand)
	}
	return fields[0], fields[1:], nil
}

// MergeEnv overlays overrides on a parent environment in KEY=VALUE form.
// Overridden keys are removed from the parent before the overrides are
// appended in sorted key order, so the result has no duplicate keys and is
// deterministic for a given input.
func MergeEnv(parent []string, overrides map[string]string) []string {
	env := make([]string, 0, len(parent)+len(overrides))
	for _, kv := range parent {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		env = append(env, key+"="+overrides[key])
	}
	return env
}

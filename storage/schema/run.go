package schema

import "fmt"

// Run outcomes are stored under run:<runID>. Run ids are ULIDs so the key
// order is the run creation order.
const RunPrefix = "run:"

func RunStorageKey(runID string) []byte {
	return []byte(fmt.Sprintf("%s%s", RunPrefix, runID))
}

// RunIDFromStorageKey returns the run id part of a run key
func RunIDFromStorageKey(key []byte) string {
	s := string(key)
	if len(s) < len(RunPrefix) || s[:len(RunPrefix)] != RunPrefix {
		return ""
	}
	return s[len(RunPrefix):]
}

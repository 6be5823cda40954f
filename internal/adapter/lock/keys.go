// Package lock holds the AccountLocker implementations and their shared key handling.
package lock

import "slices"

// CanonicalKeys sorts keys and drops duplicates so every caller acquires in the same order.
func CanonicalKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

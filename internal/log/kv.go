package log

import "sort"

// KV is a set of key-value pairs attached to a log entry.
type KV map[string]any

// kvToArgs flattens the first KV into slog arguments sorted by key.
// Any additional KV is ignored.
func kvToArgs(keyVals ...KV) []any {
	args := []any{}
	if len(keyVals) == 0 {
		return args
	}

	kv := keyVals[0]
	keys := make([]string, 0, len(kv))
	for key := range kv {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		args = append(args, key, kv[key])
	}
	return args
}

// kvToArgsNs works like kvToArgs but puts the namespace first.
func kvToArgsNs(namespace string, keyVals ...KV) []any {
	return append([]any{"ns", namespace}, kvToArgs(keyVals...)...)
}

package loader

import (
	"encoding/json"
	"sort"
	"strings"
)

// loadJSON concatenates every string value in the document, depth-first, one
// per line. Keys and non-string scalars are ignored.
func loadJSON(data []byte) (string, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return "", err
	}
	var sb strings.Builder
	collectStrings(root, &sb)
	return sb.String(), nil
}

func collectStrings(node any, sb *strings.Builder) {
	switch v := node.(type) {
	case string:
		sb.WriteString(v)
		sb.WriteString("\n")
	case map[string]any:
		// Walk object keys in sorted order so extraction is deterministic.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(v[k], sb)
		}
	case []any:
		for _, item := range v {
			collectStrings(item, sb)
		}
	}
}

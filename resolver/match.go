package resolver

import (
	"sort"
	"strings"
)

// matchResult is the outcome of matching a requested subpath against the keys of a map.
type matchResult struct {
	key string
	// prefix is the part of the path consumed by the key, a directory key
	// (ending with "/") may leave a remainder.
	prefix   string
	captures []string
}

// sortable key slice, longer keys first
type keySlice []string

func (a keySlice) Len() int           { return len(a) }
func (a keySlice) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a keySlice) Less(i, j int) bool { return len(a[i]) > len(a[j]) }

// matchPattern finds the first key, by descending length, that matches the path.
func matchPattern(path string, keys []string) (ret matchResult, ok bool) {
	sorted := make(keySlice, len(keys))
	copy(sorted, keys)
	sort.Stable(sorted)

	for _, key := range sorted {
		prefix, captures, matched := matchKey(path, key)
		if matched {
			return matchResult{key: key, prefix: prefix, captures: captures}, true
		}
	}
	return
}

// matchKey matches the path against a single key. Each `*` of the key captures at
// least one char, up to the first occurrence of the literal char that follows it
// in the key, or to the end of the path when it is the last char of the key.
func matchKey(path string, key string) (prefix string, captures []string, ok bool) {
	if strings.Contains(key, "**") {
		return
	}

	i, j := 0, 0
	for j < len(key) {
		if key[j] != '*' {
			if i >= len(path) || path[i] != key[j] {
				return "", nil, false
			}
			i++
			j++
			continue
		}
		if i >= len(path) {
			return "", nil, false
		}
		if j == len(key)-1 {
			captures = append(captures, path[i:])
			i = len(path)
			j++
			continue
		}
		n := strings.IndexByte(path[i+1:], key[j+1])
		if n < 0 {
			return "", nil, false
		}
		end := i + 1 + n
		captures = append(captures, path[i:end])
		// the literal char after `*` is consumed as well
		i = end + 1
		j += 2
	}

	if i < len(path) && !strings.HasSuffix(key, "/") {
		return "", nil, false
	}
	return path[:i], captures, true
}

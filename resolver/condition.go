package resolver

import (
	"strings"
)

// DefaultConditions is used when no conditions are given.
var DefaultConditions = []string{"require"}

// resolveTarget walks a nested exports/imports value and returns the first leaf
// that resolves. Conditional objects are tried in their declaration order, the
// given conditions only decide which keys are active.
func resolveTarget(v Value, conditions []string, isExports bool, captures []string) (string, bool) {
	switch v := v.(type) {
	case String:
		target := string(v)
		if len(captures) > 0 {
			if strings.Contains(target, "**") {
				return "", false
			}
			target = substitute(target, captures)
		}
		return ValidTarget(target, isExports)
	case Array:
		for _, item := range v {
			if target, ok := resolveTarget(item, conditions, isExports, captures); ok {
				return target, true
			}
		}
	case *Object:
		for _, key := range v.Keys() {
			if key != "default" && !hasCondition(conditions, key) {
				continue
			}
			value, _ := v.Get(key)
			if target, ok := resolveTarget(value, conditions, isExports, captures); ok {
				return target, true
			}
		}
	}
	// nil, Null and Literal
	return "", false
}

// substitute replaces every `*` of the template with the capture at the same position.
func substitute(template string, captures []string) string {
	parts := strings.Split(template, "*")
	var sb strings.Builder
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 && i < len(captures) {
			sb.WriteString(captures[i])
		}
	}
	return sb.String()
}

// ValidTarget rejects targets escaping the package or pointing into node_modules.
// Exports targets must be relative to the package root, imports targets may be
// bare specifiers of other packages.
func ValidTarget(target string, isExports bool) (string, bool) {
	if target == "" {
		return "", false
	}
	if strings.Contains(target, "../") || strings.Contains(target, "/node_modules/") {
		return "", false
	}
	if isExports && !strings.HasPrefix(target, "./") {
		return "", false
	}
	return target, true
}

func hasCondition(conditions []string, name string) bool {
	for _, c := range conditions {
		if c == name {
			return true
		}
	}
	return false
}

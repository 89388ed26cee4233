// Package resolver implements the package.json `exports`/`imports` resolution
// algorithm and the module specifier grammar used to address package subpaths.
//
// All functions are pure: they never touch the file system, and a resolved path
// string (e.g. "./dist/index.mjs") is handed back to the caller to be looked up.
package resolver

import (
	"strings"
)

// PkgData is the result of resolving a full module specifier against the exports of the package.
type PkgData struct {
	Raw     string `json:"raw"`
	Name    string `json:"name"`
	Version string `json:"version"`
	// Path is the resolved target, empty when the specifier is not exported
	Path string `json:"path"`
	// Resolve is `name[@version]` joined with Path, set iff Path is set
	Resolve string `json:"resolve"`
}

// Export is a declared subpath of an exports or imports map.
type Export struct {
	Subpath string `json:"subpath"`
	// Target is empty when the subpath does not resolve under the conditions
	Target string `json:"target"`
	// Pattern is true for keys with `*` wildcards or a trailing `/`
	Pattern bool `json:"pattern,omitempty"`
}

// FindPathInExports resolves the subpath, "." or "./...", against the exports of a package.
// It returns an empty string if the subpath is not exported under the conditions.
func FindPathInExports(subpath string, exports Value, conditions []string) (string, error) {
	if subpath != "." && !strings.HasPrefix(subpath, "./") {
		return "", &SyntaxError{"FindPathInExports", subpath, "path must be `.` or start with `./`"}
	}
	if subpath == "." {
		return FindEntryInExports(exports, conditions), nil
	}
	obj, ok := exports.(*Object)
	if !ok {
		return "", nil
	}
	target, _ := findPath(subpath, obj, withDefaults(conditions), true)
	return target, nil
}

// FindPathInImports resolves a `#` prefixed path against the imports of a package.
// It returns an empty string if the path is not mapped under the conditions.
func FindPathInImports(path string, imports Value, conditions []string) (string, error) {
	if !strings.HasPrefix(path, "#") {
		return "", &SyntaxError{"FindPathInImports", path, "path must start with `#`"}
	}
	obj, ok := imports.(*Object)
	if !ok {
		return "", nil
	}
	target, _ := findPath(path, obj, withDefaults(conditions), false)
	return target, nil
}

// FindEntryInExports resolves the root entry of a package.
func FindEntryInExports(exports Value, conditions []string) string {
	target, _ := findEntry(exports, withDefaults(conditions))
	return target
}

// FindPkgData parses the module specifier and resolves its subpath, or the
// package entry if the specifier has no subpath.
func FindPkgData(specifier string, exports Value, conditions []string) (PkgData, error) {
	id := ParseModuleId(specifier)
	if id.Name == "" {
		return PkgData{}, &SyntaxError{"FindPkgData", specifier, "invalid package name"}
	}

	conditions = withDefaults(conditions)
	data := PkgData{
		Raw:     id.Raw,
		Name:    id.Name,
		Version: id.Version,
	}

	var target string
	var ok bool
	if id.Path != "" {
		if obj, isObj := exports.(*Object); isObj {
			target, ok = findPath(id.Path, obj, conditions, true)
		}
	} else {
		target, ok = findEntry(exports, conditions)
	}
	if ok {
		data.Path = target
		data.Resolve = id.PackageName() + strings.TrimPrefix(target, ".")
	}
	return data, nil
}

// ListExports lists the subpaths declared by the exports of a package in declaration order.
func ListExports(exports Value, conditions []string) []Export {
	conditions = withDefaults(conditions)
	obj, ok := exports.(*Object)
	if !ok || !hasSubpathKeys(obj) {
		target, _ := findEntry(exports, conditions)
		return []Export{{Subpath: ".", Target: target}}
	}
	return listTargets(obj, conditions, true)
}

// ListImports lists the `#` paths declared by the imports of a package in declaration order.
func ListImports(imports Value, conditions []string) []Export {
	obj, ok := imports.(*Object)
	if !ok {
		return nil
	}
	return listTargets(obj, withDefaults(conditions), false)
}

func listTargets(obj *Object, conditions []string, isExports bool) []Export {
	list := make([]Export, 0, obj.Len())
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)
		target, _ := resolveTarget(value, conditions, isExports, nil)
		if target != "" && strings.HasSuffix(key, "/") != strings.HasSuffix(target, "/") {
			target = ""
		}
		list = append(list, Export{
			Subpath: key,
			Target:  target,
			Pattern: strings.ContainsRune(key, '*') || strings.HasSuffix(key, "/"),
		})
	}
	return list
}

// findPath resolves the path against the top level keys of an exports/imports map.
func findPath(path string, m *Object, conditions []string, isExports bool) (string, bool) {
	var (
		key    string
		prefix string
		target string
		ok     bool
	)
	if value, exists := m.Get(path); exists {
		key, prefix = path, path
		target, ok = resolveTarget(value, conditions, isExports, nil)
	} else if len(path) > 1 {
		// a lone `.` or `#` can't match any pattern
		var matched matchResult
		matched, ok = matchPattern(path, m.Keys())
		if ok {
			value, _ := m.Get(matched.key)
			key, prefix = matched.key, matched.prefix
			target, ok = resolveTarget(value, conditions, isExports, matched.captures)
		}
	}
	if !ok {
		return "", false
	}

	// a directory key must map to a directory target, and vice versa
	if strings.HasSuffix(key, "/") != strings.HasSuffix(target, "/") {
		return "", false
	}
	if len(prefix) < len(path) {
		target += path[len(prefix):]
	}
	return target, true
}

// findEntry resolves the "." entry, supporting the string, array and flat
// conditional object shorthands.
func findEntry(exports Value, conditions []string) (string, bool) {
	switch v := exports.(type) {
	case String:
		return ValidTarget(string(v), true)
	case Array:
		return resolveTarget(v, conditions, true, nil)
	case *Object:
		if target, ok := findPath(".", v, conditions, true); ok {
			return target, true
		}
		return resolveTarget(v, conditions, true, nil)
	}
	return "", false
}

func hasSubpathKeys(obj *Object) bool {
	for _, key := range obj.Keys() {
		if strings.HasPrefix(key, ".") {
			return true
		}
	}
	return false
}

func withDefaults(conditions []string) []string {
	if len(conditions) == 0 {
		return DefaultConditions
	}
	return conditions
}

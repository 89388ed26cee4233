package resolver

import (
	"strings"
)

// ModuleId is a parsed module specifier, e.g. `@scope/pkg@1.2.0/feature.js`.
type ModuleId struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	// Path is empty or starts with "./"
	Path string `json:"path"`
	Raw  string `json:"raw"`
}

// PackageName returns the package name with the version if any.
func (id ModuleId) PackageName() string {
	if id.Version != "" {
		return id.Name + "@" + id.Version
	}
	return id.Name
}

// ParseModuleId splits a module specifier into name, version and subpath.
// An unparseable specifier yields a ModuleId with only `Raw` set.
//
//	vue                        -> name "vue"
//	@vue/core@v1.0.0/a/b.js    -> name "@vue/core", version "v1.0.0", path "./a/b.js"
//	vue/server@v1.1.0          -> name "vue", path "./server@v1.1.0"
//	@vue@v1.0.0/a@v1.0.1/a.js  -> name "@vue@v1.0.0/a", version "v1.0.1", path "./a.js"
func ParseModuleId(raw string) ModuleId {
	id := ModuleId{Raw: raw}

	i := 0
	scoped := strings.HasPrefix(raw, "@")
	if scoped {
		// the `@` chars in the scope segment are part of the name
		slash := strings.IndexByte(raw, '/')
		if slash < 0 {
			return id
		}
		i = slash + 1
	}

	start := i
	for ; i < len(raw); i++ {
		c := raw[i]
		if c == '/' || (c == '@' && i > start) {
			break
		}
	}
	if i == start {
		// empty name segment, e.g. `@scope/` or `/foo`
		return id
	}
	name := raw[:i]

	var version string
	if i < len(raw) && raw[i] == '@' {
		end := strings.IndexByte(raw[i+1:], '/')
		if end < 0 {
			version = raw[i+1:]
			i = len(raw)
		} else {
			version = raw[i+1 : i+1+end]
			i += 1 + end
		}
	}

	id.Name = name
	id.Version = version
	if i < len(raw) {
		id.Path = "." + raw[i:]
	}
	return id
}

package npm

import (
	"fmt"
	"os"
	"strings"

	"github.com/esm-dev/pkg-exports/resolver"
	"github.com/goccy/go-json"
)

// PackageMetadata defines versions of a NPM package
type PackageMetadata struct {
	Name     string                    `json:"name"`
	DistTags map[string]string         `json:"dist-tags"`
	Versions map[string]PackageJSONRaw `json:"versions"`
	Time     map[string]string         `json:"time"`
}

// PackageJSONRaw defines the package.json of a NPM package
type PackageJSONRaw struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Type       string          `json:"type"`
	Main       JSONAny         `json:"main"`
	Module     JSONAny         `json:"module"`
	Types      JSONAny         `json:"types"`
	Typings    JSONAny         `json:"typings"`
	Exports    json.RawMessage `json:"exports"`
	Imports    json.RawMessage `json:"imports"`
	Dist       json.RawMessage `json:"dist"`
	Deprecated any             `json:"deprecated"`
}

// NpmPackageDist defines the dist field of a NPM package
type NpmPackageDist struct {
	Tarball   string `json:"tarball"`
	Integrity string `json:"integrity"`
}

// PackageJSON defines the package.json of a NPM package
type PackageJSON struct {
	Name       string
	Version    string
	Type       string
	Main       string
	Module     string
	Types      string
	Exports    resolver.Value
	Imports    resolver.Value
	Dist       NpmPackageDist
	Deprecated string
}

// ToPackageJSON converts PackageJSONRaw to PackageJSON
func (a *PackageJSONRaw) ToPackageJSON() (*PackageJSON, error) {
	exports, err := parseField(a.Exports)
	if err != nil {
		return nil, fmt.Errorf("invalid exports field: %w", err)
	}
	imports, err := parseField(a.Imports)
	if err != nil {
		return nil, fmt.Errorf("invalid imports field: %w", err)
	}

	deprecated := ""
	if a.Deprecated != nil {
		if s, ok := a.Deprecated.(string); ok {
			deprecated = s
		}
	}

	var dist NpmPackageDist
	if a.Dist != nil {
		json.Unmarshal(a.Dist, &dist)
	}

	p := &PackageJSON{
		Name:       a.Name,
		Version:    a.Version,
		Type:       a.Type,
		Main:       a.Main.MainString(),
		Module:     a.Module.MainString(),
		Types:      a.Types.MainString(),
		Exports:    exports,
		Imports:    imports,
		Dist:       dist,
		Deprecated: deprecated,
	}
	if p.Types == "" {
		p.Types = a.Typings.MainString()
	}
	return p, nil
}

// Entry returns the root entry of the package for the conditions. Packages
// without `exports` fall back to the `module` or `main` field.
func (p *PackageJSON) Entry(conditions []string) string {
	if p.Exports != nil {
		return resolver.FindEntryInExports(p.Exports, conditions)
	}
	entry := p.Main
	for _, cond := range conditions {
		if (cond == "import" || cond == "module") && p.Module != "" {
			entry = p.Module
			break
		}
	}
	if entry == "" {
		return ""
	}
	entry, _ = resolver.ValidTarget(normalizeEntry(entry), true)
	return entry
}

// PkgData resolves the module specifier against the package. Packages without
// `exports` expose every file.
func (p *PackageJSON) PkgData(specifier string, conditions []string) (resolver.PkgData, error) {
	if p.Exports != nil {
		return resolver.FindPkgData(specifier, p.Exports, conditions)
	}
	id := resolver.ParseModuleId(specifier)
	if id.Name == "" {
		return resolver.PkgData{}, &resolver.SyntaxError{Func: "PkgData", Input: specifier, Msg: "invalid package name"}
	}
	data := resolver.PkgData{Raw: id.Raw, Name: id.Name, Version: id.Version}
	if id.Path == "" {
		data.Path = p.Entry(conditions)
	} else {
		// files outside of the package or in its node_modules are never exposed
		data.Path, _ = resolver.ValidTarget(id.Path, true)
	}
	if data.Path != "" {
		data.Resolve = id.PackageName() + strings.TrimPrefix(data.Path, ".")
	}
	return data, nil
}

// ListExports lists the exports of the package, or the main entry if the
// package has no `exports`.
func (p *PackageJSON) ListExports(conditions []string) []resolver.Export {
	if p.Exports != nil {
		return resolver.ListExports(p.Exports, conditions)
	}
	return []resolver.Export{{Subpath: ".", Target: p.Entry(conditions)}}
}

// ParsePackageJSON parses package.json data.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var raw PackageJSONRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.ToPackageJSON()
}

// ReadPackageJSON reads and parses a package.json file.
func ReadPackageJSON(filename string) (*PackageJSON, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	p, err := ParsePackageJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return p, nil
}

// parseField decodes an `exports`/`imports` field with its key order.
func parseField(raw json.RawMessage) (resolver.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	v, err := resolver.ParseValue(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(resolver.Null); ok {
		return nil, nil
	}
	return v, nil
}

func normalizeEntry(s string) string {
	if len(s) > 0 && s[0] != '.' && s[0] != '/' {
		return "./" + s
	}
	return s
}

// JSONAny holds a package.json field that is either a string or an object,
// other values are ignored.
type JSONAny struct {
	Str string
	Map map[string]any
}

func (a *JSONAny) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		a.Str = s
		return nil
	}
	var m map[string]any
	if json.Unmarshal(b, &m) == nil {
		a.Map = m
	}
	return nil
}

func (a *JSONAny) MainString() string {
	if a.Str != "" {
		return a.Str
	}
	if a.Map != nil {
		if v, ok := a.Map["."]; ok {
			if s, isStr := v.(string); isStr {
				return s
			}
		}
	}
	return ""
}

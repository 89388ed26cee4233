package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/esm-dev/pkg-exports/internal/config"
	"github.com/esm-dev/pkg-exports/internal/npm"
	"github.com/esm-dev/pkg-exports/resolver"
)

// ErrPackageBanned is returned for packages matched by the ban list.
var ErrPackageBanned = errors.New("package is banned")

// PackageFetcher fetches the package.json of a package version.
type PackageFetcher interface {
	FetchPackageJSONAt(ctx context.Context, name string, version string, at time.Time) (*npm.PackageJSON, error)
}

// ResolveResult is the PkgData of a specifier with the exact package version it was resolved against.
type ResolveResult struct {
	resolver.PkgData
	PackageVersion string `json:"packageVersion"`
}

// ImportResult is the target of a `#` path in the imports of a package.
type ImportResult struct {
	Name           string `json:"name"`
	PackageVersion string `json:"packageVersion"`
	Path           string `json:"path"`
	Resolved       string `json:"resolved"`
}

// ExportsResult lists the exports and imports of a package.
type ExportsResult struct {
	Name           string            `json:"name"`
	PackageVersion string            `json:"packageVersion"`
	Exports        []resolver.Export `json:"exports"`
	Imports        []resolver.Export `json:"imports,omitempty"`
}

type api struct {
	banList    config.BanList
	conditions []string
	packages   PackageFetcher
	cache      *resultCache
}

// query carries the options shared by the resolution routes.
type query struct {
	conditions []string
	at         time.Time
}

func (q query) cacheKey() string {
	key := strings.Join(q.conditions, ",")
	if !q.at.IsZero() {
		key += "@" + q.at.UTC().Format(time.RFC3339)
	}
	return key
}

func (a *api) withDefaults(q query) query {
	if len(q.conditions) == 0 {
		q.conditions = a.conditions
	}
	return q
}

func (a *api) fetchPackage(ctx context.Context, id resolver.ModuleId, q query) (*npm.PackageJSON, error) {
	if id.Name == "" {
		return nil, &resolver.SyntaxError{Func: "fetchPackage", Input: id.Raw, Msg: "invalid package name"}
	}
	if a.banList.IsPackageBanned(id.PackageName()) {
		return nil, ErrPackageBanned
	}
	return a.packages.FetchPackageJSONAt(ctx, id.Name, id.Version, q.at)
}

// resolve resolves a full module specifier, `name[@version][/subpath]`.
func (a *api) resolve(ctx context.Context, specifier string, q query) (*ResolveResult, error) {
	q = a.withDefaults(q)
	id := resolver.ParseModuleId(specifier)
	p, err := a.fetchPackage(ctx, id, q)
	if err != nil {
		return nil, err
	}
	key := "resolve:" + id.Name + "@" + p.Version + id.Path + "?" + q.cacheKey()
	data, err := withCache(a.cache, key, func() (resolver.PkgData, error) {
		return p.PkgData(specifier, q.conditions)
	})
	if err != nil {
		return nil, err
	}
	// the specifier may differ from the cached one by its version range
	data.Raw = id.Raw
	data.Version = id.Version
	if data.Path != "" {
		data.Resolve = id.PackageName() + strings.TrimPrefix(data.Path, ".")
	}
	return &ResolveResult{PkgData: data, PackageVersion: p.Version}, nil
}

// resolveImport resolves a `#` path against the imports of the package.
func (a *api) resolveImport(ctx context.Context, pkg string, path string, q query) (*ImportResult, error) {
	q = a.withDefaults(q)
	id := resolver.ParseModuleId(pkg)
	if id.Path != "" {
		return nil, &resolver.SyntaxError{Func: "resolveImport", Input: pkg, Msg: "unexpected subpath"}
	}
	p, err := a.fetchPackage(ctx, id, q)
	if err != nil {
		return nil, err
	}
	key := "imports:" + id.Name + "@" + p.Version + "/" + path + "?" + q.cacheKey()
	resolved, err := withCache(a.cache, key, func() (string, error) {
		return resolver.FindPathInImports(path, p.Imports, q.conditions)
	})
	if err != nil {
		return nil, err
	}
	return &ImportResult{Name: id.Name, PackageVersion: p.Version, Path: path, Resolved: resolved}, nil
}

// listExports lists the exports and imports of the package.
func (a *api) listExports(ctx context.Context, pkg string, q query) (*ExportsResult, error) {
	q = a.withDefaults(q)
	id := resolver.ParseModuleId(pkg)
	if id.Path != "" {
		return nil, &resolver.SyntaxError{Func: "listExports", Input: pkg, Msg: "unexpected subpath"}
	}
	p, err := a.fetchPackage(ctx, id, q)
	if err != nil {
		return nil, err
	}
	key := "exports:" + id.Name + "@" + p.Version + "?" + q.cacheKey()
	return withCache(a.cache, key, func() (*ExportsResult, error) {
		return &ExportsResult{
			Name:           id.Name,
			PackageVersion: p.Version,
			Exports:        p.ListExports(q.conditions),
			Imports:        resolver.ListImports(p.Imports, q.conditions),
		}, nil
	})
}

// errorStatus maps an error to a http status code.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, resolver.ErrSyntax), errors.Is(err, npm.ErrInvalidPackageName), errors.Is(err, npm.ErrInvalidVersion):
		return 400
	case errors.Is(err, ErrPackageBanned):
		return 403
	case errors.Is(err, npm.ErrPackageNotFound), errors.Is(err, npm.ErrVersionNotFound):
		return 404
	case errors.Is(err, context.DeadlineExceeded):
		return 504
	default:
		return 500
	}
}

func parseConditions(s string) []string {
	if s == "" {
		return nil
	}
	a := strings.Split(s, ",")
	conditions := make([]string, 0, len(a))
	for _, c := range a {
		if c = strings.TrimSpace(c); c != "" {
			conditions = append(conditions, c)
		}
	}
	return conditions
}

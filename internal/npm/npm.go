package npm

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/ije/gox/utils"
	"github.com/ije/gox/valid"
)

var (
	Naming = valid.Validator{valid.Range{'a', 'z'}, valid.Range{'A', 'Z'}, valid.Range{'0', '9'}, valid.Eq('_'), valid.Eq('.'), valid.Eq('-'), valid.Eq('+'), valid.Eq('$'), valid.Eq('!')}
)

var (
	// ErrVersionNotFound is returned when no published version matches the requested one.
	ErrVersionNotFound = errors.New("version not found")
	// ErrInvalidVersion is returned for a version that is neither a dist-tag nor a semver range.
	ErrInvalidVersion = errors.New("invalid version")
)

// ValidatePackageName validates the package name.
// based on https://github.com/npm/validate-npm-package-name
func ValidatePackageName(pkgName string) bool {
	if l := len(pkgName); l == 0 || l > 214 {
		return false
	}
	if strings.HasPrefix(pkgName, "@") {
		scope, name := utils.SplitByFirstByte(pkgName, '/')
		return len(scope) > 1 && name != "" && Naming.Match(scope[1:]) && Naming.Match(name)
	}
	return Naming.Match(pkgName)
}

// IsDistTag returns true if the given version is a distribution tag.
// https://docs.npmjs.com/cli/v9/commands/npm-dist-tag
func IsDistTag(s string) bool {
	switch s {
	case "latest", "next", "beta", "alpha", "canary", "rc", "experimental":
		return true
	default:
		return false
	}
}

// IsExactVersion returns true if the given version is an exact version.
func IsExactVersion(version string) bool {
	a := strings.SplitN(version, ".", 3)
	if len(a) != 3 {
		return false
	}
	if len(a[0]) == 0 || !isNumericString(a[0]) || len(a[1]) == 0 || !isNumericString(a[1]) {
		return false
	}
	p := a[2]
	if len(p) == 0 {
		return false
	}
	patchEnd := false
	for i, c := range p {
		if !patchEnd {
			if c == '-' || c == '+' {
				if i == 0 || i == len(p)-1 {
					return false
				}
				patchEnd = true
			} else if c < '0' || c > '9' {
				return false
			}
		} else {
			if !(c == '.' || c == '_' || c == '-' || c == '+' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				return false
			}
		}
	}
	return true
}

func isNumericString(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// NormalizePackageVersion normalizes the package version.
// It removes the leading `=` or `v` and returns "latest" for empty or "*" versions.
func NormalizePackageVersion(version string) string {
	// strip leading `=` or `v`
	if strings.HasPrefix(version, "=") {
		version = version[1:]
	} else if strings.HasPrefix(version, "v") && IsExactVersion(version[1:]) {
		version = version[1:]
	}
	if version == "" || version == "*" {
		return "latest"
	}
	return version
}

// ResolveVersion picks the published version matching a dist-tag, an exact
// version or a semver range. Prerelease versions are only considered when the
// range names a prerelease.
func ResolveVersion(metadata *PackageMetadata, version string) (string, error) {
	return resolveVersion(metadata, version, time.Time{})
}

// ResolveVersionAt is like ResolveVersion but only considers versions published
// at or before the given time. A dist-tag pointing to a newer version falls back
// to the highest version published by then.
func ResolveVersionAt(metadata *PackageMetadata, version string, at time.Time) (string, error) {
	if at.IsZero() {
		return ResolveVersion(metadata, version)
	}
	return resolveVersion(metadata, version, at)
}

func resolveVersion(metadata *PackageMetadata, version string, at time.Time) (string, error) {
	version = NormalizePackageVersion(version)

	publishedBefore := func(v string) bool {
		if at.IsZero() {
			return true
		}
		t, err := time.Parse(time.RFC3339, metadata.Time[v])
		return err == nil && !t.After(at)
	}

	if v, ok := metadata.DistTags[version]; ok {
		if _, exists := metadata.Versions[v]; exists && publishedBefore(v) {
			return v, nil
		}
		// the tag moved on after the given time
		version = "*"
	} else if _, ok := metadata.Versions[version]; ok {
		if !publishedBefore(version) {
			return "", fmt.Errorf("%w: version '%s' of %s was not published yet", ErrVersionNotFound, version, metadata.Name)
		}
		return version, nil
	} else if version == "latest" {
		version = "*"
	} else if IsDistTag(version) {
		return "", fmt.Errorf("%w: dist-tag '%s' of %s", ErrVersionNotFound, version, metadata.Name)
	}

	c, err := semver.NewConstraint(version)
	if err != nil {
		return "", fmt.Errorf("%w '%s'", ErrInvalidVersion, version)
	}
	vs := make([]*semver.Version, 0, len(metadata.Versions))
	for v := range metadata.Versions {
		// ignore prerelease versions
		if !strings.ContainsRune(version, '-') && strings.ContainsRune(v, '-') {
			continue
		}
		if !publishedBefore(v) {
			continue
		}
		ver, e := semver.NewVersion(v)
		if e != nil {
			continue
		}
		if c.Check(ver) {
			vs = append(vs, ver)
		}
	}
	if len(vs) == 0 {
		return "", fmt.Errorf("%w: version '%s' of %s", ErrVersionNotFound, version, metadata.Name)
	}
	sort.Sort(semver.Collection(vs))
	return vs[len(vs)-1].Original(), nil
}

// ParseTimestamp parses a unix timestamp with the `s` suffix (e.g. `1704067200s`)
// or a RFC3339 date/time.
func ParseTimestamp(s string) (time.Time, error) {
	if strings.HasSuffix(s, "s") {
		sec, err := strconv.ParseInt(strings.TrimSuffix(s, "s"), 10, 64)
		if err != nil {
			return time.Time{}, errors.New("invalid timestamp format")
		}
		return time.Unix(sec, 0), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("invalid timestamp format")
	}
	return t, nil
}

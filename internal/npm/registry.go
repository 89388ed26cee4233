package npm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/esm-dev/pkg-exports/internal/fetch"
	"github.com/goccy/go-json"
	logx "github.com/ije/gox/log"
	syncx "github.com/ije/gox/sync"
)

const (
	DefaultRegistry = "https://registry.npmjs.org/"
	userAgent       = "pkg-exports"
)

var log = &logx.Logger{}

// SetLogger sets the logger of the package.
func SetLogger(logger *logx.Logger) {
	log = logger
}

var (
	// ErrPackageNotFound is returned when the registry has no such package.
	ErrPackageNotFound    = errors.New("package not found")
	ErrInvalidPackageName = errors.New("invalid package name")
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Registry string
	Token    string
	User     string
	Password string
	// CacheTTL is how long a fetched packument is reused, defaults to 10 minutes
	CacheTTL time.Duration
	// CacheSize is the max number of cached packuments, defaults to 1000
	CacheSize int64
	Timeout   time.Duration
}

// Registry fetches package metadata from a NPM registry.
type Registry struct {
	config     RegistryConfig
	cache      *ristretto.Cache
	fetchMutex syncx.KeyedMutex
}

// NewRegistry creates a registry client with an in-memory packument cache.
func NewRegistry(config RegistryConfig) (*Registry, error) {
	if config.Registry == "" {
		config.Registry = DefaultRegistry
	} else if _, err := url.Parse(config.Registry); err != nil {
		return nil, fmt.Errorf("invalid npm registry url: %w", err)
	}
	config.Registry = strings.TrimRight(config.Registry, "/") + "/"
	if config.CacheTTL == 0 {
		config.CacheTTL = 10 * time.Minute
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 1000
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.CacheSize * 10,
		MaxCost:     config.CacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{config: config, cache: cache}, nil
}

// URL returns the registry url
func (r *Registry) URL() string {
	return r.config.Registry
}

// Close releases the cache of the registry.
func (r *Registry) Close() {
	r.cache.Close()
}

// FetchMetadata fetches the packument of the package, all versions included.
func (r *Registry) FetchMetadata(ctx context.Context, name string) (*PackageMetadata, error) {
	if !ValidatePackageName(name) {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidPackageName, name)
	}

	cacheKey := "npm:" + name
	if v, ok := r.cache.Get(cacheKey); ok {
		return v.(*PackageMetadata), nil
	}

	unlock := r.fetchMutex.Lock(cacheKey)
	defer unlock()

	// check cache again after lock
	if v, ok := r.cache.Get(cacheKey); ok {
		return v.(*PackageMetadata), nil
	}

	start := time.Now()
	metadata, err := r.fetchMetadata(ctx, name)
	if err != nil {
		return nil, err
	}
	log.Debugf("lookup package(%s) in %v", name, time.Since(start))

	if r.cache.SetWithTTL(cacheKey, metadata, 1, r.config.CacheTTL) {
		r.cache.Wait()
	}
	return metadata, nil
}

func (r *Registry) fetchMetadata(ctx context.Context, name string) (*PackageMetadata, error) {
	u, err := url.Parse(r.config.Registry + strings.Replace(name, "/", "%2f", 1))
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	if r.config.Token != "" {
		header.Set("Authorization", "Bearer "+r.config.Token)
	} else if r.config.User != "" && r.config.Password != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(r.config.User + ":" + r.config.Password))
		header.Set("Authorization", "Basic "+auth)
	}

	client, recycle := fetch.NewClient(userAgent, r.config.Timeout)
	defer recycle()

	resp, err := client.Fetch(ctx, u, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 || resp.StatusCode == 401 {
		return nil, fmt.Errorf("npm: %w: '%s'", ErrPackageNotFound, name)
	}
	if resp.StatusCode != 200 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("npm: could not get metadata of package '%s' (%s: %s)", name, resp.Status, string(msg))
	}

	var metadata PackageMetadata
	if err = json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("npm: invalid metadata of package '%s': %w", name, err)
	}
	if len(metadata.Versions) == 0 {
		return nil, fmt.Errorf("npm: versions of %s not found", name)
	}
	if metadata.Name == "" {
		metadata.Name = name
	}
	return &metadata, nil
}

// FetchPackageJSON fetches the package.json of the package version, which can be
// a dist-tag, an exact version or a semver range.
func (r *Registry) FetchPackageJSON(ctx context.Context, name string, version string) (*PackageJSON, error) {
	return r.FetchPackageJSONAt(ctx, name, version, time.Time{})
}

// FetchPackageJSONAt is like FetchPackageJSON but resolves the version as it was
// at the given time, a zero time means now.
func (r *Registry) FetchPackageJSONAt(ctx context.Context, name string, version string, at time.Time) (*PackageJSON, error) {
	metadata, err := r.FetchMetadata(ctx, name)
	if err != nil {
		return nil, err
	}
	exactVersion, err := ResolveVersionAt(metadata, version, at)
	if err != nil {
		return nil, err
	}
	raw := metadata.Versions[exactVersion]
	p, err := raw.ToPackageJSON()
	if err != nil {
		return nil, fmt.Errorf("npm: %s@%s: %w", name, exactVersion, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	if p.Version == "" {
		p.Version = exactVersion
	}
	return p, nil
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/esm-dev/pkg-exports/internal/jsonc"
)

const defaultNpmRegistry = "https://registry.npmjs.org/"

type Config struct {
	Port             uint16   `json:"port,omitempty"`
	WorkDir          string   `json:"workDir,omitempty"`
	LogDir           string   `json:"logDir,omitempty"`
	LogLevel         string   `json:"logLevel,omitempty"`
	AccessLog        bool     `json:"accessLog,omitempty"`
	CorsAllowOrigins []string `json:"corsAllowOrigins,omitempty"`
	Conditions       []string `json:"conditions,omitempty"`
	CacheSize        int      `json:"cacheSize,omitempty"`
	NpmRegistry      string   `json:"npmRegistry,omitempty"`
	NpmToken         string   `json:"npmToken,omitempty"`
	NpmUser          string   `json:"npmUser,omitempty"`
	NpmPassword      string   `json:"npmPassword,omitempty"`
	// NpmQueryCacheTTL is the packument cache ttl in seconds
	NpmQueryCacheTTL uint32  `json:"npmQueryCacheTTL,omitempty"`
	BanList          BanList `json:"banList,omitempty"`
}

type BanList struct {
	Packages []string   `json:"packages"`
	Scopes   []BanScope `json:"scopes"`
}

type BanScope struct {
	Name     string   `json:"name"`
	Excludes []string `json:"excludes"`
}

// Load loads config from the given file, comments and trailing commas are allowed.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("fail to read config file: %w", err)
	}

	var cfg Config
	err = jsonc.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("fail to parse config: %w", err)
	}
	if cfg.WorkDir != "" && !filepath.IsAbs(cfg.WorkDir) {
		cfg.WorkDir, err = filepath.Abs(cfg.WorkDir)
		if err != nil {
			return nil, fmt.Errorf("fail to get absolute path of the work directory: %w", err)
		}
	}
	normalizeConfig(&cfg)
	return &cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	normalizeConfig(cfg)
	return cfg
}

func normalizeConfig(c *Config) {
	if c.Port == 0 {
		c.Port = 8080
		if v := os.Getenv("PORT"); v != "" {
			if p, e := strconv.Atoi(v); e == nil && p > 0 && p < 65536 {
				c.Port = uint16(p)
			}
		}
	}
	if c.WorkDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "/home"
		}
		c.WorkDir = path.Join(homeDir, ".pkg-exports")
	}
	if c.LogDir == "" {
		c.LogDir = path.Join(c.WorkDir, "log")
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("LOG_LEVEL")
		if c.LogLevel == "" {
			c.LogLevel = "info"
		}
	}
	if !c.AccessLog {
		c.AccessLog = os.Getenv("ACCESS_LOG") == "true"
	}
	if len(c.CorsAllowOrigins) == 0 {
		if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
			for _, p := range strings.Split(v, ",") {
				orig := strings.TrimSpace(p)
				if orig != "" {
					u, e := url.Parse(orig)
					if e == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
						c.CorsAllowOrigins = append(c.CorsAllowOrigins, u.Scheme+"://"+u.Host)
					}
				}
			}
		}
	}
	conditions := make([]string, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		if cond = strings.TrimSpace(cond); cond != "" {
			conditions = append(conditions, cond)
		}
	}
	if len(conditions) == 0 {
		conditions = []string{"require"}
	}
	c.Conditions = conditions
	if c.CacheSize <= 0 {
		c.CacheSize = 1024
	}
	if c.NpmRegistry != "" {
		if isHttpURL(c.NpmRegistry) {
			c.NpmRegistry = strings.TrimRight(c.NpmRegistry, "/") + "/"
		} else {
			c.NpmRegistry = defaultNpmRegistry
		}
	} else {
		v := os.Getenv("NPM_REGISTRY")
		if v != "" && isHttpURL(v) {
			c.NpmRegistry = strings.TrimRight(v, "/") + "/"
		} else {
			c.NpmRegistry = defaultNpmRegistry
		}
	}
	if c.NpmToken == "" {
		c.NpmToken = os.Getenv("NPM_TOKEN")
	}
	if c.NpmUser == "" {
		c.NpmUser = os.Getenv("NPM_USER")
	}
	if c.NpmPassword == "" {
		c.NpmPassword = os.Getenv("NPM_PASSWORD")
	}
	if c.NpmQueryCacheTTL == 0 {
		c.NpmQueryCacheTTL = 600
		if v := os.Getenv("NPM_QUERY_CACHE_TTL"); v != "" {
			if i, e := strconv.Atoi(v); e == nil && i > 0 {
				c.NpmQueryCacheTTL = uint32(i)
			}
		}
	}
}

func isHttpURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsPackageBanned Checking if the package is banned.
// The `packages` list is the highest priority ban rule to match,
// so the `excludes` list in the `scopes` list won't take effect if the package is banned in `packages` list
func (banList *BanList) IsPackageBanned(fullName string) bool {
	var (
		fullNameWithoutVersion  string // e.g. @github/faker
		scope                   string // e.g. @github
		nameWithoutVersionScope string // e.g. faker
	)
	paths := strings.Split(fullName, "/")
	if len(paths) < 2 {
		// the package has no scope prefix
		nameWithoutVersionScope = strings.Split(paths[0], "@")[0]
		fullNameWithoutVersion = nameWithoutVersionScope
	} else {
		scope = paths[0]
		nameWithoutVersionScope = strings.Split(paths[1], "@")[0]
		fullNameWithoutVersion = scope + "/" + nameWithoutVersionScope
	}

	for _, p := range banList.Packages {
		if fullNameWithoutVersion == p {
			return true
		}
	}

	for _, s := range banList.Scopes {
		if scope == s.Name {
			return !contains(s.Excludes, nameWithoutVersionScope)
		}
	}

	return false
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

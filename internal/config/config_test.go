package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBanList_IsPackageBanned(t *testing.T) {
	type args struct {
		fullName string
	}
	tests := []struct {
		name    string
		banList BanList
		args    args
		want    bool
	}{
		{
			name:    "NotBanned",
			banList: BanList{},
			args:    args{fullName: "faker@1.5.0"},
			want:    false,
		},
		{
			name: "BannedByPackages",
			banList: BanList{
				Packages: []string{"faker"},
			},
			args: args{fullName: "faker"},
			want: true,
		},
		{
			name: "BannedByPackagesWithVersion",
			banList: BanList{
				Packages: []string{"faker"},
			},
			args: args{fullName: "faker@6.6.6"},
			want: true,
		},
		{
			name: "BannedByScopes",
			banList: BanList{
				Scopes: []BanScope{{
					Name:     "@github",
					Excludes: []string{"perfect"},
				}},
			},
			args: args{fullName: "@github/faker@1.0.0"},
			want: true,
		},
		{
			name: "BannedByScopesButExcluded",
			banList: BanList{
				Scopes: []BanScope{{
					Name:     "@github",
					Excludes: []string{"faker"},
				}},
			},
			args: args{fullName: "@github/faker@1.0.0"},
			want: false,
		},
		{
			name: "ExcludedInScopeButBannedByPackages",
			banList: BanList{
				Packages: []string{"@github/faker"},
				Scopes: []BanScope{{
					Name:     "@github",
					Excludes: []string{"faker"},
				}},
			},
			args: args{fullName: "@github/faker@1.0.0"},
			want: true,
		},
		{
			name: "OtherScope",
			banList: BanList{
				Scopes: []BanScope{{Name: "@github"}},
			},
			args: args{fullName: "@gitlab/faker"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.banList.IsPackageBanned(tt.args.fullName); got != tt.want {
				t.Errorf("IsPackageBanned() = %v, want %v", got, tt.want)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "ACCESS_LOG", "CORS_ALLOW_ORIGINS", "NPM_REGISTRY", "NPM_TOKEN", "NPM_USER", "NPM_PASSWORD", "NPM_QUERY_CACHE_TTL"} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	if cfg.Port != 8080 {
		t.Fatalf("unexpected port %d", cfg.Port)
	}
	if !strings.HasSuffix(cfg.WorkDir, ".pkg-exports") {
		t.Fatalf("unexpected work dir %s", cfg.WorkDir)
	}
	if cfg.LogDir != filepath.Join(cfg.WorkDir, "log") {
		t.Fatalf("unexpected log dir %s", cfg.LogDir)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level %s", cfg.LogLevel)
	}
	if len(cfg.Conditions) != 1 || cfg.Conditions[0] != "require" {
		t.Fatalf("unexpected conditions %v", cfg.Conditions)
	}
	if cfg.CacheSize != 1024 {
		t.Fatalf("unexpected cache size %d", cfg.CacheSize)
	}
	if cfg.NpmRegistry != "https://registry.npmjs.org/" {
		t.Fatalf("unexpected npm registry %s", cfg.NpmRegistry)
	}
	if cfg.NpmQueryCacheTTL != 600 {
		t.Fatalf("unexpected npm query cache ttl %d", cfg.NpmQueryCacheTTL)
	}
}

func TestDefaultFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NPM_REGISTRY", "https://npm.example.com")
	t.Setenv("NPM_TOKEN", "secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com/path, ftp://b.example.com")
	cfg := Default()
	if cfg.NpmRegistry != "https://npm.example.com/" {
		t.Fatalf("unexpected npm registry %s", cfg.NpmRegistry)
	}
	if cfg.NpmToken != "secret" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.CorsAllowOrigins) != 1 || cfg.CorsAllowOrigins[0] != "https://a.example.com" {
		t.Fatalf("unexpected cors allow origins %v", cfg.CorsAllowOrigins)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	filename := filepath.Join(dir, "config.json")
	err := os.WriteFile(filename, []byte(`{
		// resolve for node esm by default
		"port": 9000,
		"workDir": "`+dir+`",
		"conditions": ["import", " node ", ""],
		"npmRegistry": "not a url",
		"banList": {"packages": ["faker"]},
	}`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 || cfg.WorkDir != dir {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if strings.Join(cfg.Conditions, ",") != "import,node" {
		t.Fatalf("unexpected conditions %v", cfg.Conditions)
	}
	if cfg.NpmRegistry != "https://registry.npmjs.org/" {
		t.Fatalf("an invalid registry should fall back to the default, got %s", cfg.NpmRegistry)
	}
	if !cfg.BanList.IsPackageBanned("faker@1.0.0") {
		t.Fatal("faker should be banned")
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("loading a missing file should fail")
	}
}

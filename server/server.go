package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/esm-dev/pkg-exports/internal/config"
	"github.com/esm-dev/pkg-exports/internal/npm"
	"github.com/ije/gox/log"
	"github.com/ije/gox/set"
	"github.com/ije/rex"
)

// VERSION is set at build time with `-ldflags "-X github.com/esm-dev/pkg-exports/server.VERSION=..."`
var VERSION = "dev"

// Serve serves the resolution API
func Serve(cfg *config.Config) {
	err := os.MkdirAll(cfg.LogDir, 0755)
	if err != nil {
		fmt.Println("failed to create log directory:", err)
		os.Exit(1)
	}

	logger, err := log.New(fmt.Sprintf("file:%s?buffer=32k&fileDateFormat=20060102", path.Join(cfg.LogDir, "server.log")))
	if err != nil {
		fmt.Println("failed to initialize logger:", err)
		os.Exit(1)
	}
	logger.SetLevelByName(cfg.LogLevel)

	accessLogger, err := log.New(fmt.Sprintf("file:%s?buffer=32k&fileDateFormat=20060102", path.Join(cfg.LogDir, "access.log")))
	if err != nil {
		logger.Fatalf("failed to initialize access logger: %v", err)
	}
	accessLogger.SetQuite(true)

	npm.SetLogger(logger)
	registry, err := npm.NewRegistry(npm.RegistryConfig{
		Registry: cfg.NpmRegistry,
		Token:    cfg.NpmToken,
		User:     cfg.NpmUser,
		Password: cfg.NpmPassword,
		CacheTTL: time.Duration(cfg.NpmQueryCacheTTL) * time.Second,
	})
	if err != nil {
		logger.Fatalf("failed to initialize npm registry: %v", err)
	}
	logger.Debugf("npm registry: %s", registry.URL())

	cache, err := newResultCache(cfg.CacheSize)
	if err != nil {
		logger.Fatalf("failed to initialize cache: %v", err)
	}

	a := &api{
		banList:    cfg.BanList,
		conditions: cfg.Conditions,
		packages:   registry,
		cache:      cache,
	}

	// add middlewares
	rex.Use(
		rex.Header("Server", "pkg-exports"),
		cors(cfg.CorsAllowOrigins),
		rex.Logger(logger),
		rex.Optional(rex.AccessLogger(accessLogger), cfg.AccessLog),
		router(a, logger),
	)

	// start server
	C := rex.Serve(rex.ServerConfig{
		Port: cfg.Port,
	})
	logger.Infof("Server is ready on http://localhost:%d", cfg.Port)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, syscall.SIGABRT)
	select {
	case <-c:
	case err = <-C:
		logger.Error(err)
	}

	// release resources
	registry.Close()
	logger.FlushBuffer()
	accessLogger.FlushBuffer()
}

func cors(allowOrigins []string) rex.Handle {
	allowList := set.NewReadOnly(allowOrigins...)
	return func(ctx *rex.Context) any {
		origin := ctx.R.Header.Get("Origin")
		isOptionsMethod := ctx.R.Method == "OPTIONS"
		h := ctx.W.Header()
		if allowList.Len() > 0 {
			if origin != "" {
				if !allowList.Has(origin) {
					return rex.Status(403, "forbidden")
				}
				setCorsHeaders(h, isOptionsMethod, origin)
			} else if isOptionsMethod {
				// not a preflight request
				return rex.Status(405, "method not allowed")
			}
			h.Add("Vary", "Origin")
		} else {
			setCorsHeaders(h, isOptionsMethod, "*")
		}
		if isOptionsMethod {
			return rex.NoContent()
		}
		return ctx.Next()
	}
}

func setCorsHeaders(h http.Header, isOptionsMethod bool, origin string) {
	h.Set("Access-Control-Allow-Origin", origin)
	if isOptionsMethod {
		h.Set("Access-Control-Allow-Methods", "GET, HEAD")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Max-Age", "86400")
	}
}

package server

import (
	"strings"
	"time"

	"github.com/esm-dev/pkg-exports/internal/npm"
	"github.com/esm-dev/pkg-exports/resolver"
	"github.com/ije/gox/log"
	"github.com/ije/rex"
)

const ccMustRevalidate = "public, max-age=0, must-revalidate"

func router(a *api, logger *log.Logger) rex.Handle {
	startTime := time.Now()

	return func(ctx *rex.Context) any {
		if ctx.R.Method != "GET" && ctx.R.Method != "HEAD" {
			return rex.Status(405, "method not allowed")
		}

		pathname := ctx.R.URL.Path
		if pathname == "/" {
			ctx.SetHeader("Cache-Control", ccMustRevalidate)
			return map[string]any{
				"version": VERSION,
				"uptime":  time.Since(startTime).String(),
				"cache":   a.cache.Len(),
			}
		}

		route, arg := splitRoute(pathname)
		if arg == "" {
			return rex.Status(404, "not found")
		}

		q, err := parseQuery(ctx)
		if err != nil {
			return rex.Err(400, err.Error())
		}

		switch route {
		case "parse":
			id := resolver.ParseModuleId(arg)
			if id.Name == "" {
				return rex.Err(400, "invalid module specifier")
			}
			ctx.SetHeader("Cache-Control", "public, max-age=31536000, immutable")
			return id

		case "resolve":
			ret, err := a.resolve(ctx.R.Context(), arg, q)
			if err != nil {
				return throwError(err, logger)
			}
			if ret.Path == "" {
				return rex.Status(404, ret)
			}
			return ret

		case "imports":
			path := ctx.Query().Get("path")
			if path == "" {
				return rex.Err(400, "missing `path` query")
			}
			ret, err := a.resolveImport(ctx.R.Context(), arg, path, q)
			if err != nil {
				return throwError(err, logger)
			}
			if ret.Resolved == "" {
				return rex.Status(404, ret)
			}
			return ret

		case "exports":
			ret, err := a.listExports(ctx.R.Context(), arg, q)
			if err != nil {
				return throwError(err, logger)
			}
			return ret

		default:
			return rex.Status(404, "not found")
		}
	}
}

// splitRoute splits `/resolve/react@18/jsx-runtime` into `resolve` and `react@18/jsx-runtime`.
func splitRoute(pathname string) (route string, arg string) {
	pathname = strings.TrimPrefix(pathname, "/")
	i := strings.IndexByte(pathname, '/')
	if i < 0 {
		return pathname, ""
	}
	return pathname[:i], pathname[i+1:]
}

func parseQuery(ctx *rex.Context) (q query, err error) {
	values := ctx.Query()
	q.conditions = parseConditions(values.Get("conditions"))
	if v := values.Get("at"); v != "" {
		q.at, err = npm.ParseTimestamp(v)
	}
	return
}

func throwError(err error, logger *log.Logger) any {
	status := errorStatus(err)
	if status >= 500 {
		logger.Errorf("resolve: %v", err)
	}
	return rex.Err(status, err.Error())
}

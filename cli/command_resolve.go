package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/esm-dev/pkg-exports/internal/config"
	"github.com/esm-dev/pkg-exports/internal/npm"
	"github.com/esm-dev/pkg-exports/resolver"
	"github.com/ije/gox/term"
)

const resolveHelpMessage = `Resolve a module specifier against the package exports

Usage: pkg-exports resolve <specifier> [options]

Examples:
  pkg-exports resolve react/jsx-runtime --conditions import
  pkg-exports resolve my-lib/feature --pkg ./package.json

Options:
  --pkg          The package.json file to use instead of fetching from the registry
  --conditions   Comma separated export conditions, default is "require"
  --registry     The npm registry, default is "https://registry.npmjs.org/"
  --at           Resolve the version as it was at the time, e.g. "2024-01-01" or "1704067200s"
  --json         Print the result as JSON
  --help, -h     Show help message
`

const importsHelpMessage = `Resolve a "#" path against the package imports

Usage: pkg-exports imports <#path> [package] [options]

Arguments:
  package        The package to fetch from the registry, default is the local package.json

Options:
  --pkg          The package.json file, default is "package.json"
  --conditions   Comma separated conditions, default is "require"
  --registry     The npm registry, default is "https://registry.npmjs.org/"
  --at           Resolve the version as it was at the time
  --json         Print the result as JSON
  --help, -h     Show help message
`

const lsHelpMessage = `List the exports and imports of a package

Usage: pkg-exports ls [package] [options]

Arguments:
  package        The package to fetch from the registry, default is the local package.json

Options:
  --pkg          The package.json file, default is "package.json"
  --conditions   Comma separated conditions, default is "require"
  --registry     The npm registry, default is "https://registry.npmjs.org/"
  --at           Resolve the version as it was at the time
  --json         Print the result as JSON
  --help, -h     Show help message
`

// packageSource loads a package.json from a local file or the npm registry.
type packageSource struct {
	pkgFile  string
	registry string
	at       time.Time
}

type commandFlags struct {
	pkgFile    *string
	conditions *string
	registry   *string
	at         *string
	asJSON     *bool
}

func defineCommandFlags(fs *flag.FlagSet) commandFlags {
	return commandFlags{
		pkgFile:    fs.String("pkg", "", "the package.json file"),
		conditions: fs.String("conditions", "", "comma separated conditions"),
		registry:   fs.String("registry", "", "the npm registry"),
		at:         fs.String("at", "", "resolve the version as it was at the time"),
		asJSON:     fs.Bool("json", false, "print the result as JSON"),
	}
}

func (f commandFlags) source() (src packageSource, err error) {
	src.pkgFile = *f.pkgFile
	src.registry = *f.registry
	if *f.at != "" {
		src.at, err = npm.ParseTimestamp(*f.at)
	}
	return
}

func (s packageSource) load(ctx context.Context, id resolver.ModuleId) (*npm.PackageJSON, error) {
	if s.pkgFile != "" || id.Name == "" {
		filename := s.pkgFile
		if filename == "" {
			filename = "package.json"
		}
		return npm.ReadPackageJSON(filename)
	}

	// the registry and its credentials fall back to the `NPM_*` env vars
	cfg := config.Default()
	registryURL := cfg.NpmRegistry
	if s.registry != "" {
		registryURL = s.registry
	}
	registry, err := npm.NewRegistry(npm.RegistryConfig{
		Registry: registryURL,
		Token:    cfg.NpmToken,
		User:     cfg.NpmUser,
		Password: cfg.NpmPassword,
	})
	if err != nil {
		return nil, err
	}
	defer registry.Close()
	return registry.FetchPackageJSONAt(ctx, id.Name, id.Version, s.at)
}

// Resolve resolves a module specifier
func Resolve() {
	flags := defineCommandFlags(flag.CommandLine)
	args, help := parseCommandFlags()
	if help || len(args) == 0 {
		fmt.Print(resolveHelpMessage)
		return
	}
	src, err := flags.source()
	if err != nil {
		exitWithError(err)
	}
	data, err := resolve(context.Background(), src, args[0], splitList(*flags.conditions))
	if err != nil {
		exitWithError(err)
	}
	if *flags.asJSON {
		printJSON(os.Stdout, data)
	} else {
		printPkgData(os.Stdout, data)
	}
	if data.Path == "" {
		os.Exit(1)
	}
}

func resolve(ctx context.Context, src packageSource, specifier string, conditions []string) (resolver.PkgData, error) {
	id := resolver.ParseModuleId(specifier)
	if id.Name == "" {
		return resolver.PkgData{}, errors.New("invalid module specifier: " + specifier)
	}
	p, err := src.load(ctx, id)
	if err != nil {
		return resolver.PkgData{}, err
	}
	return p.PkgData(specifier, conditions)
}

func printPkgData(w io.Writer, data resolver.PkgData) {
	if data.Path == "" {
		fmt.Fprintln(w, term.Red("✗"), data.Raw, term.Dim("is not exported"))
		return
	}
	printFields(w,
		[2]string{"name", data.Name},
		[2]string{"version", data.Version},
		[2]string{"path", data.Path},
		[2]string{"resolve", term.Green(data.Resolve)},
	)
}

// Imports resolves a `#` path
func Imports() {
	flags := defineCommandFlags(flag.CommandLine)
	args, help := parseCommandFlags()
	if help || len(args) == 0 {
		fmt.Print(importsHelpMessage)
		return
	}
	src, err := flags.source()
	if err != nil {
		exitWithError(err)
	}
	var pkg string
	if len(args) > 1 {
		pkg = args[1]
	}
	target, err := resolveImport(context.Background(), src, args[0], pkg, splitList(*flags.conditions))
	if err != nil {
		exitWithError(err)
	}
	if *flags.asJSON {
		printJSON(os.Stdout, map[string]string{"path": args[0], "resolved": target})
	} else if target == "" {
		fmt.Println(term.Red("✗"), args[0], term.Dim("is not mapped"))
	} else {
		fmt.Println(term.Green(target))
	}
	if target == "" {
		os.Exit(1)
	}
}

func resolveImport(ctx context.Context, src packageSource, path string, pkg string, conditions []string) (string, error) {
	id := resolver.ParseModuleId(pkg)
	if pkg != "" && (id.Name == "" || id.Path != "") {
		return "", errors.New("invalid package: " + pkg)
	}
	p, err := src.load(ctx, id)
	if err != nil {
		return "", err
	}
	return resolver.FindPathInImports(path, p.Imports, conditions)
}

// List lists the exports of a package
func List() {
	flags := defineCommandFlags(flag.CommandLine)
	args, help := parseCommandFlags()
	if help {
		fmt.Print(lsHelpMessage)
		return
	}
	src, err := flags.source()
	if err != nil {
		exitWithError(err)
	}
	var pkg string
	if len(args) > 0 {
		pkg = args[0]
	}
	exports, imports, err := list(context.Background(), src, pkg, splitList(*flags.conditions))
	if err != nil {
		exitWithError(err)
	}
	if *flags.asJSON {
		printJSON(os.Stdout, map[string]any{"exports": exports, "imports": imports})
		return
	}
	printExports(os.Stdout, "exports", exports)
	if len(imports) > 0 {
		printExports(os.Stdout, "imports", imports)
	}
}

func list(ctx context.Context, src packageSource, pkg string, conditions []string) (exports []resolver.Export, imports []resolver.Export, err error) {
	id := resolver.ParseModuleId(pkg)
	if pkg != "" && (id.Name == "" || id.Path != "") {
		return nil, nil, errors.New("invalid package: " + pkg)
	}
	p, err := src.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	exports = p.ListExports(conditions)
	imports = resolver.ListImports(p.Imports, conditions)
	return
}

func printExports(w io.Writer, title string, list []resolver.Export) {
	fmt.Fprintln(w, term.Cyan(title))
	width := 0
	for _, e := range list {
		if len(e.Subpath) > width {
			width = len(e.Subpath)
		}
	}
	for _, e := range list {
		target := e.Target
		if target == "" {
			target = term.Dim("(null)")
		}
		fmt.Fprintf(w, "  %s%s  %s\n", e.Subpath, fmt.Sprintf("%*s", width-len(e.Subpath), ""), target)
	}
}

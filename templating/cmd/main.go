// Command weaver renders a page layout (or a raw template file) with
// values taken from stamp info files, JSON/YAML context files and
// explicit variable substitutions.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/byte4ever/staticweaver/config"
	"github.com/byte4ever/staticweaver/resolver"
	"github.com/byte4ever/staticweaver/stamper"
	"github.com/byte4ever/staticweaver/templating"
)

// sliceFlag implements flag.Value for multi-value
// string flags (repeated --flag=val usage).
type sliceFlag []string

func (s *sliceFlag) String() string {
	if s == nil {
		return ""
	}

	return strings.Join(*s, ",")
}

func (s *sliceFlag) Set(val string) error {
	*s = append(*s, val)

	return nil
}

type options struct {
	cfg        config.Config
	context    stamper.Options
	tpl        string
	output     string
	downloadTo string
	executable bool
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt,
	)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		kind := "error"

		var te *templating.Error
		if errors.As(err, &te) {
			kind = te.Kind.Error()
		}

		slog.Error("fatal", "kind", kind, "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level},
	)))

	out, err := render(ctx, opts)
	if err != nil {
		return err
	}

	return write(opts, out, stdout)
}

//nolint:funlen // CLI flag setup is inherently long
func parseOptions(args []string) (options, error) {
	const errCtx = "parse flags"

	fs := flag.NewFlagSet("weaver", flag.ContinueOnError)

	var (
		opts          options
		configFile    string
		stampInfoFile sliceFlag
		variable      sliceFlag
		contextFile   sliceFlag
		source        string
		templateRoot  string
		layout        string
		startTag      string
		endTag        string
		cacheTTL      string
	)

	fs.StringVar(
		&configFile, "config", "",
		"TOML configuration file",
	)
	fs.StringVar(
		&source, "source", "",
		"template location: URL, github://, gitlab://,"+
			" configmap:// or directory",
	)
	fs.StringVar(
		&templateRoot, "template_root", "",
		"local template directory (used when -source is empty)",
	)
	fs.StringVar(
		&opts.downloadTo, "download_dir", "",
		"directory receiving downloaded templates"+
			" (temporary if empty)",
	)
	fs.StringVar(
		&layout, "layout", "",
		"page layout to render, without .html",
	)
	fs.StringVar(
		&opts.tpl, "template", "",
		"render this template file instead of a page layout",
	)
	fs.Var(
		&stampInfoFile,
		"stamp_info_file",
		"Stamp info file path (repeatable)",
	)
	fs.Var(
		&variable,
		"variable",
		"Variable in NAME=VALUE format (repeatable)",
	)
	fs.Var(
		&contextFile,
		"context_file",
		"JSON or YAML context file (repeatable)",
	)
	fs.StringVar(
		&startTag, "start_tag", "",
		"Start tag for template placeholders",
	)
	fs.StringVar(
		&endTag, "end_tag", "",
		"End tag for template placeholders",
	)
	fs.StringVar(
		&cacheTTL, "cache_ttl", "",
		"rendered page cache lifetime (e.g. 30s)",
	)
	fs.StringVar(
		&opts.output, "output", "",
		"Output file path (stdout if empty)",
	)
	fs.BoolVar(
		&opts.executable, "executable", false,
		"Set executable bit on output file",
	)
	fs.BoolVar(
		&opts.verbose, "verbose", false,
		"log at debug level",
	)

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%s: %w", errCtx, err)
	}

	opts.cfg = config.Default()

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return opts, err
		}

		opts.cfg = cfg
	}

	override(&opts.cfg.Source, source)
	override(&opts.cfg.TemplateRoot, templateRoot)
	override(&opts.cfg.Layout, layout)
	override(&opts.cfg.StartTag, startTag)
	override(&opts.cfg.EndTag, endTag)
	override(&opts.cfg.CacheTTL, cacheTTL)

	if err := opts.cfg.Validate(); err != nil {
		return opts, fmt.Errorf("%s: %w", errCtx, err)
	}

	opts.context = stamper.Options{
		StampInfoFiles: stampInfoFile,
		ContextFiles:   contextFile,
		Variables:      variable,
	}

	return opts, nil
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func render(ctx context.Context, opts options) (string, error) {
	vars, err := stamper.Build(opts.context)
	if err != nil {
		return "", templating.Classify("building context", err)
	}

	if opts.tpl != "" {
		return renderFile(opts, vars)
	}

	location := opts.cfg.Source
	if location == "" {
		location = opts.cfg.TemplateRoot
	}

	dir, err := resolver.Resolve(ctx, location, resolver.Options{
		Parallelism:          opts.cfg.Parallelism,
		Dir:                  opts.downloadTo,
		GitHubToken:          opts.cfg.GitHubToken,
		GitHubEnterpriseHost: opts.cfg.GitHubEnterpriseHost,
		GitLabHost:           opts.cfg.GitLabHost,
		GitLabToken:          opts.cfg.GitLabToken,
		Kubeconfig:           opts.cfg.Kubeconfig,
	})
	if err != nil {
		return "", templating.Classify("resolving templates", err)
	}

	en, err := newEngine(opts.cfg, dir)
	if err != nil {
		return "", err
	}

	slog.Debug(
		"rendering page",
		"root", dir,
		"layout", opts.cfg.Layout,
		"variables", vars.Len(),
	)

	return en.RenderPage(vars, opts.cfg.Layout)
}

func renderFile(opts options, vars templating.Vars) (string, error) {
	tpl, err := os.ReadFile(opts.tpl)
	if err != nil {
		return "", templating.Classify("reading template", err)
	}

	en, err := newEngine(opts.cfg, ".")
	if err != nil {
		return "", err
	}

	return en.RenderTemplate(string(tpl), vars)
}

func newEngine(cfg config.Config, root string) (*templating.Engine, error) {
	const errCtx = "creating engine"

	ec, err := cfg.Engine(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	en, err := templating.New(ec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return en, nil
}

func write(opts options, out string, stdout io.Writer) error {
	if opts.output == "" {
		if _, err := io.WriteString(stdout, out); err != nil {
			return templating.Classify("writing output", err)
		}

		return nil
	}

	perm := os.FileMode(0o644)
	if opts.executable {
		perm = 0o755
	}

	if err := os.WriteFile(opts.output, []byte(out), perm); err != nil {
		return templating.Classify("writing output", err)
	}

	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(opts.output, perm); err != nil {
		return templating.Classify("writing output", err)
	}

	return nil
}

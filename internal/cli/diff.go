package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poddiff/pkg/cache"
	"github.com/matzehuels/poddiff/pkg/deps"
	"github.com/matzehuels/poddiff/pkg/diff"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/graph"
	"github.com/matzehuels/poddiff/pkg/observability"
	"github.com/matzehuels/poddiff/pkg/source"
)

// engineOptions select the source, cache and closure for an engine. They
// are shared by diff and serve.
type engineOptions struct {
	source      string
	refresh     bool
	noCache     bool
	fullClosure bool
}

func (o *engineOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.source, "source", "", `podspec source: "cdn", a CDN URL, or a specs repo directory (default from config)`)
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cached CDN responses")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&o.fullClosure, "full-closure", false, "with --include-dependencies, report the whole dependency closure")
}

// diffOptions holds the flags of the diff command.
type diffOptions struct {
	engineOptions

	regex               bool
	includeDependencies bool
	platforms           string
	interactive         bool
	pretty              bool

	markdown     string
	newerPodfile string
	olderPodfile string
	yaml         string
	olderGraph   string
	newerGraph   string
}

// diffCommand creates the diff command: the heart of poddiff.
func (c *CLI) diffCommand() *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff POD_NAME OLDER_VERSION NEWER_VERSION",
		Short: "Compare two versions of a pod",
		Long: `Compare two versions of a pod.

For every platform both versions support, poddiff lists the subspecs of each
version with the minimum platform version they require. With
--include-dependencies the direct dependencies are listed as well.

The versions may be given in either order; the older one is always shown first.`,
		Example: `  poddiff diff Firebase 9.0.0 10.0.0
  poddiff diff --platforms ios,tvos Firebase 10.0.0 9.0.0
  poddiff diff --regex --include-dependencies '^alamofire$' 5.0.0 5.8.0
  poddiff diff --markdown diff.md --newer-podfile Podfile Firebase 9.0.0 10.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Resolve.FullClosure && !cmd.Flags().Changed("full-closure") {
				opts.fullClosure = true
			}
			if c.Config.Output.Pretty && !cmd.Flags().Changed("pretty") {
				opts.pretty = true
			}
			_, err := c.runDiff(cmd.Context(), args, &opts)
			if err != nil && perrors.IsUsage(err) {
				_ = cmd.Usage()
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.regex, "regex", false, "interpret POD_NAME as a case-insensitive regular expression")
	cmd.Flags().BoolVar(&opts.includeDependencies, "include-dependencies", false, "also compare the dependencies of each version")
	cmd.Flags().StringVar(&opts.platforms, "platforms", "", "comma-separated platforms to compare (default: all supported)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the pod interactively when POD_NAME matches several")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "render the report for the terminal")
	cmd.Flags().StringVar(&opts.markdown, "markdown", "", "write the report to a markdown file")
	cmd.Flags().StringVar(&opts.newerPodfile, "newer-podfile", "", "write a Podfile installing the newer version's components")
	cmd.Flags().StringVar(&opts.olderPodfile, "older-podfile", "", "write a Podfile installing the older version's components")
	cmd.Flags().StringVar(&opts.yaml, "yaml", "", "write the structured comparison as YAML")
	cmd.Flags().StringVar(&opts.olderGraph, "older-graph", "", "write the older version's graph (.json, .dot or .svg)")
	cmd.Flags().StringVar(&opts.newerGraph, "newer-graph", "", "write the newer version's graph (.json, .dot or .svg)")
	opts.engineOptions.register(cmd)

	return cmd
}

// runDiff performs one comparison and writes its outputs. It returns the
// report, or "" when there was nothing to compare.
func (c *CLI) runDiff(ctx context.Context, args []string, opts *diffOptions) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := requestFromArgs(args, opts)
	if err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	backend := c.openCache(ctx, opts.noCache)
	defer backend.Close()
	engine, err := c.newEngine(backend, opts.engineOptions)
	if err != nil {
		return "", err
	}
	if opts.interactive {
		engine.Locator.Chooser = choosePod
	}

	// The picker owns the terminal while it runs.
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Comparing %s %s and %s", req.Pod, req.Version1, req.Version2))
	if !opts.interactive && !c.verbose {
		spin.Start()
	}
	prog := newProgress(c.Logger)
	res, err := engine.Run(ctx, req)
	spin.Stop()
	if err != nil {
		return "", err
	}
	if res.Warning != "" {
		printWarning("%s", res.Warning)
		return "", nil
	}
	prog.done(fmt.Sprintf("Compared %s %s and %s", res.Pod, res.OlderVersion, res.NewerVersion))

	return c.writeOutputs(ctx, res, opts)
}

func requestFromArgs(args []string, opts *diffOptions) (diff.Request, error) {
	if len(args) > 3 {
		return diff.Request{}, perrors.New(perrors.ErrCodeInvalidInput, "Unknown arguments: %s", strings.Join(args[3:], " "))
	}
	padded := make([]string, 3)
	copy(padded, args)
	return diff.Request{
		Pod:                 padded[0],
		Version1:            padded[1],
		Version2:            padded[2],
		Regex:               opts.regex,
		IncludeDependencies: opts.includeDependencies,
		Platforms:           splitList(opts.platforms),
	}, nil
}

// splitList splits a comma separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// openCache connects the configured backend. A backend that cannot be
// reached degrades to no caching.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	backend, err := c.Config.openCache(ctx, noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", c.Config.Cache.Backend, "error", err)
		return cache.NewNullCache()
	}
	return backend
}

// newEngine wires source, cache and resolver into a diff engine.
func (c *CLI) newEngine(backend cache.Cache, opts engineOptions) (*diff.Engine, error) {
	src, err := c.Config.openSource(backend, opts.source, opts.refresh)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("using podspec source", "source", src.Name())

	resolver := deps.NewRegistry(src, deps.Options{
		MaxDepth: c.Config.Resolve.MaxDepth,
		Workers:  c.Config.Resolve.Workers,
		Logger:   c.Logger.Debugf,
	})
	engine := diff.NewEngine(source.NewLocator(src), resolver, c.Logger)
	if opts.fullClosure {
		engine.Closure = diff.ClosureFull
	}
	return engine, nil
}

// writeOutputs writes every requested file. The report goes to stdout
// only when none of the markdown and Podfile paths are given.
func (c *CLI) writeOutputs(ctx context.Context, res *diff.Result, opts *diffOptions) (string, error) {
	report := res.Table()
	observability.Diff().OnRender(ctx, "markdown", len(report))

	if opts.markdown != "" {
		if err := writeOutput(opts.markdown, []byte(report)); err != nil {
			return "", err
		}
	}
	for _, out := range []struct {
		path string
		side diff.Side
	}{{opts.newerPodfile, diff.Newer}, {opts.olderPodfile, diff.Older}} {
		if out.path == "" {
			continue
		}
		podfile := res.Podfile(out.side)
		observability.Diff().OnRender(ctx, "podfile", len(podfile))
		if err := writeOutput(out.path, []byte(podfile)); err != nil {
			return "", err
		}
	}

	if opts.yaml != "" {
		data, err := res.Comparison().YAML()
		if err != nil {
			return "", perrors.Wrap(perrors.ErrCodeInternal, err, "encode comparison")
		}
		observability.Diff().OnRender(ctx, "yaml", len(data))
		if err := writeOutput(opts.yaml, data); err != nil {
			return "", err
		}
	}
	for _, out := range []struct {
		path string
		side diff.Side
	}{{opts.olderGraph, diff.Older}, {opts.newerGraph, diff.Newer}} {
		if out.path == "" {
			continue
		}
		format, err := graph.FormatFor(out.path)
		if err != nil {
			return "", err
		}
		data, err := graph.Render(ctx, res.Graph(out.side), format, graph.Options{Detailed: true})
		if err != nil {
			return "", err
		}
		observability.Diff().OnRender(ctx, "graph-"+format, len(data))
		if err := writeOutput(out.path, data); err != nil {
			return "", err
		}
	}

	if opts.markdown == "" && opts.newerPodfile == "" && opts.olderPodfile == "" {
		out := report
		if opts.pretty {
			out = c.prettify(report)
		}
		fmt.Fprint(c.Stdout, out)
	}
	return report, nil
}

// prettify renders markdown for the terminal, falling back to the raw text.
func (c *CLI) prettify(markdown string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(c.Config.Output.Width),
	)
	if err != nil {
		c.Logger.Debug("markdown renderer unavailable", "error", err)
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		c.Logger.Debug("markdown rendering failed", "error", err)
		return markdown
	}
	return out
}

// writeOutput writes data to path, creating missing parent directories.
func writeOutput(path string, data []byte) error {
	if err := perrors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidPath, err, "create directory %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidPath, err, "write %s: %v", path, err)
	}
	printFile(path)
	return nil
}

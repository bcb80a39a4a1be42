package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/webpilot/pkg/browser"
	"github.com/odvcencio/webpilot/pkg/browser/adapters/browserd"
	"github.com/odvcencio/webpilot/pkg/browser/adapters/webcli"
	"github.com/odvcencio/webpilot/pkg/config"
	"github.com/odvcencio/webpilot/pkg/logging"
	"github.com/odvcencio/webpilot/pkg/observability"
	"github.com/odvcencio/webpilot/pkg/search"
)

// Version information - set via ldflags during build
var (
	version   = "1.0.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var configPath string
var quietMode bool

func main() {
	args := parseGlobalFlags(os.Args[1:])

	if handled, exitCode := dispatchSubcommand(args); handled {
		os.Exit(exitCode)
	}

	printHelp()
}

// parseGlobalFlags strips flags that apply to every subcommand.
func parseGlobalFlags(raw []string) []string {
	filtered := make([]string, 0, len(raw))
	var nextConfig bool
	for _, arg := range raw {
		if nextConfig {
			configPath = arg
			nextConfig = false
			continue
		}
		switch {
		case arg == "--config":
			nextConfig = true
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--quiet" || arg == "-q":
			quietMode = true
		default:
			filtered = append(filtered, arg)
		}
	}
	return filtered
}

func dispatchSubcommand(args []string) (bool, int) {
	if len(args) == 0 {
		return false, 0
	}
	switch args[0] {
	case "--version", "-v", "version":
		printVersion()
		return true, 0
	case "--help", "-h", "help":
		printHelp()
		return true, 0
	case "navigate":
		return true, runCommand(runNavigateCommand, args[1:])
	case "search":
		return true, runCommand(runSearchCommand, args[1:])
	case "snapshot":
		return true, runCommand(runSnapshotCommand, args[1:])
	case "screenshot":
		return true, runCommand(runScreenshotCommand, args[1:])
	case "config":
		return true, runCommand(runConfigCommand, args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "Error: unknown flag: %s\n", args[0])
		} else {
			fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", args[0])
		}
		fmt.Fprintln(os.Stderr, "Run 'webpilot --help' for usage.")
		return true, 1
	}
}

func runCommand(handler func([]string) error, args []string) int {
	if err := handler(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeForError(err)
	}
	return 0
}

func exitCodeForError(err error) int {
	switch {
	case browser.IsInvalid(err):
		return 2
	case browser.IsTimeout(err):
		return 124
	default:
		return 1
	}
}

func runNavigateCommand(args []string) error {
	fs := flag.NewFlagSet("navigate", flag.ContinueOnError)
	adapterFlag := fs.String("adapter", "", "backend adapter (browserd or webcli)")
	formatFlag := fs.String("format", "markdown", "content format: markdown, text, html")
	timeoutFlag := fs.Duration("timeout", 0, "operation timeout override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	url := strings.TrimSpace(fs.Arg(0))
	if url == "" {
		return fmt.Errorf("usage: webpilot navigate <url> [--format markdown|text|html]")
	}

	ctx, stop := signalContext()
	defer stop()

	cfg, d, cleanup, err := setup(*adapterFlag)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := browser.DefaultSessionOptions()
	opts.Timeout = *timeoutFlag
	session, err := d.StartSession(ctx, cfg.Adapter, opts)
	if err != nil {
		return err
	}
	defer func() { _ = d.EndSession(ctx, session) }()

	page, updated, err := d.Navigate(ctx, session, url, browser.NavigateOptions{})
	if err != nil {
		return err
	}
	session = updated

	format := browser.ContentFormat(strings.ToLower(*formatFlag))
	if format == browser.FormatMarkdown && page.Content != "" {
		fmt.Println(page.Content)
		return nil
	}
	content, err := d.ExtractContent(ctx, session, browser.ExtractOptions{Format: format})
	if err != nil {
		return err
	}
	fmt.Println(content.Content)
	return nil
}

func runSearchCommand(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	providerFlag := fs.String("provider", "", "search provider (browser or brave)")
	maxFlag := fs.Int("max", 0, "maximum number of results")
	countryFlag := fs.String("country", "", "two-letter country code")
	langFlag := fs.String("lang", "", "language code")
	freshnessFlag := fs.String("freshness", "", "freshness code (e.g. pd, pw, pm)")
	jsonFlag := fs.Bool("json", false, "emit results as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return fmt.Errorf("usage: webpilot search <query> [--provider browser|brave] [--max N]")
	}

	ctx, stop := signalContext()
	defer stop()

	cfg, d, cleanup, err := setup("")
	if err != nil {
		return err
	}
	defer cleanup()

	registry := search.NewRegistry()
	registry.Register(search.NewBrowserProvider(d, cfg.Adapter, cfg.Search.Endpoint))
	if cfg.Search.Brave.APIKey != "" {
		registry.Register(search.NewBraveProvider(cfg.Search.Brave.APIKey, cfg.Search.Brave.Endpoint))
	}

	name := *providerFlag
	if name == "" {
		name = cfg.Search.Provider
	}
	provider, err := registry.Get(name)
	if err != nil {
		return err
	}

	max := *maxFlag
	if max <= 0 {
		max = cfg.Search.MaxResults
	}
	results, err := provider.Search(ctx, query, search.Options{
		MaxResults: max,
		Country:    *countryFlag,
		Language:   *langFlag,
		Freshness:  *freshnessFlag,
	})
	if err != nil {
		return err
	}

	if *jsonFlag || !isInteractiveTerminal() {
		return printJSON(results)
	}
	for _, r := range results {
		fmt.Printf("%d. %s\n   %s\n", r.Rank, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Printf("   %s\n", r.Snippet)
		}
		if r.Age != "" {
			fmt.Printf("   (%s)\n", r.Age)
		}
		fmt.Println()
	}
	if len(results) == 0 && !quietMode {
		fmt.Println("No results.")
	}
	return nil
}

func runSnapshotCommand(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	adapterFlag := fs.String("adapter", "", "backend adapter (browserd or webcli)")
	maxContentFlag := fs.Int("max-content", 5000, "content length cap")
	noLinksFlag := fs.Bool("no-links", false, "omit the link list")
	formsFlag := fs.Bool("forms", false, "include form descriptors")
	headingsFlag := fs.Bool("headings", false, "include the heading outline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	url := strings.TrimSpace(fs.Arg(0))
	if url == "" {
		return fmt.Errorf("usage: webpilot snapshot <url> [--max-content N] [--no-links] [--forms] [--headings]")
	}

	ctx, stop := signalContext()
	defer stop()

	cfg, d, cleanup, err := setup(*adapterFlag)
	if err != nil {
		return err
	}
	defer cleanup()

	session, err := d.StartSession(ctx, cfg.Adapter, browser.DefaultSessionOptions())
	if err != nil {
		return err
	}
	defer func() { _ = d.EndSession(ctx, session) }()

	_, updated, err := d.Navigate(ctx, session, url, browser.NavigateOptions{})
	if err != nil {
		return err
	}
	session = updated

	snapOpts := browser.DefaultSnapshotOptions()
	snapOpts.MaxContentLength = *maxContentFlag
	snapOpts.IncludeLinks = !*noLinksFlag
	snapOpts.IncludeForms = *formsFlag
	snapOpts.IncludeHeadings = *headingsFlag

	snap, err := d.Snapshot(ctx, session, snapOpts)
	if err != nil {
		return err
	}
	return printJSON(snap)
}

func runScreenshotCommand(args []string) error {
	fs := flag.NewFlagSet("screenshot", flag.ContinueOnError)
	adapterFlag := fs.String("adapter", "", "backend adapter (browserd or webcli)")
	outputFlag := fs.String("output", "screenshot.png", "file to write the image to")
	fullPageFlag := fs.Bool("full-page", false, "capture the full page height")
	formatFlag := fs.String("format", "png", "image format: png or jpeg")
	if err := fs.Parse(args); err != nil {
		return err
	}
	url := strings.TrimSpace(fs.Arg(0))
	if url == "" {
		return fmt.Errorf("usage: webpilot screenshot <url> [--output file.png] [--full-page]")
	}

	ctx, stop := signalContext()
	defer stop()

	cfg, d, cleanup, err := setup(*adapterFlag)
	if err != nil {
		return err
	}
	defer cleanup()

	session, err := d.StartSession(ctx, cfg.Adapter, browser.DefaultSessionOptions())
	if err != nil {
		return err
	}
	defer func() { _ = d.EndSession(ctx, session) }()

	_, updated, err := d.Navigate(ctx, session, url, browser.NavigateOptions{})
	if err != nil {
		return err
	}
	session = updated

	shot, err := d.Screenshot(ctx, session, browser.ScreenshotOptions{
		FullPage: *fullPageFlag,
		Format:   browser.ScreenshotFormat(strings.ToLower(*formatFlag)),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outputFlag, shot.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *outputFlag, err)
	}
	if !quietMode {
		fmt.Printf("Wrote %d bytes (%s) to %s\n", len(shot.Data), shot.MIME, *outputFlag)
	}
	return nil
}

func runConfigCommand(args []string) error {
	sub := "check"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "check":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Println("Configuration OK")
		fmt.Printf("  Adapter:         %s\n", cfg.Adapter)
		fmt.Printf("  Search provider: %s\n", cfg.Search.Provider)
		if cfg.Search.Brave.APIKey != "" {
			fmt.Println("  Brave API key:   set")
		} else {
			fmt.Println("  Brave API key:   not set")
		}
		return nil
	case "show":
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	case "path":
		home, err := os.UserHomeDir()
		if err == nil && home != "" {
			fmt.Println(filepath.Join(home, ".webpilot", "config.yaml"))
		}
		fmt.Println(filepath.Join(".", ".webpilot", "config.yaml"))
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s (valid: check, show, path)", sub)
	}
}

// setup loads configuration and builds a dispatcher with both adapters
// registered. The returned cleanup flushes logging and tracing.
func setup(adapterOverride string) (*config.Config, *browser.Dispatcher, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if adapterOverride != "" {
		cfg.Adapter = adapterOverride
	}

	d := browser.NewDispatcher(cfg.OperationTimeout)

	bd, err := browserd.New(browserd.Config{
		BinaryPath:     cfg.Browserd.BinaryPath,
		Host:           cfg.Browserd.Host,
		Port:           cfg.Browserd.Port,
		HealthRetries:  cfg.Browserd.HealthRetries,
		HealthInterval: cfg.Browserd.HealthInterval,
		RequestTimeout: cfg.Browserd.RequestTimeout,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	d.Register(bd)

	wc, err := webcli.New(webcli.Config{
		ExecutablePath: cfg.Webcli.ExecutablePath,
		Profile:        cfg.Webcli.Profile,
		RequestTimeout: cfg.Webcli.RequestTimeout,
		TempDir:        cfg.Webcli.TempDir,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	d.Register(wc)

	var cleanups []func()
	if cfg.Logging.Dir != "" {
		logger, err := logging.NewLogger(cfg.Logging.Dir, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		} else {
			logger.SetMinLevel(logging.Level(cfg.Logging.MinLevel))
			d.SetLogger(logger)
			cleanups = append(cleanups, func() { _ = logger.Close() })
		}
	}
	if cfg.Telemetry.TracingEnabled {
		tp, err := observability.NewTracerProvider("webpilot")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: tracing disabled: %v\n", err)
		} else {
			cleanups = append(cleanups, func() { _ = tp.Shutdown(context.Background()) })
		}
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return cfg, d, cleanup, nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printVersion() {
	fmt.Printf("webpilot %s\n", version)
	if commit != "unknown" {
		fmt.Printf("  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Printf("  Built:      %s\n", buildDate)
	}
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

func printHelp() {
	fmt.Println("webpilot - remote browser control")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  webpilot [--config FILE] [--quiet] COMMAND")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  navigate <url>                   Fetch a page and print its content")
	fmt.Println("  search <query>                   Run a web search and print results")
	fmt.Println("  snapshot <url>                   Emit a structured page snapshot as JSON")
	fmt.Println("  screenshot <url> [--output f]    Capture a page screenshot")
	fmt.Println("  config check|show|path           Inspect the loaded configuration")
	fmt.Println("  version                          Print version information")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  --config FILE                    Load configuration from FILE")
	fmt.Println("  --quiet                          Suppress informational output")
	fmt.Println("  --adapter browserd|webcli        Override the backend adapter (per command)")
	fmt.Println()
	fmt.Println("Backends: a long-lived local daemon (browserd) or a per-call")
	fmt.Println("command-line tool (webcli), selected via config or --adapter.")
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/llmfetch"
	"github.com/fwojciec/llmfetch/extract"
	"github.com/fwojciec/llmfetch/gemini"
	"github.com/fwojciec/llmfetch/goquery"
	lfhttp "github.com/fwojciec/llmfetch/http"
	"github.com/fwojciec/llmfetch/openai"
	lfslog "github.com/fwojciec/llmfetch/slog"
	"github.com/fwojciec/llmfetch/sqlite"
	"github.com/fwojciec/llmfetch/xpath"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor LLMFETCH_DB is set.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Generator overrides the configured backend. Set in tests.
	Generator llmfetch.Generator

	// Fetcher overrides the HTTP fetch chain. Set in tests.
	Fetcher llmfetch.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("llmfetch"),
		kong.Description("Extract structured fields from web pages with model-written XPath"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'llmfetch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = commandName(kongCtx)

	deps.Logger = newLogger(stderr, cli.LogFormat, cli.LogLevel)

	if cmd == "dashboard" {
		deps.API = lfhttp.NewClient(cli.Dashboard.APIURL)
		return kongCtx.Run(deps)
	}

	if cmd != "extract" {
		path := cli.DB
		if path == "" {
			path = m.DBPath
		}
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set LLMFETCH_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		defer m.Close()

		deps.Jobs = sqlite.NewJobService(m.DB)
	}

	if cmd == "serve" || cmd == "scrape" || cmd == "extract" {
		gen, err := m.generator(ctx, cli.Generator, stderr)
		if err != nil {
			return err
		}

		fetcher := m.fetcher(cli.Fetch, deps)
		defer fetcher.Close()

		engine := extract.NewSerialEngine(
			extract.Cache(lfslog.NewLoggingGenerator(gen, deps.Logger)),
			xpath.Validator{},
			xpath.NewEvaluator(),
			cli.Generator.Timeout,
		)
		engine.Simplifier = goquery.NewSimplifier()
		engine.MaxAttempts = cli.Generator.MaxAttempts
		engine.BaseSeed = cli.Generator.Seed
		engine.Logger = deps.Logger

		deps.Fetcher = fetcher
		deps.Extractor = engine
		if deps.Jobs != nil {
			deps.Scraper = extract.NewScraper(deps.Jobs, fetcher, engine)
		}
	}

	return kongCtx.Run(deps)
}

// generator builds the configured text-generation backend.
func (m *Main) generator(ctx context.Context, cfg GeneratorConfig, stderr io.Writer) (llmfetch.Generator, error) {
	if m.Generator != nil {
		return m.Generator, nil
	}

	switch cfg.Backend {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		model := cfg.Model
		if model == "" {
			model = gemini.DefaultModel
		}
		return gemini.NewGenerator(client, model), nil
	default:
		return openai.NewGenerator(openai.Config{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Model,
		}), nil
	}
}

// fetcher builds the fetch chain: logging, then per-domain pacing, then
// retries around the plain HTTP fetcher.
func (m *Main) fetcher(cfg FetchConfig, deps *Dependencies) llmfetch.Fetcher {
	if m.Fetcher != nil {
		return m.Fetcher
	}

	var f llmfetch.Fetcher = lfhttp.NewFetcher(lfhttp.WithTimeout(cfg.Timeout))
	f = lfhttp.NewRetryFetcher(f, lfhttp.WithRetryLogger(deps.Logger))
	f = lfhttp.NewRateLimitedFetcher(f, lfhttp.NewDomainLimiter(cfg.RPS))
	return lfslog.NewLoggingFetcher(f, deps.Logger)
}

// commandName returns the selected top-level command.
func commandName(ctx *kong.Context) string {
	for _, p := range ctx.Path {
		if p.Command != nil {
			return p.Command.Name
		}
	}
	return ""
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "llmfetch.db"
	}
	dir := filepath.Join(home, ".llmfetch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "llmfetch.db")
}

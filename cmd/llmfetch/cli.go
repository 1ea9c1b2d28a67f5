package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/llmfetch"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Jobs      llmfetch.JobService
	Fetcher   llmfetch.Fetcher
	Extractor llmfetch.FieldExtractor
	Scraper   llmfetch.Scraper
	API       JobReader
}

// JobReader reads jobs and rows from a running API server.
type JobReader interface {
	FindJobs(ctx context.Context) ([]*llmfetch.Job, error)
	FindRows(ctx context.Context, id int64) ([]*llmfetch.Row, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB        string `name:"db" env:"LLMFETCH_DB" help:"Database path (default ~/.llmfetch/llmfetch.db)"`
	LogLevel  string `name:"log-level" env:"LOG_LEVEL" default:"info" help:"Log level: debug, info, warn, error"`
	LogFormat string `name:"log-format" env:"LOG_FORMAT" default:"console" enum:"console,json" help:"Log format: console or json"`

	Generator GeneratorConfig `embed:""`
	Fetch     FetchConfig     `embed:""`

	Serve     ServeCmd     `cmd:"" help:"Run the REST API server"`
	Create    CreateCmd    `cmd:"" help:"Create a job with the given fields"`
	List      ListCmd      `cmd:"" help:"List all jobs"`
	Rows      RowsCmd      `cmd:"" help:"Print the rows stored for a job"`
	Delete    DeleteCmd    `cmd:"" help:"Delete a job and its rows"`
	Scrape    ScrapeCmd    `cmd:"" help:"Fetch a page and store one row of extracted fields"`
	Extract   ExtractCmd   `cmd:"" help:"Extract fields from a page without storing them"`
	Dashboard DashboardCmd `cmd:"" help:"Watch jobs and rows on a running server"`
}

// GeneratorConfig selects and tunes the text-generation backend.
type GeneratorConfig struct {
	Backend       string        `name:"generator" env:"LLMFETCH_GENERATOR" default:"openai" enum:"openai,gemini" help:"Generation backend: openai (any compatible server) or gemini"`
	OpenAIBaseURL string        `name:"openai-base-url" env:"OPENAI_BASE_URL" default:"http://localhost:8080/v1" help:"Base URL of the OpenAI-compatible server"`
	OpenAIAPIKey  string        `name:"openai-api-key" env:"OPENAI_API_KEY" help:"API key for the OpenAI-compatible server"`
	GeminiAPIKey  string        `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model         string        `name:"model" env:"LLMFETCH_MODEL" help:"Model name (backend default when empty)"`
	Seed          int64         `name:"seed" env:"LLMFETCH_SEED" default:"42" help:"Base sampling seed (gemini accepts 32-bit seeds only)"`
	MaxAttempts   int           `name:"max-attempts" env:"LLMFETCH_MAX_ATTEMPTS" default:"5" help:"Generation attempts per field"`
	Timeout       time.Duration `name:"generate-timeout" env:"LLMFETCH_GENERATE_TIMEOUT" default:"60s" help:"Timeout for one generation call"`
}

// FetchConfig tunes document fetching.
type FetchConfig struct {
	Timeout time.Duration `name:"fetch-timeout" env:"LLMFETCH_FETCH_TIMEOUT" default:"10s" help:"Timeout for one page fetch"`
	RPS     float64       `name:"fetch-rps" env:"LLMFETCH_FETCH_RPS" default:"1" help:"Requests per second per domain (0 disables pacing)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Port int `env:"PORT" default:"3000" help:"Port to listen on"`
}

// CreateCmd is the "create" subcommand.
type CreateCmd struct {
	Fields []string `arg:"" help:"Field names, in column order"`
	URL    string   `short:"u" help:"Default source URL for scrapes"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// RowsCmd is the "rows" subcommand.
type RowsCmd struct {
	ID int64 `arg:"" help:"Job ID"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    int64 `arg:"" help:"Job ID"`
	Force bool  `help:"Confirm deletion"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	ID     int64    `arg:"" help:"Job ID"`
	URL    string   `arg:"" optional:"" help:"Page URL (defaults to the job's source URL)"`
	Fields []string `short:"f" name:"field" help:"Extract only this field (repeatable)"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL    string   `arg:"" help:"Page URL"`
	Fields []string `arg:"" help:"Field names"`
}

// DashboardCmd is the "dashboard" subcommand.
type DashboardCmd struct {
	Job      int64         `arg:"" optional:"" help:"Show the rows of this job instead of the job list"`
	APIURL   string        `name:"api-url" env:"API_URL" default:"http://localhost:3000" help:"Base URL of the API server"`
	Interval time.Duration `short:"i" default:"3s" help:"Refresh interval"`
	Once     bool          `help:"Print once and exit"`
}

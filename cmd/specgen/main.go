package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yourorg/specgen/internal/config"
	"github.com/yourorg/specgen/internal/generator"
	"github.com/yourorg/specgen/internal/qa"
	"github.com/yourorg/specgen/internal/scanner"
	"github.com/yourorg/specgen/internal/server"
	"github.com/yourorg/specgen/internal/session"
	"github.com/yourorg/specgen/internal/store"
	"github.com/yourorg/specgen/internal/ui"
	"github.com/yourorg/specgen/pkg/types"
)

const apiKeyEnv = "OPENAI_API_KEY"

const defaultConfigContent = `llm:
  api_key: ""
  base_url: "https://api.openai.com/v1"
  model: "gpt-4o-mini"
  max_tokens: 4096
  temperature: 0.2

scan:
  max_file_bytes: 100000
  respect_gitignore: true
  exclude: []

sanitize:
  enabled: false
  keys:
    - api_key
    - apikey
    - access_token
    - refresh_token
    - secret
    - password
    - token
    - authorization
    - credential
  replacement: "***REDACTED***"

history:
  enabled: true
  db_path: ""

preview:
  host: "127.0.0.1"
  port: 8686

log:
  level: "info"
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type generateOptions struct {
	cfgPath string
	debug   bool

	output  string
	apiKey  string
	model   string
	baseURL string
	yes     bool
	copyDoc bool
}

func newRootCmd() *cobra.Command {
	opts := &generateOptions{}

	root := &cobra.Command{
		Use:   "specgen [target]",
		Short: "Generate an OpenAPI document from source code",
		Long: `specgen scans a source tree, sends the collected files to an
OpenAI-compatible model and writes the returned OpenAPI document to disk.
Run it with no arguments for the interactive flow, or with --yes for
non-interactive use.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgPath, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug output")

	root.Flags().StringVarP(&opts.output, "output", "o", session.DefaultOutputPath, "output path for the generated document")
	root.Flags().StringVarP(&opts.apiKey, "api-key", "k", "", "API key, falls back to "+apiKeyEnv)
	root.Flags().StringVarP(&opts.model, "model", "m", "gpt-4o-mini", "model used for generation")
	root.Flags().StringVar(&opts.baseURL, "base-url", session.DefaultBaseURL, "server base URL recorded in the document")
	root.Flags().BoolVar(&opts.yes, "yes", false, "skip all prompts and use defaults")
	root.Flags().BoolVar(&opts.copyDoc, "copy", false, "copy the generated document to the clipboard")

	root.AddCommand(newInitCmd())
	root.AddCommand(newHistoryCmd(&opts.cfgPath))
	root.AddCommand(newPreviewCmd(&opts.cfgPath))

	return root
}

func runGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level, opts.debug)

	// Credential precedence: flag, then environment, then config file.
	if opts.apiKey == "" {
		opts.apiKey = os.Getenv(apiKeyEnv)
	}
	if opts.apiKey != "" {
		cfg.LLM.APIKey = opts.apiKey
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.Model = opts.model
	}

	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	skipPrompts := opts.yes || !term.IsTerminal(int(os.Stdin.Fd()))

	supplied := session.Params{Model: cfg.LLM.Model}
	if len(args) == 1 {
		supplied.Target = args[0]
	}
	if cmd.Flags().Changed("output") {
		supplied.OutputPath = opts.output
	}
	if cmd.Flags().Changed("base-url") {
		supplied.BaseURL = opts.baseURL
	}

	ctrl := session.New(terminalPrompter{}, skipPrompts)
	ctrl.OnWarn = func(msg string) {
		fmt.Fprintln(out, color.YellowString("%s", msg))
	}

	params, err := ctrl.Resolve(supplied)
	if err != nil {
		if errors.Is(err, session.ErrAborted) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		return err
	}

	files, err := scanner.Collect(params.Target, scanner.Options{
		MaxFileBytes:     cfg.Scan.MaxFileBytes,
		RespectGitignore: cfg.Scan.RespectGitignore,
		Exclude:          cfg.Scan.Exclude,
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported source files found under %s", params.Target)
	}

	if cfg.Sanitize.Enabled {
		red := scanner.NewRedactor(cfg.Sanitize.Keys, cfg.Sanitize.Replacement)
		files = red.Apply(files)
	}

	contextBlob := generator.BuildContext(files)
	fmt.Fprintf(out, "Collected %d source files, about %d context tokens\n",
		len(files), generator.CountTokens(cfg.LLM.Model, contextBlob))

	client := &generator.Client{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Logger:      slog.Default(),
	}

	res, genErr := generator.Generate(client, generator.Request{
		BaseURL:    params.BaseURL,
		Context:    contextBlob,
		OutputPath: params.OutputPath,
	}, func(stage string) {
		fmt.Fprintln(out, stage)
	})

	if cfg.History.Enabled {
		recordRun(out, cfg, params, len(files), res, genErr)
	}
	if genErr != nil {
		return fmt.Errorf("generation failed: %s", generator.ExplainError(genErr))
	}

	fmt.Fprintln(out, color.GreenString("Wrote %s", params.OutputPath))
	fmt.Fprintf(out, "Tokens: %d prompt + %d completion = %d total, estimated cost $%.4f\n",
		res.Usage.PromptTokens, res.Usage.CompletionTokens, res.Usage.TotalTokens, res.Cost)

	if opts.copyDoc {
		if err := clipboard.WriteAll(res.Document); err != nil {
			fmt.Fprintln(out, color.YellowString("clipboard copy failed: %v", err))
		} else {
			fmt.Fprintln(out, "Copied document to clipboard.")
		}
	}

	if !skipPrompts {
		fmt.Fprintln(out, `Ask follow-up questions about the API (empty or "done" to finish).`)
		sess := qa.New(client, contextBlob, res.Document, out)
		return sess.Run(func() (string, error) {
			return ui.Input("Question", `type a question, or "done"`, "")
		})
	}
	return nil
}

// recordRun persists the outcome for the history command. Failures here
// only warn: the run itself already succeeded or failed on its own.
func recordRun(out io.Writer, cfg *config.Config, params session.Params, fileCount int, res *generator.Result, genErr error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		fmt.Fprintln(out, color.YellowString("history unavailable: %v", err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		fmt.Fprintln(out, color.YellowString("history unavailable: %v", err))
		return
	}
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintln(out, color.YellowString("history unavailable: %v", err))
		return
	}
	defer st.Close()

	run := &types.RunRecord{
		Target:     params.Target,
		OutputPath: params.OutputPath,
		BaseURL:    params.BaseURL,
		Model:      params.Model,
		FileCount:  fileCount,
		Status:     "ok",
	}
	if genErr != nil {
		run.Status = "failed"
		run.ErrorMsg = genErr.Error()
	} else {
		run.PromptTokens = res.Usage.PromptTokens
		run.CompletionTokens = res.Usage.CompletionTokens
		run.TotalTokens = res.Usage.TotalTokens
		run.Cost = res.Cost
		run.Document = res.Document
	}
	if err := st.SaveRun(run); err != nil {
		fmt.Fprintln(out, color.YellowString("could not record run: %v", err))
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize ~/.specgen directory and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := config.DefaultDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(baseDir, 0o755); err != nil {
				return err
			}

			cfgFile := filepath.Join(baseDir, "config.yaml")
			if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
				if err := os.WriteFile(cfgFile, []byte(defaultConfigContent), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created", cfgFile)
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", cfgFile)
			} else {
				return err
			}

			dbPath := filepath.Join(baseDir, "specgen.db")
			s, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "database ready", dbPath)
			fmt.Fprintln(cmd.OutOrStdout(), "set llm.api_key in", cfgFile, "or export "+apiKeyEnv)
			return nil
		},
	}
}

func newHistoryCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded generation runs",
	}
	cmd.AddCommand(newHistoryListCmd(cfgPath))
	cmd.AddCommand(newHistoryShowCmd(cfgPath))
	cmd.AddCommand(newHistoryClearCmd(cfgPath))
	return cmd
}

func openStore(cfgPath string) (*store.SQLiteStore, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(dbPath)
}

func newHistoryListCmd(cfgPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{Use: "list", Short: "List recorded runs", RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(*cfgPath)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-6s  %5d files  %7d tokens  $%.4f  %s  %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status, r.FileCount, r.TotalTokens, r.Cost, r.ID, r.Target)
		}
		return nil
	}}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list, 0 for all")
	return cmd
}

func newHistoryShowCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{Use: "show <id>", Short: "Show one run and its stored document", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(*cfgPath)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("run %s not found", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:      %s\n", run.ID)
		fmt.Fprintf(out, "created: %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "target:  %s\n", run.Target)
		fmt.Fprintf(out, "output:  %s\n", run.OutputPath)
		fmt.Fprintf(out, "model:   %s\n", run.Model)
		fmt.Fprintf(out, "status:  %s\n", run.Status)
		fmt.Fprintf(out, "tokens:  %d prompt + %d completion = %d total\n", run.PromptTokens, run.CompletionTokens, run.TotalTokens)
		fmt.Fprintf(out, "cost:    $%.4f\n", run.Cost)
		if run.ErrorMsg != "" {
			fmt.Fprintf(out, "error:   %s\n", run.ErrorMsg)
		}
		if run.Document != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, run.Document)
		}
		return nil
	}}
}

func newHistoryClearCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{Use: "clear", Short: "Delete all recorded runs", RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(*cfgPath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearRuns(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
		return nil
	}}
}

func newPreviewCmd(cfgPath *string) *cobra.Command {
	var output, host string
	var port int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the generated document with an HTML viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Preview.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Preview.Port = port
			}

			dbPath, err := cfg.DBPath()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return err
			}
			st, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := server.New(output, st)
			if err != nil {
				return err
			}
			addr := net.JoinHostPort(cfg.Preview.Host, strconv.Itoa(cfg.Preview.Port))
			fmt.Fprintf(cmd.OutOrStdout(), "preview on http://%s\n", addr)
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", session.DefaultOutputPath, "document file to serve")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "listen host")
	cmd.Flags().IntVar(&port, "port", 8686, "listen port")
	return cmd
}

// terminalPrompter adapts the Bubble Tea prompts to the session.Prompter
// contract.
type terminalPrompter struct{}

func (terminalPrompter) Confirm(question string, def bool) (bool, error) {
	ok, err := ui.Confirm(question, def)
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return false, session.ErrAborted
		}
		return false, err
	}
	return ok, nil
}

func (terminalPrompter) Input(label, placeholder, fallback string) (string, error) {
	value, err := ui.Input(label, placeholder, fallback)
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return "", session.ErrAborted
		}
		return "", err
	}
	return value, nil
}

func setupLogging(level string, debug bool) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if debug {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

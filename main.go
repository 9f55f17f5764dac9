package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ai_content_optimizer/config"
	"ai_content_optimizer/export"
	"ai_content_optimizer/form"
	"ai_content_optimizer/generator"
	"ai_content_optimizer/metrics"
	"ai_content_optimizer/options"
	"ai_content_optimizer/render"
	"ai_content_optimizer/server"
	"ai_content_optimizer/shell"
	"ai_content_optimizer/tui"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config file (.json, .yaml or .yml); optional")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config server_addr)")
	useTUI := flag.Bool("tui", false, "start interactive terminal UI")
	articleURL := flag.String("url", "", "article URL")
	lang := flag.String("lang", string(options.English), "output language: English or Vietnamese")
	tone := flag.String("tone", string(options.Professional), "tone: Professional, Objective, Humorous or Tense")
	lengths := flag.String("lengths", "80,170,300,600", "comma-separated summary lengths")
	out := flag.String("out", "", "write the result to a .md or .html file")
	copyField := flag.String("copy", "", "copy one field to the clipboard: summary:80, title:N, tag:N or tags")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	var logOut io.Writer = os.Stdout
	switch {
	case *useTUI && !*serve:
		logOut = io.Discard
	case !*serve:
		logOut = os.Stderr
	}
	log := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	llm, err := buildLLM(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	agent, err := generator.NewAgent(llm, cfg.LLM.Provider, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if err := runServer(ctx, cancel, agent, cfg, listen, log); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	sh := shell.New(agent, log)
	f, err := formFromFlags(*articleURL, *lang, *tone, *lengths)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sh.SetForm(f)

	if *useTUI {
		m := tui.NewModel(sh, systemClipboard{}, log, cfg.RequestTimeout.Std())
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *articleURL == "" {
		fmt.Fprintln(os.Stderr, "--url is required (or use --serve / --tui)")
		os.Exit(1)
	}
	if err := runOnce(ctx, sh, cfg.RequestTimeout.Std(), *out, *copyField, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cancel context.CancelFunc, gen shell.Generator, cfg config.Config, listen string, log *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheusRecorder(registry)
	if err != nil {
		return fmt.Errorf("setup prometheus recorder: %w", err)
	}

	srv, err := server.New(gen, log, server.Options{
		RequestTimeout: cfg.RequestTimeout.Std(),
		SessionTTL:     cfg.SessionTTL.Std(),
		Metrics:        recorder,
		MetricsHandler: metrics.Handler(registry),
	})
	if err != nil {
		return err
	}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case sig := <-c:
			log.InfoContext(ctx, "Shutdown signal is received",
				"signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return srv.Run(ctx, listen)
}

func runOnce(ctx context.Context, sh *shell.Shell, timeout time.Duration, out, copyField string, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	st, err := sh.Submit(ctx)
	if err != nil {
		return err
	}
	var done shell.Success
	switch st := st.(type) {
	case shell.Failed:
		return errors.New("Error: " + st.Message)
	case shell.Success:
		done = st
	default:
		return fmt.Errorf("unexpected state %T", st)
	}

	view := render.NewView(done.Result)
	fmt.Println(render.Terminal(view, 0))

	if out != "" {
		if err := writeExport(out, done); err != nil {
			return err
		}
		log.InfoContext(ctx, "Result is exported",
			"path", out)
	}

	if copyField != "" {
		text, err := pickField(view, copyField)
		if err != nil {
			return err
		}
		var ind render.CopyIndicator
		if err := ind.Copy(text, systemClipboard{}, time.Now()); err != nil {
			// clipboard failures are not surfaced
			log.WarnContext(ctx, "Failed to write clipboard",
				"error", err,
				"field", copyField)

			return nil
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", render.LabelCopied, copyField)
	}
	return nil
}

func formFromFlags(u, lang, tone, lengths string) (form.Form, error) {
	f := form.Default()
	f.URL = strings.TrimSpace(u)

	l, err := options.ParseLanguage(lang)
	if err != nil {
		return form.Form{}, err
	}
	t, err := options.ParseTone(tone)
	if err != nil {
		return form.Form{}, err
	}
	ls, err := options.ParseLengthList(lengths)
	if err != nil {
		return form.Form{}, err
	}
	f.Language = l
	f.Tone = t
	f.Lengths = form.Select(ls...)
	return f, nil
}

func writeExport(path string, done shell.Success) error {
	var content string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		doc, err := export.HTML(done.Request.URL, done.Result)
		if err != nil {
			return err
		}
		content = doc
	default:
		content = export.Markdown(done.Request.URL, done.Result)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// pickField resolves summary:80, title:N, tag:N (1-based) or tags.
func pickField(v render.View, field string) (string, error) {
	kind, arg, _ := strings.Cut(strings.ToLower(strings.TrimSpace(field)), ":")
	switch kind {
	case "tags":
		return strings.Join(v.Tags, " "), nil
	case "summary":
		l, err := options.ParseLength(arg)
		if err != nil {
			return "", err
		}
		for _, s := range v.Summaries {
			if s.Length == l {
				return s.Text, nil
			}
		}
		return "", fmt.Errorf("no %s summary in result", l.Label())
	case "title", "tag":
		items := v.Titles
		if kind == "tag" {
			items = v.Tags
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(items) {
			return "", fmt.Errorf("%s index must be between 1 and %d", kind, len(items))
		}
		return items[n-1], nil
	default:
		return "", fmt.Errorf("unknown copy field %q", field)
	}
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	settings := cfg.LLM.Settings()
	switch cfg.LLM.Provider {
	case generator.ProviderOpenAI:
		return generator.NewOpenAILLMFromConfig(settings)
	case generator.ProviderDeepSeek:
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case generator.ProviderGemini:
		return generator.NewGeminiLLMFromConfig(settings, &http.Client{Timeout: cfg.RequestTimeout.Std()})
	case generator.ProviderMock:
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/protodoc/protodoc/internal/config"
	"github.com/protodoc/protodoc/internal/docmodel"
	"github.com/protodoc/protodoc/internal/gitrepo"
	"github.com/protodoc/protodoc/internal/history"
	"github.com/protodoc/protodoc/internal/linkverify"
	"github.com/protodoc/protodoc/internal/logfields"
	"github.com/protodoc/protodoc/internal/metrics"
	"github.com/protodoc/protodoc/internal/preview"
	"github.com/protodoc/protodoc/internal/proto"
	"github.com/protodoc/protodoc/internal/render"
	"github.com/protodoc/protodoc/internal/workspace"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"protodoc.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Build struct {
		Update bool `short:"u" help:"Pull into an existing checkout instead of a fresh clone"`
	} `cmd:"" help:"Clone the API repository and generate the reference page"`

	Generate struct {
		Source string `arg:"" help:"Local directory containing proto definitions"`
		Output string `short:"o" help:"Output file (overrides docs.output)"`
	} `cmd:"" help:"Generate the reference page from a local proto directory"`

	Serve struct {
		Addr string `help:"Listen address (overrides serve.addr)"`
	} `cmd:"" help:"Build and serve the reference page with live rebuild"`

	History struct {
		Limit int `short:"n" help:"Number of builds to list" default:"20"`
	} `cmd:"" help:"List recent builds"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "build":
		err = withConfig(runBuild)
	case "generate <source>":
		err = withConfig(runGenerate)
	case "serve":
		err = withConfig(runServe)
	case "history":
		err = withConfig(runHistory)
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

func withConfig(run func(cfg *config.Config) error) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return run(cfg)
}

func runBuild(cfg *config.Config) (err error) {
	started := time.Now()
	recorder := metrics.Recorder(metrics.NoopRecorder{})
	defer func() { observeBuild(recorder, started, err) }()

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	wsManager := workspace.NewManager("")
	if err := wsManager.Create(); err != nil {
		return err
	}
	defer func() {
		if err := wsManager.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", logfields.Error(err))
		}
	}()

	checkout, err := syncRepository(cfg, wsManager.GetPath(), CLI.Build.Update, recorder)
	if err != nil {
		recordBuild(store, started, checkout.Commit, nil, history.OutcomeFailure, err)
		return err
	}

	page, set, err := generatePage(cfg, protoRoots(cfg, checkout.Path), recorder)
	if err != nil {
		recordBuild(store, started, checkout.Commit, nil, history.OutcomeFailure, err)
		return err
	}

	if err := os.WriteFile(cfg.Docs.Output, page, 0o644); err != nil {
		err = fmt.Errorf("failed to write output: %w", err)
		recordBuild(store, started, checkout.Commit, set, history.OutcomeFailure, err)
		return err
	}

	recordBuild(store, started, checkout.Commit, set, history.OutcomeSuccess, nil)
	slog.Info("Reference page generated",
		logfields.Path(cfg.Docs.Output),
		logfields.Commit(checkout.Commit),
		logfields.DurationMS(float64(time.Since(started).Milliseconds())))
	return nil
}

func runGenerate(cfg *config.Config) error {
	output := cfg.Docs.Output
	if CLI.Generate.Output != "" {
		output = CLI.Generate.Output
	}

	page, set, err := generatePage(cfg, []string{CLI.Generate.Source}, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, page, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	slog.Info("Reference page generated",
		logfields.Path(output),
		slog.Int("services", len(set.Services)),
		slog.Int("types", len(set.Types)))
	return nil
}

func runServe(cfg *config.Config) error {
	addr := cfg.Serve.Addr
	if CLI.Serve.Addr != "" {
		addr = CLI.Serve.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.Recorder(metrics.NoopRecorder{})
	var opts []preview.Option
	if cfg.Serve.Metrics {
		pr := metrics.NewPrometheusRecorder(nil)
		recorder = pr
		opts = append(opts, preview.WithRecorder(pr), preview.WithMetricsHandler(pr.Handler()))
	}
	server := preview.NewServer(addr, opts...)

	// The serve workspace is persistent: scheduled refreshes pull into the
	// existing checkout instead of re-cloning every cycle.
	wsManager := workspace.NewPersistentManager("", "protodoc-serve")
	if err := wsManager.Create(); err != nil {
		return err
	}

	checkout, err := syncRepository(cfg, wsManager.GetPath(), true, recorder)
	if err != nil {
		return err
	}
	roots := protoRoots(cfg, checkout.Path)

	rebuild := func(ctx context.Context) error {
		buildStart := time.Now()
		page, _, err := generatePage(cfg, roots, recorder)
		if err == nil {
			err = server.SetPage(page)
		}
		observeBuild(recorder, buildStart, err)
		return err
	}
	if err := rebuild(ctx); err != nil {
		return err
	}

	refresh := func(ctx context.Context) error {
		if _, err := syncRepository(cfg, wsManager.GetPath(), true, recorder); err != nil {
			return err
		}
		return rebuild(ctx)
	}

	if cfg.Serve.Watch {
		watcher, err := preview.NewWatcher(roots, rebuild)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = watcher.Stop() }()
	}

	if cfg.Serve.RefreshInterval != "" {
		interval, err := time.ParseDuration(cfg.Serve.RefreshInterval)
		if err != nil {
			return fmt.Errorf("invalid refresh interval %q: %w", cfg.Serve.RefreshInterval, err)
		}
		refresher, err := preview.NewRefresher(interval, refresh)
		if err != nil {
			return err
		}
		refresher.Start()
		defer func() { _ = refresher.Stop() }()
	}

	return server.Start(ctx)
}

func runHistory(cfg *config.Config) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(context.Background(), CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-7s  commit=%s  services=%d methods=%d types=%d  %s",
			rec.StartedAt.Format(time.RFC3339), rec.Outcome, shortCommit(rec.Commit),
			rec.Services, rec.Methods, rec.Types, rec.Duration.Round(time.Millisecond))
		if rec.Error != "" {
			line += "  error=" + rec.Error
		}
		fmt.Println(line)
	}
	return nil
}

// syncRepository clones or updates the configured repository and returns
// the checkout.
func syncRepository(cfg *config.Config, workspaceDir string, update bool, recorder metrics.Recorder) (gitrepo.Checkout, error) {
	client := gitrepo.NewClient(workspaceDir).WithBuildConfig(&cfg.Build)
	if err := client.EnsureWorkspace(); err != nil {
		return gitrepo.Checkout{}, err
	}

	slog.Info("Syncing repository",
		logfields.Repository(cfg.Repository.Name),
		logfields.URL(cfg.Repository.URL))

	start := time.Now()
	var checkout gitrepo.Checkout
	var err error
	if update {
		checkout, err = client.Update(cfg.Repository)
	} else {
		checkout, err = client.Clone(cfg.Repository)
	}
	recorder.ObserveCloneDuration(cfg.Repository.Name, time.Since(start), err == nil)
	return checkout, err
}

// observeBuild records the duration and outcome of one generation run.
func observeBuild(recorder metrics.Recorder, started time.Time, buildErr error) {
	recorder.ObserveBuildDuration(time.Since(started))
	if buildErr != nil {
		recorder.IncBuildOutcome(history.OutcomeFailure)
		return
	}
	recorder.IncBuildOutcome(history.OutcomeSuccess)
}

// protoRoots resolves the configured proto paths against the checkout.
func protoRoots(cfg *config.Config, checkoutPath string) []string {
	if len(cfg.Repository.ProtoPaths) == 0 {
		return []string{checkoutPath}
	}
	roots := make([]string, 0, len(cfg.Repository.ProtoPaths))
	for _, p := range cfg.Repository.ProtoPaths {
		roots = append(roots, filepath.Join(checkoutPath, p))
	}
	return roots
}

// generatePage runs the parse, model and render stages and verifies the
// result's internal links.
func generatePage(cfg *config.Config, roots []string, recorder metrics.Recorder) ([]byte, *docmodel.DocSet, error) {
	parseStart := time.Now()
	reg, err := proto.NewParser().ParseDirs(roots...)
	if err != nil {
		return nil, nil, err
	}
	recorder.ObserveStageDuration("parse", time.Since(parseStart))

	if len(reg.Services) == 0 {
		slog.Warn("No services found in proto sources", logfields.Stage("parse"))
	}

	renderStart := time.Now()
	set := docmodel.Build(reg, docmodel.Options{ExcludeTypes: cfg.Docs.ExcludeTypes})
	page, err := render.New(cfg.Docs, set).Page()
	if err != nil {
		return nil, nil, err
	}
	recorder.ObserveStageDuration("render", time.Since(renderStart))

	dangling, err := linkverify.Verify(bytes.NewReader(page))
	if err != nil {
		return nil, nil, err
	}
	for _, d := range dangling {
		slog.Warn("Dangling sidebar anchor", slog.String("anchor", d.Anchor), slog.String("text", d.Text))
	}

	slog.Info("Documentation model built",
		slog.Int("services", len(set.Services)),
		slog.Int("methods", reg.MethodCount()),
		slog.Int("types", len(set.Types)))
	return page, set, nil
}

func recordBuild(store *history.Store, started time.Time, commit string, set *docmodel.DocSet, outcome string, buildErr error) {
	rec := history.Record{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Commit:     commit,
		Outcome:    outcome,
		Duration:   time.Since(started),
	}
	if set != nil {
		rec.Services = len(set.Services)
		rec.Methods = set.Registry().MethodCount()
		rec.Types = len(set.Types)
	}
	if buildErr != nil {
		rec.Error = buildErr.Error()
	}
	stored, err := store.Append(context.Background(), rec)
	if err != nil {
		slog.Warn("Failed to record build history", logfields.Error(err))
		return
	}
	slog.Debug("Build recorded", logfields.BuildID(stored.ID.String()), slog.String("outcome", outcome))
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	if commit == "" {
		return "-"
	}
	return commit
}

// Package app wires configuration, logging, telemetry, storage and the
// algorithm backend into the editor and the headless commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DrSkyle/routeviz/pkg/algo"
	"github.com/DrSkyle/routeviz/pkg/config"
	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/history"
	"github.com/DrSkyle/routeviz/pkg/policy"
	"github.com/DrSkyle/routeviz/pkg/scenario"
	"github.com/DrSkyle/routeviz/pkg/session"
	"github.com/DrSkyle/routeviz/pkg/storage"
	"github.com/DrSkyle/routeviz/pkg/telemetry"
	"github.com/DrSkyle/routeviz/pkg/tui"
	"github.com/DrSkyle/routeviz/pkg/version"
)

// App holds the long-lived collaborators. Close it when done.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Client    algo.Client
	Policy    *policy.Engine
	Scenarios *scenario.Store

	blobs    storage.BlobStore
	shutdown func(context.Context) error
}

// Option overrides a collaborator.
type Option func(*App)

// WithLogger replaces the logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.Logger = l }
}

// WithClient replaces the HTTP algorithm client.
func WithClient(c algo.Client) Option {
	return func(a *App) { a.Client = c }
}

// WithBlobStore replaces the store opened from scenarios.url.
func WithBlobStore(b storage.BlobStore) Option {
	return func(a *App) { a.blobs = b }
}

// NewLogger builds the JSON logger used everywhere.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenLogFile opens path for appending, creating its directory.
func OpenLogFile(path string) (*os.File, error) {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// New initializes the App from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = NewLogger(os.Stderr, cfg.Verbose)
	}
	slog.SetDefault(a.Logger)

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    version.AppName,
		ServiceVersion: version.Current,
		Endpoint:       cfg.OTelEndpoint,
	})
	if err != nil {
		a.Logger.Warn("Telemetry failed", "error", err)
		shutdown = func(context.Context) error { return nil }
	}
	a.shutdown = shutdown

	if a.Client == nil {
		a.Client = algo.NewHTTPClient(cfg.Backend.URL, cfg.Backend.Timeout, algo.WithClientLogger(a.Logger))
	}

	a.Policy, err = loadPolicy(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	if a.blobs == nil {
		sopts := cfg.StorageOptions()
		sopts.Logger = a.Logger
		a.blobs, err = storage.Open(ctx, cfg.Scenarios.URL, sopts)
		if err != nil {
			return nil, err
		}
	}
	a.Scenarios = scenario.NewStore(a.blobs)

	a.Logger.Debug("app initialized",
		"backend", cfg.Backend.URL,
		"scenarios", cfg.Scenarios.URL,
		"rules", len(a.Policy.Rules()),
	)
	return a, nil
}

func loadPolicy(path string) (*policy.Engine, error) {
	if path == "" {
		return policy.NewDefaultEngine()
	}
	rules, err := policy.LoadRules(expandHome(path))
	if err != nil {
		return nil, err
	}
	e, err := policy.NewEngine()
	if err != nil {
		return nil, err
	}
	if err := e.Compile(rules); err != nil {
		return nil, err
	}
	return e, nil
}

// Close releases storage and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.blobs != nil {
		errs = append(errs, a.blobs.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Coordinator builds a coordinator whose graph starts as initial. The
// starting graph is not undoable.
func (a *App) Coordinator(initial graph.Snapshot) (*session.Coordinator, error) {
	lock, err := history.ParseLockPolicy(a.Config.Playback.LockPolicy)
	if err != nil {
		return nil, err
	}
	store := graph.NewMemoryStore(graph.WithNodeSize(a.Config.Canvas.NodeSize))
	store.ReplaceAll(initial.Nodes, initial.Edges)

	return session.New(store,
		session.WithLogger(a.Logger),
		session.WithPolicy(a.Policy),
		session.WithLockPolicy(lock),
		session.WithRandomOptions(a.Config.RandomOptions()),
		session.WithLimits(session.Limits{
			MaxNodes: a.Config.Limits.MaxNodes,
			MaxEdges: a.Config.Limits.MaxEdges,
		}),
	)
}

// Canvas is the world size HCL files see.
func (a *App) Canvas() scenario.Canvas {
	return scenario.Canvas{
		Width:    a.Config.Canvas.Width,
		Height:   a.Config.Canvas.Height,
		NodeSize: a.Config.Canvas.NodeSize,
	}
}

// Seed is the graph shown when nothing else is requested.
func (a *App) Seed() *scenario.Scenario {
	return scenario.FromGraph("seed", graph.DefaultScenario(a.Config.Canvas.NodeSize))
}

// Resolve finds a graph by stored name or file path. A file ending in .hcl
// is imported, any other file is read as YAML. With neither set the seed
// graph is returned.
func (a *App) Resolve(ctx context.Context, name, file string) (*scenario.Scenario, error) {
	switch {
	case name != "" && file != "":
		return nil, errors.New("choose either a scenario name or a file, not both")
	case name != "":
		return a.Scenarios.Load(ctx, name)
	case file != "":
		return ReadFile(file, a.Canvas())
	}
	return a.Seed(), nil
}

// ReadFile reads a scenario from disk.
func ReadFile(path string, c scenario.Canvas) (*scenario.Scenario, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return scenario.ImportHCLFile(path, c)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := scenario.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// RunTUI runs the interactive editor until the user quits.
func (a *App) RunTUI(ctx context.Context, initial *scenario.Scenario) error {
	if initial == nil {
		initial = a.Seed()
	}
	coord, err := a.Coordinator(initial.Graph())
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.Options{
		Coordinator: coord,
		Client:      a.Client,
		Scenarios:   a.Scenarios,
		Logger:      a.Logger,
		Width:       a.Config.Canvas.Width,
		Height:      a.Config.Canvas.Height,
		Timeout:     a.Config.Backend.Timeout,
		Interval:    a.Config.Playback.Interval,
		Start:       initial.Start,
		End:         initial.End,
	})
	a.Logger.Info("editor started", "scenario", initial.Name, "nodes", len(initial.Nodes))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

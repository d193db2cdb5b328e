package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/weft/cmd/weft/internal/config"
	"github.com/go-drift/weft/cmd/weft/internal/demo"
	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/engine"
	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/rendering"
	"github.com/go-drift/weft/pkg/resource"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Render the demo application headlessly",
		Long: `Render the demo application and print every frame's draw operations.

The first frame is rendered immediately. Each --tap presses the center of
the element with that user id and renders another frame. Frames beyond the
taps are rendered until --frames is reached, and pending async work is
given up to --settle to finish.

Flags:
  --frames N          Minimum number of frames to render (default 1)
  --tap ID            Tap an element by user id (repeatable), e.g.
                      increment, load, rotate, item:alpha
  --size WxH          Override the window size
  --tree              Print the shadow and element trees after each frame
  --no-ops            Do not print draw operations
  --settle DURATION   Wait for async work and image loads (default 1s)
  --load-delay DUR    Latency of the demo's simulated load (default 100ms)
  --trace FILE        Write the frame timeline as JSON
  --debug-addr ADDR   Serve the inspector on ADDR and keep running
  --watch             Re-render when weft.yaml or weft.toml changes
  --verbose           Log at debug level`,
		Usage: "weft run [--frames N] [--tap ID]... [--size WxH] [--tree] [--watch] [--debug-addr ADDR] [--trace FILE]",
		Run:   runRun,
	})
}

type runOptions struct {
	frames    int
	taps      []string
	size      graphics.Size
	tree      bool
	noOps     bool
	settle    time.Duration
	loadDelay time.Duration
	tracePath string
	debugAddr string
	watch     bool
	verbose   bool
}

func defaultRunOptions() runOptions {
	return runOptions{frames: 1, settle: time.Second, loadDelay: 100 * time.Millisecond}
}

func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	cfg, err := resolveProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runApp(ctx, cfg, opts, stdout, os.Stderr)
}

func parseRunArgs(args []string) (runOptions, error) {
	opts := defaultRunOptions()
	value := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[i+1], nil
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		flag, inline, hasInline := strings.Cut(arg, "=")
		next := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			v, err := value(i, flag)
			i++
			return v, err
		}

		var err error
		var v string
		switch flag {
		case "--tree":
			opts.tree = true
		case "--no-ops":
			opts.noOps = true
		case "--watch":
			opts.watch = true
		case "--verbose":
			opts.verbose = true
		case "--frames":
			if v, err = next(); err == nil {
				opts.frames, err = strconv.Atoi(v)
				if err == nil && opts.frames < 1 {
					err = fmt.Errorf("--frames must be at least 1")
				}
			}
		case "--tap":
			if v, err = next(); err == nil {
				opts.taps = append(opts.taps, v)
			}
		case "--size":
			if v, err = next(); err == nil {
				opts.size, err = parseSize(v)
			}
		case "--settle":
			if v, err = next(); err == nil {
				opts.settle, err = time.ParseDuration(v)
			}
		case "--load-delay":
			if v, err = next(); err == nil {
				opts.loadDelay, err = time.ParseDuration(v)
			}
		case "--trace":
			opts.tracePath, err = next()
		case "--debug-addr":
			opts.debugAddr, err = next()
		default:
			return opts, fmt.Errorf("unknown flag %q", arg)
		}
		if err != nil {
			return opts, fmt.Errorf("%s: %w", flag, err)
		}
	}
	return opts, nil
}

func parseSize(s string) (graphics.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return graphics.Size{}, fmt.Errorf("size %q is not WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return graphics.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return graphics.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return graphics.Size{}, fmt.Errorf("size %q must be positive", s)
	}
	return graphics.Size{Width: float32(w), Height: float32(h)}, nil
}

// session is one weft run invocation.
type session struct {
	cfg       *config.Resolved
	opts      runOptions
	out       io.Writer
	logger    *slog.Logger
	app       *engine.App
	resources *resource.Manager
}

func newSession(cfg *config.Resolved, opts runOptions, out, logOut io.Writer) *session {
	level := cfg.LogLevel
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	wefterrors.SetHandler(&wefterrors.LogHandler{Logger: logger, Verbose: opts.verbose})

	s := &session{cfg: cfg, opts: opts, out: out, logger: logger}
	engineOpts := []engine.Option{
		engine.WithSize(s.size()),
		engine.WithLogger(logger),
	}
	if !opts.noOps {
		engineOpts = append(engineOpts, engine.WithRenderer(rendering.NewTextRenderer(out)))
	}
	if opts.tree {
		engineOpts = append(engineOpts, engine.WithTreeDump(out))
	}
	if cfg.AssetsDir != "" {
		s.resources = resource.NewManager(os.DirFS(cfg.AssetsDir), logger)
		engineOpts = append(engineOpts, engine.WithResources(s.resources))
	}
	if opts.tracePath != "" || s.debugAddr() != "" {
		engineOpts = append(engineOpts, engine.WithFrameTrace(cfg.TraceSize, time.Duration(cfg.SlowFrame)*time.Millisecond))
	}
	s.app = engine.New(s.root(), engineOpts...)
	return s
}

func (s *session) size() graphics.Size {
	if !s.opts.size.IsZero() {
		return s.opts.size
	}
	return graphics.Size{Width: float32(s.cfg.Width), Height: float32(s.cfg.Height)}
}

func (s *session) debugAddr() string {
	if s.opts.debugAddr != "" {
		return s.opts.debugAddr
	}
	return s.cfg.DebugAddr
}

func (s *session) root() core.Spec {
	return demo.Root(demo.Props{
		Title: s.cfg.AppName,
		Items: s.cfg.Items,
		Image: s.cfg.Image,
		Delay: s.opts.loadDelay,
	})
}

// runApp renders the demo according to opts. With --watch or an inspector
// address it keeps rendering until ctx is done.
func runApp(ctx context.Context, cfg *config.Resolved, opts runOptions, out, logOut io.Writer) error {
	s := newSession(cfg, opts, out, logOut)
	defer s.app.Close()

	if err := s.app.Render(); err != nil {
		return err
	}
	frames := 1
	for _, id := range opts.taps {
		if err := tapByID(s.app, id); err != nil {
			return err
		}
		if err := s.app.Render(); err != nil {
			return err
		}
		frames++
	}
	for ; frames < opts.frames; frames++ {
		if err := s.app.Render(); err != nil {
			return err
		}
	}
	if err := s.settle(ctx, opts.settle); err != nil {
		s.logger.Warn("app did not settle", "err", err)
	}

	if addr := s.debugAddr(); addr != "" {
		inspector := engine.NewInspector(s.app)
		bound, err := inspector.Start(addr)
		if err != nil {
			return err
		}
		defer inspector.Stop()
		fmt.Fprintf(out, "# inspector on http://%s\n", bound)
	}

	if opts.watch || s.debugAddr() != "" {
		if err := s.loop(ctx); err != nil {
			return err
		}
	}

	if opts.tracePath != "" {
		if err := writeTrace(opts.tracePath, s.app.FrameTimeline()); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "# %d frames, %d state entries\n", s.app.Frames(), s.app.State().Len())
	return nil
}

// settle renders while frames are requested until the app has no pending
// async work or image loads, or timeout passes.
func (s *session) settle(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.app.NeedsFrame() {
			if err := s.app.Render(); err != nil {
				return err
			}
			continue
		}
		if s.app.Settled() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	return fmt.Errorf("still busy after %v", timeout)
}

// loop renders requested frames and applies project file changes until
// ctx is done.
func (s *session) loop(ctx context.Context) error {
	var changes <-chan struct{}
	if s.opts.watch {
		var err error
		changes, err = watchConfig(ctx, s.cfg.Root, s.logger)
		if err != nil {
			return err
		}
		s.logger.Info("watching project file", "dir", s.cfg.Root)
	}

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			s.reload()
		case <-ticker.C:
			if s.app.NeedsFrame() {
				// Failures are reported through the error handler; keep serving.
				_ = s.app.Render()
			}
		}
	}
}

// reload re-resolves the project configuration and applies it to the
// running app. Component state survives wherever the new spec pairs with
// the current tree.
func (s *session) reload() {
	cfg, err := config.Resolve(s.cfg.Root)
	if err != nil {
		s.logger.Error("reload failed", "err", err)
		return
	}
	s.cfg.AppName, s.cfg.Items, s.cfg.Width, s.cfg.Height = cfg.AppName, cfg.Items, cfg.Width, cfg.Height
	if cfg.AssetsDir == s.cfg.AssetsDir {
		s.cfg.Image = cfg.Image
	}
	s.app.Resize(s.size())
	s.app.SetRoot(s.root())
	s.logger.Info("reloaded", "file", cfg.ConfigFile)
}

func tapByID(app *engine.App, id string) error {
	root := app.Root()
	if root == nil {
		return fmt.Errorf("tap %q: no frame rendered", id)
	}
	el := core.FindElement(root, func(e core.Element) bool { return e.Data().UserID == id })
	if el == nil {
		return fmt.Errorf("tap %q: no element with that id", id)
	}
	b := el.Data().Bounds()
	if !app.PointerDown(b.X+b.Width/2, b.Y+b.Height/2) {
		return fmt.Errorf("tap %q: no component handled it", id)
	}
	return nil
}

func writeTrace(path string, timeline engine.FrameTimeline) error {
	data, err := json.MarshalIndent(timeline, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

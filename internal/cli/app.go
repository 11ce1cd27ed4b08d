package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"github.com/zoobzio/detent"
	"github.com/zoobzio/detent/internal/automation"
	"github.com/zoobzio/detent/internal/config"
	"github.com/zoobzio/detent/internal/logging"
	"github.com/zoobzio/detent/pkg/memstore"
	"github.com/zoobzio/detent/pkg/preset"
	"github.com/zoobzio/detent/pkg/redis"
	"github.com/zoobzio/detent/pkg/rules"
	"github.com/zoobzio/detent/pkg/session"
	"github.com/zoobzio/detent/pkg/tui"
)

// binding is one configured parameter with everything attached to it.
type binding struct {
	param     config.Parameter
	group     *detent.Group
	confirmer *detent.Confirmer
	widgets   []*tui.Slider
	attached  []*detent.SliderAttachment
}

// App wires a configuration into a running demo: a memstore, one group and
// confirmer per parameter, two terminal sliders per group and the optional
// producers.
type App struct {
	cfg    config.Config
	log    *logging.Logger
	unhook func()

	store      *memstore.Store
	dispatcher *tui.Dispatcher
	bindings   []*binding
	model      *tui.Model

	sessions *session.DB
	client   *goredis.Client
	surface  *redis.Surface
	follower *preset.Follower
	lfo      *automation.LFO

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp builds the demo from cfg. Nothing runs until Start.
func NewApp(cfg config.Config, log *logging.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	a.unhook = logging.Bridge(log, logging.AllSignals(), logging.PresetFields, logging.SurfaceFields)

	store, err := memstore.New(cfg.Definitions()...)
	if err != nil {
		a.unhook()
		return nil, fmt.Errorf("create store: %w", err)
	}
	a.store = store

	if err := a.restoreSession(); err != nil {
		a.unhook()
		return nil, err
	}

	a.dispatcher = tui.NewDispatcher()
	ui := a.dispatcher.Context()

	var sliders []*tui.Slider
	for _, p := range cfg.Parameters {
		b, err := a.bind(ui, p)
		if err != nil {
			a.closeGroups()
			a.closeSessions()
			a.unhook()
			return nil, err
		}
		a.bindings = append(a.bindings, b)
		sliders = append(sliders, b.widgets...)
	}

	a.model = tui.NewModel(a.dispatcher, cfg.UI.Title, sliders...).Status(a.status)
	return a, nil
}

// bind creates the group, confirmer and sliders for p on the UI context.
func (a *App) bind(ui context.Context, p config.Parameter) (*binding, error) {
	compiled, err := rules.CompileAll(p.Rules)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", p.ID, err)
	}

	g, err := detent.NewGroup(a.store, p.ID, a.dispatcher)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", p.ID, err)
	}

	middleware := []detent.Option{detent.WithMiddleware(detent.UseClamp())}
	if p.MaxStep > 0 {
		middleware = append(middleware, detent.WithMiddleware(detent.UseMaxStep(p.MaxStep)))
	}
	if len(compiled) > 0 {
		middleware = append(middleware, detent.WithMiddleware(rules.Use(compiled...)))
	}
	middleware = append(middleware, detent.WithMiddleware(detent.UseSnap()))

	b := &binding{
		param:     p,
		group:     g,
		confirmer: detent.NewConfirmer(g, middleware...).ErrorHistorySize(8),
	}

	name := p.Definition().Name
	coarse := tui.NewSlider(name).Step(a.cfg.UI.Step).Width(a.cfg.UI.Width)
	fine := tui.NewSlider(name+" fine").Step(a.cfg.UI.Step/10).Width(a.cfg.UI.Width)
	b.widgets = []*tui.Slider{coarse, fine}
	b.attached = []*detent.SliderAttachment{
		detent.NewSliderAttachment(ui, g, coarse),
		detent.NewSliderAttachment(ui, g, fine),
	}
	return b, nil
}

func (a *App) restoreSession() error {
	if a.cfg.Session.Path == "" {
		return nil
	}
	db, err := session.Open(a.cfg.Session.Path)
	if err != nil {
		return err
	}
	a.sessions = db

	if !a.cfg.Session.Restore {
		return nil
	}
	n, err := db.Restore(context.Background(), a.cfg.Session.Name, a.store)
	switch {
	case errors.Is(err, session.ErrNoSession):
		a.log.Info("no saved session", "session", a.cfg.Session.Name)
	case err != nil:
		return fmt.Errorf("restore session: %w", err)
	default:
		a.log.Info("session restored", "session", a.cfg.Session.Name, "values", n)
	}
	return nil
}

// Model returns the bubbletea model to run.
func (a *App) Model() *tui.Model {
	return a.model
}

// Store returns the parameter store.
func (a *App) Store() *memstore.Store {
	return a.store
}

// Dispatcher returns the UI dispatcher.
func (a *App) Dispatcher() *tui.Dispatcher {
	return a.dispatcher
}

// Group returns the group bound to id.
func (a *App) Group(id string) *detent.Group {
	for _, b := range a.bindings {
		if b.param.ID == id {
			return b.group
		}
	}
	return nil
}

// Start binds the program and starts the configured producers. Producer
// failures are logged and do not stop the demo.
func (a *App) Start(ctx context.Context, program tui.Sender) error {
	ctx, a.cancel = context.WithCancel(ctx)
	a.dispatcher.Bind(program)

	if err := a.startSurface(ctx); err != nil {
		a.log.WithComponent("redis").Error("surface not started", "error", err)
	}
	a.startFollower(ctx)
	a.startAutomation(ctx)
	return nil
}

func (a *App) redisClient() *goredis.Client {
	if a.client == nil {
		a.client = goredis.NewClient(&goredis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
	}
	return a.client
}

func (a *App) startSurface(ctx context.Context) error {
	if !a.cfg.Redis.Enabled {
		return nil
	}
	g := a.Group(a.cfg.Redis.Parameter)
	if g == nil {
		return fmt.Errorf("unknown parameter %q", a.cfg.Redis.Parameter)
	}
	surface := redis.NewSurface(a.redisClient(), g)
	if err := surface.Start(ctx); err != nil {
		return err
	}
	a.surface = surface
	return nil
}

func (a *App) startFollower(ctx context.Context) {
	var watcher preset.Watcher
	codec := preset.Codec(preset.JSONCodec{})
	switch {
	case a.cfg.Preset.Path != "":
		watcher = preset.NewFileWatcher(a.cfg.Preset.Path)
		codec = preset.CodecFor(a.cfg.Preset.Path)
	case a.cfg.Preset.RedisKey != "":
		watcher = redis.NewKeyWatcher(a.redisClient(), a.cfg.Preset.RedisKey)
	default:
		return
	}

	a.follower = preset.New(watcher, a.store).Codec(codec).Debounce(a.cfg.Preset.Debounce)
	log := a.log.WithComponent("preset")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.follower.Start(ctx); err != nil && ctx.Err() == nil {
			log.Warn("initial preset not applied", "error", err)
		}
	}()
}

func (a *App) startAutomation(ctx context.Context) {
	if !a.cfg.Automation.Enabled {
		return
	}
	g := a.Group(a.cfg.Automation.Parameter)
	if g == nil {
		return
	}
	a.lfo = automation.New(g).
		Rate(a.cfg.Automation.Rate).
		Period(a.cfg.Automation.Period).
		Depth(a.cfg.Automation.Depth)
	log := a.log.WithComponent("automation")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.lfo.Run(ctx); err != nil {
			log.Error("automation stopped", "error", err)
		}
	}()
}

// status renders one line for the model footer. It runs on the UI context.
func (a *App) status() string {
	var parts []string
	if a.follower != nil {
		parts = append(parts, "preset "+a.follower.State().String())
	}
	if a.lfo != nil {
		parts = append(parts, fmt.Sprintf("automation %d ticks", a.lfo.Ticks()))
	}
	for _, b := range a.bindings {
		if err := b.confirmer.LastError(); err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", b.param.ID, err))
		}
	}
	return strings.Join(parts, " · ")
}

// Shutdown stops the producers, saves the session and releases
// everything. It is safe to call once after the program exits.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.surface != nil {
		a.surface.Close(ctx)
	}
	a.wg.Wait()
	a.dispatcher.Close()
	a.closeGroups()

	var errs []error
	if a.sessions != nil && a.cfg.Session.Save {
		n, err := a.sessions.Save(ctx, a.cfg.Session.Name, a.store)
		if err != nil {
			errs = append(errs, fmt.Errorf("save session: %w", err))
		} else {
			a.log.Info("session saved", "session", a.cfg.Session.Name, "values", n)
		}
	}
	if err := a.closeSessions(); err != nil {
		errs = append(errs, err)
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.unhook()
	return errors.Join(errs...)
}

// closeGroups runs once the program has exited, when nothing else is on
// the UI context.
func (a *App) closeGroups() {
	for _, b := range a.bindings {
		for _, s := range b.attached {
			s.Close()
		}
		_ = b.group.Close()
	}
}

func (a *App) closeSessions() error {
	if a.sessions == nil {
		return nil
	}
	err := a.sessions.Close()
	a.sessions = nil
	return err
}

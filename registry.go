package blitcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"strconv"
)

// Placeholder attribute names.
const (
	AttrSrc         = "src"
	AttrSpeed       = "speed"
	AttrRepeatDelay = "repeatdelay"
)

// Placeholder is one host slot for an animation, described by attributes
// (src, speed, repeatdelay). A Registry attaches a Controller to it once the
// data resolves.
type Placeholder struct {
	Attrs map[string]string

	prepared   bool
	controller *Controller
	err        error
}

// NewPlaceholder creates a placeholder with the given attributes.
func NewPlaceholder(attrs map[string]string) *Placeholder {
	return &Placeholder{Attrs: attrs}
}

// Attr returns an attribute value.
func (p *Placeholder) Attr(name string) (string, bool) {
	v, ok := p.Attrs[name]
	return v, ok
}

// Src returns the source key, or "" when absent.
func (p *Placeholder) Src() string {
	return p.Attrs[AttrSrc]
}

// Prepared reports whether a Registry has processed the placeholder.
func (p *Placeholder) Prepared() bool {
	return p.prepared
}

// Controller returns the attached controller, or nil when preparation failed
// or is still resolving.
func (p *Placeholder) Controller() *Controller {
	return p.controller
}

// Err returns the error that stopped preparation, if any.
func (p *Placeholder) Err() error {
	return p.err
}

// Page is an ordered set of placeholders.
type Page struct {
	Placeholders []*Placeholder
}

// Controllers returns the controllers attached so far, in page order.
func (pg *Page) Controllers() []*Controller {
	var out []*Controller
	for _, p := range pg.Placeholders {
		if c := p.Controller(); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first placeholder with the given source key.
func (pg *Page) Find(src string) *Placeholder {
	for _, p := range pg.Placeholders {
		if p.Src() == src {
			return p
		}
	}
	return nil
}

// RegistryConfig configures a Registry. Zero fields take defaults.
type RegistryConfig struct {
	// Store is consulted before fetching. A new empty store when nil.
	Store *DataStore
	// Fetcher loads companion data and atlas images. Without one, only
	// stored data can resolve and atlases cannot load.
	Fetcher Fetcher
	// Scheduler drives every controller. A new Clock when nil.
	Scheduler Scheduler
	// Paths maps source keys to resources. DefaultPaths when empty.
	Paths Paths
	// Renderer selects the BlitRenderer variant.
	Renderer RendererKind
	// Logger receives per-placeholder reports. log.Default() when nil.
	Logger *log.Logger
	// Context bounds fetches. context.Background() when nil.
	Context context.Context
}

// Registry discovers placeholders, resolves their timelines from the store
// or by fetching, and constructs one Controller per placeholder. All methods
// must be called from the scheduler goroutine.
type Registry struct {
	store    *DataStore
	fetcher  Fetcher
	sched    Scheduler
	paths    Paths
	renderer RendererKind
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	controllers []*Controller
	closed      bool
}

// NewRegistry creates a registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	r := &Registry{
		store:    cfg.Store,
		fetcher:  cfg.Fetcher,
		sched:    cfg.Scheduler,
		paths:    cfg.Paths,
		renderer: cfg.Renderer,
		logger:   cfg.Logger,
	}
	if r.store == nil {
		r.store = NewDataStore()
	}
	if r.sched == nil {
		r.sched = NewClock()
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	return r
}

// Store returns the registry's data store.
func (r *Registry) Store() *DataStore {
	return r.store
}

// Scheduler returns the scheduler driving the registry's controllers.
func (r *Registry) Scheduler() Scheduler {
	return r.sched
}

// Controllers returns every controller constructed so far.
func (r *Registry) Controllers() []*Controller {
	return r.controllers
}

// PrepareAll prepares every placeholder of the page. Safe to call repeatedly.
func (r *Registry) PrepareAll(page *Page) {
	for _, p := range page.Placeholders {
		r.Prepare(p)
	}
}

// Prepare resolves one placeholder. A placeholder is only ever processed
// once; later calls return immediately. Failures are logged and recorded on
// the placeholder. A data failure leaves it without a controller; an atlas
// failure leaves the attached controller idle.
func (r *Registry) Prepare(p *Placeholder) {
	if p.prepared || r.closed {
		return
	}
	p.prepared = true

	src := p.Src()
	if src == "" {
		r.fail(p, ErrMissingSource)
		return
	}
	cfg := r.placeholderConfig(p, src)

	if tl, ok := r.store.Lookup(src); ok {
		r.build(p, src, tl, cfg)
		return
	}

	r.logger.Printf("blitcast: <animation src=%q> data not embedded - embed for better performance", src)
	if r.fetcher == nil {
		r.fail(p, fmt.Errorf("%w: %q: not embedded and no fetcher", ErrDataNotFound, src))
		return
	}

	dataPath := r.paths.DataPath(src)
	fetcher, ctx := r.fetcher, r.ctx
	r.sched.Go(func() func() {
		data, err := fetcher.Fetch(ctx, dataPath)
		var records map[string]*Timeline
		if err == nil {
			records, err = ParseBundle(data)
		}
		return func() {
			if r.closed {
				return
			}
			// Merge whatever parsed, then look again exactly once.
			r.store.Merge(records)
			tl, ok := r.store.Lookup(src)
			if !ok {
				if err != nil {
					r.fail(p, fmt.Errorf("%w: %q: %w", ErrDataNotFound, src, err))
				} else {
					r.fail(p, fmt.Errorf("%w: %q: missing after fetching %s", ErrDataNotFound, src, dataPath))
				}
				return
			}
			if err != nil {
				r.logger.Printf("blitcast: <animation src=%q> %s: %v", src, dataPath, err)
			}
			r.build(p, src, tl, cfg)
		}
	})
}

// placeholderConfig reads speed and repeatdelay. Bad values are logged and
// replaced by the defaults.
func (r *Registry) placeholderConfig(p *Placeholder, src string) Config {
	cfg := DefaultConfig()
	if v, ok := p.Attr(AttrSpeed); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f > 0) || math.IsInf(f, 0) {
			r.logger.Printf("blitcast: <animation src=%q> invalid speed %q, using %v", src, v, DefaultTimescale)
		} else {
			cfg.Timescale = f
		}
	}
	if v, ok := p.Attr(AttrRepeatDelay); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f >= 0) || math.IsInf(f, 0) {
			r.logger.Printf("blitcast: <animation src=%q> invalid repeatdelay %q, using %v", src, v, DefaultRepeatDelay)
		} else {
			cfg.RepeatDelay = f
		}
	}
	return cfg
}

// build selects a renderer, attaches a controller and starts loading the
// atlas. Playback begins only when the atlas has loaded and validated.
func (r *Registry) build(p *Placeholder, src string, tl *Timeline, cfg Config) {
	atlas := NewSpriteAtlas(r.paths.ImagePath(src))
	renderer := SelectRenderer(r.renderer, atlas, tl.Width, tl.Height)
	c := NewController(src, tl, renderer, r.sched, cfg)
	p.controller = c
	r.controllers = append(r.controllers, c)
	debugf("%s (%s) %T %dx%d, %d frames", src, c.ID, renderer, tl.Width, tl.Height, tl.NumFrames())

	if r.fetcher == nil {
		r.fail(p, fmt.Errorf("%w: %s: no fetcher", ErrAtlasLoad, atlas.Source))
		return
	}
	fetcher, ctx := r.fetcher, r.ctx
	r.sched.Go(func() func() {
		var img image.Image
		data, err := fetcher.Fetch(ctx, atlas.Source)
		if err == nil {
			img, err = decodeImage(atlas.Source, bytes.NewReader(data))
		} else {
			err = fmt.Errorf("%w: %w", ErrAtlasLoad, err)
		}
		return func() {
			if r.closed || c.Disposed() {
				return
			}
			if err == nil {
				err = atlas.Load(img)
			}
			if err == nil {
				err = atlas.Validate(tl)
			}
			if err != nil {
				r.fail(p, err)
				return
			}
			c.begin()
		}
	})
}

func (r *Registry) fail(p *Placeholder, err error) {
	p.err = err
	src := p.Src()
	switch {
	case errors.Is(err, ErrMissingSource):
		r.logger.Printf("blitcast: <animation> has no src")
	default:
		r.logger.Printf("blitcast: <animation src=%q> %v", src, err)
	}
}

// Close disposes every controller and cancels in-flight fetches. Pending
// continuations become no-ops.
func (r *Registry) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.cancel()
	for _, c := range r.controllers {
		c.Dispose()
	}
}

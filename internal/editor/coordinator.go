// Package editor coordinates one editing session: the settings being edited,
// the selected source video, debounced live previews and processing jobs.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"thirdcoast.systems/cutroom/internal/backend"
	"thirdcoast.systems/cutroom/pkg/debounce"
	"thirdcoast.systems/cutroom/pkg/editsettings"
	"thirdcoast.systems/cutroom/pkg/filters"
)

const (
	// MaxSubscribers limits concurrent state listeners per session.
	MaxSubscribers = 16
)

var (
	// ErrStalePreview is returned for a frame preview that completed after a
	// newer one was issued. Its result is dropped.
	ErrStalePreview = errors.New("frame preview superseded")

	ErrClipNeedsUpload = errors.New("clip preview requires an uploaded file")
	ErrBusy            = errors.New("another operation is in progress")
	ErrClosed          = errors.New("editor closed")
)

// Backend is the subset of *backend.Client the coordinator drives.
type Backend interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64, onProgress func(backend.Progress)) (string, error)
	Info(ctx context.Context, filename string) (*backend.VideoInfo, error)
	LocalInfo(ctx context.Context, filePath string) (*backend.VideoInfo, error)
	Process(ctx context.Context, src backend.Source, s editsettings.Settings) (string, error)
	ClipPreview(ctx context.Context, filename string, s editsettings.Settings, seconds float64) (string, error)
	FramePreview(ctx context.Context, src backend.Source, timestamp float64, s editsettings.Settings) (string, error)
	UploadsURL(filename string) string
}

// Delays are the quiet periods before a live preview fires.
type Delays struct {
	Settings    time.Duration
	Filter      time.Duration
	Scrub       time.Duration
	Seek        time.Duration
	LivePreview time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Settings:    300 * time.Millisecond,
		Filter:      100 * time.Millisecond,
		Scrub:       500 * time.Millisecond,
		Seek:        300 * time.Millisecond,
		LivePreview: 100 * time.Millisecond,
	}
}

func (d Delays) withDefaults() Delays {
	def := DefaultDelays()
	if d.Settings <= 0 {
		d.Settings = def.Settings
	}
	if d.Filter <= 0 {
		d.Filter = def.Filter
	}
	if d.Scrub <= 0 {
		d.Scrub = def.Scrub
	}
	if d.Seek <= 0 {
		d.Seek = def.Seek
	}
	if d.LivePreview <= 0 {
		d.LivePreview = def.LivePreview
	}
	return d
}

type Options struct {
	Delays Delays
	// AfterFunc drives the debounce timers. Nil uses the wall clock.
	AfterFunc debounce.AfterFunc
	// Now stamps cache-busting parameters. Nil uses time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Coordinator owns one session's state. All methods are safe for concurrent
// use. The state lock is never held across a backend call.
type Coordinator struct {
	client Backend
	delays Delays
	now    func() time.Time
	log    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// settingsSlot debounces previews after edits; timeSlot after the
	// playhead moves.
	settingsSlot *debounce.Slot
	timeSlot     *debounce.Slot

	mu        sync.Mutex
	state     State
	seq       uint64
	sourceGen uint64
	closed    bool

	subMu sync.Mutex
	subs  map[chan State]struct{}
}

func New(client Backend, opts Options) *Coordinator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		client:       client,
		delays:       opts.Delays.withDefaults(),
		now:          now,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		settingsSlot: debounce.New(opts.AfterFunc),
		timeSlot:     debounce.New(opts.AfterFunc),
		state: State{
			Source:   backend.Source{Mode: backend.ModeUpload},
			Settings: editsettings.Default(),
		},
		subs: make(map[chan State]struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Settings returns a copy of the current settings.
func (c *Coordinator) Settings() editsettings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Settings.Clone()
}

// beginSource switches to a new source and clears everything derived from
// the previous one. It returns the new source generation.
func (c *Coordinator) beginSource(src backend.Source) uint64 {
	c.settingsSlot.Cancel()
	c.timeSlot.Cancel()

	c.mu.Lock()
	c.sourceGen++
	c.seq++
	gen := c.sourceGen
	live := c.state.Preview.LivePreview
	c.state.Source = src
	c.state.Preview = PreviewState{LivePreview: live}
	c.state.Info = nil
	c.state.Duration = 0
	c.state.ProcessedURL = ""
	c.mu.Unlock()

	c.publish()
	return gen
}

// SelectUpload uploads r as the session's source video and returns the
// server-assigned filename. onProgress may be nil.
func (c *Coordinator) SelectUpload(ctx context.Context, name string, r io.Reader, size int64, onProgress func(backend.Progress)) (string, error) {
	if c.isClosed() {
		return "", ErrClosed
	}
	c.mu.Lock()
	if c.state.Uploading {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.state.Uploading = true
	c.state.UploadProgress = 0
	c.mu.Unlock()

	gen := c.beginSource(backend.Source{Mode: backend.ModeUpload})

	defer func() {
		c.mu.Lock()
		c.state.Uploading = false
		c.state.UploadProgress = 0
		c.mu.Unlock()
		c.publish()
	}()

	filename, err := c.client.Upload(ctx, name, r, size, func(p backend.Progress) {
		c.mu.Lock()
		c.state.UploadProgress = p.Percent
		c.mu.Unlock()
		c.publish()
		if onProgress != nil {
			onProgress(p)
		}
	})
	if err != nil {
		c.log.Error("upload failed", "name", name, "size", size, "error", err)
		return "", err
	}
	c.log.Info("upload complete", "name", name, "filename", filename)

	c.mu.Lock()
	if gen != c.sourceGen {
		c.mu.Unlock()
		return filename, nil
	}
	c.state.Source.Filename = filename
	c.state.Preview.PreviewURL = c.client.UploadsURL(filename)
	c.mu.Unlock()
	c.publish()

	info, err := c.client.Info(ctx, filename)
	if err != nil {
		c.log.Warn("video info unavailable", "filename", filename, "error", err)
		return filename, nil
	}
	c.applyInfo(gen, info)
	return filename, nil
}

// SelectLocal makes a file on the backend host the source video. Probe
// failures are returned; the path stays selected.
func (c *Coordinator) SelectLocal(ctx context.Context, filePath string) (*backend.VideoInfo, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, backend.ErrNoSource
	}

	gen := c.beginSource(backend.Source{Mode: backend.ModeLocal, FilePath: filePath})

	info, err := c.client.LocalInfo(ctx, filePath)
	if err != nil {
		c.log.Warn("local file probe failed", "path", filePath, "error", err)
		return nil, fmt.Errorf("failed to access local file: %w", err)
	}

	c.mu.Lock()
	if gen == c.sourceGen && backend.BrowserPlayable(filePath) {
		c.state.Preview.PreviewURL = "file://" + filePath
	}
	c.mu.Unlock()
	c.applyInfo(gen, info)
	return info, nil
}

func (c *Coordinator) applyInfo(gen uint64, info *backend.VideoInfo) {
	c.mu.Lock()
	if gen != c.sourceGen {
		c.mu.Unlock()
		return
	}
	c.state.Info = info
	c.state.Duration = info.Duration()
	c.mu.Unlock()
	c.publish()
}

// SetMode switches between uploaded and local sources. The selected
// filename and path are kept so switching back restores them.
func (c *Coordinator) SetMode(mode backend.Mode) error {
	if _, ok := backend.ParseMode(string(mode)); !ok {
		return fmt.Errorf("unknown mode %q", mode)
	}
	c.mu.Lock()
	if c.state.Source.Mode == mode {
		c.mu.Unlock()
		return nil
	}
	c.state.Source.Mode = mode
	c.mu.Unlock()
	c.publish()
	return nil
}

// SetSetting changes one setting. Numeric values are clamped to the input
// range. Filters set this way must not conflict.
func (c *Coordinator) SetSetting(key string, value any) error {
	if p, ok := editsettings.LookupParam(key); ok && p.Type == editsettings.ParamRange {
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", editsettings.ErrInvalidValue, key, err)
		}
		value = editsettings.Clamp(key, f)
	}

	c.mu.Lock()
	next := c.state.Settings.Clone()
	if err := next.Set(key, value); err != nil {
		c.mu.Unlock()
		return err
	}
	if key == editsettings.KeyFilters {
		if err := filters.CheckExclusive(next.Filters); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	changed := !next.Equal(c.state.Settings)
	c.state.Settings = next
	c.mu.Unlock()

	if !changed {
		return nil
	}
	c.publish()
	c.schedulePreview(c.delays.Settings)
	return nil
}

// ReplaceSettings swaps in a whole configuration after validating it.
func (c *Coordinator) ReplaceSettings(s editsettings.Settings) error {
	s = s.Clone()
	if err := editsettings.Validate(s); err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Settings = s
	c.mu.Unlock()
	c.publish()
	c.schedulePreview(c.delays.Settings)
	return nil
}

// ResetSettings restores the defaults.
func (c *Coordinator) ResetSettings() {
	c.mu.Lock()
	c.state.Settings.Reset()
	c.mu.Unlock()
	c.publish()
	c.schedulePreview(c.delays.Settings)
}

// ToggleFilter flips a preset and returns the resulting active set. Turning
// on a preset turns off any other member of its exclusive group.
func (c *Coordinator) ToggleFilter(id string) ([]string, error) {
	if _, ok := filters.Lookup(id); !ok {
		return nil, fmt.Errorf("%w: %q", filters.ErrUnknownPreset, id)
	}

	c.mu.Lock()
	before := c.state.Settings.Filters
	after := filters.Toggle(before, id)
	c.state.Settings.Filters = after
	c.mu.Unlock()

	if dropped := filters.Replaced(before, after); len(dropped) > 0 {
		c.log.Debug("preset replaced", "preset", id, "dropped", dropped)
	}
	c.publish()
	c.schedulePreview(c.delays.Filter)
	return append([]string(nil), after...), nil
}

// ClearFilters turns off every preset.
func (c *Coordinator) ClearFilters() {
	c.mu.Lock()
	if len(c.state.Settings.Filters) == 0 {
		c.mu.Unlock()
		return
	}
	c.state.Settings.Filters = []string{}
	c.mu.Unlock()
	c.publish()
	c.schedulePreview(c.delays.Filter)
}

// SetLivePreview turns automatic frame previews on or off. Turning it on
// with a source selected refreshes the frame shortly after.
func (c *Coordinator) SetLivePreview(enabled bool) {
	c.mu.Lock()
	c.state.Preview.LivePreview = enabled
	c.mu.Unlock()
	c.publish()

	if !enabled {
		c.settingsSlot.Cancel()
		c.timeSlot.Cancel()
		return
	}
	c.schedulePreview(c.delays.LivePreview)
}

// UpdateVideoTime records the player position while scrubbing.
func (c *Coordinator) UpdateVideoTime(t float64) {
	c.moveTo(t, c.delays.Scrub)
}

// SeekTo records a position picked from the time slider.
func (c *Coordinator) SeekTo(t float64) {
	c.moveTo(t, c.delays.Seek)
}

func (c *Coordinator) moveTo(t float64, delay time.Duration) {
	c.mu.Lock()
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	if c.state.Duration > 0 && t > c.state.Duration {
		t = c.state.Duration
	}
	c.state.Preview.CurrentTime = t
	live := c.state.Preview.LivePreview && c.state.HasSource()
	c.mu.Unlock()
	c.publish()

	if live {
		c.timeSlot.Schedule(delay, func() { c.firePreview(nil) })
	}
}

// schedulePreview queues a frame preview of the current settings if live
// preview is on. Later calls within the delay replace it.
func (c *Coordinator) schedulePreview(delay time.Duration) {
	c.mu.Lock()
	live := c.state.Preview.LivePreview && c.state.HasSource() && !c.closed
	snap := c.state.Settings.Clone()
	c.mu.Unlock()

	if !live {
		return
	}
	c.settingsSlot.Schedule(delay, func() { c.firePreview(&snap) })
}

// firePreview runs on a timer goroutine; failures are logged by framePreview.
func (c *Coordinator) firePreview(s *editsettings.Settings) {
	_, _ = c.framePreview(c.ctx, s)
}

// RefreshPreview renders the frame at the current time right away,
// superseding any pending debounced preview.
func (c *Coordinator) RefreshPreview(ctx context.Context) (string, error) {
	c.settingsSlot.Cancel()
	c.timeSlot.Cancel()
	return c.framePreview(ctx, nil)
}

// framePreview requests a frame for s at the current time. A nil s reads the
// settings when the request is issued, so a playhead timer armed before an
// edit still renders that edit. Only the latest issued request may update
// the state.
func (c *Coordinator) framePreview(ctx context.Context, s *editsettings.Settings) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	src := c.state.Source
	at := c.state.Preview.CurrentTime
	if s == nil {
		cur := c.state.Settings.Clone()
		s = &cur
	}
	if src.Empty() {
		c.mu.Unlock()
		return "", backend.ErrNoSource
	}
	c.seq++
	seq := c.seq
	c.state.Preview.Loading = true
	c.mu.Unlock()
	c.publish()

	u, err := c.client.FramePreview(ctx, src, at, *s)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug("discarding stale frame preview", "seq", seq, "at", at)
		return "", ErrStalePreview
	}
	c.state.Preview.Loading = false
	if err != nil {
		c.mu.Unlock()
		c.publish()
		c.log.Warn("frame preview failed", "seq", seq, "at", at, "error", err)
		return "", err
	}
	u = backend.CacheBust(u, c.now())
	c.state.Preview.FramePreviewURL = u
	c.mu.Unlock()
	c.publish()
	return u, nil
}

// GenerateClipPreview renders a short clip of an uploaded source and shows
// it in the player.
func (c *Coordinator) GenerateClipPreview(ctx context.Context) (string, error) {
	c.mu.Lock()
	src := c.state.Source
	gen := c.sourceGen
	if src.Mode != backend.ModeUpload || src.Filename == "" {
		c.mu.Unlock()
		return "", ErrClipNeedsUpload
	}
	s := c.state.Settings.Clone()
	c.mu.Unlock()

	u, err := c.client.ClipPreview(ctx, src.Filename, s, backend.DefaultClipPreviewSeconds)
	if err != nil {
		c.log.Warn("clip preview failed", "filename", src.Filename, "error", err)
		return "", err
	}
	u = backend.CacheBust(u, c.now())

	c.mu.Lock()
	if gen == c.sourceGen {
		c.state.Preview.PreviewURL = u
	}
	c.mu.Unlock()
	c.publish()
	return u, nil
}

// Process runs the full job with the current settings and returns the
// download URL. Backend errors come back unchanged.
func (c *Coordinator) Process(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	src := c.state.Source
	if src.Empty() {
		c.mu.Unlock()
		return "", backend.ErrNoSource
	}
	if c.state.Processing {
		c.mu.Unlock()
		return "", ErrBusy
	}
	gen := c.sourceGen
	s := c.state.Settings.Clone()
	c.state.Processing = true
	c.state.ProcessedURL = ""
	c.mu.Unlock()
	c.publish()

	start := c.now()
	u, err := c.client.Process(ctx, src, s)

	c.mu.Lock()
	c.state.Processing = false
	if err == nil && gen == c.sourceGen {
		c.state.ProcessedURL = u
	}
	c.mu.Unlock()
	c.publish()

	if err != nil {
		c.log.Error("processing failed", "source", src, "error", err)
		return "", err
	}
	c.log.Info("processing complete", "source", src, "url", u, "took", c.now().Sub(start))
	return u, nil
}

// Subscribe returns a channel that receives a snapshot after every change.
// Slow readers miss intermediate snapshots, never the channel. The channel
// is closed by the returned func or by Close.
func (c *Coordinator) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	c.subMu.Lock()
	if c.isClosed() || len(c.subs) >= MaxSubscribers {
		c.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()

	unsubscribe := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

func (c *Coordinator) publish() {
	snap := c.Snapshot()

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close cancels pending previews and in-flight timer requests and closes
// every subscription.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.settingsSlot.Cancel()
	c.timeSlot.Cancel()
	c.cancel()

	c.subMu.Lock()
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
	c.subMu.Unlock()
}

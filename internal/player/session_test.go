package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
)

// fakeEngine records the calls the session makes and lets tests drive
// state transitions by hand.
type fakeEngine struct {
	mu         sync.Mutex
	prepared   []Source
	prepareErr error
	seeks      []time.Duration
	pos        time.Duration
	dur        time.Duration
	playing    bool
	released   bool
	playCalls  int
	listeners  []EngineListener
}

func (e *fakeEngine) Prepare(src Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prepared = append(e.prepared, src)
	return e.prepareErr
}

func (e *fakeEngine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
	e.playCalls++
}

func (e *fakeEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

func (e *fakeEngine) SeekTo(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeks = append(e.seeks, pos)
	e.pos = pos
}

func (e *fakeEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

func (e *fakeEngine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dur
}

func (e *fakeEngine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *fakeEngine) AddListener(l EngineListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *fakeEngine) RemoveListener(l EngineListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, existing := range e.listeners {
		if existing == l {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *fakeEngine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.released = true
}

// fireReady announces readiness to every listener, the way a real engine
// does once buffering completes.
func (e *fakeEngine) fireReady() {
	e.mu.Lock()
	listeners := make([]EngineListener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l.OnStateChanged(EngineStateReady)
	}
}

func (e *fakeEngine) lastSeek() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.seeks) == 0 {
		return 0, false
	}
	return e.seeks[len(e.seeks)-1], true
}

type fakeEmbed struct {
	requests []EmbedRequest
	err      error
}

func (f *fakeEmbed) Open(req EmbedRequest) error {
	f.requests = append(f.requests, req)
	return f.err
}

type fakeAudio struct {
	vol, max int
}

func (a *fakeAudio) Volume() int     { return a.vol }
func (a *fakeAudio) MaxVolume() int  { return a.max }
func (a *fakeAudio) SetVolume(v int) { a.vol = v }

type fakeDisplay struct {
	system    float64
	systemErr error
	set       []float64
}

func (d *fakeDisplay) SystemBrightness() (float64, error) { return d.system, d.systemErr }
func (d *fakeDisplay) SetBrightness(v float64)            { d.set = append(d.set, v) }

// harness bundles a session with its fakes. The factory hands out engines
// in order, so switch tests can inspect both the old and new engine.
type harness struct {
	session *Session
	engines []*fakeEngine
	next    int
	embed   *fakeEmbed
	audio   *fakeAudio
	display *fakeDisplay
}

func newHarness(t *testing.T, engines ...*fakeEngine) *harness {
	t.Helper()

	if len(engines) == 0 {
		engines = []*fakeEngine{{}}
	}
	h := &harness{
		engines: engines,
		embed:   &fakeEmbed{},
		audio:   &fakeAudio{vol: 7, max: 15},
		display: &fakeDisplay{system: 0.8},
	}
	factory := func() (Engine, error) {
		if h.next >= len(h.engines) {
			t.Fatal("engine factory exhausted")
		}
		e := h.engines[h.next]
		h.next++
		return e, nil
	}
	h.session = NewSession(factory, h.embed, h.audio, h.display, nil)
	return h
}

func (h *harness) engine() *fakeEngine { return h.engines[0] }

func directState(pos time.Duration, playing bool) domain.PlaybackState {
	return domain.PlaybackState{
		URL:      "https://cdn.example.com/movie.mp4",
		Position: pos,
		Playing:  playing,
		Servers: []domain.Server{
			{Name: "Server 1", URL: "https://cdn.example.com/movie.mp4"},
			{Name: "Server 2", URL: "https://backup.example.com/movie.mkv"},
		},
	}
}

func TestStartDirectResumesOnceOnReady(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if err := h.session.Start(directState(30*time.Second, true)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e := h.engine()
	if len(e.prepared) != 1 || e.prepared[0].Kind != KindProgressive {
		t.Fatalf("prepared = %+v, want one progressive source", e.prepared)
	}
	if seek, ok := e.lastSeek(); !ok || seek != 30*time.Second {
		t.Errorf("initial seek = %v, want 30s", seek)
	}
	if got := h.session.State(); got != StatePreparing {
		t.Errorf("state before ready = %v, want preparing", got)
	}
	if e.playCalls != 0 {
		t.Errorf("Play called before the engine was ready")
	}

	e.fireReady()
	if e.playCalls != 1 {
		t.Errorf("playCalls = %d after ready, want 1", e.playCalls)
	}
	if got := h.session.State(); got != StatePlaying {
		t.Errorf("state after ready = %v, want playing", got)
	}

	// A rebuffer cycle reports ready again; resume must not fire twice.
	e.fireReady()
	if e.playCalls != 1 {
		t.Errorf("playCalls = %d after second ready, want 1", e.playCalls)
	}
}

func TestStartDirectPausedStaysReady(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if err := h.session.Start(directState(0, false)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	h.engine().fireReady()
	if h.engine().playCalls != 0 {
		t.Error("Play fired for a session saved in the paused state")
	}
	if got := h.session.State(); got != StateReady {
		t.Errorf("state = %v, want ready", got)
	}
}

func TestStartEmbeddedDelegates(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	servers := []domain.Server{
		{Name: "Direct", URL: "https://cdn.example.com/a.mp4"},
		{Name: "Embed", URL: "https://multiembed.mov/?video_id=tt1", License: "lic-key", DRMProtected: true},
	}
	err := h.session.Start(domain.PlaybackState{
		URL:           servers[1].URL,
		ServerIndex:   1,
		DRMRobustness: "L3",
		Servers:       servers,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if len(h.embed.requests) != 1 {
		t.Fatalf("embed requests = %d, want 1", len(h.embed.requests))
	}
	req := h.embed.requests[0]
	if req.SelectedIndex != 1 || len(req.Servers) != 2 {
		t.Errorf("handoff payload = index %d / %d servers, want 1/2", req.SelectedIndex, len(req.Servers))
	}
	if req.License != "lic-key" || !req.DRMProtected || req.DRMRobustness != "L3" {
		t.Errorf("DRM fields lost in handoff: %+v", req)
	}
	if h.next != 0 {
		t.Error("engine constructed for an embedded target")
	}
	if got := h.session.State(); got != StateReleased {
		t.Errorf("state = %v, want released after handoff", got)
	}
}

func TestStartPrepareError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, &fakeEngine{prepareErr: errors.New("boom")})

	err := h.session.Start(directState(0, true))
	if !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("error = %v, want ErrUnsupportedMedia", err)
	}
	if !h.engine().released {
		t.Error("failed engine was not released")
	}
	if got := h.session.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestSeekClamping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pos   time.Duration
		dur   time.Duration
		delta time.Duration
		want  time.Duration
	}{
		{"rewind clamps to start", 5 * time.Second, time.Hour, -seekStep, 0},
		{"forward clamps to end", time.Hour - 5*time.Second, time.Hour, seekStep, time.Hour},
		{"forward within range", 30 * time.Second, time.Hour, seekStep, 40 * time.Second},
		{"rewind within range", 30 * time.Second, time.Hour, -seekStep, 20 * time.Second},
		{"unknown duration no upper clamp", 30 * time.Second, 0, seekStep, 40 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &fakeEngine{dur: tt.dur})
			if err := h.session.Start(directState(tt.pos, false)); err != nil {
				t.Fatalf("Start: %v", err)
			}

			h.session.SeekBy(tt.delta)
			if seek, _ := h.engine().lastSeek(); seek != tt.want {
				t.Errorf("seek = %v, want %v", seek, tt.want)
			}
		})
	}
}

func TestAdjustVolume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start int
		delta float64
		want  int
	}{
		{"half swipe up", 7, 0.5, 14},
		{"clamped at max", 10, 1.0, 15},
		{"clamped at zero", 3, -1.0, 0},
		{"no change", 7, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.audio.vol = tt.start

			if got := h.session.AdjustVolume(tt.delta); got != tt.want {
				t.Errorf("AdjustVolume(%v) = %d, want %d", tt.delta, got, tt.want)
			}
			if h.audio.vol != tt.want {
				t.Errorf("device volume = %d, want %d", h.audio.vol, tt.want)
			}
		})
	}
}

func TestAdjustBrightness(t *testing.T) {
	t.Parallel()

	t.Run("first touch reads system level", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.display.system = 0.8

		if got := h.session.AdjustBrightness(-0.2); got < 0.59 || got > 0.61 {
			t.Errorf("AdjustBrightness = %v, want 0.6", got)
		}
	})

	t.Run("system level unreadable falls back to midpoint", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.display.systemErr = errors.New("no permission")

		if got := h.session.AdjustBrightness(0.1); got < 0.59 || got > 0.61 {
			t.Errorf("AdjustBrightness = %v, want 0.6 from the 0.5 fallback", got)
		}
	})

	t.Run("clamped to floor", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.display.system = 0.2

		if got := h.session.AdjustBrightness(-1.0); got != minBrightness {
			t.Errorf("AdjustBrightness = %v, want %v", got, minBrightness)
		}
	})

	t.Run("clamped to ceiling", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		if got := h.session.AdjustBrightness(2.0); got != maxBrightness {
			t.Errorf("AdjustBrightness = %v, want %v", got, maxBrightness)
		}
	})

	t.Run("later touches build on the adjusted level", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.display.system = 0.5

		h.session.AdjustBrightness(0.2)
		if got := h.session.AdjustBrightness(0.2); got < 0.89 || got > 0.91 {
			t.Errorf("second AdjustBrightness = %v, want 0.9", got)
		}
	})
}

func TestCycleResizeMode(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	want := []ResizeMode{ResizeFill, ResizeZoom, ResizeFit, ResizeFill}
	for i, w := range want {
		if got := h.session.CycleResizeMode(); got != w {
			t.Errorf("cycle %d = %v, want %v", i, got, w)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if err := h.session.Start(directState(0, true)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	h.session.Stop()
	h.session.Stop()

	if !h.engine().released {
		t.Error("engine not released")
	}
	if got := h.session.State(); got != StateReleased {
		t.Errorf("state = %v, want released", got)
	}
}

func TestCloseReportsFinalState(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if err := h.session.Start(directState(10*time.Second, true)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.engine().fireReady()
	h.engine().pos = 42 * time.Second

	pos, playing := h.session.Close()
	if pos != 42*time.Second || !playing {
		t.Errorf("Close = (%v, %v), want (42s, true)", pos, playing)
	}
	if !h.engine().released {
		t.Error("engine not released on close")
	}
}

func TestWatchTearsDownOnStopSignal(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if err := h.session.Start(directState(0, true)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stopper := NewStopper()
	h.session.Watch(stopper)
	stopper.Signal()

	deadline := time.After(2 * time.Second)
	for h.session.State() != StateReleased {
		select {
		case <-deadline:
			t.Fatal("session not released after stop signal")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if !h.engine().released {
		t.Error("engine not released after stop signal")
	}
}

func TestStopperBroadcast(t *testing.T) {
	t.Parallel()

	stopper := NewStopper()
	a := stopper.Subscribe()
	b := stopper.Subscribe()

	stopper.Signal()
	// Signalling twice with a full buffer must not block.
	stopper.Signal()

	for name, ch := range map[string]chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		default:
			t.Errorf("subscriber %s did not receive the signal", name)
		}
	}

	stopper.Unsubscribe(a)
	stopper.Signal()
	select {
	case <-a:
		t.Error("unsubscribed channel still received a signal")
	default:
	}
}

package player

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
)

// State is the session's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateReady
	StatePlaying
	StatePaused
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// ResizeMode is the video scaling mode, cycled Fit -> Fill -> Zoom.
type ResizeMode int

const (
	ResizeFit ResizeMode = iota
	ResizeFill
	ResizeZoom
)

func (m ResizeMode) String() string {
	switch m {
	case ResizeFit:
		return "Fit"
	case ResizeFill:
		return "Fill"
	case ResizeZoom:
		return "Zoom"
	default:
		return "Unknown"
	}
}

// seekStep is the double-tap seek distance.
const seekStep = 10 * time.Second

// brightness bounds; zero is reserved by platforms for "off".
const (
	minBrightness     = 0.01
	maxBrightness     = 1.0
	defaultBrightness = 0.5
)

// Session owns one playback target. It resolves a URL to a playback
// strategy, drives the single live engine for direct playback, and
// delegates embedded targets to the embed handler. All engine access goes
// through the session's mutex; the engine itself is single-threaded.
type Session struct {
	newEngine EngineFactory
	embed     EmbedHandler
	audio     Audio
	display   Display
	logger    *slog.Logger

	mu            sync.Mutex
	state         State
	engine        Engine
	url           string
	servers       []domain.Server
	serverIndex   int
	drmRobustness string
	brightness    float64 // negative until first touched
	resize        ResizeMode

	done     chan struct{}
	doneOnce sync.Once
}

// NewSession creates an idle playback session.
func NewSession(newEngine EngineFactory, embed EmbedHandler, audio Audio, display Display, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		newEngine:  newEngine,
		embed:      embed,
		audio:      audio,
		display:    display,
		logger:     logger,
		state:      StateIdle,
		brightness: -1,
		done:       make(chan struct{}),
	}
}

// Start resolves the requested URL and begins playback. Embedded targets
// are handed off to the embed handler wholesale, ending local ownership;
// direct targets get a fresh engine, a seek to the saved position, and a
// one-shot auto-resume when the engine reports ready.
func (s *Session) Start(state domain.PlaybackState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.servers = state.Servers
	s.serverIndex = state.ServerIndex
	s.drmRobustness = state.DRMRobustness

	url := EnhanceURL(state.URL)
	class := Classify(url)

	if class.Strategy == StrategyEmbedded {
		return s.delegateLocked(url, class, state.ServerIndex)
	}

	return s.startDirectLocked(url, class, state.Position, state.Playing)
}

// delegateLocked hands the target to the embed handler and terminates
// local playback ownership.
func (s *Session) delegateLocked(url string, class Classification, index int) error {
	req := EmbedRequest{
		URL:           url,
		DRMRobustness: s.drmRobustness,
		Servers:       s.servers,
		SelectedIndex: index,
	}
	if index >= 0 && index < len(s.servers) {
		req.License = s.servers[index].License
		req.DRMProtected = s.servers[index].DRMProtected
	}

	s.logger.Info("delegating to embed handler", "url", url, "kind", class.Kind.String())

	if err := s.embed.Open(req); err != nil {
		s.logger.Error("embed handoff failed", "url", url, "error", err)
		return err
	}

	s.releaseLocked()
	return nil
}

// startDirectLocked constructs the engine for a direct source. The resume
// listener is one-shot: it fires on the first ready state and removes
// itself, so rebuffering never re-triggers playback.
func (s *Session) startDirectLocked(url string, class Classification, pos time.Duration, wasPlaying bool) error {
	if s.engine != nil {
		s.engine.Release()
		s.engine = nil
	}

	engine, err := s.newEngine()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnsupportedMedia, err)
	}

	s.state = StatePreparing
	s.url = url

	if err := engine.Prepare(Source{URL: url, Kind: class.Kind}); err != nil {
		engine.Release()
		s.state = StateIdle
		return fmt.Errorf("%w: %v", domain.ErrUnsupportedMedia, err)
	}

	engine.SeekTo(pos)
	engine.AddListener(&readyTracker{session: s})
	if wasPlaying {
		engine.AddListener(&readyResume{session: s, engine: engine})
	}

	s.engine = engine
	s.logger.Info("direct playback started", "url", url, "kind", class.Kind.String(), "position", pos, "resume", wasPlaying)
	return nil
}

// readyTracker moves the session out of Preparing when the engine first
// reports ready.
type readyTracker struct {
	session *Session
	once    sync.Once
}

func (t *readyTracker) OnStateChanged(state EngineState) {
	if state != EngineStateReady {
		return
	}
	t.once.Do(func() {
		t.session.mu.Lock()
		if t.session.state == StatePreparing {
			t.session.state = StateReady
		}
		t.session.mu.Unlock()
	})
}

// readyResume auto-resumes playback exactly once, then removes itself.
type readyResume struct {
	session *Session
	engine  Engine
	once    sync.Once
}

func (r *readyResume) OnStateChanged(state EngineState) {
	if state != EngineStateReady {
		return
	}
	r.once.Do(func() {
		r.engine.Play()
		r.engine.RemoveListener(r)
		r.session.mu.Lock()
		r.session.state = StatePlaying
		r.session.mu.Unlock()
	})
}

// Play resumes the engine.
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	s.engine.Play()
	s.state = StatePlaying
}

// Pause halts the engine, keeping it live for resume.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	s.engine.Pause()
	s.state = StatePaused
}

// SeekForward seeks ahead one step, clamped to the duration.
func (s *Session) SeekForward() {
	s.SeekBy(seekStep)
}

// SeekRewind seeks back one step, clamped to zero.
func (s *Session) SeekRewind() {
	s.SeekBy(-seekStep)
}

// SeekBy seeks relative to the current position, clamped to [0, duration].
func (s *Session) SeekBy(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}

	pos := s.engine.Position() + delta
	if pos < 0 {
		pos = 0
	}
	if dur := s.engine.Duration(); dur > 0 && pos > dur {
		pos = dur
	}
	s.engine.SeekTo(pos)
}

// AdjustVolume shifts the device volume by delta scaled against the device
// maximum, clamped to [0, max]. Returns the new volume.
func (s *Session) AdjustVolume(delta float64) int {
	max := s.audio.MaxVolume()
	v := s.audio.Volume() + int(delta*float64(max))
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	s.audio.SetVolume(v)
	return v
}

// AdjustBrightness shifts the screen brightness by delta, clamped to
// [0.01, 1.0]. The system level is read on first touch; if unavailable the
// midpoint is assumed.
func (s *Session) AdjustBrightness(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.brightness < 0 {
		b, err := s.display.SystemBrightness()
		if err != nil {
			b = defaultBrightness
		}
		s.brightness = b
	}

	b := s.brightness + delta
	if b < minBrightness {
		b = minBrightness
	}
	if b > maxBrightness {
		b = maxBrightness
	}

	s.brightness = b
	s.display.SetBrightness(b)
	return b
}

// CycleResizeMode advances Fit -> Fill -> Zoom -> Fit and returns the new
// mode.
func (s *Session) CycleResizeMode() ResizeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resize = (s.resize + 1) % 3
	return s.resize
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current playback state for handoff to another
// screen.
func (s *Session) Snapshot() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := domain.PlaybackState{
		URL:           s.url,
		ServerIndex:   s.serverIndex,
		DRMRobustness: s.drmRobustness,
		Servers:       s.servers,
	}
	if s.engine != nil {
		state.Position = s.engine.Position()
		state.Playing = s.engine.IsPlaying()
	}
	return state
}

// Stop releases the engine and ends the session. Idempotent: safe to call
// when already released.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

func (s *Session) releaseLocked() {
	if s.engine != nil {
		s.engine.Release()
		s.engine = nil
	}
	s.state = StateReleased
	s.doneOnce.Do(func() { close(s.done) })
}

// Close stops the session and reports the final position and play state
// to the caller, for resume elsewhere.
func (s *Session) Close() (position time.Duration, playing bool) {
	s.mu.Lock()
	if s.engine != nil {
		position = s.engine.Position()
		playing = s.engine.IsPlaying()
	}
	s.releaseLocked()
	s.mu.Unlock()

	s.logger.Info("session closed", "position", position, "playing", playing)
	return position, playing
}

// Watch subscribes the session to the stop broadcast: one signal tears the
// session down even when it is backgrounded. The watcher exits when the
// session ends on its own.
func (s *Session) Watch(stopper *Stopper) {
	ch := stopper.Subscribe()
	go func() {
		defer stopper.Unsubscribe(ch)
		select {
		case <-ch:
			s.logger.Info("stop signal received, tearing down playback")
			s.Stop()
		case <-s.done:
		}
	}()
}

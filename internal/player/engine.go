package player

import (
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
)

// Source describes a direct media source for the engine.
type Source struct {
	URL  string
	Kind Kind // KindProgressive, KindHLS, or KindDASH
}

// EngineState is the engine's readiness state.
type EngineState int

const (
	EngineStateIdle EngineState = iota
	EngineStateBuffering
	EngineStateReady
	EngineStateEnded
)

// EngineListener receives engine state transitions.
type EngineListener interface {
	OnStateChanged(state EngineState)
}

// Engine is the media playback engine boundary. Decoding and transport
// internals live behind it; the session only drives state. Engines are
// single-use: released once, never reused. Not safe for concurrent use;
// all calls must come from the session's owning goroutine.
type Engine interface {
	Prepare(src Source) error
	Play()
	Pause()
	SeekTo(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	IsPlaying() bool
	AddListener(l EngineListener)
	RemoveListener(l EngineListener)
	Release()
}

// EngineFactory constructs a fresh engine for one playback.
type EngineFactory func() (Engine, error)

// EmbedRequest is the full handoff payload for the embed handler: enough
// for the embed screen to play the target and offer further server
// switching on its own.
type EmbedRequest struct {
	URL           string
	License       string
	DRMProtected  bool
	DRMRobustness string
	Servers       []domain.Server
	SelectedIndex int
}

// EmbedHandler is the external embed playback boundary. The core never
// inspects its internals.
type EmbedHandler interface {
	Open(req EmbedRequest) error
}

// Audio adjusts the device output volume in integer steps up to a device
// maximum.
type Audio interface {
	Volume() int
	MaxVolume() int
	SetVolume(v int)
}

// Display adjusts the screen brightness. SystemBrightness is the device
// default level, read once when the user first touches brightness.
type Display interface {
	SystemBrightness() (float64, error)
	SetBrightness(v float64)
}

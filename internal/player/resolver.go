package player

import (
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
)

// SwitchServer moves playback to another server for the same title. The
// new URL is classified from scratch: an embedded target is handed to the
// embed handler with the full server list so the user can keep switching
// there, and this session ends; a direct target restarts the engine at
// the position the old engine left off, preserving the play/pause state.
// Position only survives direct-to-direct switches.
func (s *Session) SwitchServer(server domain.Server, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := EnhanceURL(server.URL)
	class := Classify(url)

	s.logger.Info("switching server", "server", server.Name, "index", index, "strategy", class.Strategy.String())

	if class.Strategy == StrategyEmbedded {
		req := EmbedRequest{
			URL:           url,
			License:       server.License,
			DRMProtected:  server.DRMProtected,
			DRMRobustness: s.drmRobustness,
			Servers:       s.servers,
			SelectedIndex: index,
		}
		if err := s.embed.Open(req); err != nil {
			s.logger.Error("embed handoff failed", "url", url, "error", err)
			return err
		}
		s.releaseLocked()
		return nil
	}

	// Carry playback state across the restart. A prior embed handoff or
	// stop leaves no engine; fall back to starting fresh.
	pos := time.Duration(0)
	wasPlaying := true
	if s.engine != nil {
		pos = s.engine.Position()
		wasPlaying = s.engine.IsPlaying()
		s.engine.Release()
		s.engine = nil
	}

	s.serverIndex = index
	return s.startDirectLocked(url, class, pos, wasPlaying)
}

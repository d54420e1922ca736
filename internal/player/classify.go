package player

import (
	"strings"
)

// Strategy says who owns playback of a URL: the in-process engine or the
// external embed handler.
type Strategy int

const (
	StrategyDirect Strategy = iota
	StrategyEmbedded
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// Kind refines the strategy: the media source type for direct playback, or
// the embed family for handoff.
type Kind int

const (
	KindProgressive Kind = iota // plain video file
	KindHLS                     // .m3u8 manifest
	KindDASH                    // .mpd manifest (direct only when undelegated)
	KindEmbedHost               // generic iframe embed host
	KindMultiEmbed              // multi-source embed aggregator
	KindPlatform                // known video platform (YouTube, Drive, Mega)
	KindDRM                     // DRM-locked manifest
)

func (k Kind) String() string {
	switch k {
	case KindProgressive:
		return "progressive"
	case KindHLS:
		return "hls"
	case KindDASH:
		return "dash"
	case KindEmbedHost:
		return "embed"
	case KindMultiEmbed:
		return "multiembed"
	case KindPlatform:
		return "platform"
	case KindDRM:
		return "drm"
	default:
		return "unknown"
	}
}

// Classification is the closed result of classifying a URL.
type Classification struct {
	Strategy Strategy
	Kind     Kind
}

// multiEmbedHosts are embed aggregators that bundle several upstream
// sources behind one URL.
var multiEmbedHosts = []string{
	"multiembed.",
	"2embed.",
	"vidsrc.",
}

// platformHosts are video platforms that only work through their own
// players.
var platformHosts = []string{
	"youtube.com",
	"youtu.be",
	"drive.google.com",
	"mega.nz",
	"mega.co.nz",
}

// embedMarkers flag generic iframe embed URLs.
var embedMarkers = []string{
	"/embed/",
	"/embed-",
	"embed.",
	"/e/",
}

// progressiveExts are containers the engine can stream progressively.
var progressiveExts = []string{
	".mp4", ".webm", ".mkv", ".avi", ".mov", ".flv", ".ts", ".m4v",
}

// Classify maps a playback URL to its strategy and kind. It is a pure
// function so routing decisions are testable without an engine.
//
// Unknown extensions classify as progressive: upstream playlists carry
// plenty of extension-less direct streams, and the engine will surface a
// real error if the bytes turn out not to be video.
func Classify(rawURL string) Classification {
	url := strings.ToLower(strings.TrimSpace(rawURL))

	for _, host := range multiEmbedHosts {
		if strings.Contains(url, host) {
			return Classification{StrategyEmbedded, KindMultiEmbed}
		}
	}
	for _, host := range platformHosts {
		if strings.Contains(url, host) {
			return Classification{StrategyEmbedded, KindPlatform}
		}
	}

	path := url
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	// DRM-locked manifests go to the embed handler, which owns license
	// negotiation.
	if strings.HasSuffix(path, ".mpd") {
		return Classification{StrategyEmbedded, KindDRM}
	}
	if strings.HasSuffix(path, ".m3u8") {
		return Classification{StrategyDirect, KindHLS}
	}
	for _, ext := range progressiveExts {
		if strings.HasSuffix(path, ext) {
			return Classification{StrategyDirect, KindProgressive}
		}
	}

	for _, marker := range embedMarkers {
		if strings.Contains(url, marker) {
			return Classification{StrategyEmbedded, KindEmbedHost}
		}
	}

	return Classification{StrategyDirect, KindProgressive}
}

// EnhanceURL normalizes a server URL before classification: trims
// whitespace and upgrades protocol-relative URLs.
func EnhanceURL(rawURL string) string {
	url := strings.TrimSpace(rawURL)
	if strings.HasPrefix(url, "//") {
		return "https:" + url
	}
	return url
}

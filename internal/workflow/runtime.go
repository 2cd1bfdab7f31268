package workflow

import (
	"log/slog"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/pkg/storage"
)

// DefaultMaxAudioSize is the audio upload limit applied when Runtime leaves
// MaxAudioSize unset.
const DefaultMaxAudioSize int64 = 50 << 20

// Runtime bundles the dependencies that flows require. It is constructed by
// higher-level composition code from Infrastructure and the analysis client.
type Runtime struct {
	Analysis     analysis.System
	Storage      storage.System
	Logger       *slog.Logger
	MaxAudioSize int64
}

func (rt *Runtime) maxAudioSize() int64 {
	if rt.MaxAudioSize > 0 {
		return rt.MaxAudioSize
	}
	return DefaultMaxAudioSize
}

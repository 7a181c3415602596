package build

import (
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpost/internal/bench"
	"git.home.luguber.info/inful/docpost/internal/config"
	"git.home.luguber.info/inful/docpost/internal/metrics"
	"git.home.luguber.info/inful/docpost/internal/search"
)

// Context is the state shared by every build in one process. It is created
// once at startup and passed to each Driver.
type Context struct {
	// ID identifies the process in logs; each driver run gets its own build id.
	ID          string
	Accumulator *bench.Accumulator
	Recorder    metrics.Recorder
	// Index is nil when search is disabled.
	Index  *search.Builder
	Logger *slog.Logger
}

// NewContext creates the shared state for cfg. A nil recorder records
// nothing; a nil logger uses slog.Default.
func NewContext(cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) (*Context, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	bc := &Context{
		ID:          uuid.NewString(),
		Accumulator: bench.NewAccumulator(),
		Recorder:    recorder,
		Logger:      logger,
	}
	if cfg.Search.Enabled {
		idx, err := search.NewBuilder(cfg.SearchSettings(), bc.Accumulator, logger, search.WithRecorder(recorder))
		if err != nil {
			return nil, err
		}
		bc.Index = idx
	}
	return bc, nil
}

package source

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/19player/internal/domain/song"
)

// Factory builds a new source instance from raw settings.
type Factory func(settings map[string]any) (Source, error)

var (
	// registry holds registered source factories.
	registry   = make(map[song.Kind]Factory)
	registryMu sync.RWMutex
)

// Register registers a source factory for kind.
func Register(kind song.Kind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// Registered returns the registered kinds in display order.
func Registered() []song.Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return lo.Filter(song.Kinds(), func(k song.Kind, _ int) bool {
		_, ok := registry[k]
		return ok
	})
}

// New creates a fresh source of the given kind.
func New(kind song.Kind, settings map[string]any) (Source, error) {
	registryMu.RLock()
	factory, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", kind)
	}

	zlog.Debug().Msgf("creating source: kind=%s settings=%+v", kind, settings)
	src, err := factory(settings)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create source (kind %s)", kind)
	}

	zlog.Info().Msgf("created source: kind=%s name=%s", kind, src.Name())
	return src, nil
}

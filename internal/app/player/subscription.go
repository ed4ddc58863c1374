package player

import (
	"sync"

	"github.com/google/uuid"

	"github.com/osa030/19player/internal/app/notification"
	"github.com/osa030/19player/internal/app/source"
	"github.com/osa030/19player/internal/domain/song"
)

// Subscription delivers session field changes, one channel per field.
// Sends never block the session: values are dropped for a subscriber whose
// buffer is full. All channels are closed once Done is closed.
type Subscription struct {
	ID string

	StateChanged    <-chan PlaybackState
	SongChanged     <-chan *song.Song
	ProgressChanged <-chan Progress
	QueueChanged    <-chan []song.QueueItem
	SourceChanged   <-chan source.Source
	SongsChanged    <-chan []song.Song
	ErrorChanged    <-chan ErrorInfo
	Done            <-chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// topics holds one notification topic per observable field.
type topics struct {
	state    *notification.Topic[PlaybackState]
	song     *notification.Topic[*song.Song]
	progress *notification.Topic[Progress]
	queue    *notification.Topic[[]song.QueueItem]
	source   *notification.Topic[source.Source]
	songs    *notification.Topic[[]song.Song]
	err      *notification.Topic[ErrorInfo]

	mu   sync.Mutex
	subs map[string]*Subscription
}

func newTopics(bufferSize int) *topics {
	return &topics{
		state:    notification.NewTopic[PlaybackState](bufferSize),
		song:     notification.NewTopic[*song.Song](bufferSize),
		progress: notification.NewTopic[Progress](bufferSize),
		queue:    notification.NewTopic[[]song.QueueItem](bufferSize),
		source:   notification.NewTopic[source.Source](bufferSize),
		songs:    notification.NewTopic[[]song.Song](bufferSize),
		err:      notification.NewTopic[ErrorInfo](bufferSize),
		subs:     make(map[string]*Subscription),
	}
}

func (t *topics) subscribe() *Subscription {
	id := uuid.New().String()
	done := make(chan struct{})
	sub := &Subscription{
		ID:              id,
		StateChanged:    t.state.Subscribe(id),
		SongChanged:     t.song.Subscribe(id),
		ProgressChanged: t.progress.Subscribe(id),
		QueueChanged:    t.queue.Subscribe(id),
		SourceChanged:   t.source.Subscribe(id),
		SongsChanged:    t.songs.Subscribe(id),
		ErrorChanged:    t.err.Subscribe(id),
		Done:            done,
		done:            done,
	}

	t.mu.Lock()
	if t.subs == nil {
		// Closed
		t.mu.Unlock()
		sub.close()
		return sub
	}
	t.subs[id] = sub
	t.mu.Unlock()
	return sub
}

func (t *topics) unsubscribe(sub *Subscription) {
	t.mu.Lock()
	if t.subs != nil {
		delete(t.subs, sub.ID)
	}
	t.mu.Unlock()

	t.state.Unsubscribe(sub.ID)
	t.song.Unsubscribe(sub.ID)
	t.progress.Unsubscribe(sub.ID)
	t.queue.Unsubscribe(sub.ID)
	t.source.Unsubscribe(sub.ID)
	t.songs.Unsubscribe(sub.ID)
	t.err.Unsubscribe(sub.ID)
	sub.close()
}

func (t *topics) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *topics) close() {
	t.mu.Lock()
	subs := t.subs
	t.subs = nil
	t.mu.Unlock()

	t.state.Close()
	t.song.Close()
	t.progress.Close()
	t.queue.Close()
	t.source.Close()
	t.songs.Close()
	t.err.Close()
	for _, sub := range subs {
		sub.close()
	}
}

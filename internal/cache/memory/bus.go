// Package memory provides in-process stand-ins for the Redis-backed cache
// interfaces, used when no Redis address is configured.
package memory

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// streamMaxLen caps each in-process stream; older entries are trimmed.
const streamMaxLen = 1000

// Bus is an in-process domain.SignalBus and domain.EventStream. Slow
// subscribers drop messages rather than block publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	streamMu sync.Mutex
	streams  map[string]*stream
}

type stream struct {
	seq     uint64
	entries []streamEntry
}

type streamEntry struct {
	seq     uint64
	payload []byte
}

type subscriber struct {
	pattern string
	ch      chan []byte
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:    make(map[*subscriber]struct{}),
		streams: make(map[string]*stream),
	}
}

// Publish delivers payload to every subscriber whose pattern matches channel.
func (b *Bus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if ok, _ := path.Match(s.pattern, channel); !ok {
			continue
		}
		select {
		case s.ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers for channel (glob patterns allowed). The returned
// channel closes when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	s := &subscriber{pattern: channel, ch: make(chan []byte, 128)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, s)
		close(s.ch)
		b.mu.Unlock()
	}()
	return s.ch, nil
}

// StreamAppend records payload on name. IDs follow the Redis "<n>-0" shape.
func (b *Bus) StreamAppend(_ context.Context, name string, payload []byte) error {
	b.streamMu.Lock()
	defer b.streamMu.Unlock()
	st, ok := b.streams[name]
	if !ok {
		st = &stream{}
		b.streams[name] = st
	}
	st.seq++
	st.entries = append(st.entries, streamEntry{seq: st.seq, payload: append([]byte(nil), payload...)})
	if over := len(st.entries) - streamMaxLen; over > 0 {
		st.entries = append(st.entries[:0:0], st.entries[over:]...)
	}
	return nil
}

// StreamRead returns up to count entries after lastID ("0" for the start).
// A count of zero or less returns everything.
func (b *Bus) StreamRead(_ context.Context, name, lastID string, count int) ([]domain.StreamMessage, error) {
	after, err := parseStreamID(lastID)
	if err != nil {
		return nil, err
	}

	b.streamMu.Lock()
	defer b.streamMu.Unlock()
	st, ok := b.streams[name]
	if !ok {
		return nil, nil
	}
	var out []domain.StreamMessage
	for _, e := range st.entries {
		if e.seq <= after {
			continue
		}
		out = append(out, domain.StreamMessage{
			ID:      strconv.FormatUint(e.seq, 10) + "-0",
			Payload: append([]byte(nil), e.payload...),
		})
		if count > 0 && len(out) == count {
			break
		}
	}
	return out, nil
}

func parseStreamID(id string) (uint64, error) {
	ms, _, _ := strings.Cut(id, "-")
	n, err := strconv.ParseUint(ms, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("memory: invalid stream id %q", id)
	}
	return n, nil
}

var (
	_ domain.SignalBus   = (*Bus)(nil)
	_ domain.EventStream = (*Bus)(nil)
)

package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const changeChannel = "tutorhub:changes"

// Publisher is the write side of the bus; repositories publish a change
// event after each successful insert/update.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Filter selects the events a subscription receives. Empty Ops means all
// operations on the table.
type Filter struct {
	Table string
	Ops   []Op
}

func (f Filter) match(e Event) bool {
	if f.Table != "" && f.Table != e.Table {
		return false
	}
	if len(f.Ops) == 0 {
		return true
	}
	for _, op := range f.Ops {
		if op == e.Op {
			return true
		}
	}
	return false
}

type Handler func(Event)

// Bus fans row-level change events out to per-feed subscriptions. Local
// publishes are dispatched in process; when redis is available they are also
// relayed over pub/sub so every instance sees every change. Events relayed
// back to their own origin are skipped.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64

	rdb      *redis.Client
	originID string
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}

	warnedRedis atomic.Bool
}

type busEnvelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

func NewBus(rdb *redis.Client, logger *zap.Logger) *Bus {
	b := &Bus{
		subs:     make(map[uint64]*Subscription),
		rdb:      rdb,
		originID: uuid.NewString(),
		logger:   logger,
		done:     make(chan struct{}),
	}

	if rdb != nil {
		ctx, cancel := context.WithCancel(context.Background())
		b.cancel = cancel
		go b.relayLoop(ctx)
	} else {
		close(b.done)
	}
	return b
}

func (b *Bus) relayLoop(ctx context.Context) {
	defer close(b.done)

	pubsub := b.rdb.Subscribe(ctx, changeChannel)
	defer func() {
		_ = pubsub.Close()
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env busEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				if b.logger != nil {
					b.logger.Warn("realtime: dropping malformed relay message", zap.Error(err))
				}
				continue
			}
			if env.Origin == b.originID {
				continue
			}
			b.dispatch(env.Event)
		}
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.dispatch(e)

	if b.rdb == nil {
		return
	}
	payload, err := json.Marshal(busEnvelope{Origin: b.originID, Event: e})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, changeChannel, payload).Err(); err != nil {
		if b.logger != nil && b.warnedRedis.CompareAndSwap(false, true) {
			b.logger.Warn("realtime: redis relay unavailable, events stay local", zap.Error(err))
		}
	}
}

func (b *Bus) dispatch(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if !s.filter.match(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			if b.logger != nil {
				b.logger.Warn("realtime: subscriber buffer full, event dropped",
					zap.String("table", e.Table), zap.String("op", string(e.Op)))
			}
		}
	}
}

// Subscribe registers a handler for events matching f. The handler runs on a
// dedicated goroutine owned by the subscription; callers must Close the
// subscription when the owning feed goes away.
func (b *Bus) Subscribe(f Filter, h Handler) *Subscription {
	s := &Subscription{
		bus:    b,
		filter: f,
		ch:     make(chan Event, 64),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.nextID++
	s.id = b.nextID
	b.subs[s.id] = s
	b.mu.Unlock()

	go func() {
		defer close(s.done)
		for e := range s.ch {
			h(e)
		}
	}()
	return s
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Close tears down the redis relay and every remaining subscription.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if b.cancel != nil {
		b.cancel()
	}
	<-b.done

	b.mu.Lock()
	remaining := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		remaining = append(remaining, s)
	}
	b.mu.Unlock()

	for _, s := range remaining {
		s.Close()
	}
}

// Subscription is one feed's registration on the bus. Close is idempotent
// and blocks until the handler goroutine has drained and exited.
type Subscription struct {
	id     uint64
	bus    *Bus
	filter Filter
	ch     chan Event
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.bus.remove(s.id)
		close(s.ch)
	})
	<-s.done
}

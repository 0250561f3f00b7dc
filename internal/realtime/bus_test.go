package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type eventCollector struct {
	mu     sync.Mutex
	events []Event
}

func (c *eventCollector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *eventCollector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestBus_DispatchRespectsFilter(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	all := &eventCollector{}
	inserts := &eventCollector{}
	other := &eventCollector{}

	subAll := bus.Subscribe(Filter{Table: TableMessages}, all.handle)
	defer subAll.Close()
	subInserts := bus.Subscribe(Filter{Table: TableMessages, Ops: []Op{OpInsert}}, inserts.handle)
	defer subInserts.Close()
	subOther := bus.Subscribe(Filter{Table: TableNotifications}, other.handle)
	defer subOther.Close()

	bus.Publish(context.Background(), NewEvent(TableMessages, OpInsert, MessagePayload{ID: "1"}))
	bus.Publish(context.Background(), NewEvent(TableMessages, OpUpdate, MessagePayload{ID: "2"}))

	waitFor(t, func() bool { return len(all.snapshot()) == 2 })
	waitFor(t, func() bool { return len(inserts.snapshot()) == 1 })

	if got := inserts.snapshot(); got[0].Op != OpInsert {
		t.Fatalf("insert-only subscription received %s", got[0].Op)
	}
	if len(other.snapshot()) != 0 {
		t.Fatalf("notification subscription must not see message events")
	}
}

func TestBus_SubscriptionCloseStopsDelivery(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	c := &eventCollector{}
	sub := bus.Subscribe(Filter{Table: TableMatches}, c.handle)

	bus.Publish(context.Background(), NewEvent(TableMatches, OpInsert, MatchPayload{RequirementID: "r"}))
	waitFor(t, func() bool { return len(c.snapshot()) == 1 })

	sub.Close()
	sub.Close() // idempotent

	bus.Publish(context.Background(), NewEvent(TableMatches, OpInsert, MatchPayload{RequirementID: "r2"}))
	time.Sleep(20 * time.Millisecond)
	if len(c.snapshot()) != 1 {
		t.Fatalf("closed subscription still receiving events")
	}
}

func TestBus_CloseTearsDownSubscriptions(t *testing.T) {
	bus := NewBus(nil, nil)

	c := &eventCollector{}
	bus.Subscribe(Filter{}, c.handle)
	bus.Subscribe(Filter{Table: TableRequirements}, c.handle)

	bus.Close()
	// goleak in TestMain verifies the handler goroutines are gone.
}

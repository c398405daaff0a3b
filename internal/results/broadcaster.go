package results

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
)

// FrameTally is the WebSocket event name carrying a tally snapshot.
const FrameTally = "tally"

// Publisher delivers a tally frame to everyone watching an event. Implemented
// by the realtime hub.
type Publisher interface {
	BroadcastToEventAndPublish(eventID uuid.UUID, event string, payload interface{})
}

// Broadcaster pushes periodic tally snapshots to occupied event rooms. A
// room's ticker starts when its first listener connects and stops when the
// last one leaves, so idle events cost nothing. Votes trigger an immediate
// push on top of the cadence.
type Broadcaster struct {
	service  *Service
	pub      Publisher
	logger   *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	tickers map[uuid.UUID]context.CancelFunc
	closed  bool
}

// NewBroadcaster creates a tally broadcaster with the given push cadence.
func NewBroadcaster(service *Service, pub Publisher, interval time.Duration, logger *zap.Logger) *Broadcaster {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Broadcaster{
		service:  service,
		pub:      pub,
		logger:   logger,
		interval: interval,
		tickers:  make(map[uuid.UUID]context.CancelFunc),
	}
}

// OnOccupancyChange reacts to room occupancy. Wire it to the hub's
// occupancy handler.
func (b *Broadcaster) OnOccupancyChange(eventID uuid.UUID, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	_, running := b.tickers[eventID]
	switch {
	case count > 0 && !running:
		ctx, cancel := context.WithCancel(context.Background())
		b.tickers[eventID] = cancel
		go b.run(ctx, eventID)
	case count == 0 && running:
		b.tickers[eventID]()
		delete(b.tickers, eventID)
	}
}

// PushNow computes and broadcasts a fresh snapshot immediately. Wire it to
// the votes service hook so a cast shows up without waiting for the tick.
func (b *Broadcaster) PushNow(ctx context.Context, eventID uuid.UUID) {
	b.push(ctx, eventID)
}

// ServeRequest computes a snapshot for a single listener, typically right
// after it joins a room.
func (b *Broadcaster) ServeRequest(eventID uuid.UUID, deliver func(event string, payload interface{})) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := b.service.Compute(ctx, eventID)
	if err != nil {
		return
	}
	deliver(FrameTally, result)
}

// Close stops all room tickers.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, cancel := range b.tickers {
		cancel()
		delete(b.tickers, id)
	}
}

func (b *Broadcaster) run(ctx context.Context, eventID uuid.UUID) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.push(ctx, eventID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.push(ctx, eventID)
		}
	}
}

func (b *Broadcaster) push(ctx context.Context, eventID uuid.UUID) {
	result, err := b.service.Compute(ctx, eventID)
	if err != nil {
		if !models.IsKind(err, models.ErrEventNotFound) {
			b.logger.Warn("tally push failed", zap.String("event_id", eventID.String()), zap.Error(err))
		}
		return
	}
	b.pub.BroadcastToEventAndPublish(eventID, FrameTally, result)
}

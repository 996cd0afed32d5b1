package events

import (
	"context"
	"encoding/json"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

// Event names carried on the dog-events topic.
const (
	EventNewLostDog      = "newLostDog"
	EventNewFoundDog     = "newFoundDog"
	EventUpdatedLostDog  = "updatedLostDog"
	EventUpdatedFoundDog = "updatedFoundDog"
	EventMatchDeleted    = "matchDeleted"
	EventDogReunited     = "dogReunited"
)

const publishTimeout = 15 * time.Second

// DogEvent is the JSON payload published for every report lifecycle change.
type DogEvent struct {
	Event      string    `json:"event"`
	PetID      int64     `json:"pet_id"`
	Category   string    `json:"category,omitempty"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type gcpPublisher struct {
	p *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.p.Publish(ctx, msg)
}

// Broadcaster emits lifecycle events without ever failing the caller.
// Publish errors are logged and dropped.
type Broadcaster struct {
	pub  publisher
	logg *logger.Logger
}

// NewBroadcaster wraps a Pub/Sub publisher handle. A nil handle yields a
// broadcaster that drops everything, which keeps local dev working without GCP.
func NewBroadcaster(pub *gcppubsub.Publisher, logg *logger.Logger) *Broadcaster {
	b := &Broadcaster{logg: logg}
	if pub != nil {
		b.pub = gcpPublisher{p: pub}
	}
	return b
}

func newBroadcasterWithPublisher(pub publisher, logg *logger.Logger) *Broadcaster {
	return &Broadcaster{pub: pub, logg: logg}
}

// DogReported emits newLostDog or newFoundDog for a freshly stored report.
func (b *Broadcaster) DogReported(ctx context.Context, dog *models.Dog) {
	event := EventNewLostDog
	if dog.Category.IsFound() {
		event = EventNewFoundDog
	}
	b.emit(ctx, dogEventFor(event, dog))
}

// DogUpdated emits updatedLostDog or updatedFoundDog after an edit.
func (b *Broadcaster) DogUpdated(ctx context.Context, dog *models.Dog) {
	event := EventUpdatedLostDog
	if dog.Category.IsFound() {
		event = EventUpdatedFoundDog
	}
	b.emit(ctx, dogEventFor(event, dog))
}

// DogReunited emits dogReunited for the lost report that was claimed.
func (b *Broadcaster) DogReunited(ctx context.Context, dog *models.Dog) {
	b.emit(ctx, dogEventFor(EventDogReunited, dog))
}

// MatchDeleted emits matchDeleted for the removed report.
func (b *Broadcaster) MatchDeleted(ctx context.Context, petID int64) {
	b.emit(ctx, DogEvent{
		Event:      EventMatchDeleted,
		PetID:      petID,
		OccurredAt: time.Now().UTC(),
	})
}

func dogEventFor(event string, dog *models.Dog) DogEvent {
	return DogEvent{
		Event:      event,
		PetID:      dog.PetID,
		Category:   dog.Category.String(),
		Name:       dog.Name,
		OccurredAt: time.Now().UTC(),
	}
}

func (b *Broadcaster) emit(parent context.Context, event DogEvent) {
	if b == nil || b.pub == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logError(parent, event, err)
		return
	}

	// Detach from the request context so in-flight publishes survive the
	// response being written.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), publishTimeout)
	result := b.pub.Publish(ctx, &gcppubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event": event.Event},
	})

	go func() {
		defer cancel()
		if _, err := result.Get(ctx); err != nil {
			b.logError(ctx, event, err)
		}
	}()
}

func (b *Broadcaster) logError(ctx context.Context, event DogEvent, err error) {
	if b.logg == nil {
		return
	}
	ctx = b.logg.WithFields(ctx, map[string]any{
		"event":  event.Event,
		"pet_id": event.PetID,
	})
	b.logg.Error(ctx, "dog event publish failed", err)
}

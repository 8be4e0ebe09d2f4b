package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Dosada05/tournament-brackets/metrics"
	"github.com/Dosada05/tournament-brackets/services"
)

type subjectSubscriber interface {
	Subscribe(ctx context.Context, subject string) (<-chan *message.Message, error)
}

// RosterConsumer drives the bracket watcher from team added events.
type RosterConsumer struct {
	subscriber subjectSubscriber
	service    services.BracketService
	metrics    metrics.Metrics
	logger     *slog.Logger
}

func NewRosterConsumer(
	subscriber subjectSubscriber,
	service services.BracketService,
	m metrics.Metrics,
	logger *slog.Logger,
) *RosterConsumer {
	return &RosterConsumer{
		subscriber: subscriber,
		service:    service,
		metrics:    m,
		logger:     logger,
	}
}

// Start subscribes to the roster subject and processes messages until the
// context is cancelled or the channel closes.
func (c *RosterConsumer) Start(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, TeamAddedSubject)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TeamAddedSubject, err)
	}

	go c.process(ctx, messages)
	return nil
}

func (c *RosterConsumer) process(ctx context.Context, messages <-chan *message.Message) {
	c.logger.Info("roster consumer started", slog.String("subject", TeamAddedSubject))
	defer c.logger.Info("roster consumer stopped", slog.String("subject", TeamAddedSubject))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.dispatch(ctx, msg)
		}
	}
}

// dispatch settles a single message. Nack hands it back to JetStream for
// redelivery, so the retry policy lives in the broker rather than here.
func (c *RosterConsumer) dispatch(ctx context.Context, msg *message.Message) {
	if err := c.handle(ctx, msg); err != nil {
		c.metrics.IncRosterEventFailure()
		c.logger.Error("roster event failed",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err))
		msg.Nack()
		return
	}
	msg.Ack()
}

// handle returns nil for every expected outcome; only watcher defects and
// collaborator failures come back as errors.
func (c *RosterConsumer) handle(ctx context.Context, msg *message.Message) error {
	var event TeamAdded
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		// Poison message: redelivering it would fail forever, so log,
		// count, and let it ack.
		c.metrics.IncRosterEventFailure()
		c.logger.Error("failed to unmarshal team added event",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err))
		return nil
	}

	outcome, err := c.service.HandleRosterChange(ctx, event.TournamentID, event.GroupID)
	if err != nil {
		return fmt.Errorf("roster change for group %s: %w", event.GroupID, err)
	}

	c.metrics.IncRosterEvent(string(outcome))
	c.logger.Info("roster event handled",
		slog.String("message_id", msg.UUID),
		slog.String("tournament_id", event.TournamentID),
		slog.String("group_id", event.GroupID),
		slog.String("outcome", string(outcome)))
	return nil
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Dosada05/tournament-brackets/services"
)

const clientName = "tournament-brackets"

var _ services.RosterEventPublisher = (*Bus)(nil)

// Bus owns the NATS connection and the Watermill publisher/subscriber pair
// built on top of it.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	js         jetstream.JetStream
	natsConn   *nc.Conn
	logger     *slog.Logger
}

// NewBus connects to NATS and wires JetStream-backed Watermill endpoints.
func NewBus(natsURL string, logger *slog.Logger) (*Bus, error) {
	natsOptions := []nc.Option{
		nc.Name(clientName),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	natsConn, err := nc.Connect(natsURL, natsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: natsOptions,
			Marshaler:   marshaler,
			JetStream: nats.JetStreamConfig{
				AutoProvision: false,
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              natsURL,
			QueueGroupPrefix: clientName,
			CloseTimeout:     30 * time.Second,
			AckWaitTimeout:   30 * time.Second,
			NatsOptions:      natsOptions,
			Unmarshaler:      marshaler,
			JetStream: nats.JetStreamConfig{
				AutoProvision: false,
				DurablePrefix: clientName,
				SubscribeOptions: []nc.SubOpt{
					nc.DeliverAll(),
					nc.AckExplicit(),
				},
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &Bus{
		publisher:  publisher,
		subscriber: subscriber,
		js:         js,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// EnsureStream provisions the tournament stream when it does not exist yet.
// Both publisher and subscriber run with AutoProvision off, so the stream
// layout is owned here and nowhere else.
func (b *Bus) EnsureStream(ctx context.Context) error {
	_, err := b.js.Stream(ctx, TournamentStream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to check stream %s: %w", TournamentStream, err)
	}

	_, err = b.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     TournamentStream,
		Subjects: []string{TournamentStreamSubjects},
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", TournamentStream, err)
	}

	b.logger.Info("stream created",
		slog.String("stream", TournamentStream),
		slog.String("subjects", TournamentStreamSubjects))
	return nil
}

// PublishTeamAdded implements services.RosterEventPublisher.
func (b *Bus) PublishTeamAdded(ctx context.Context, tournamentID, groupID, teamID string) error {
	payload, err := json.Marshal(TeamAdded{
		TournamentID: tournamentID,
		GroupID:      groupID,
		TeamID:       teamID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal team added event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(TeamAddedSubject, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", TeamAddedSubject, err)
	}

	b.logger.Debug("team added event published",
		slog.String("message_id", msg.UUID),
		slog.String("tournament_id", tournamentID),
		slog.String("group_id", groupID),
		slog.String("team_id", teamID))
	return nil
}

// Subscribe hands out the raw Watermill message channel for a subject.
func (b *Bus) Subscribe(ctx context.Context, subject string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, subject)
}

// Close releases the Watermill endpoints and the underlying connection.
func (b *Bus) Close() error {
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			b.logger.Error("failed to close publisher", slog.Any("error", err))
		}
	}
	if b.subscriber != nil {
		if err := b.subscriber.Close(); err != nil {
			b.logger.Error("failed to close subscriber", slog.Any("error", err))
		}
	}
	if b.natsConn != nil {
		b.natsConn.Close()
	}
	return nil
}

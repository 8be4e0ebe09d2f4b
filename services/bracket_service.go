package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-brackets/brackets"
	"github.com/Dosada05/tournament-brackets/metrics"
	"github.com/Dosada05/tournament-brackets/models"
	"github.com/Dosada05/tournament-brackets/repositories"
	"github.com/Dosada05/tournament-brackets/storage"
)

// RosterChangeOutcome reports how a roster-change notification was
// resolved. Expected short-circuits are outcomes with a nil error; only
// defects and collaborator failures surface as errors.
type RosterChangeOutcome string

const (
	OutcomeBracketCreated   RosterChangeOutcome = "bracket_created"
	OutcomeWaitingForTeams  RosterChangeOutcome = "waiting_for_teams"
	OutcomeAlreadyGenerated RosterChangeOutcome = "already_generated"
	OutcomeGroupNotFound    RosterChangeOutcome = "group_not_found"
)

type BracketService interface {
	HandleRosterChange(ctx context.Context, tournamentID, groupID string) (RosterChangeOutcome, error)
	ReconcilePendingBrackets(ctx context.Context) error
}

type bracketService struct {
	groupRepo repositories.GroupRepository
	matchRepo repositories.MatchRepository
	generator brackets.Generator
	hub       *brackets.Hub
	uploader  storage.FileUploader
	metrics   metrics.Metrics
	logger    *slog.Logger
}

// NewBracketService wires the roster watcher. hub and uploader may be nil:
// announcements and snapshot archiving are optional side effects.
func NewBracketService(
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.Generator,
	hub *brackets.Hub,
	uploader storage.FileUploader,
	m metrics.Metrics,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		groupRepo: groupRepo,
		matchRepo: matchRepo,
		generator: generator,
		hub:       hub,
		uploader:  uploader,
		metrics:   m,
		logger:    logger,
	}
}

// HandleRosterChange runs once per roster-change notification. Duplicate
// and concurrent deliveries are safe: the advisory ExistsForGroup check
// catches most replays, and the group_brackets uniqueness constraint
// inside CreateBulk settles the rest.
func (s *bracketService) HandleRosterChange(ctx context.Context, tournamentID, groupID string) (RosterChangeOutcome, error) {
	group, err := s.groupRepo.FindByTournamentAndGroup(ctx, tournamentID, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			// Expected race: the group can be deleted between the
			// notification firing and this handler running.
			s.logger.Warn("roster change for unknown group",
				slog.String("tournament_id", tournamentID),
				slog.String("group_id", groupID))
			return OutcomeGroupNotFound, nil
		}
		return "", fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	if group.TeamCount != brackets.RequiredTeams {
		if group.TeamCount > brackets.RequiredTeams {
			s.logger.Warn("group roster exceeds bracket size",
				slog.String("group_id", groupID),
				slog.Int("team_count", group.TeamCount),
				slog.Int("required", brackets.RequiredTeams))
		} else {
			s.logger.Info("group roster not complete yet",
				slog.String("group_id", groupID),
				slog.Int("team_count", group.TeamCount),
				slog.Int("required", brackets.RequiredTeams))
		}
		return OutcomeWaitingForTeams, nil
	}

	exists, err := s.matchRepo.ExistsForGroup(ctx, tournamentID, groupID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing matches for group %s: %w", groupID, err)
	}
	if exists {
		return OutcomeAlreadyGenerated, nil
	}

	matches, err := s.generator.GenerateMatches(tournamentID, groupID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBracketInvariant, err)
	}
	if len(matches) != brackets.TotalMatches {
		// The generator asserts this itself; re-check before anything
		// touches storage.
		return "", fmt.Errorf("%w: generator returned %d matches, want %d",
			ErrBracketInvariant, len(matches), brackets.TotalMatches)
	}

	start := time.Now()
	ids, err := s.matchRepo.CreateBulk(ctx, matches)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketAlreadyExists) {
			// Lost the storage race against a duplicate notification; the
			// concurrent run owns the bracket.
			s.logger.Info("bracket already persisted by concurrent run",
				slog.String("tournament_id", tournamentID),
				slog.String("group_id", groupID))
			return OutcomeAlreadyGenerated, nil
		}
		return "", fmt.Errorf("failed to persist bracket for group %s: %w", groupID, err)
	}
	s.metrics.ObserveBracketPersistDuration(time.Since(start).Seconds())

	if len(ids) != brackets.TotalMatches {
		return "", fmt.Errorf("%w: store created %d of %d matches",
			ErrBracketPersistence, len(ids), brackets.TotalMatches)
	}

	s.metrics.IncBracketsGenerated()
	s.logger.Info("bracket generated",
		slog.String("tournament_id", tournamentID),
		slog.String("group_id", groupID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("matches", len(ids)))

	s.announceBracket(tournamentID, groupID, len(ids))
	s.archiveBracket(ctx, tournamentID, groupID, matches)

	return OutcomeBracketCreated, nil
}

// ReconcilePendingBrackets re-drives groups whose roster is complete but
// which have no bracket yet, covering notifications lost in transit. Each
// group goes through the same idempotent HandleRosterChange path; one
// failing group does not stop the sweep.
func (s *bracketService) ReconcilePendingBrackets(ctx context.Context) error {
	groups, err := s.groupRepo.ListRosterCompleteWithoutBracket(ctx, brackets.RequiredTeams)
	if err != nil {
		return fmt.Errorf("failed to list groups pending bracket generation: %w", err)
	}
	if len(groups) == 0 {
		return nil
	}

	s.logger.Info("reconciling groups without brackets", slog.Int("count", len(groups)))
	for _, group := range groups {
		outcome, err := s.HandleRosterChange(ctx, group.TournamentID, group.ID)
		if err != nil {
			s.logger.Error("reconcile failed for group",
				slog.String("tournament_id", group.TournamentID),
				slog.String("group_id", group.ID),
				slog.Any("error", err))
			continue
		}
		s.logger.Info("reconcile handled group",
			slog.String("group_id", group.ID),
			slog.String("outcome", string(outcome)))
	}
	return nil
}

func (s *bracketService) announceBracket(tournamentID, groupID string, matchCount int) {
	if s.hub == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type: "BRACKET_CREATED",
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"group_id":      groupID,
			"match_count":   matchCount,
		},
		RoomID: room,
	})
}

// archiveBracket uploads a JSON snapshot of the generated bracket. Best
// effort: archive storage being down must not fail bracket creation.
func (s *bracketService) archiveBracket(ctx context.Context, tournamentID, groupID string, matches []models.Match) {
	if s.uploader == nil {
		return
	}

	body, err := json.Marshal(matches)
	if err != nil {
		s.metrics.IncBracketArchiveFailure()
		s.logger.Error("failed to marshal bracket snapshot",
			slog.String("group_id", groupID),
			slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("brackets/%s/%s.json", tournamentID, groupID)
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
		s.metrics.IncBracketArchiveFailure()
		s.logger.Error("failed to archive bracket snapshot",
			slog.String("key", key),
			slog.Any("error", err))
		return
	}
	s.logger.Info("bracket snapshot archived", slog.String("key", key))
}

// ABOUTME: Restore service: probe, fetch, staged build, and one atomic commit.
// ABOUTME: Progress and errors are published through State and OnChange.
package restore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/drillbook/internal/auth"
	"github.com/harperreed/drillbook/internal/cloud"
	"github.com/harperreed/drillbook/internal/graph"
	"github.com/harperreed/drillbook/internal/models"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GraphStore is the local persistence the service writes to.
type GraphStore interface {
	SaveGraph(ctx context.Context, p *models.Player) error
	FindPlayerByAuthID(ctx context.Context, authID string) (*models.Player, error)
	UpdateGamification(ctx context.Context, playerID uuid.UUID, g models.Gamification, syncedAt time.Time) error
	AddOwnedItems(ctx context.Context, playerID uuid.UUID, items []*models.OwnedAvatarItem) (int, error)
}

// Progress reached after each stage.
const (
	ProgressFetch  = 0.1
	ProgressCommit = 1.0
)

var stepProgress = map[string]float64{
	graph.StepPlayer:       0.2,
	graph.StepProfile:      0.3,
	graph.StepGamification: 0.4,
	graph.StepAvatar:       0.5,
	graph.StepOwnedItems:   0.55,
	graph.StepGoals:        0.6,
	graph.StepExercises:    0.7,
	graph.StepSessions:     0.8,
	graph.StepPlans:        0.9,
}

// Service restores player graphs from the cloud into local storage. Concurrent
// Restore calls for the same user must be serialized by the caller.
type Service struct {
	reader cloud.Reader
	store  GraphStore
	authn  auth.Authenticator
	logger *slog.Logger
	now    func() time.Time
	newID  func() uuid.UUID

	mu      sync.Mutex
	state   State
	subs    []subscriber
	nextSub int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for sync stamps and streak freshness.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the source of fallback player ids.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires a restore service.
func NewService(reader cloud.Reader, store GraphStore, authn auth.Authenticator, opts ...Option) *Service {
	s := &Service{
		reader: reader,
		store:  store,
		authn:  authn,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.New,
		state:  State{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProbeCloudData reports whether the cloud holds data for userID. It never fails.
func (s *Service) ProbeCloudData(ctx context.Context, userID string) bool {
	ok := s.reader.HasData(ctx, userID)
	s.logger.Debug("probed cloud data", "user_id", userID, "found", ok)
	return ok
}

// authorize checks that the signed-in subject owns userID.
func (s *Service) authorize(ctx context.Context, userID string) error {
	subject, err := s.authn.Subject(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if subject != userID {
		return fmt.Errorf("%w: signed in as %q, not %q", ErrNotAuthenticated, subject, userID)
	}
	return nil
}

// Restore fetches userID's snapshot, builds the player graph, and commits it
// in one transaction. On failure nothing is written and the error is recorded
// in State.LastError.
func (s *Service) Restore(ctx context.Context, userID string) (*models.Player, error) {
	runID := ulid.Make().String()
	log := s.logger.With("run_id", runID, "user_id", userID)
	start := time.Now()

	ctx, span := startRestoreSpan(ctx, userID, runID)
	defer span.End()

	if err := s.authorize(ctx, userID); err != nil {
		s.update(func(st *State) {
			st.LastError = err.Error()
			st.Phase = PhaseFailed
			st.RunID = runID
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "not authenticated")
		recordRestore(ctx, time.Since(start), "unauthenticated")
		log.Warn("restore refused", "error", err)
		return nil, err
	}

	s.begin(runID)
	player, err := s.run(ctx, log, span, userID)
	if err != nil {
		s.fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordRestore(ctx, time.Since(start), outcome(err))
		log.Error("restore failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	s.finish()
	span.SetStatus(codes.Ok, "")
	recordRestore(ctx, time.Since(start), "success")
	log.Info("restore complete",
		"player_id", player.ID,
		"sessions", len(player.Sessions),
		"plans", len(player.Plans),
		"duration", time.Since(start))
	return player, nil
}

func (s *Service) run(ctx context.Context, log *slog.Logger, span trace.Span, userID string) (*models.Player, error) {
	snap, err := s.reader.FetchAll(ctx, userID)
	if err != nil {
		return nil, failed("fetch snapshot", err)
	}
	if snap.Empty() {
		return nil, ErrNoDataFound
	}
	s.advance(ProgressFetch, PhaseFetch)
	span.AddEvent(PhaseFetch, trace.WithAttributes(attribute.Int("records", snap.RecordCount())))
	log.Debug("fetched snapshot", "records", snap.RecordCount())

	b := graph.NewBuilder(snap, s.newID(), s.now()).ForUser(userID)
	for _, step := range b.Steps() {
		if err := ctx.Err(); err != nil {
			return nil, failed("cancelled before "+step.Name, err)
		}
		if err := step.Run(); err != nil {
			return nil, failed("build "+step.Name, err)
		}
		s.advance(stepProgress[step.Name], step.Name)
		span.AddEvent(step.Name)
		log.Debug("built step", "step", step.Name)
	}
	if n := b.Skipped(); n > 0 {
		log.Info("skipped duplicate or unusable records", "count", n)
	}

	if err := ctx.Err(); err != nil {
		return nil, failed("cancelled before commit", err)
	}
	player := b.Player()
	if err := s.store.SaveGraph(ctx, player); err != nil {
		return nil, failed(PhaseCommit, err)
	}
	span.AddEvent(PhaseCommit)
	return player, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNoDataFound):
		return "no_data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}

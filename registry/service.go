package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"goflare.io/checkout/models"
)

var (
	ErrEmptySessionID = errors.New("session id is required")
	ErrNotTerminal    = errors.New("outcome status is not terminal")
	ErrAlreadySettled = errors.New("session already settled")
)

type Service interface {
	Register(ctx context.Context, sessionID string, order *models.OrderContext) error
	Lookup(ctx context.Context, sessionID string) (*models.OrderContext, bool, error)
	Settle(ctx context.Context, outcome *models.SessionOutcome) error
	Outcome(ctx context.Context, sessionID string) (*models.SessionOutcome, bool, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Register stores a copy of order under sessionID, stamped with the insertion
// time. A second registration of the same id replaces the first.
func (s *service) Register(ctx context.Context, sessionID string, order *models.OrderContext) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	entry := *order
	entry.SessionID = sessionID
	entry.CreatedAt = s.now().UTC()

	if err := s.repo.Put(ctx, sessionID, &entry); err != nil {
		return fmt.Errorf("failed to register session %s: %w", sessionID, err)
	}

	s.logger.Info("Session registered",
		zap.String("session_id", sessionID),
		zap.String("order_id", entry.OrderID),
		zap.String("amount", entry.Amount.String()),
		zap.String("currency", entry.Currency))

	return nil
}

func (s *service) Lookup(ctx context.Context, sessionID string) (*models.OrderContext, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}
	return s.repo.Get(ctx, sessionID)
}

// Settle records the terminal outcome of a session. Only the first outcome is
// kept; later ones get ErrAlreadySettled.
func (s *service) Settle(ctx context.Context, outcome *models.SessionOutcome) error {
	if outcome.SessionID == "" {
		return ErrEmptySessionID
	}
	if !outcome.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrNotTerminal, outcome.Status)
	}

	entry := *outcome
	if entry.SettledAt.IsZero() {
		entry.SettledAt = s.now().UTC()
	}

	stored, err := s.repo.PutOutcome(ctx, &entry)
	if err != nil {
		return fmt.Errorf("failed to settle session %s: %w", outcome.SessionID, err)
	}
	if !stored {
		return ErrAlreadySettled
	}

	s.logger.Info("Session settled",
		zap.String("session_id", entry.SessionID),
		zap.String("status", string(entry.Status)),
		zap.String("source", string(entry.Source)))

	return nil
}

func (s *service) Outcome(ctx context.Context, sessionID string) (*models.SessionOutcome, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}
	return s.repo.GetOutcome(ctx, sessionID)
}

package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
)

// Service reconciles claim history against the store.
type Service struct {
	store  *store.Store
	clock  model.Clock
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock (for testing).
func WithClock(c model.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service backed by st.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		clock:  model.SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddClaimRequest appends rec to the post's claim history.
//
// Returns added=false when the post already has a record for
// rec.MessageID; the existing record is left untouched. A zero RequestedAt
// is stamped with the current time.
//
// New records must be pending; responses go through
// UpdateClaimRequestStatus, so any response fields on rec are cleared.
func (s *Service) AddClaimRequest(ctx context.Context, postID string, rec model.ClaimRecord) (added bool, err error) {
	if rec.Status == "" {
		rec.Status = model.ClaimPending
	}
	if err := rec.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	if rec.Status != model.ClaimPending {
		return false, fmt.Errorf("%w: new claims must be pending, got %s", ErrInvalidClaim, rec.Status)
	}
	rec = rec.Normalized()
	rec.RespondedAt = nil
	rec.ResponderID = ""

	now := s.clock.Now()
	if rec.RequestedAt.IsZero() {
		rec.RequestedAt = now
	}

	_, err = s.store.UpdatePost(ctx, postID, func(p *model.Post) error {
		if p.FindClaim(rec.MessageID) >= 0 {
			return nil
		}
		p.ClaimRequests = append(p.ClaimRequests, rec)
		p.UpdatedAt = now
		added = true
		return nil
	})
	if err != nil {
		return false, translate(err, postID)
	}

	s.logger.Debug("claim request recorded",
		"post", postID, "message", rec.MessageID, "added", added)
	return added, nil
}

// UpdateClaimRequestStatus responds to the claim record identified by
// messageID. The read, check and write happen in one transaction.
//
// Only pending records can change; responding to a terminal record returns
// ErrInvalidTransition. Setting the status a record already has is a no-op.
func (s *Service) UpdateClaimRequestStatus(ctx context.Context, postID, messageID string, status model.ClaimStatus, responderID string) (model.ClaimRecord, error) {
	if !status.Valid() {
		return model.ClaimRecord{}, fmt.Errorf("%w: unknown status %q", ErrInvalidClaim, status)
	}

	var result model.ClaimRecord
	_, err := s.store.UpdatePost(ctx, postID, func(p *model.Post) error {
		i := p.FindClaim(messageID)
		if i < 0 {
			return fmt.Errorf("%w: post %s message %s", ErrClaimNotFound, postID, messageID)
		}

		rec := &p.ClaimRequests[i]
		if rec.Status == status {
			result = *rec
			return nil
		}
		if rec.Status.Terminal() {
			return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, rec.Status, status)
		}

		now := s.clock.Now()
		rec.Status = status
		rec.RespondedAt = &now
		rec.ResponderID = responderID
		p.UpdatedAt = now
		result = *rec
		return nil
	})
	if err != nil {
		return model.ClaimRecord{}, translate(err, postID)
	}

	s.logger.Info("claim request updated",
		"post", postID, "message", messageID, "status", status, "responder", responderID)
	return result, nil
}

// translate maps store errors to this package's sentinels.
func translate(err error, postID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}
	return err
}

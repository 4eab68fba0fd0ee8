// Package turnover moves found items into the custody of the Office of
// Student Affairs or Campus Security and records their collection.
//
//	Initiate → awaiting_confirmation → confirmed | not_received
//
// A post is resolved by MarkCollected once a claim on it has been accepted.
package turnover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
)

var (
	// ErrPostNotFound is returned when the referenced post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrWrongPostType is returned when a lost-item post is turned over.
	ErrWrongPostType = errors.New("only found items can be turned over")

	// ErrInvalidDestination is returned for a destination other than osa or
	// campus_security.
	ErrInvalidDestination = errors.New("invalid turnover destination")

	// ErrInvalidState is returned when the post is not in a state that
	// allows the requested step.
	ErrInvalidState = errors.New("invalid turnover state")
)

// Service runs the turnover workflow.
type Service struct {
	store  *store.Store
	clock  model.Clock
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for turnover and collection timestamps.
func WithClock(c model.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a turnover Service using the wall clock and slog.Default()
// unless overridden by opts.
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

// Initiate records that the finder handed the item to dest.
//
// Only pending found posts can be turned over. A turnover reported as
// not_received may be initiated again.
func (s *Service) Initiate(ctx context.Context, postID string, dest model.TurnoverDestination, by string) (model.Post, error) {
	if !dest.Valid() {
		return model.Post{}, fmt.Errorf("%w: %q", ErrInvalidDestination, dest)
	}

	p, err := s.store.UpdatePost(ctx, postID, func(p *model.Post) error {
		if p.Type != model.PostFound {
			return ErrWrongPostType
		}
		if p.Status != model.PostPending {
			return fmt.Errorf("%w: post is %s", ErrInvalidState, p.Status)
		}
		if p.Turnover != nil && p.Turnover.Status != model.TurnoverNotReceived {
			return fmt.Errorf("%w: turnover already %s", ErrInvalidState, p.Turnover.Status)
		}

		now := s.clock.Now()
		p.Turnover = &model.TurnoverDetails{
			Destination: dest,
			Status:      model.TurnoverAwaiting,
			InitiatedBy: by,
			InitiatedAt: now,
		}
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Post{}, translate(err, postID)
	}

	s.logger.Info("turnover initiated", "post", postID, "destination", dest, "by", by)
	return p, nil
}

// Confirm records the receiving office's answer to a pending turnover.
func (s *Service) Confirm(ctx context.Context, postID string, received bool, by, notes string) (model.Post, error) {
	p, err := s.store.UpdatePost(ctx, postID, func(p *model.Post) error {
		if p.Turnover == nil || p.Turnover.Status != model.TurnoverAwaiting {
			return fmt.Errorf("%w: no turnover awaiting confirmation", ErrInvalidState)
		}

		now := s.clock.Now()
		p.Turnover.Status = model.TurnoverConfirmed
		if !received {
			p.Turnover.Status = model.TurnoverNotReceived
		}
		p.Turnover.ConfirmedBy = by
		p.Turnover.ConfirmedAt = &now
		p.Turnover.Notes = model.NormalizeText(notes)
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Post{}, translate(err, postID)
	}

	s.logger.Info("turnover confirmed", "post", postID, "received", received, "by", by)
	return p, nil
}

// MarkCollected resolves a post once the claimant behind the accepted claim
// messageID has picked the item up.
func (s *Service) MarkCollected(ctx context.Context, postID, messageID, by string) (model.Post, error) {
	p, err := s.store.UpdatePost(ctx, postID, func(p *model.Post) error {
		if p.Status != model.PostPending && p.Status != model.PostUnclaimed {
			return fmt.Errorf("%w: post is %s", ErrInvalidState, p.Status)
		}
		i := p.FindClaim(messageID)
		if i < 0 || p.ClaimRequests[i].Status != model.ClaimAccepted {
			return fmt.Errorf("%w: no accepted claim %s", ErrInvalidState, messageID)
		}
		if p.Turnover != nil && p.Turnover.Status == model.TurnoverAwaiting {
			return fmt.Errorf("%w: turnover awaiting confirmation", ErrInvalidState)
		}

		p.Status = model.PostResolved
		p.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return model.Post{}, translate(err, postID)
	}

	s.logger.Info("item collected", "post", postID, "claim", messageID, "by", by)
	return p, nil
}

func translate(err error, postID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}
	return err
}

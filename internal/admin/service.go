// Package admin implements the password-gated review workflow: list, approve,
// reject, delete, exports and the athlete flyer.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dareleague/registration/internal/pricing"
	"github.com/dareleague/registration/internal/registration"
	"go.uber.org/zap"
)

type Store interface {
	List(ctx context.Context) ([]registration.Registration, error)
	Get(ctx context.Context, id string) (registration.Registration, error)
	UpdateStatus(ctx context.Context, id string, status registration.Status, notes *string) error
	Delete(ctx context.Context, id string) error
}

type ProofStore interface {
	Remove(ctx context.Context, path string) error
}

type URLSigner interface {
	SignedURL(path string, ttl time.Duration) (string, error)
}

// Notifier delivers status-change messages to the athlete. Best effort: a
// failed notification never rolls back the review decision.
type Notifier interface {
	RegistrationApproved(ctx context.Context, reg registration.Registration) error
	RegistrationRejected(ctx context.Context, reg registration.Registration, note string) error
}

type Service struct {
	logger   *zap.Logger
	store    Store
	proofs   ProofStore
	signer   URLSigner
	notifier Notifier
	proofTTL time.Duration
	maxSlots int
}

func NewService(logger *zap.Logger, store Store, proofs ProofStore, signer URLSigner, notifier Notifier, proofTTL time.Duration, maxSlots int) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		proofs:   proofs,
		signer:   signer,
		notifier: notifier,
		proofTTL: proofTTL,
		maxSlots: maxSlots,
	}
}

// Filter narrows the admin list. Zero values mean "no filtering".
type Filter struct {
	Query    string
	Status   string
	Category string
}

// List fetches every registration newest-first and filters in memory, the
// way the dashboard search box works.
func (s *Service) List(ctx context.Context, f Filter) ([]registration.Registration, error) {
	regs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List failed: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]registration.Registration, 0, len(regs))
	for _, r := range regs {
		if query != "" &&
			!strings.Contains(strings.ToLower(r.FullName), query) &&
			!strings.Contains(strings.ToLower(r.RegistrationID), query) {
			continue
		}
		if f.Status != "" && f.Status != "ALL" && string(r.Status) != f.Status {
			continue
		}
		if f.Category != "" && f.Category != "ALL" && string(r.Category) != f.Category {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ErrInvalidTransition signals a review action that the status lifecycle
// does not permit.
var ErrInvalidTransition = errors.New("invalid status transition")

// Approve confirms a payment. Also re-approves a previously rejected
// registration: the stored rejection note is cleared either way.
func (s *Service) Approve(ctx context.Context, id string) (registration.Registration, error) {
	reg, err := s.store.Get(ctx, id)
	if err != nil {
		return registration.Registration{}, err
	}
	if reg.Status == registration.StatusApproved {
		return reg, nil
	}

	if err := s.store.UpdateStatus(ctx, id, registration.StatusApproved, nil); err != nil {
		return registration.Registration{}, fmt.Errorf("Approve failed: %w", err)
	}
	reg.Status = registration.StatusApproved
	reg.RejectionNotes = ""

	if s.notifier != nil {
		if err := s.notifier.RegistrationApproved(ctx, reg); err != nil {
			s.logger.Warn("approval notification failed",
				zap.String("registration_id", reg.RegistrationID), zap.Error(err))
		}
	}
	return reg, nil
}

// Reject marks a payment as problematic with an admin-supplied note, which
// may be empty. Only a pending registration can be rejected.
func (s *Service) Reject(ctx context.Context, id, note string) (registration.Registration, error) {
	reg, err := s.store.Get(ctx, id)
	if err != nil {
		return registration.Registration{}, err
	}
	if reg.Status != registration.StatusPending {
		return registration.Registration{}, ErrInvalidTransition
	}

	if err := s.store.UpdateStatus(ctx, id, registration.StatusRejected, &note); err != nil {
		return registration.Registration{}, fmt.Errorf("Reject failed: %w", err)
	}
	reg.Status = registration.StatusRejected
	reg.RejectionNotes = note

	if s.notifier != nil {
		if err := s.notifier.RegistrationRejected(ctx, reg, note); err != nil {
			s.logger.Warn("rejection notification failed",
				zap.String("registration_id", reg.RegistrationID), zap.Error(err))
		}
	}
	return reg, nil
}

// Delete is irreversible: proof file first, then the record. The only way a
// bucket count ever goes down.
func (s *Service) Delete(ctx context.Context, id string) error {
	reg, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if reg.PaymentProofPath != "" {
		if err := s.proofs.Remove(ctx, reg.PaymentProofPath); err != nil {
			// The record still has to go; an orphan file beats a ghost slot.
			s.logger.Error("proof delete failed",
				zap.String("path", reg.PaymentProofPath), zap.Error(err))
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete failed: %w", err)
	}
	s.logger.Info("registration deleted, slot freed",
		zap.String("registration_id", reg.RegistrationID),
		zap.String("bucket", registration.BucketKey(reg.Category, reg.Gender)))
	return nil
}

// ProofURL issues the time-limited signed link for viewing a stored proof.
func (s *Service) ProofURL(ctx context.Context, id string) (string, error) {
	reg, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if reg.PaymentProofPath == "" {
		return "", registration.ErrNotFound
	}
	url, err := s.signer.SignedURL(reg.PaymentProofPath, s.proofTTL)
	if err != nil {
		return "", fmt.Errorf("ProofURL failed: %w", err)
	}
	return url, nil
}

// Stats is the dashboard header card data.
type Stats struct {
	Total         int   `json:"total"`
	Approved      int   `json:"approved"`
	Pending       int   `json:"pending"`
	Rejected      int   `json:"rejected"`
	Revenue       int64 `json:"revenue"`
	TotalCapacity int   `json:"total_capacity"`
}

// ComputeStats aggregates over a snapshot. Revenue is estimated at the base
// stage price per approved athlete, as the dashboard always has.
func (s *Service) ComputeStats(regs []registration.Registration) Stats {
	basePrice := pricing.Tiers()[0].Price

	stats := Stats{
		Total:         len(regs),
		TotalCapacity: s.maxSlots * len(registration.Categories()) * len(registration.Genders()),
	}
	for _, r := range regs {
		switch r.Status {
		case registration.StatusApproved:
			stats.Approved++
			stats.Revenue += basePrice
		case registration.StatusRejected:
			stats.Rejected++
		default:
			stats.Pending++
		}
	}
	return stats
}

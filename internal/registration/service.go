package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/dareleague/registration/internal/pricing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Store is the data-layer collaborator. InsertWithQuota must be atomic:
// the capacity decision and the insert happen in one transaction.
type Store interface {
	InsertWithQuota(ctx context.Context, reg *Registration, maxSlots int) error
	LatestByDocument(ctx context.Context, documentID string) (Registration, error)
	RecentPublic(ctx context.Context, limit int) ([]WallEntry, error)
}

// ProofStore is the object-storage collaborator for payment proofs.
type ProofStore interface {
	Save(ctx context.Context, path string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

// SlotCounter provides the advisory occupancy snapshot used for the fast
// client-facing pre-check.
type SlotCounter interface {
	Refresh(ctx context.Context) error
	Snapshot() map[string]int
}

// TierSource reports the active pricing stage.
type TierSource interface {
	Current() (pricing.Tier, pricing.State)
}

// Proof is the uploaded payment evidence prior to storage.
type Proof struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

type Service struct {
	logger   *zap.Logger
	store    Store
	proofs   ProofStore
	counter  SlotCounter
	tiers    TierSource
	tracer   trace.Tracer
	maxSlots int
	year     int
	rnd      *rand.Rand
}

func NewService(logger *zap.Logger, store Store, proofs ProofStore, counter SlotCounter, tiers TierSource, maxSlots, year int) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		proofs:   proofs,
		counter:  counter,
		tiers:    tiers,
		tracer:   otel.Tracer("registration"),
		maxSlots: maxSlots,
		year:     year,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const refIDAttempts = 5

// Submit runs the full submission pipeline: stage gate, field validation,
// fresh pre-check, proof upload, atomic insert. If the insert fails after the
// proof upload succeeded, the uploaded file is removed so storage never leaks.
func (s *Service) Submit(ctx context.Context, form Form, proof *Proof) (string, FieldErrors, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Submit")
	defer span.End()

	if _, state := s.tiers.Current(); state != pricing.StateOpen {
		return "", nil, ErrClosed
	}

	if errs := s.validate(ctx, form, proof); !errs.Empty() {
		return "", errs, nil
	}

	cat, _ := parseCategory(form.Category)
	gen, _ := parseGender(form.Gender)
	age, _ := strconv.Atoi(strings.TrimSpace(form.Age))
	span.SetAttributes(attribute.String("bucket", BucketKey(cat, gen)))

	reg := &Registration{
		FullName:       strings.TrimSpace(form.FullName),
		DocumentID:     strings.TrimSpace(form.DocumentID),
		Age:            age,
		Phone:          strings.TrimSpace(form.Phone),
		Email:          strings.TrimSpace(form.Email),
		Category:       cat,
		Gender:         gen,
		ShirtSize:      form.ShirtSize,
		Gym:            strings.TrimSpace(form.Gym),
		EmergencyName:  strings.TrimSpace(form.EmergencyName),
		EmergencyPhone: strings.TrimSpace(form.EmergencyPhone),
		PaymentMethod:  form.PaymentMethod,
	}
	if reg.PaymentMethod == "" {
		reg.PaymentMethod = "Transferencia Bancaria"
	}

	refID := NewReferenceID(s.year, s.rnd)
	path := ProofPath(cat, gen, refID, proof.Filename)

	storedPath, err := s.proofs.Save(ctx, path, proof.Data)
	if err != nil {
		s.logger.Error("proof upload failed", zap.String("path", path), zap.Error(err))
		return "", nil, fmt.Errorf("Submit failed: %w", err)
	}
	reg.PaymentProofPath = storedPath
	reg.RegistrationID = refID

	if err := s.insertWithRetry(ctx, reg); err != nil {
		// Compensating action: no distributed transaction available, so the
		// orphaned upload has to be removed by hand.
		if rmErr := s.proofs.Remove(ctx, storedPath); rmErr != nil {
			s.logger.Error("orphaned proof cleanup failed",
				zap.String("path", storedPath), zap.Error(rmErr))
		}
		if errors.Is(err, ErrSlotsFull) {
			return "", nil, ErrSlotsFull
		}
		return "", nil, fmt.Errorf("Submit failed: %w", err)
	}

	s.logger.Info("registration accepted",
		zap.String("registration_id", reg.RegistrationID),
		zap.String("bucket", BucketKey(cat, gen)))
	return reg.RegistrationID, nil, nil
}

// insertWithRetry retries the random reference-id suffix on collision;
// everything else propagates immediately.
func (s *Service) insertWithRetry(ctx context.Context, reg *Registration) error {
	var err error
	for i := 0; i < refIDAttempts; i++ {
		err = s.store.InsertWithQuota(ctx, reg, s.maxSlots)
		if !errors.Is(err, ErrDuplicateRef) {
			return err
		}
		reg.RegistrationID = NewReferenceID(s.year, s.rnd)
		reg.ID = ""
	}
	return err
}

func (s *Service) validate(ctx context.Context, form Form, proof *Proof) FieldErrors {
	errs := FieldErrors{}
	for k, v := range ValidateStep1(form) {
		errs[k] = v
	}

	// Counts must be fresh here: a stale snapshot could tell the athlete a
	// slot is open when it is not. A refresh failure degrades to the cached
	// snapshot; the transaction still has the last word.
	if err := s.counter.Refresh(ctx); err != nil {
		s.logger.Warn("pre-check count refresh failed", zap.Error(err))
	}
	for k, v := range ValidateStep2(form, s.counter.Snapshot(), s.maxSlots) {
		errs[k] = v
	}

	for k, v := range ValidateStep3(form, proof != nil) {
		errs[k] = v
	}
	if proof != nil {
		for k, v := range ValidateProof(proof.ContentType, proof.Size) {
			errs[k] = v
		}
	}
	return errs
}

// StatusResult is the public view of a registration's review state.
type StatusResult struct {
	RegistrationID string `json:"registration_id"`
	FullName       string `json:"full_name"`
	Category       string `json:"category"`
	Status         string `json:"status"`
	RejectionNotes string `json:"rejection_notes,omitempty"`
}

// Status looks up the most recent registration for a document id.
// Read-only, public, no side effects.
func (s *Service) Status(ctx context.Context, documentID string) (StatusResult, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return StatusResult{}, ErrNotFound
	}

	reg, err := s.store.LatestByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatusResult{}, ErrNotFound
		}
		return StatusResult{}, fmt.Errorf("Status failed: %w", err)
	}

	return StatusResult{
		RegistrationID: reg.RegistrationID,
		FullName:       reg.FullName,
		Category:       string(reg.Category),
		Status:         string(reg.Status),
		RejectionNotes: reg.RejectionNotes,
	}, nil
}

// BucketAvailability is the client-facing remaining-slot view for one bucket.
type BucketAvailability struct {
	Category  string `json:"category"`
	Gender    string `json:"gender"`
	Taken     int    `json:"taken"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
	Full      bool   `json:"full"`
}

// Availability reports every bucket from the cached snapshot. UX only; the
// authoritative decision is the insert transaction.
func (s *Service) Availability(ctx context.Context) []BucketAvailability {
	counts := s.counter.Snapshot()

	out := make([]BucketAvailability, 0, 4)
	for _, c := range Categories() {
		for _, g := range Genders() {
			taken := counts[BucketKey(c, g)]
			remaining := s.maxSlots - taken
			if remaining < 0 {
				remaining = 0
			}
			out = append(out, BucketAvailability{
				Category:  string(c),
				Gender:    string(g),
				Taken:     taken,
				Capacity:  s.maxSlots,
				Remaining: remaining,
				Full:      taken >= s.maxSlots,
			})
		}
	}
	return out
}

// WallEntry is the only registration data ever shown publicly: the landing
// page "Muro de Atletas" feed.
type WallEntry struct {
	FullName string `json:"full_name"`
	Gym      string `json:"gym"`
	Category string `json:"category"`
}

const wallSize = 15

// Wall returns the newest registrations for the landing-page feed. An athlete
// without a gym shows as independent, matching how the wall renders.
func (s *Service) Wall(ctx context.Context) ([]WallEntry, error) {
	entries, err := s.store.RecentPublic(ctx, wallSize)
	if err != nil {
		return nil, fmt.Errorf("Wall failed: %w", err)
	}
	for i := range entries {
		if strings.TrimSpace(entries[i].Gym) == "" {
			entries[i].Gym = "INDEPENDIENTE"
		}
	}
	return entries, nil
}

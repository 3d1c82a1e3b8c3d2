// Package requisition implements the application services for purchase
// requisitions: the lifecycle state machine and the item engine.
package requisition

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/skc/procurement/internal/domain/requisition"
)

// DefaultSlowCallThreshold is the service-call duration above which a
// warning is logged.
const DefaultSlowCallThreshold = 500 * time.Millisecond

// Service owns requisition CRUD and the status state machine.
type Service struct {
	repo          domain.Repository
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewService creates a requisition lifecycle service. A non-positive
// slowThreshold falls back to the default.
func NewService(repo domain.Repository, logger *zap.Logger, slowThreshold time.Duration) *Service {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowCallThreshold
	}
	return &Service{
		repo:          repo,
		logger:        logger.Named("requisition"),
		slowThreshold: slowThreshold,
	}
}

// Create generates the next requisition number and persists a new DRAFT
// requisition with zero items and a zero total.
//
// The number is derived from the store-wide count plus one for the current
// year. Two concurrent creates may race to the same sequence value; the
// unique index on the number column turns the loser into an error rather
// than a duplicate.
func (s *Service) Create(ctx context.Context, req CreateRequisitionRequest) (*RequisitionResponse, error) {
	defer s.track("requisition.create")()

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	number := domain.FormatNumber(time.Now().Year(), count+1)

	r, err := domain.NewRequisition(number, req.OrganizerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("requisition created",
		zap.Int64("id", r.ID),
		zap.String("number", r.Number),
		zap.String("organizer_id", r.OrganizerID),
	)
	return ToRequisitionResponse(r), nil
}

// GetByID returns a requisition with its items ordered by row number.
func (s *Service) GetByID(ctx context.Context, id int64) (*RequisitionResponse, error) {
	defer s.track("requisition.get")()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToRequisitionResponse(r), nil
}

// List returns all requisitions.
func (s *Service) List(ctx context.Context) ([]*RequisitionResponse, error) {
	defer s.track("requisition.list")()

	rs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*RequisitionResponse, len(rs))
	for i, r := range rs {
		out[i] = ToRequisitionResponse(r)
	}
	return out, nil
}

// Update patches the header of a DRAFT requisition. Only the organizer id is
// patchable; a blank value is a no-op.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequisitionRequest) (*RequisitionResponse, error) {
	defer s.track("requisition.update")()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.ChangeOrganizer(req.OrganizerID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return ToRequisitionResponse(r), nil
}

// Delete removes a DRAFT requisition and cascades item deletion.
func (s *Service) Delete(ctx context.Context, id int64) error {
	defer s.track("requisition.delete")()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("requisition deleted", zap.Int64("id", id), zap.String("number", r.Number))
	return nil
}

// Transition moves a requisition to the target status according to the
// lifecycle table. No other field changes.
func (s *Service) Transition(ctx context.Context, id int64, req TransitionRequest) (*RequisitionResponse, error) {
	defer s.track("requisition.transition")()

	target := domain.Status(req.TargetStatus)
	if !target.IsValid() {
		return nil, domain.NewInvalidInputError("unknown status", "targetStatus", req.TargetStatus)
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if err := r.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("requisition transitioned",
		zap.Int64("id", id),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
	)
	return ToRequisitionResponse(r), nil
}

// track measures the duration of a service call and warns when it exceeds
// the slow-call threshold.
func (s *Service) track(operation string) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		if elapsed >= s.slowThreshold {
			s.logger.Warn("slow service call",
				zap.String("operation", operation),
				zap.Duration("elapsed", elapsed),
			)
		}
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"procurement/internal/apperr"
	"procurement/internal/hierarchy"
	"procurement/internal/model"
	"procurement/internal/report"
	"procurement/internal/repository"
	"procurement/internal/websocket"
	"procurement/internal/workflow"
	"procurement/pkg/pagination"
)

// --- DTOs ---

type SubmitRequestDTO struct {
	Category      string           `json:"category" binding:"required"`
	ItemName      string           `json:"item_name" binding:"required"`
	Quantity      int              `json:"quantity" binding:"required"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit"`
	Priority      string           `json:"priority" binding:"required"`
	Justification string           `json:"justification"`
}

type DecisionDTO struct {
	Comment string `json:"comment"`
}

// --- Interface ---

type ProcurementService interface {
	Submit(ctx context.Context, actorID string, dto SubmitRequestDTO) (*model.ProcurementRequest, error)
	Approve(ctx context.Context, id, actorID, comment string) (*model.ProcurementRequest, error)
	Reject(ctx context.Context, id, actorID, comment string) (*model.ProcurementRequest, error)
	ListVisible(ctx context.Context, viewerID string, page, limit int) ([]model.ProcurementRequest, int64, error)
	ListMine(ctx context.Context, viewerID string) ([]model.ProcurementRequest, error)
	Get(ctx context.Context, id, viewerID string) (*model.ProcurementRequest, error)
	AuditTrail(ctx context.Context, id, viewerID string) ([]model.AuditEntry, error)
	Activity(ctx context.Context, viewerID string, page, limit int) ([]model.AuditEntry, int64, error)
}

type procurementService struct {
	repo     repository.RequestRepository
	tx       repository.TransactionManager
	dir      *hierarchy.Directory
	notifier Notifier
	now      Clock
}

// NewProcurementService wires the request store to the approval workflow.
// notifier may be nil.
func NewProcurementService(repo repository.RequestRepository, tx repository.TransactionManager, dir *hierarchy.Directory, notifier Notifier) ProcurementService {
	return &procurementService{repo: repo, tx: tx, dir: dir, notifier: notifier, now: time.Now}
}

func validateSubmission(dto SubmitRequestDTO) (model.ProcurementRequest, error) {
	category := model.Category(dto.Category)
	if !category.Valid() {
		return model.ProcurementRequest{}, apperr.Invalid("category", fmt.Sprintf("unknown category %q", dto.Category))
	}
	item := strings.TrimSpace(dto.ItemName)
	if item == "" {
		return model.ProcurementRequest{}, apperr.Invalid("item_name", "must not be empty")
	}
	if dto.Quantity <= 0 {
		return model.ProcurementRequest{}, apperr.Invalid("quantity", "must be a positive integer")
	}
	price := decimal.Zero
	if dto.PricePerUnit != nil {
		price = *dto.PricePerUnit
	}
	if price.IsNegative() {
		return model.ProcurementRequest{}, apperr.Invalid("price_per_unit", "must not be negative")
	}
	priority := model.Priority(dto.Priority)
	if !priority.Valid() {
		return model.ProcurementRequest{}, apperr.Invalid("priority", fmt.Sprintf("unknown priority %q", dto.Priority))
	}
	justification := strings.TrimSpace(dto.Justification)
	if justification == "" {
		return model.ProcurementRequest{}, apperr.Invalid("justification", "is required")
	}
	return model.ProcurementRequest{
		Category:      category,
		ItemName:      item,
		Quantity:      dto.Quantity,
		PricePerUnit:  price,
		Priority:      priority,
		Justification: justification,
	}, nil
}

func (s *procurementService) Submit(ctx context.Context, actorID string, dto SubmitRequestDTO) (*model.ProcurementRequest, error) {
	actor, err := lookupActor(s.dir, actorID)
	if err != nil {
		return nil, err
	}
	req, err := validateSubmission(dto)
	if err != nil {
		return nil, err
	}
	if err := workflow.Submit(&req, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, &req); err != nil {
		return nil, fmt.Errorf("failed to store request: %w", err)
	}

	s.publish("request.submitted", &req, actor)
	return &req, nil
}

func (s *procurementService) Approve(ctx context.Context, id, actorID, comment string) (*model.ProcurementRequest, error) {
	return s.decide(ctx, id, actorID, workflow.Approve, comment)
}

func (s *procurementService) Reject(ctx context.Context, id, actorID, comment string) (*model.ProcurementRequest, error) {
	return s.decide(ctx, id, actorID, workflow.Reject, comment)
}

// decide applies a decision and persists the new status with its audit entry
// in one transaction. Nothing is returned unless the commit succeeds.
func (s *procurementService) decide(ctx context.Context, id, actorID string, d workflow.Decision, comment string) (*model.ProcurementRequest, error) {
	actor, err := lookupActor(s.dir, actorID)
	if err != nil {
		return nil, err
	}

	var updated *model.ProcurementRequest
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !report.InScope(actor, req.SubmittedBy, s.dir) {
			return fmt.Errorf("%w: %s does not oversee %s", apperr.ErrForbidden, actor.ID, req.SubmittedBy)
		}
		if err := workflow.ApplyDecision(req, actor, d, strings.TrimSpace(comment), s.now()); err != nil {
			return err
		}

		if err := s.repo.UpdateByField(txCtx, "id", req.ID, map[string]any{
			"status":     req.Status,
			"updated_at": req.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		entry := req.AuditLog[len(req.AuditLog)-1]
		if err := s.repo.AppendAudit(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
		req.AuditLog[len(req.AuditLog)-1] = entry
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := "request.approved"
	if d == workflow.Reject {
		evt = "request.rejected"
	}
	s.publish(evt, updated, actor)
	return updated, nil
}

func (s *procurementService) ListVisible(ctx context.Context, viewerID string, page, limit int) ([]model.ProcurementRequest, int64, error) {
	viewer, err := lookupActor(s.dir, viewerID)
	if err != nil {
		return nil, 0, err
	}
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load requests: %w", err)
	}
	visible := report.VisibleRequests(all, viewer, s.dir)
	start, end := pagination.Window(len(visible), page, limit)
	return visible[start:end], int64(len(visible)), nil
}

// ListMine returns every request the caller submitted, any status.
func (s *procurementService) ListMine(ctx context.Context, viewerID string) ([]model.ProcurementRequest, error) {
	viewer, err := lookupActor(s.dir, viewerID)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	mine := []model.ProcurementRequest{}
	for _, r := range all {
		if r.SubmittedBy == viewer.ID {
			mine = append(mine, r)
		}
	}
	return mine, nil
}

// Get returns a request to its submitter or to anyone overseeing the submitter.
func (s *procurementService) Get(ctx context.Context, id, viewerID string) (*model.ProcurementRequest, error) {
	viewer, err := lookupActor(s.dir, viewerID)
	if err != nil {
		return nil, err
	}
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.InScope(viewer, req.SubmittedBy, s.dir) {
		return nil, fmt.Errorf("%w: request %s is outside your hierarchy", apperr.ErrForbidden, id)
	}
	return req, nil
}

func (s *procurementService) AuditTrail(ctx context.Context, id, viewerID string) ([]model.AuditEntry, error) {
	req, err := s.Get(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	return req.AuditLog, nil
}

// Activity pages through audit entries of every request the viewer
// oversees, newest first.
func (s *procurementService) Activity(ctx context.Context, viewerID string, page, limit int) ([]model.AuditEntry, int64, error) {
	viewer, err := lookupActor(s.dir, viewerID)
	if err != nil {
		return nil, 0, err
	}

	var ids []string
	if scope := report.Scope(viewer, s.dir); scope != nil {
		all, err := s.repo.LoadAll(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load requests: %w", err)
		}
		ids = []string{}
		for _, r := range all {
			if _, ok := scope[r.SubmittedBy]; ok {
				ids = append(ids, r.ID)
			}
		}
	}

	entries, total, err := s.repo.ListAudit(ctx, ids, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}

func (s *procurementService) publish(kind string, req *model.ProcurementRequest, actor model.User) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(websocket.Event{
		Type:        kind,
		RequestID:   req.ID,
		Status:      string(req.Status),
		Actor:       actor.Name,
		SubmittedBy: req.SubmittedBy,
	})
	log.Printf("%s %s by %s", kind, req.ID, actor.ID)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"procurement/internal/apperr"
	"procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// updatableKeys are the columns UpdateByField may select rows by.
var updatableKeys = map[string]bool{"id": true}

// NewRequestID returns "REQ-" followed by 16 random upper-case hex digits.
func NewRequestID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "REQ-" + strings.ToUpper(raw[:16])
}

type RequestRepository interface {
	LoadAll(ctx context.Context) ([]model.ProcurementRequest, error)
	FindByID(ctx context.Context, id string) (*model.ProcurementRequest, error)
	Append(ctx context.Context, req *model.ProcurementRequest) error
	UpdateByField(ctx context.Context, field string, value any, partial map[string]any) error
	AppendAudit(ctx context.Context, entry *model.AuditEntry) error
	ListAudit(ctx context.Context, requestIDs []string, page, limit int) ([]model.AuditEntry, int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func preloadAudit(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

func (r *requestRepository) LoadAll(ctx context.Context) ([]model.ProcurementRequest, error) {
	var requests []model.ProcurementRequest
	if err := GetDB(ctx, r.db).Preload("AuditLog", preloadAudit).Order("created_at ASC").Order("id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.ProcurementRequest, error) {
	var req model.ProcurementRequest
	if err := GetDB(ctx, r.db).Preload("AuditLog", preloadAudit).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("request %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &req, nil
}

// Append stores a new request with its audit entries, assigning an id when
// the caller did not.
func (r *requestRepository) Append(ctx context.Context, req *model.ProcurementRequest) error {
	if req.ID == "" {
		req.ID = NewRequestID()
	}
	for i := range req.AuditLog {
		req.AuditLog[i].RequestID = req.ID
	}
	return GetDB(ctx, r.db).Create(req).Error
}

// UpdateByField applies partial to rows where field = value.
func (r *requestRepository) UpdateByField(ctx context.Context, field string, value any, partial map[string]any) error {
	if !updatableKeys[field] {
		return fmt.Errorf("update by %q is not supported", field)
	}
	res := GetDB(ctx, r.db).Model(&model.ProcurementRequest{}).Where(field+" = ?", value).Updates(partial)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("request %s=%v: %w", field, value, apperr.ErrNotFound)
	}
	return nil
}

func (r *requestRepository) AppendAudit(ctx context.Context, entry *model.AuditEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

// ListAudit pages through audit entries, newest first. A nil requestIDs
// means every request.
func (r *requestRepository) ListAudit(ctx context.Context, requestIDs []string, page, limit int) ([]model.AuditEntry, int64, error) {
	var entries []model.AuditEntry
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.AuditEntry{})
	if requestIDs != nil {
		query = query.Where("request_id IN ?", requestIDs)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("date DESC").Order("id DESC").Offset(offset).Limit(limit)
	if requestIDs != nil {
		fetch = fetch.Where("request_id IN ?", requestIDs)
	}
	if err := fetch.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

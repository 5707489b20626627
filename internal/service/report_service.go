package service

import (
	"context"
	"fmt"

	"procurement/internal/apperr"
	"procurement/internal/export"
	"procurement/internal/hierarchy"
	"procurement/internal/model"
	"procurement/internal/report"
	"procurement/internal/repository"
)

type ReportService interface {
	Budget(ctx context.Context, viewerID string, mode report.Mode) (report.CostReport, error)
	Grouping(ctx context.Context, viewerID string) (any, error)
	Districts(ctx context.Context, viewerID string, mode report.Mode) (map[string]report.CostReport, error)
	BudgetWorkbook(ctx context.Context, viewerID string, mode report.Mode) ([]byte, error)
}

type reportService struct {
	repo repository.RequestRepository
	dir  *hierarchy.Directory
}

func NewReportService(repo repository.RequestRepository, dir *hierarchy.Directory) ReportService {
	return &reportService{repo: repo, dir: dir}
}

// prepare resolves the viewer, validates mode and loads the store.
func (s *reportService) prepare(ctx context.Context, viewerID string, mode report.Mode) (model.User, []model.ProcurementRequest, error) {
	viewer, err := lookupActor(s.dir, viewerID)
	if err != nil {
		return model.User{}, nil, err
	}
	if !mode.Valid() {
		return model.User{}, nil, apperr.Invalid("mode", fmt.Sprintf("unknown mode %q", mode))
	}
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return model.User{}, nil, fmt.Errorf("failed to load requests: %w", err)
	}
	return viewer, all, nil
}

// Budget rolls up the requests of the viewer's subtree.
func (s *reportService) Budget(ctx context.Context, viewerID string, mode report.Mode) (report.CostReport, error) {
	viewer, all, err := s.prepare(ctx, viewerID, mode)
	if err != nil {
		return report.CostReport{}, err
	}
	return report.AggregateCost(all, report.Options{Mode: mode, Scope: report.Scope(viewer, s.dir)}), nil
}

func (s *reportService) Grouping(ctx context.Context, viewerID string) (any, error) {
	viewer, all, err := s.prepare(ctx, viewerID, report.ModeProjection)
	if err != nil {
		return nil, err
	}
	scoped := make([]model.ProcurementRequest, 0, len(all))
	for _, r := range all {
		if report.InScope(viewer, r.SubmittedBy, s.dir) {
			scoped = append(scoped, r)
		}
	}
	grouping, ok := report.GroupForRole(scoped, s.dir, viewer.Role)
	if !ok {
		return nil, fmt.Errorf("%w: no grouping for %s users", apperr.ErrForbidden, viewer.Role)
	}
	return grouping, nil
}

func (s *reportService) Districts(ctx context.Context, viewerID string, mode report.Mode) (map[string]report.CostReport, error) {
	viewer, all, err := s.prepare(ctx, viewerID, mode)
	if err != nil {
		return nil, err
	}
	if viewer.Role != model.RoleState {
		return nil, fmt.Errorf("%w: district rollup is limited to state users", apperr.ErrForbidden)
	}
	return report.RollupByDistrict(all, s.dir, report.Options{Mode: mode}), nil
}

func (s *reportService) BudgetWorkbook(ctx context.Context, viewerID string, mode report.Mode) ([]byte, error) {
	viewer, all, err := s.prepare(ctx, viewerID, mode)
	if err != nil {
		return nil, err
	}
	opts := report.Options{Mode: mode, Scope: report.Scope(viewer, s.dir)}
	title := fmt.Sprintf("%s budget for %s", mode, viewer.Name)
	return export.BudgetWorkbook(title, report.AggregateCost(all, opts), report.RollupByDistrict(all, s.dir, opts))
}

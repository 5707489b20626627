package service

import (
	"context"
	"fmt"
	"strings"

	"procurement/internal/apperr"
	"procurement/internal/hierarchy"
	"procurement/internal/model"
	"procurement/internal/report"
	"procurement/internal/repository"
	"procurement/internal/textgen"
)

type JustificationDTO struct {
	Category string `json:"category" binding:"required"`
	ItemName string `json:"item_name" binding:"required"`
	Quantity int    `json:"quantity"`
	Priority string `json:"priority"`
	Notes    string `json:"notes"`
}

// AssistantService drafts text through the remote generator. Generator
// failures surface as apperr.ErrUpstream and never touch stored requests.
type AssistantService interface {
	DraftJustification(ctx context.Context, actorID string, dto JustificationDTO) (string, error)
	Forecast(ctx context.Context, actorID string) (string, error)
}

type assistantService struct {
	gen  textgen.Generator
	repo repository.RequestRepository
	dir  *hierarchy.Directory
}

func NewAssistantService(gen textgen.Generator, repo repository.RequestRepository, dir *hierarchy.Directory) AssistantService {
	return &assistantService{gen: gen, repo: repo, dir: dir}
}

func (s *assistantService) DraftJustification(ctx context.Context, actorID string, dto JustificationDTO) (string, error) {
	actor, err := lookupActor(s.dir, actorID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dto.ItemName) == "" {
		return "", apperr.Invalid("item_name", "must not be empty")
	}
	if !model.Category(dto.Category).Valid() {
		return "", apperr.Invalid("category", fmt.Sprintf("unknown category %q", dto.Category))
	}

	out, err := s.gen.Generate(ctx, textgen.Prompt{
		Task: "justification",
		Inputs: map[string]any{
			"facility":  actor.Name,
			"category":  dto.Category,
			"item_name": dto.ItemName,
			"quantity":  dto.Quantity,
			"priority":  dto.Priority,
			"notes":     dto.Notes,
		},
	})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// Forecast summarises the caller's approved spend and open pipeline.
func (s *assistantService) Forecast(ctx context.Context, actorID string) (string, error) {
	actor, err := lookupActor(s.dir, actorID)
	if err != nil {
		return "", err
	}
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load requests: %w", err)
	}
	scope := report.Scope(actor, s.dir)
	approved := report.AggregateCost(all, report.Options{Mode: report.ModeApproved, Scope: scope})
	projected := report.AggregateCost(all, report.Options{Mode: report.ModeProjection, Scope: scope})

	out, err := s.gen.Generate(ctx, textgen.Prompt{
		Task: "forecast",
		Inputs: map[string]any{
			"viewer":     actor.Name,
			"role":       actor.Role,
			"approved":   approved,
			"projection": projected,
		},
	})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

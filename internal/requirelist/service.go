package requirelist

import (
	"context"
	"fmt"
	"time"

	"github.com/retenly/retenly/internal/analysis"
	"github.com/retenly/retenly/internal/company"
	"github.com/retenly/retenly/internal/infodb"
)

// Service validates and records analysis requests, then hands them to the
// external engine.
type Service struct {
	repo      Repository
	analyses  analysis.Repository
	companies company.Repository
	infodbs   infodb.Repository
	engine    analysis.Client
}

// NewService constructs a require list service.
func NewService(repo Repository, analyses analysis.Repository, companies company.Repository, infodbs infodb.Repository, engine analysis.Client) *Service {
	if engine == nil {
		engine = analysis.StaticClient{}
	}
	return &Service{repo: repo, analyses: analyses, companies: companies, infodbs: infodbs, engine: engine}
}

// CreateInput captures a new analysis request.
type CreateInput struct {
	AnalysisNo int64
	CompanyNo  int64
	InfoDbNo   int64
}

// Create verifies all referenced records exist, persists the require list,
// and triggers an engine run. The row stays committed even when the engine
// call fails; the error surfaces so the caller can retry the run.
func (s *Service) Create(ctx context.Context, input CreateInput) (RequireList, error) {
	if _, err := s.analyses.Get(ctx, input.AnalysisNo); err != nil {
		return RequireList{}, err
	}
	if _, err := s.companies.Get(ctx, input.CompanyNo); err != nil {
		return RequireList{}, err
	}
	if _, err := s.infodbs.Get(ctx, input.InfoDbNo); err != nil {
		return RequireList{}, err
	}

	list := RequireList{
		AnalysisNo: input.AnalysisNo,
		CompanyNo:  input.CompanyNo,
		InfoDbNo:   input.InfoDbNo,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &list); err != nil {
		return RequireList{}, err
	}

	if err := s.engine.RequestAnalysis(ctx, input.InfoDbNo); err != nil {
		return list, fmt.Errorf("request analysis for list %d: %w", list.No, err)
	}

	return list, nil
}

// Get fetches a require list by number.
func (s *Service) Get(ctx context.Context, no int64) (RequireList, error) {
	return s.repo.Get(ctx, no)
}

package api

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/catalog"
	"github.com/starford/gantt/internal/generator"
	"github.com/starford/gantt/internal/models"
	"github.com/starford/gantt/internal/source"
	"github.com/starford/gantt/internal/storage"
)

// Service coordinates the generator, catalog and storage for the API layer.
type Service struct {
	store   storage.Provider
	catalog catalog.Catalog
	gen     *generator.Generator

	// renderMu serialises batch runs triggered over HTTP.
	renderMu sync.Mutex
}

// NewService creates a new API service.
func NewService(store storage.Provider, cat catalog.Catalog, gen *generator.Generator) *Service {
	return &Service{store: store, catalog: cat, gen: gen}
}

// ListCharts returns a page of catalog records.
func (s *Service) ListCharts(profile, status string, limit, offset int) ([]models.ChartRecord, int, error) {
	if limit <= 0 {
		limit = 100
	}
	items, total, err := s.catalog.ListCharts(profile, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.ChartRecord{}
	}
	return items, total, nil
}

// GetChart returns the catalog record of one source file.
func (s *Service) GetChart(src string) (*models.ChartRecord, error) {
	return s.catalog.GetChart(path.Clean(src))
}

// Profiles describes the configured chart profiles in match order.
func (s *Service) Profiles() []ProfileInfo {
	ps := s.gen.Dispatcher().Profiles()
	out := make([]ProfileInfo, len(ps))
	for i, p := range ps {
		out[i] = ProfileInfo{
			Name:            p.Name,
			Prefix:          p.Prefix,
			Config:          p.ConfigPath,
			CSVDirectory:    p.Config.CSVDirectory,
			TargetDirectory: p.Config.TargetDirectory,
			SortBy:          string(p.Config.SortBy),
			Filters:         len(p.Config.Filters),
			Milestones:      len(p.Config.Milestones),
		}
	}
	return out
}

// Render runs a batch over the workspace.
func (s *Service) Render(ctx context.Context, opts generator.BatchOptions) (generator.Summary, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	return s.gen.Batch(ctx, opts)
}

// ImagePath resolves a rendered image to an absolute path inside the workspace.
func (s *Service) ImagePath(rel string) (string, error) {
	switch path.Ext(rel) {
	case ".svg", ".png":
	default:
		return "", fmt.Errorf("%s: %w", rel, apperr.ErrUnsupportedFormat)
	}
	return s.store.Abs(rel)
}

// SaveExport stores an uploaded export in the CSV directory of the named
// profile and renders it.
func (s *Service) SaveExport(ctx context.Context, profile, filename string, data []byte) (models.ChartRecord, error) {
	if !source.Supported(filename) {
		return models.ChartRecord{}, fmt.Errorf("%s: %w", filename, apperr.ErrUnsupportedFormat)
	}
	var target *generator.Profile
	for _, p := range s.gen.Dispatcher().Profiles() {
		if p.Name == profile {
			target = p
			break
		}
	}
	if target == nil {
		return models.ChartRecord{}, fmt.Errorf("profile %q: %w", profile, apperr.ErrNotFound)
	}

	rel := path.Join(path.Clean(target.Config.CSVDirectory), target.Prefix+filename)
	if err := s.store.Write(rel, data); err != nil {
		return models.ChartRecord{}, err
	}
	return s.gen.Generate(ctx, rel)
}

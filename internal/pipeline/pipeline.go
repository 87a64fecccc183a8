package pipeline

import (
	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/models"
)

// Report summarises the non-fatal findings of a Run.
type Report struct {
	Input        int
	DateFailures []DateFailure
	FilterErrors []error
}

// Dropped returns how many input rows did not survive the pipeline.
func (r Report) Dropped(t *models.Table) int {
	return r.Input - t.Len()
}

// Run parses dates, applies filters and orders the table in place.
// Only ordering failures are returned as an error.
func Run(t *models.Table, cfg *chartconfig.ChartConfig) (Report, error) {
	report := Report{Input: t.Len()}
	report.DateFailures = ParseDates(t, cfg.StartDateField, cfg.EndDateField, cfg.DateInputFormat)
	report.FilterErrors = ApplyFilters(t, cfg.Filters, cfg.DateInputFormat)
	if err := Sort(t, cfg.SortBy, cfg.StartDateField, cfg.EndDateField, cfg.StructureField); err != nil {
		return report, err
	}
	return report, nil
}

package catalog

import "github.com/starford/gantt/internal/models"

// Catalog defines the chart bookkeeping operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type Catalog interface {
	UpsertChart(rec models.ChartRecord) error
	DeleteChart(source string) error
	GetChart(source string) (*models.ChartRecord, error)
	ListCharts(profile, status string, limit, offset int) ([]models.ChartRecord, int, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)

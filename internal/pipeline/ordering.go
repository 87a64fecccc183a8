package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/models"
)

var trailingNumber = regexp.MustCompile(`(\d+)$`)

// Sort orders rows in place. Both policies put the larger primary key first
// and break ties by shorter duration; equal rows keep their input order.
// Start and end fields must already hold dates.
func Sort(t *models.Table, policy chartconfig.SortPolicy, startField, endField, structureField string) error {
	keys := make([]int64, len(t.Rows))
	switch policy {
	case chartconfig.SortByStartDate:
		for i, row := range t.Rows {
			keys[i] = row[startField].Date.Unix()
		}
	case chartconfig.SortByStructurePos:
		for i, row := range t.Rows {
			pos, ok := structurePosition(row[structureField])
			if !ok {
				return &apperr.OrderingError{
					Kind:  apperr.MissingStructurePosition,
					Row:   i,
					Field: structureField,
					Value: row[structureField].Text(),
				}
			}
			keys[i] = pos
		}
	default:
		return fmt.Errorf("unknown sort policy %q", policy)
	}

	sortByKeys(t.Rows, keys, func(r models.Row) time.Duration {
		return r[endField].Date.Sub(r[startField].Date)
	})
	return nil
}

func structurePosition(v models.Value) (int64, bool) {
	m := trailingNumber.FindStringSubmatch(strings.TrimSpace(v.Text()))
	if m == nil {
		return 0, false
	}
	pos, err := strconv.ParseInt(m[1], 10, 64)
	return pos, err == nil
}

// sortByKeys stably sorts rows by key descending, then duration ascending.
func sortByKeys(rows []models.Row, keys []int64, duration func(models.Row) time.Duration) {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if keys[i] != keys[j] {
			return keys[i] > keys[j]
		}
		return duration(rows[i]) < duration(rows[j])
	})

	sorted := make([]models.Row, len(rows))
	for to, from := range idx {
		sorted[to] = rows[from]
	}
	copy(rows, sorted)
}

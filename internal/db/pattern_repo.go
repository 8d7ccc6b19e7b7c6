package db

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"parkingpass/internal/patterns"
	"parkingpass/internal/types"
)

// Categories of the violation_patterns table. The total row carries the
// record count in count and an empty bucket.
const (
	PatternCategoryTotal   = "total"
	PatternCategoryHourly  = "hourly"
	PatternCategoryDaily   = "daily"
	PatternCategoryMonthly = "monthly"
	PatternCategoryDong    = "dong"
)

// PatternRepository reads the violation_patterns table.
type PatternRepository struct {
	db DBTX
}

// NewPatternRepository creates a repository over db.
func NewPatternRepository(db DBTX) *PatternRepository {
	return &PatternRepository{db: db}
}

// LoadSummary assembles a Summary from (category, bucket, count, weight)
// rows. An empty table yields nil, meaning no pattern data.
func (r *PatternRepository) LoadSummary(ctx context.Context) (*patterns.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, bucket, count, weight
		 FROM violation_patterns
		 ORDER BY category, count DESC, bucket`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query violation patterns", err)
	}
	defer rows.Close()

	sum := &patterns.Summary{
		Hourly:  map[string]patterns.Bucket{},
		Daily:   map[string]patterns.Bucket{},
		Monthly: map[string]patterns.Bucket{},
		ByDong:  map[string]patterns.DongBucket{},
	}
	n := 0
	for rows.Next() {
		var (
			category, bucket string
			count            int
			weight           float64
		)
		if err := rows.Scan(&category, &bucket, &count, &weight); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan violation pattern row", err)
		}
		n++
		switch category {
		case PatternCategoryTotal:
			sum.TotalCount = count
		case PatternCategoryHourly:
			sum.Hourly[bucket] = patterns.Bucket{Count: count, Weight: weight}
		case PatternCategoryDaily:
			sum.Daily[bucket] = patterns.Bucket{Count: count, Weight: weight}
		case PatternCategoryMonthly:
			sum.Monthly[bucket] = patterns.Bucket{Count: count, Weight: weight}
		case PatternCategoryDong:
			sum.ByDong[bucket] = patterns.DongBucket{Count: count, Weight: weight}
		default:
			return nil, types.NewAppError(types.ErrCodeInternalDB,
				fmt.Sprintf("unknown violation pattern category %q", category), nil)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating violation pattern rows", err)
	}
	if n == 0 {
		return nil, nil
	}
	return sum, nil
}

const insertPattern = `INSERT INTO violation_patterns (category, bucket, count, weight)
	VALUES ($1, $2, $3, $4)`

// ReplaceSummary swaps the table contents for sum. Highlights and per-dong
// breakdowns are not stored. Run it inside a transaction.
func (r *PatternRepository) ReplaceSummary(ctx context.Context, sum *patterns.Summary) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM violation_patterns`); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to clear violation patterns", err)
	}

	insert := func(category, bucket string, count int, weight float64) error {
		if _, err := r.db.Exec(ctx, insertPattern, category, bucket, count, weight); err != nil {
			return types.NewAppErrorWithDetails(types.ErrCodeInternalDB, "failed to insert violation pattern", err,
				map[string]any{"category": category, "bucket": bucket})
		}
		return nil
	}

	if err := insert(PatternCategoryTotal, "", sum.TotalCount, 0); err != nil {
		return err
	}
	for _, group := range []struct {
		category string
		buckets  map[string]patterns.Bucket
	}{
		{PatternCategoryHourly, sum.Hourly},
		{PatternCategoryDaily, sum.Daily},
		{PatternCategoryMonthly, sum.Monthly},
	} {
		for _, key := range sortedKeys(group.buckets) {
			b := group.buckets[key]
			if err := insert(group.category, key, b.Count, b.Weight); err != nil {
				return err
			}
		}
	}
	for _, dong := range sortedKeys(sum.ByDong) {
		d := sum.ByDong[dong]
		if err := insert(PatternCategoryDong, dong, d.Count, d.Weight); err != nil {
			return err
		}
	}
	return nil
}

// sortedKeys orders numeric keys numerically and everything else
// lexically, numbers first.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		switch {
		case aerr == nil && berr == nil:
			return ai - bi
		case aerr == nil:
			return -1
		case berr == nil:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return keys
}

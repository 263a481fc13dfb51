package database

import (
	"context"

	"github.com/koustreak/typegen/internal/errs"
)

// ScanStrings reads a result set made of a single text column.
// The returned slice is always non-nil (empty slice on zero rows).
// ScanStrings always closes the Rows; callers do not need to call Close().
func ScanStrings(rows Rows) ([]string, error) {
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, Classify(err, "failed to scan text column")
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify(err, "error during row iteration")
	}
	return list, nil
}

// QueryStrings runs sql through q and collects its single text column.
func QueryStrings(ctx context.Context, q Querier, sql string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return ScanStrings(rows)
}

// Classify keeps an already classified error and wraps anything else as a
// failed query, so catalog readers always surface *errs.Error.
func Classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errs.KindOf(err) != errs.ErrKindUnknown {
		return err
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

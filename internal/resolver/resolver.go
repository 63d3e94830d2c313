package resolver

import (
	"context"
	"fmt"

	"SieveAPI/internal/db"
	"SieveAPI/internal/logger"
	"SieveAPI/internal/query"
)

// ListRequest carries one validated list request: the resource and the
// already-parsed specs. Parsing happens in the HTTP layer so the resolver
// only ever sees valid input.
type ListRequest struct {
	Resource  *query.Resource
	Filtering query.FilteringSpec
	Sorting   query.SortingSpec
	Limit     uint64
	Offset    uint64
}

// List executes the translated query and returns rows keyed by field name.
func List(ctx context.Context, req ListRequest) ([]map[string]any, error) {
	if items, ok := cacheGet(ctx, req); ok {
		return items, nil
	}

	sb, err := BuildListQuery(req.Resource, req.Filtering, req.Sorting, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	logger.Debug("sql", map[string]any{
		"resource": req.Resource.Name,
		"sql":      sqlStr,
		"args":     args,
	})

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", req.Resource.Name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	items := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		item := make(map[string]any, len(fields))
		for i, fd := range fields {
			item[fd.Name] = values[i]
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cacheSet(ctx, req, items)
	return items, nil
}

// Count executes the COUNT variant over the same filter surface.
func Count(ctx context.Context, res *query.Resource, fspec query.FilteringSpec) (int64, error) {
	sb, err := BuildCountQuery(res, fspec)
	if err != nil {
		return 0, err
	}
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return 0, err
	}
	logger.Debug("sql", map[string]any{
		"resource": res.Name,
		"sql":      sqlStr,
		"args":     args,
	})

	var count int64
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", res.Name, err)
	}
	return count, nil
}

package memory

import (
	"fmt"

	"docrag-be/internal/repository/specification"
)

// splitSpecs separates filter specifications from ordering and pagination so
// the in-memory repositories can evaluate them without a SQL builder.
func splitSpecs(specs []specification.Specification) (filters []specification.Specification, order *specification.OrderBy, page *specification.Pagination) {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.OrderBy:
			o := v
			order = &o
		case specification.Pagination:
			p := v
			page = &p
		default:
			filters = append(filters, s)
		}
	}
	return filters, order, page
}

// matches evaluates the supported filter specifications against a field
// accessor. Unknown specification types fail loudly so a new spec cannot
// silently match everything.
func matches(filters []specification.Specification, get func(field string) interface{}) (bool, error) {
	for _, f := range filters {
		switch v := f.(type) {
		case specification.ByID:
			if get("id") != interface{}(v.ID) {
				return false, nil
			}
		case specification.BySessionID:
			if get("session_id") != interface{}(v.SessionID) {
				return false, nil
			}
		case specification.ByTurnID:
			if get("turn_id") != interface{}(v.TurnID) {
				return false, nil
			}
		case specification.BySource:
			if get("source") != interface{}(v.Source) {
				return false, nil
			}
		case specification.FilterBy:
			if get(v.Field) != v.Value {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported specification %T for memory store", f)
		}
	}
	return true, nil
}

func paginate[T any](items []T, page *specification.Pagination) []T {
	if page == nil {
		return items
	}
	start := page.Offset
	if start > len(items) {
		return nil
	}
	end := len(items)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	return items[start:end]
}

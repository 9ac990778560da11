// Package fallback supplies deterministic placeholder payloads so callers
// always receive a well-shaped response when the backend is unreachable.
package fallback

import "strings"

// ServiceUnavailableMessage is the generic error returned for endpoints with
// no dedicated fallback shape.
const ServiceUnavailableMessage = "Service temporarily unavailable"

// DataFor returns the placeholder payload for an endpoint. The match is a
// plain substring test against the endpoint name. The returned value is a
// fresh copy on every call; callers may mutate it freely.
func DataFor(endpoint string) map[string]any {
	name := strings.ToLower(endpoint)

	switch {
	case strings.Contains(name, "categories"):
		return map[string]any{
			"success":      true,
			"data":         seededCategories(),
			"fromFallback": true,
		}
	case strings.Contains(name, "properties"),
		strings.Contains(name, "packages"):
		return emptyCollection()
	case strings.Contains(name, "slider"),
		strings.Contains(name, "banner"):
		return emptyCollection()
	default:
		return map[string]any{
			"success":      false,
			"error":        ServiceUnavailableMessage,
			"fromFallback": true,
		}
	}
}

func emptyCollection() map[string]any {
	return map[string]any{
		"success":      true,
		"data":         []any{},
		"fromFallback": true,
	}
}

// seededCategories lets category pickers render something meaningful while
// the marketplace is offline.
func seededCategories() []any {
	return []any{
		map[string]any{"id": 1, "name": "Apartments", "slug": "apartments"},
		map[string]any{"id": 2, "name": "Houses", "slug": "houses"},
		map[string]any{"id": 3, "name": "Commercial", "slug": "commercial"},
	}
}

package client

import "strings"

// BuildURL joins the resolved base URL and a logical endpoint name into
// {base}/api/{endpoint}. Endpoints arrive in every shape the page code
// produces: with or without a leading slash, with or without an api/ prefix,
// occasionally with both stacked. The result always carries exactly one /api/
// segment and no duplicate slashes, and re-normalizing the endpoint portion
// of an output is a no-op.
func BuildURL(base, endpoint string) string {
	path := strings.TrimLeft(endpoint, "/")

	for strings.HasPrefix(path, "api/") || path == "api" {
		path = strings.TrimPrefix(path, "api")
		path = strings.TrimLeft(path, "/")
	}

	return strings.TrimRight(base, "/") + "/api/" + path
}

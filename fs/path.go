package fs

import (
	"net/url"
	"strings"
)

// URLToPath converts a page URL to a relative audit-file path with the
// given extension.
// Example: https://example.com/docs/api/users, ".txt" → docs/api/users.txt
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := u.Path
	if path == "" || path == "/" {
		return "index" + ext, nil
	}
	path = strings.TrimPrefix(path, "/")

	// Keep traversal segments out of the output tree.
	path = strings.ReplaceAll(path, "..", "_")

	if strings.HasSuffix(path, "/") {
		return path + "index" + ext, nil
	}
	if idx := strings.LastIndex(path, "."); idx > strings.LastIndex(path, "/") {
		path = path[:idx]
	}
	return path + ext, nil
}

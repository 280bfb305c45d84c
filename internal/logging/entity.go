// ABOUTME: Entity detection for request logging.
// ABOUTME: Maps a REST path to the collection it addresses.

package logging

import "strings"

// APIPrefix is the mount point of the demo REST backend.
const APIPrefix = "/api/"

// EntityFromPath returns the collection a REST path addresses, e.g.
// "/api/products/7" -> "products". Paths without a collection segment
// return "unknown".
func EntityFromPath(path string) string {
	if root := strings.TrimSuffix(APIPrefix, "/"); path == root || strings.HasPrefix(path, APIPrefix) {
		path = path[len(root):]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "unknown"
	}
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

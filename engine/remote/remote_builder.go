package remote

import "net/http"

// ServerBuilderOption is a functional option applied to a server during construction via NewServer.
type ServerBuilderOption func(*server)

// WithDefaultViewport sets the surface size used to scale drags from clients that do not report
// their own.
//
// Parameters:
//   - width, height: the fallback size in pixels
//
// Returns:
//   - ServerBuilderOption: a function that applies the viewport option
func WithDefaultViewport(width, height int) ServerBuilderOption {
	return func(s *server) {
		s.defaultWidth = width
		s.defaultHeight = height
	}
}

// WithCheckOrigin replaces the upgrade origin check. By default only pages served from the same
// host as the request may connect.
//
// Parameters:
//   - check: returns true if the request may be upgraded
//
// Returns:
//   - ServerBuilderOption: a function that applies the origin check
func WithCheckOrigin(check func(r *http.Request) bool) ServerBuilderOption {
	return func(s *server) {
		s.upgrader.CheckOrigin = check
	}
}

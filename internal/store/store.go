package store

import "errors"

// ErrNotFound is returned when a post or comment id does not resolve.
// Handlers map it to a 404.
var ErrNotFound = errors.New("not found")

// AnonymousName is the display name stored for anonymous posts and for
// authors the directory cannot resolve.
const AnonymousName = "Anonymous"

package driven

import "context"

// Navigator sends the user to a location, e.g. the panel landing page after
// the session ends.
type Navigator interface {
	Navigate(ctx context.Context, location string) error
}

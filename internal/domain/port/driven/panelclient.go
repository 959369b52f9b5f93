package driven

import (
	"context"

	"github.com/ericfisherdev/panelctl/internal/domain/model"
)

// PanelClient defines the driven port for the p-manager panel API.
// Non-2xx responses are returned as *model.APIError.
type PanelClient interface {
	SignIn(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, identity string) (*model.Profile, error)
	Users(ctx context.Context) ([]model.User, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

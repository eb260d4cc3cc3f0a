package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Vicktor007/store-lit/internal/client/client"
	"github.com/Vicktor007/store-lit/internal/client/config"
	"github.com/Vicktor007/store-lit/internal/client/models"
)

type App struct {
	config *config.Config
	api    client.Client
	user   *models.User
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	store, err := client.NewSessionStore(c.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, store)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

// restoreSession signs the user back in with a session kept from an earlier
// run. A session the server no longer accepts is dropped silently.
func (a *App) restoreSession(ctx context.Context) {
	if !a.api.HasSession() {
		return
	}
	u, err := a.api.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.api.SignOut(ctx)
		} else {
			fmt.Fprintln(a.out, "Could not restore session:", err)
		}
		return
	}
	a.user = u
}

func (a *App) getStatus() string {
	if a.user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.user.Email)
}

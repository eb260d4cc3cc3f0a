package cli

import (
	"context"
	"fmt"
)

// Root restores any saved session and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to store-lit CLI (type 'help' for commands)")

	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Server check failed:", err)
	}
	a.restoreSession(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

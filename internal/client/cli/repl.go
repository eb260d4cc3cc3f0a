package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context, args []string) error
	SignIn(ctx context.Context, args []string) error
	Me(ctx context.Context, args []string) error
	Files(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	Placeholder(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context, args []string) error
	SignOut(ctx context.Context, args []string) error
}

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit". Commands that need a session are refused while signed out.
// Command errors are printed and the loop goes on.
//
//	Signed out:  signup, signin, help, exit
//	Signed in:   me, files [type,...] [query], upload <path>, avatar <path>,
//	             placeholder <n>, rename <id> <name>, share <id> <emails...>,
//	             delete <id>, download <id> [dest], deleteaccount, signout, help, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("store-lit %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var run func(context.Context, []string) error
		authed := true

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, files, upload, avatar, placeholder, rename, share, delete, download, deleteaccount, signout, exit")
			} else {
				printlnFn("Available commands: signup, signin, exit")
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "signup":
			run, authed = a.SignUp, false
		case "signin":
			run, authed = a.SignIn, false
		case "me":
			run = a.Me
		case "files", "ls":
			run = a.Files
		case "upload":
			run = a.Upload
		case "avatar":
			run = a.Avatar
		case "placeholder":
			run = a.Placeholder
		case "rename":
			run = a.Rename
		case "share":
			run = a.Share
		case "delete":
			run = a.Delete
		case "download":
			run = a.Download
		case "deleteaccount":
			run = a.DeleteAccount
		case "signout":
			run = a.SignOut

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if authed && !a.isLoggedIn() {
			printlnFn("Please sign in first")
			continue
		}
		if err := run(ctx, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

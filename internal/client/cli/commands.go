package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Vicktor007/store-lit/internal/client/client"
	"github.com/Vicktor007/store-lit/internal/client/models"
	"github.com/Vicktor007/store-lit/internal/common"
)

// getSimpleText and getCode are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getCode = GetCode

var fileTypes = []string{"document", "image", "video", "audio", "other"}

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// SignUp asks for a name and email, then completes sign-in with the emailed code.
func (a *App) SignUp(ctx context.Context, _ []string) error {
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	accountID, err := a.api.SignUp(ctx, fullName, email)
	if err != nil {
		return err
	}
	return a.verify(ctx, accountID)
}

// SignIn asks for the email of an existing user, then for the emailed code.
func (a *App) SignIn(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	accountID, err := a.api.SignIn(ctx, email)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("no user with email %s, try signup", email)
		}
		return err
	}
	return a.verify(ctx, accountID)
}

func (a *App) verify(ctx context.Context, accountID string) error {
	code, err := getCode(a.out)
	if err != nil {
		return err
	}
	if err := a.api.Verify(ctx, accountID, code); err != nil {
		return err
	}

	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.user = u
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", u.FullName, u.Email)
	return nil
}

func (a *App) Me(ctx context.Context, _ []string) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.user = u
	fmt.Fprintf(a.out, "%s <%s>\navatar: %s\n", u.FullName, u.Email, u.AvatarURL)
	return nil
}

// Files lists visible files. An optional first argument of known type names
// (comma separated) filters by type; the rest is a name search.
func (a *App) Files(ctx context.Context, args []string) error {
	var opts client.ListOptions
	if len(args) > 0 && isTypeList(args[0]) {
		opts.Types = strings.Split(args[0], ",")
		args = args[1:]
	}
	opts.Query = strings.Join(args, " ")

	list, err := a.api.ListFiles(ctx, opts)
	if err != nil {
		return err
	}

	if len(list.Documents) == 0 {
		fmt.Fprintln(a.out, "No files")
		return nil
	}
	for _, f := range list.Documents {
		fmt.Fprintf(a.out, "%s  %-8s %10s  %s%s\n", f.ID, f.Type, humanSize(f.Size), f.Name, a.ownership(f))
	}
	fmt.Fprintf(a.out, "%d files, %s total\n", list.Total, humanSize(list.TotalSize))
	return nil
}

func (a *App) ownership(f *models.File) string {
	if a.user != nil && f.OwnerID != a.user.ID {
		return "  (shared with you)"
	}
	if len(f.SharedWith) > 0 {
		return fmt.Sprintf("  (shared with %s)", strings.Join(f.SharedWith, ", "))
	}
	return ""
}

func isTypeList(s string) bool {
	for _, t := range strings.Split(s, ",") {
		if !contains(fileTypes, t) {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("upload <path>")
	}
	f, err := a.api.UploadFile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (%s) as %s\n", f.Name, humanSize(f.Size), f.ID)
	return nil
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("avatar <path>")
	}
	f, err := a.api.UploadAvatar(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Avatar set to %s\n", f.URL)
	return a.refreshUser(ctx)
}

// Placeholder switches to stock avatar n, counted from 1.
func (a *App) Placeholder(ctx context.Context, args []string) error {
	n := 0
	if len(args) == 1 {
		n, _ = strconv.Atoi(args[0])
	}
	if n < 1 || n > len(common.PlaceholderAvatars) {
		return usage(fmt.Sprintf("placeholder <1-%d>", len(common.PlaceholderAvatars)))
	}

	u, err := a.api.SetPlaceholderAvatar(ctx, common.PlaceholderAvatars[n-1])
	if err != nil {
		return err
	}
	a.user = u
	fmt.Fprintln(a.out, "Avatar set to placeholder", n)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("rename <id> <name>")
	}
	res, err := a.api.FileAction(ctx, args[0], client.ActionRequest{Action: "rename", Name: strings.Join(args[1:], " ")})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Renamed to", res.File.Name)
	return nil
}

func (a *App) Share(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("share <id> <emails...>")
	}
	var emails []string
	for _, arg := range args[1:] {
		for _, e := range strings.Split(arg, ",") {
			if e = strings.TrimSpace(e); e != "" {
				emails = append(emails, e)
			}
		}
	}

	res, err := a.api.FileAction(ctx, args[0], client.ActionRequest{Action: "share", Emails: emails})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Shared %s with %s\n", res.File.Name, strings.Join(res.File.SharedWith, ", "))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	if _, err := a.api.FileAction(ctx, args[0], client.ActionRequest{Action: "delete"}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return a.refreshUser(ctx)
}

// Download saves a file to dest, or to its own name in the working directory.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("download <id> [dest]")
	}
	res, err := a.api.FileAction(ctx, args[0], client.ActionRequest{Action: "download"})
	if err != nil {
		return err
	}

	dest := filepath.Base(res.File.Name)
	if len(args) == 2 {
		dest = args[1]
	}
	if err := a.api.Download(ctx, res.URL, dest); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved to", dest)
	return nil
}

func (a *App) DeleteAccount(ctx context.Context, _ []string) error {
	ok, err := Confirm(a.reader, "Delete your account and all your files?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.api.DeleteAccount(ctx); err != nil {
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

func (a *App) SignOut(ctx context.Context, _ []string) error {
	err := a.api.SignOut(ctx)
	a.user = nil
	if err != nil && !errors.Is(err, client.ErrUnavailable) {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) refreshUser(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.user = u
	return nil
}

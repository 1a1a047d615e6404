package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/services"
	"github.com/dmitrijs2005/sketchkeeper/internal/common"
)

var errEmptyInput = errors.New("empty input")

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Whoami(ctx context.Context) error {
	s := a.sessions.Refresh(ctx)
	if s == nil {
		a.info("Not logged in")
		return nil
	}
	a.info("Logged in as %s (user %d)", s.Email, s.UserID)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.docs.Status(ctx)
	if err != nil {
		a.bad("cannot read the local state: %v", err)
		return err
	}

	a.info("Location: %s", a.currentLocation())
	if st.Bound {
		a.info("Drawing: #%s", st.DocumentID)
	} else {
		a.info("Drawing: new, not stored on the server")
	}
	if st.ShowSaved {
		if st.Saved {
			a.info("All changes saved")
		} else {
			a.info("Unsaved changes")
		}
	}
	return nil
}

func (a *App) readCredentials(defEmail string) (models.Credentials, error) {
	email, err := GetTextWithDefault(a.reader, "Enter email", defEmail, a.out)
	if err != nil {
		return models.Credentials{}, err
	}
	if email == "" {
		return models.Credentials{}, errEmptyInput
	}

	password, err := getPassword(a.out)
	if err != nil {
		return models.Credentials{}, err
	}
	defer common.WipeByteArray(password)

	return models.Credentials{Email: email, Password: string(password)}, nil
}

// Login prompts for credentials and logs in. After a signup the email is
// offered as the default and an empty password reuses the one just chosen.
func (a *App) Login(ctx context.Context) error {
	a.mu.Lock()
	prefill := a.prefill
	a.mu.Unlock()

	def := ""
	if prefill != nil {
		def = prefill.Email
	}
	creds, err := a.readCredentials(def)
	if err != nil {
		a.bad("%v", err)
		return err
	}
	if prefill != nil && creds.Email == prefill.Email && creds.Password == "" {
		creds.Password = prefill.Password
	}

	out := a.sessions.Login(ctx, creds)
	a.renderSession(out)
	if out.Kind == services.SessionLoggedIn {
		a.mu.Lock()
		a.prefill = nil
		a.mu.Unlock()
	}
	return out.Err
}

// Signup creates an account and continues straight into the login prompt.
func (a *App) Signup(ctx context.Context) error {
	creds, err := a.readCredentials("")
	if err != nil {
		a.bad("%v", err)
		return err
	}

	out := a.sessions.Signup(ctx, creds)
	a.renderSession(out)
	if out.Kind != services.SessionSignedUp {
		return out.Err
	}

	a.mu.Lock()
	a.prefill = out.Credentials
	a.mu.Unlock()
	a.info("Press Enter to log in as %s", creds.Email)
	return a.Login(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	out := a.sessions.Logout(ctx)
	a.renderSession(out)
	return out.Err
}

func (a *App) New(ctx context.Context) error {
	return a.render(ctx, a.docs.StartNew(ctx))
}

func (a *App) Save(ctx context.Context) error {
	return a.render(ctx, a.docs.SaveOrCreate(ctx))
}

func (a *App) Open(ctx context.Context, id string) error {
	return a.render(ctx, a.docs.Open(ctx, id))
}

func (a *App) Duplicate(ctx context.Context, id string) error {
	return a.render(ctx, a.docs.Duplicate(ctx, id))
}

func (a *App) Fork(ctx context.Context, key string) error {
	return a.render(ctx, a.docs.ForkFromShare(ctx, key))
}

func (a *App) Rename(ctx context.Context, id string) error {
	name, err := getSimpleText(a.reader, "Enter new name", a.out)
	if err != nil {
		a.bad("%v", err)
		return err
	}
	if name == "" {
		a.bad("name is required")
		return errEmptyInput
	}
	return a.render(ctx, a.docs.Rename(ctx, id, name))
}

func (a *App) Delete(ctx context.Context, id string) error {
	prompt := fmt.Sprintf("Delete drawing #%s? (y)es or (n)o", id)
	if GetChoice(a.reader, prompt, "yn", 'n', a.out) != 'y' {
		a.info("Cancelled")
		return nil
	}
	return a.render(ctx, a.docs.Delete(ctx, id, func() {
		_ = a.List(ctx)
	}))
}

func (a *App) List(ctx context.Context) error {
	docs, err := a.docs.List(ctx)
	if err != nil {
		a.bad("%s", errMessage(err))
		return err
	}
	if len(docs) == 0 {
		a.info("No drawings yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, d := range docs {
		created := ""
		if !d.CreatedAt.IsZero() {
			created = d.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Name, created)
	}
	return tw.Flush()
}

func (a *App) Share(ctx context.Context) error {
	link := a.share.IssueShareLink(ctx)
	if link == "" {
		a.bad("could not create a share link")
		return nil
	}
	a.good("Share link: %s", link)
	return nil
}

// Edit replaces the drawing with text typed in the terminal. A file-backed
// drawing can also be edited with any external tool.
func (a *App) Edit(ctx context.Context) error {
	if p, ok := a.surface.(interface{ Path() string }); ok {
		a.info("The drawing lives in %s; external edits are picked up automatically.", p.Path())
	}
	text, err := GetMultiline(a.reader, "Enter the drawing", a.out)
	if err != nil {
		a.bad("%v", err)
		return err
	}
	if err := a.surface.Edit([]byte(text)); err != nil {
		a.bad("cannot update the drawing: %v", err)
		return err
	}
	return nil
}

func (a *App) Show(ctx context.Context) error {
	if a.surface.IsEmpty() {
		a.info("(empty drawing)")
		return nil
	}
	a.info("%s", strings.TrimRight(string(a.surface.Serialize()), "\n"))
	return nil
}

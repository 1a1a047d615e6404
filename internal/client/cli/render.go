package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/services"
)

// render reports a document outcome. NameRequired is answered here by
// asking for a name and creating the drawing.
func (a *App) render(ctx context.Context, out services.Outcome) error {
	switch out.Kind {
	case services.KindStarted:
		a.good("New drawing started")
	case services.KindNameRequired:
		return a.createNamed(ctx)
	case services.KindCreated:
		a.good("Drawing created as #%s", out.DocumentID)
	case services.KindSaved:
		a.good("Drawing saved")
	case services.KindRenamed:
		a.good("Drawing renamed")
	case services.KindOpened:
		a.good("Drawing #%s opened", out.DocumentID)
	case services.KindDuplicated:
		a.good("Drawing copied into a new, unsaved drawing")
	case services.KindForked:
		a.good("Shared drawing copied into a new, unsaved drawing")
	case services.KindDeleted:
		a.good("Drawing deleted")
	case services.KindDeferred:
		a.info("Saving the current drawing first")
		if out.Save == nil {
			return nil
		}
		if err := a.render(ctx, *out.Save); err != nil {
			return err
		}
		a.info("Run the command again to continue")
	case services.KindDeclined:
		a.info("Cancelled")
	case services.KindBusy:
		a.bad("another operation is still running")
		return errBusy
	case services.KindFailed:
		a.bad("%s", errMessage(out.Err))
		return out.Err
	}
	return nil
}

var errBusy = errors.New("busy")

func (a *App) createNamed(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter a name for the drawing", a.out)
	if err != nil {
		a.bad("%v", err)
		return err
	}
	if name == "" {
		a.bad("name is required")
		return errEmptyInput
	}
	return a.render(ctx, a.docs.Create(ctx, name))
}

func (a *App) renderSession(out services.SessionOutcome) {
	switch out.Kind {
	case services.SessionLoggedIn:
		a.good("Welcome, %s", out.Session.Username())
	case services.SessionSignedUp:
		a.good("Account created")
	case services.SessionLoggedOut:
		a.good("Logged out")
	case services.SessionUnchanged:
		if out.Session != nil {
			a.bad("still logged in as %s", out.Session.Email)
		} else {
			a.bad("the server did not confirm the session")
		}
	case services.SessionFailed:
		a.bad("%s", errMessage(out.Err))
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"

	"github.com/dmitrijs2005/worklogger/internal/client/export"
	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/client/services"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/timex"
)

// LogWork fills the entry form and submits it. Blank answers keep the
// current value; "-" clears the category.
func (a *App) LogWork(ctx context.Context) error {
	date := "today"
	if a.form.Date.IsValid() {
		date = a.form.Date.String()
	}
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Date (YYYY-MM-DD) [%s]", date), a.out)
	if err != nil {
		return err
	}
	switch answer {
	case "":
	case "today":
		a.form.Date = timex.Today()
	default:
		d, err := civil.ParseDate(answer)
		if err != nil {
			return fmt.Errorf("%w: invalid date %q", common.ErrorValidation, answer)
		}
		a.form.Date = d
	}

	answer, err = getSimpleText(a.reader, withDefault("Description", a.form.Description), a.out)
	if err != nil {
		return err
	}
	if answer != "" {
		a.form.Description = answer
	}

	answer, err = getSimpleText(a.reader, withDefault("Category ("+categoryKeys()+", optional)", a.form.Category), a.out)
	if err != nil {
		return err
	}
	switch answer {
	case "":
	case "-":
		a.form.Category = ""
	default:
		a.form.Category = strings.ToLower(answer)
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	st, err := a.submission.Submit(ctx, &a.form)
	if errors.Is(err, services.ErrSubmitInFlight) {
		return err
	}
	fmt.Fprintln(a.out, st.Message)
	return nil
}

func withDefault(prompt, current string) string {
	if current == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, current)
}

func categoryKeys() string {
	keys := make([]string, 0, len(common.Categories))
	for _, c := range common.Categories {
		keys = append(keys, c.Key)
	}
	return strings.Join(keys, "/")
}

// Mine lists the signed-in member's entries.
func (a *App) Mine(ctx context.Context) error {
	a.printEntries(a.views.Mine())
	return nil
}

// Recent lists the club's most recent entries.
func (a *App) Recent(ctx context.Context) error {
	a.printEntries(a.views.Recent())
	return nil
}

func (a *App) printEntries(rows []*models.Entry) {
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No logs yet")
		return
	}

	self := a.ids.ID()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tYEAR\tCATEGORY\tDESCRIPTION")
	for _, e := range rows {
		category := common.CategoryLabel(e.Category)
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.OwnerLabel(self), e.StudyYearLabel(), category, oneLine(e.Description))
	}
	_ = tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Delete removes one of the member's own entries after a confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	e := a.views.Find(id)
	if e == nil {
		return fmt.Errorf("log %s not found", id)
	}
	if e.OwnerID != a.ids.ID() {
		return errors.New("you can only delete your own logs")
	}

	ok, err := getYesNo(a.reader, fmt.Sprintf("Delete log of %s %q?", e.Date, oneLine(e.Description)), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	if err := a.deletion.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Export writes the selected rows to a file, optionally uploading a copy.
// Arguments are a selection (all, mine or a category), a format (csv, xlsx)
// and --upload, in any order.
func (a *App) Export(ctx context.Context, args []string) error {
	var (
		selection string
		format    string
		upload    bool
	)
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "--upload", "-u":
			upload = true
		case "csv", "xlsx", "excel":
			format = strings.ToLower(arg)
		default:
			if selection != "" {
				return fmt.Errorf("%w: unexpected argument %q", common.ErrorValidation, arg)
			}
			selection = arg
		}
	}

	f, err := export.ParseFilter(selection)
	if err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	res, err := a.exports.Export(ctx, f, format, upload)
	if res != nil {
		fmt.Fprintf(a.out, "Exported %d logs to %s\n", res.Count, res.Path)
		if res.URL != "" {
			fmt.Fprintf(a.out, "Uploaded copy: %s\n", res.URL)
		}
	}
	return err
}

// Uploads retries the export uploads that failed earlier.
func (a *App) Uploads(ctx context.Context) error {
	ctx, cancel := a.timeout(ctx)
	defer cancel()

	n, err := a.exports.RetryUploads(ctx)
	if n > 0 || err == nil {
		fmt.Fprintf(a.out, "Uploaded %d pending exports\n", n)
	}
	return err
}

// Status prints the connection, account and sync state.
func (a *App) Status(ctx context.Context) error {
	fmt.Fprintf(a.out, "Server: %s (%s)\n", a.config.ServerEndpointAddr, modeLabel(a.mode()))

	id := a.ids.Identity()
	if id == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", id.Username, a.ids.WelcomeName(ctx))
	if p := a.ids.DisplayProfile(ctx); p != nil {
		fmt.Fprintf(a.out, "Study year: %d\n", p.StudyYear)
	}
	fmt.Fprintf(a.out, "Sync: %s, %d own logs, %d recent\n", a.sync.State(), len(a.views.Mine()), len(a.views.Recent()))
	return nil
}

func modeLabel(m Mode) string {
	if m == ModeUnknown {
		return "checking"
	}
	return string(m)
}

// getStatus renders the prompt prefix.
func (a *App) getStatus() string {
	who := "not logged in"
	if id := a.ids.Identity(); id != nil {
		who = id.Username
	}
	return fmt.Sprintf("%s | %s", modeLabel(a.mode()), who)
}

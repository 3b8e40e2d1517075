package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"moneyboard/internal/core"
	"moneyboard/internal/dashboard"
	"moneyboard/internal/gateway"
	"moneyboard/internal/i18n"
	"moneyboard/internal/listing"
	"moneyboard/internal/render"
	"moneyboard/internal/validate"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"dashboard":  runDashboard,
	"trend":      runTrend,
	"list":       runList,
	"add":        runAdd,
	"delete":     runDelete,
	"categories": runCategories,
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// errUsage marks bad invocations; the message is shown as is.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func renderError(err error) string {
	return render.Error(err.Error())
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// suggest returns the candidate closest to s, or "" when nothing is close
// enough to be a plausible typo.
func suggest(s string, candidates []string) string {
	best, bestDist := "", -1
	needle := strings.ToLower(s)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(s)/3) {
		return ""
	}
	return best
}

// parseKind accepts the collection names and their singular forms.
func parseKind(s string) (core.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses":
		return core.Expense, nil
	case "income", "incomes":
		return core.Income, nil
	}
	if hint := suggest(s, []string{"expenses", "income"}); hint != "" {
		return "", usageError("unknown collection %q, did you mean %q?", s, hint)
	}
	return "", usageError("unknown collection %q: want expenses or income", s)
}

// resolveCategory finds a category by id or case-insensitive name.
func resolveCategory(cats []core.Category, ref string) (core.Category, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if c, ok := core.FindCategory(cats, id); ok {
			return c, nil
		}
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
		names[i] = c.Name
	}
	if hint := suggest(ref, names); hint != "" {
		return core.Category{}, usageError("unknown category %q, did you mean %q?", ref, hint)
	}
	return core.Category{}, usageError("unknown category %q", ref)
}

func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("dashboard")
	year := fs.Int("year", 0, "year")
	month := fs.Int("month", 0, "month (1-12)")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	p := core.Period{Year: *year, Month: *month}
	if !p.IsZero() {
		if err := p.Validate(); err != nil {
			return usageError("%v", err)
		}
	}

	vm := dashboard.New(a.client.Dashboard(), p, a.logger)
	if err := vm.Mount(ctx); err != nil {
		return errors.New(a.tr.T(i18n.DashboardError))
	}
	view, ok := vm.View(a.fmt)
	if !ok {
		fmt.Fprintln(a.out, render.Muted(a.tr.T(i18n.NoData)))
		return nil
	}
	fmt.Fprintln(a.out, render.Dashboard(view, a.tr))
	return nil
}

func runTrend(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return usageError("trend takes no arguments")
	}
	trend, err := a.client.Dashboard().MonthlyTrend(ctx)
	if err != nil {
		return errors.New(a.tr.T(i18n.DashboardError))
	}
	fmt.Fprintln(a.out, render.Trend(dashboard.Trend(trend, a.fmt), a.tr))
	return nil
}

func runCategories(ctx context.Context, a *app, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		cats, err := a.client.Categories().List(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, render.Categories(cats, a.tr))
		return nil
	case "add":
		fs := newFlagSet("categories add")
		name := fs.String("name", "", "category name")
		color := fs.String("color", "", "display color, #RRGGBB")
		if err := fs.Parse(args); err != nil {
			return usageError("%v", err)
		}
		in := core.CategoryInput{Name: strings.TrimSpace(*name), Color: *color}
		if err := in.Validate(); err != nil {
			return usageError("%v", err)
		}
		c, err := a.client.Categories().Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, render.Categories([]core.Category{c}, a.tr))
		return nil
	case "delete":
		if len(args) != 1 {
			return usageError("categories delete needs exactly one id")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id < 1 {
			return usageError("invalid id %q", args[0])
		}
		if err := a.client.Categories().Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, render.Muted(fmt.Sprintf("category %d: %s", id, a.tr.T(i18n.Delete))))
		return nil
	}
	return usageError("unknown categories command %q: want list, add or delete", sub)
}

// mountList loads kind's collection through a listing controller.
func mountList(ctx context.Context, a *app, kind core.Kind, confirm listing.Confirmer, opts ...listing.Option) (*listing.Controller, error) {
	opts = append(opts, listing.WithLogger(a.logger))
	ctrl := listing.New(a.client.Transactions(kind), a.client.Categories(), confirm, opts...)
	if err := ctrl.Mount(ctx); err != nil {
		return nil, errors.New(a.tr.T(ctrl.LoadErrorKey()))
	}
	if len(ctrl.Malformed()) > 0 {
		fmt.Fprintln(a.out, render.Muted(a.tr.T(i18n.MalformedRecords)))
	}
	return ctrl, nil
}

func runList(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usageError("list needs a collection: expenses or income")
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	fs := newFlagSet("list")
	from := fs.String("from", "", "first date, YYYY-MM-DD")
	to := fs.String("to", "", "last date, YYYY-MM-DD")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError("%v", err)
	}

	var f gateway.Filter
	if *from != "" {
		if f.Start, err = core.ParseDate(*from); err != nil {
			return usageError("invalid -from: %v", err)
		}
	}
	if *to != "" {
		if f.End, err = core.ParseDate(*to); err != nil {
			return usageError("invalid -to: %v", err)
		}
	}

	ctrl, err := mountList(ctx, a, kind, nil, listing.WithFilter(f))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Transactions(a.tr.T(i18n.TitleKey(kind)), ctrl.Rows(a.fmt), a.tr, i18n.EmptyKey(kind)))
	return nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usageError("add needs a collection: expenses or income")
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	fs := newFlagSet("add")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	description := fs.String("description", "", "description")
	date := fs.String("date", "", "date, YYYY-MM-DD (default today)")
	category := fs.String("category", "", "category name or id")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError("%v", err)
	}
	if *date == "" {
		*date = core.Today().String()
	}

	ctrl, err := mountList(ctx, a, kind, nil)
	if err != nil {
		return err
	}

	draft := core.NewDraft()
	unparsed := validate.Errors{}
	for field, raw := range map[core.Field]string{
		core.FieldAmount:      *amount,
		core.FieldDescription: *description,
		core.FieldDate:        *date,
	} {
		if err := draft.Set(field, raw); err != nil {
			unparsed[field] = fieldKey(field)
		}
	}
	if *category != "" {
		c, err := resolveCategory(ctrl.Categories(), *category)
		if err != nil {
			return err
		}
		draft.SetCategory(c.ID)
	}

	// Report parse failures together with every other invalid field.
	errs := validate.Draft(draft, ctrl.Categories())
	for field, key := range unparsed {
		errs[field] = key
	}
	if !errs.Valid() {
		return fieldErrors(a.tr, errs)
	}

	verrs, err := ctrl.Submit(ctx, draft)
	if err != nil {
		return fmt.Errorf("%s: %w", a.tr.T(i18n.AddErrorKey(kind)), err)
	}
	if !verrs.Valid() {
		return fieldErrors(a.tr, verrs)
	}
	fmt.Fprintln(a.out, render.Transactions(a.tr.T(i18n.TitleKey(kind)), ctrl.Rows(a.fmt)[:1], a.tr, i18n.EmptyKey(kind)))
	return nil
}

// fieldKey is the message for a field whose raw input did not parse.
func fieldKey(f core.Field) i18n.Key {
	switch f {
	case core.FieldAmount:
		return i18n.AmountInvalid
	case core.FieldDate:
		return i18n.DateRequired
	case core.FieldCategory:
		return i18n.CategoryRequired
	}
	return i18n.DescriptionRequired
}

func fieldErrors(t *i18n.Translator, errs validate.Errors) error {
	msgs := errs.Messages(t)
	lines := make([]string, 0, len(msgs))
	for _, f := range errs.Fields() {
		lines = append(lines, fmt.Sprintf("%s: %s", f, msgs[f]))
	}
	return errors.New(strings.Join(lines, "\n"))
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usageError("delete needs a collection: expenses or income")
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	fs := newFlagSet("delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError("%v", err)
	}
	if fs.NArg() != 1 {
		return usageError("delete needs exactly one id")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id < 1 {
		return usageError("invalid id %q", fs.Arg(0))
	}

	confirm := listing.ConfirmFunc(func(_ context.Context, prompt i18n.Key) bool {
		if *yes {
			return true
		}
		fmt.Fprintf(a.out, "%s [%s/%s] ", a.tr.T(prompt), a.tr.T(i18n.Yes), a.tr.T(i18n.No))
		answer, _ := a.in.ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(answer), a.tr.T(i18n.Yes))
	})

	ctrl, err := mountList(ctx, a, kind, confirm)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(ctrl.Transactions(), func(tx core.Transaction) bool { return tx.ID == id }) {
		return fmt.Errorf("%s %d not found", kind, id)
	}
	removed, err := ctrl.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", a.tr.T(i18n.DeleteErrorKey(kind)), err)
	}
	if !removed {
		fmt.Fprintln(a.out, render.Muted(a.tr.T(i18n.Cancel)))
		return nil
	}
	fmt.Fprintln(a.out, render.Muted(fmt.Sprintf("%s %d: %s", kind, id, a.tr.T(i18n.Delete))))
	return nil
}

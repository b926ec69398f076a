package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/mmcdole/reelkeep/internal/tmdb"
)

var errUsage = errors.New("invalid usage")

// readOnly commands may refresh lists from the account in the background
var readOnly = map[string]bool{
	"status": true, "list": true, "ratings": true, "find": true,
	"search": true, "discover": true, "info": true,
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	if readOnly[cmd] && a.cfg.Sync.OnStart && a.client.Authenticated() {
		a.lists.StartSync(ctx)
	}

	switch cmd {
	case "sync":
		return a.runSync(ctx)
	case "status":
		return a.runStatus(ctx)
	case "list":
		if len(rest) != 1 {
			return fmt.Errorf("%w: list <kind>", errUsage)
		}
		return a.runList(ctx, rest[0])
	case "add", "remove", "toggle":
		if len(rest) != 2 {
			return fmt.Errorf("%w: %s <kind> <id>", errUsage, cmd)
		}
		return a.runMembership(ctx, cmd, rest[0], rest[1])
	case "rate":
		if len(rest) != 2 {
			return fmt.Errorf("%w: rate <id> <value>", errUsage)
		}
		return a.runRate(ctx, rest[0], rest[1])
	case "unrate":
		if len(rest) != 1 {
			return fmt.Errorf("%w: unrate <id>", errUsage)
		}
		return a.runUnrate(ctx, rest[0])
	case "ratings":
		return a.runRatings(ctx)
	case "clear":
		return a.runClear(ctx)
	case "search":
		if len(rest) == 0 {
			return fmt.Errorf("%w: search <query>", errUsage)
		}
		return a.runSearch(ctx, strings.Join(rest, " "))
	case "find":
		if len(rest) == 0 {
			return fmt.Errorf("%w: find <query>", errUsage)
		}
		return a.runFind(ctx, strings.Join(rest, " "))
	case "discover":
		if len(rest) < 1 || len(rest) > 2 {
			return fmt.Errorf("%w: discover <category> [page]", errUsage)
		}
		return a.runDiscover(ctx, rest)
	case "info":
		if len(rest) != 1 {
			return fmt.Errorf("%w: info <id>", errUsage)
		}
		return a.runInfo(ctx, rest[0])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) runSync(ctx context.Context) error {
	status, err := a.lists.Sync(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return fmt.Errorf("%w: run 'reelkeep login' first", err)
		}
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(a.out, SuccessStyle.Render("✓ Synced at "+formatTime(status.LastSync)))
	return a.printCounts(ctx)
}

func (a *app) runStatus(ctx context.Context) error {
	account := "not signed in"
	if session, ok := a.cfg.Session(); ok {
		account = fmt.Sprintf("%s (account %d)", session.Username, session.AccountID)
	}
	fmt.Fprintln(a.out, HeaderStyle.Render("reelkeep "+Version))
	fmt.Fprintf(a.out, "Account:   %s\n", account)
	fmt.Fprintf(a.out, "Storage:   %s\n", a.cfg.Storage.Backend)

	status := a.lists.SyncStatus(ctx)
	state := ErrorStyle.Render("not synced")
	if status.Synced {
		state = SuccessStyle.Render("synced")
	}
	fmt.Fprintf(a.out, "Last sync: %s (%s)\n", formatTime(status.LastSync), state)
	return a.printCounts(ctx)
}

func (a *app) printCounts(ctx context.Context) error {
	for _, kind := range domain.AllListKinds {
		fmt.Fprintf(a.out, "%-10s %d\n", kind.String()+":", len(a.lists.GetAll(ctx, kind)))
	}
	fmt.Fprintf(a.out, "%-10s %d\n", "ratings:", len(a.lists.Ratings(ctx)))
	return nil
}

func (a *app) runList(ctx context.Context, kindArg string) error {
	kind, err := domain.ParseListKind(kindArg)
	if err != nil {
		return err
	}
	items := a.lists.GetAll(ctx, kind)
	fmt.Fprintln(a.out, HeaderStyle.Render(fmt.Sprintf("%s (%d)", kind, len(items))))
	a.printItems(ctx, items)
	return nil
}

func (a *app) runMembership(ctx context.Context, cmd, kindArg, idArg string) error {
	kind, err := domain.ParseListKind(kindArg)
	if err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	if cmd == "remove" {
		if err := a.lists.Remove(ctx, kind, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s removed %d from %s\n", SuccessStyle.Render("✓"), id, kind)
		return nil
	}

	item, err := a.snapshot(ctx, id)
	if err != nil {
		return err
	}

	member := true
	if cmd == "toggle" {
		member, err = a.lists.Toggle(ctx, kind, item)
	} else {
		err = a.lists.Add(ctx, kind, item)
	}
	if err != nil {
		return err
	}

	verb := "added to"
	if !member {
		verb = "removed from"
	}
	name := item.DisplayTitle()
	if name == "" {
		name = fmt.Sprintf("movie %d", id)
	}
	fmt.Fprintf(a.out, "%s %s %s %s\n", SuccessStyle.Render("✓"), name, verb, kind)
	return nil
}

// snapshot returns the catalog record lists keep for id. When the catalog is
// unreachable a bare record is used so local changes still work offline.
func (a *app) snapshot(ctx context.Context, id int64) (domain.CatalogItem, error) {
	movie, err := a.client.Movie(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			a.logger.Warn("catalog unreachable, saving movie without details", "error", err, "movieID", id)
			fmt.Fprintln(a.out, DimStyle.Render("catalog unreachable, saving movie without details"))
			return domain.CatalogItem{ID: id}, nil
		}
		return domain.CatalogItem{}, fmt.Errorf("failed to look up movie %d: %w", id, err)
	}
	return movie.CatalogItem, nil
}

func (a *app) runRate(ctx context.Context, idArg, valueArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(valueArg, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRating, valueArg)
	}
	if err := a.lists.SetRating(ctx, id, value); err != nil {
		return err
	}
	rating, _ := a.lists.GetRating(ctx, id)
	fmt.Fprintf(a.out, "%s rated %d %s\n", SuccessStyle.Render("✓"), id, AccentStyle.Render(strconv.FormatFloat(rating, 'f', 1, 64)))
	return nil
}

func (a *app) runUnrate(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	if err := a.lists.RemoveRating(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s removed local rating for %d\n", SuccessStyle.Render("✓"), id)
	return nil
}

func (a *app) runRatings(ctx context.Context) error {
	ratings := a.lists.Ratings(ctx)
	fmt.Fprintln(a.out, HeaderStyle.Render(fmt.Sprintf("ratings (%d)", len(ratings))))
	for _, id := range sortedIDs(ratings) {
		fmt.Fprintf(a.out, "%8d  %s\n", id, AccentStyle.Render(strconv.FormatFloat(ratings[id], 'f', 1, 64)))
	}
	return nil
}

func (a *app) runClear(ctx context.Context) error {
	if err := a.lists.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear incomplete: %w", err)
	}
	fmt.Fprintln(a.out, SuccessStyle.Render("✓ Cleared all lists and ratings"))
	return nil
}

func (a *app) runSearch(ctx context.Context, query string) error {
	res, err := a.browse.Search(ctx, query, 1)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("%q: %d results", query, res.TotalResults)
	if res.Local {
		header += " " + DimStyle.Render("(catalog unreachable, showing saved movies)")
	}
	fmt.Fprintln(a.out, HeaderStyle.Render(header))
	a.printItems(ctx, res.Results)
	return nil
}

func (a *app) runFind(ctx context.Context, query string) error {
	items := a.browse.SearchSaved(ctx, query)
	fmt.Fprintln(a.out, HeaderStyle.Render(fmt.Sprintf("%q: %d saved matches", query, len(items))))
	a.printItems(ctx, items)
	return nil
}

func (a *app) runDiscover(ctx context.Context, args []string) error {
	category := domain.DiscoverCategory(strings.ToLower(args[0]))
	page := 1
	if len(args) == 2 {
		p, err := strconv.Atoi(args[1])
		if err != nil || p < 1 {
			return fmt.Errorf("%w: page must be a positive number", errUsage)
		}
		page = p
	}

	res, err := a.browse.Discover(ctx, category, page)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, HeaderStyle.Render(fmt.Sprintf("%s page %d/%d", category, res.Number, res.TotalPages)))
	a.printItems(ctx, res.Results)
	return nil
}

func (a *app) runInfo(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	d, err := a.browse.Details(ctx, id)
	if err != nil {
		return err
	}

	m := d.Movie
	fmt.Fprintln(a.out, TitleStyle.Render(m.DisplayTitle())+"  "+membershipMarks(m.CatalogItem))
	if m.Tagline != "" {
		fmt.Fprintln(a.out, SubtitleStyle.Render(m.Tagline))
	}
	fmt.Fprintln(a.out)

	meta := []string{AccentStyle.Render("★ " + m.FormattedScore())}
	if rt := m.FormattedRuntime(); rt != "" {
		meta = append(meta, rt)
	}
	if g := m.GenreNames(); g != "" {
		meta = append(meta, g)
	}
	if d.Rating > 0 {
		meta = append(meta, BadgeStyle.Render("rated "+strconv.FormatFloat(d.Rating, 'f', 1, 64)))
	}
	fmt.Fprintln(a.out, strings.Join(meta, DimStyle.Render(" • ")))

	if d.Credits != nil {
		if directors := d.Credits.Directors(); len(directors) > 0 {
			fmt.Fprintf(a.out, "Directed by %s\n", strings.Join(directors, ", "))
		}
		var cast []string
		for i, c := range d.Credits.Cast {
			if i == 5 {
				break
			}
			cast = append(cast, c.Name)
		}
		if len(cast) > 0 {
			fmt.Fprintf(a.out, "Starring %s\n", strings.Join(cast, ", "))
		}
	}
	if m.Overview != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, m.Overview)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, DimStyle.Render("Poster: "+a.client.ImageURL(m.PosterPath, tmdb.SizeW500)))
	for _, v := range d.Videos {
		if url := v.WatchURL(); url != "" && v.Type == "Trailer" {
			fmt.Fprintln(a.out, DimStyle.Render("Trailer: "+url))
			break
		}
	}
	return nil
}

func (a *app) printItems(ctx context.Context, items []domain.CatalogItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, DimStyle.Render("  (none)"))
		return
	}
	ratings := a.lists.Ratings(ctx)
	for _, item := range items {
		fmt.Fprintln(a.out, itemLine(item, ratings[item.ID]))
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid movie id %q", errUsage, s)
	}
	return id, nil
}

func sortedIDs(ratings map[int64]float64) []int64 {
	return slices.Sorted(maps.Keys(ratings))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

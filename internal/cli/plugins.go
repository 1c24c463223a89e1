package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/catalog"
	"github.com/exptechtw/tremstore/internal/cli/pagination"
	"github.com/exptechtw/tremstore/internal/display"
	"github.com/exptechtw/tremstore/internal/fetcher"
)

const (
	colWidthDescription = 40
	showReleasesLimit   = 5
)

// pluginRow is the JSON shape of a listed plugin.
type pluginRow struct {
	catalog.Plugin

	Verified  bool   `json:"verified"`
	Channel   string `json:"channel,omitempty"`
	Published string `json:"published,omitempty"`
}

type pluginListOutput struct {
	Status     fetcher.Status   `json:"status"`
	FetchedAt  time.Time        `json:"fetched_at"`
	Plugins    []pluginRow      `json:"plugins"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

func sortFieldNames() []string {
	fields := catalog.SortFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}

// newPluginsListCmd lists and searches the plugin catalog.
func newPluginsListCmd() *cobra.Command {
	var (
		sortExpr     string
		verifiedOnly bool
		page         pagination.Params
	)

	cmd := &cobra.Command{
		Use:   "list [query...]",
		Short: "List and search plugins",
		Long: "List the plugin catalog. Query terms are matched case-insensitively against the " +
			"plugin name, description and authors; every term must match.",
		Example: `  # All plugins, alphabetically
  tremstore plugins list

  # Plugins mentioning both words, most downloaded first
  tremstore plugins list websocket exptech --sort downloads

  # Oldest updates first, second page of 10
  tremstore plugins list --sort updated:asc --page 2 --page-size 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			field, order, err := parsePluginSort(sortExpr)
			if err != nil {
				return err
			}
			if err = page.Validate(); err != nil {
				return usageError("%w", err)
			}
			return runPluginsList(cmd, strings.Join(args, " "), field, order, verifiedOnly, page)
		},
	}

	cmd.Flags().StringVar(&sortExpr, "sort", "name",
		"sort by field[:order]; fields: "+strings.Join(sortFieldNames(), ", "))
	cmd.Flags().BoolVar(&verifiedOnly, "verified", false, "only show plugins by the official author")
	page.AddFlags(cmd)
	return cmd
}

func parsePluginSort(expr string) (catalog.SortField, catalog.SortOrder, error) {
	field, order, err := pagination.ParseSort(expr, sortFieldNames())
	if err != nil {
		return "", "", usageError("--sort: %w", err)
	}
	sf := catalog.SortByName
	if field != "" {
		if sf, err = catalog.ParseSortField(field); err != nil {
			return "", "", usageError("--sort: %w", err)
		}
	}
	so := catalog.DefaultOrder(sf)
	if order != "" {
		if so, err = catalog.ParseSortOrder(order); err != nil {
			return "", "", usageError("--sort: %w", err)
		}
	}
	return sf, so, nil
}

func runPluginsList(
	cmd *cobra.Command,
	query string,
	field catalog.SortField,
	order catalog.SortOrder,
	verifiedOnly bool,
	page pagination.Params,
) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	res, err := a.loadPlugins(ctx)
	if err != nil {
		return err
	}

	plugins := catalog.Search(res.Value, query)
	if verifiedOnly {
		verified := plugins[:0:0]
		for _, p := range plugins {
			if catalog.IsVerified(p, a.cfg.Install.VerifiedAuthor) {
				verified = append(verified, p)
			}
		}
		plugins = verified
	}
	plugins = catalog.Sort(plugins, field, order)
	total := len(plugins)
	plugins = pagination.Apply(page, plugins)

	logger.Debug().Ctx(ctx).
		Str("operation", "plugins_list").
		Str("query", query).
		Str("sort", string(field)+":"+string(order)).
		Int("matches", total).
		Msg("plugins listed")

	rows := make([]pluginRow, len(plugins))
	for i, p := range plugins {
		rows[i] = newPluginRow(p, a.cfg.Install.VerifiedAuthor)
	}

	out := cmd.OutOrStdout()
	switch a.output {
	case outputJSON:
		doc := pluginListOutput{Status: res.Status, FetchedAt: res.FetchedAt, Plugins: rows}
		if page.IsEnabled() {
			meta := pagination.NewMeta(page, total)
			doc.Pagination = &meta
		}
		return renderJSON(out, doc)
	case outputNDJSON:
		return renderNDJSON(out, rows)
	case outputTable:
	}

	if len(rows) == 0 {
		if query != "" {
			fmt.Fprintf(out, "No plugins match %q.\n", query)
		} else {
			fmt.Fprintln(out, "No plugins found.")
		}
		return nil
	}
	return renderPluginTable(out, rows, a.now())
}

func newPluginRow(p catalog.Plugin, verifiedAuthor string) pluginRow {
	row := pluginRow{Plugin: p, Verified: catalog.IsVerified(p, verifiedAuthor)}
	if r, ok := p.LatestRelease(); ok {
		row.Channel = string(catalog.ChannelOf(r.TagName))
	}
	if t, ok := p.LastPublished(); ok {
		row.Published = t.Format(time.RFC3339)
	}
	return row
}

func renderPluginTable(w io.Writer, rows []pluginRow, now time.Time) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tVERSION\tAUTHOR\tDOWNLOADS\tUPDATED\tDESCRIPTION")
	for _, r := range rows {
		name := r.Name
		if r.Verified {
			name += " ✓"
		}
		updated := "-"
		if t, ok := r.LastPublished(); ok {
			updated = display.Relative(t, now)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			r.Version,
			strings.Join(r.Author, ", "),
			display.CompactNumber(int64(r.Downloads())),
			updated,
			truncate(r.Description.ZhTW, colWidthDescription),
		)
	}
	return tw.Flush()
}

// findPlugin loads the catalog and looks up name.
func findPlugin(cmd *cobra.Command, a *app, name string) (catalog.Plugin, []catalog.Plugin, error) {
	res, err := a.loadPlugins(cmd.Context())
	if err != nil {
		return catalog.Plugin{}, nil, err
	}
	p, ok := catalog.Find(res.Value, name)
	if !ok {
		return catalog.Plugin{}, nil, fmt.Errorf("plugin %q not found (try: tremstore plugins list %s)", name, name)
	}
	return p, res.Value, nil
}

type pluginDetail struct {
	Plugin       catalog.Plugin            `json:"plugin"`
	Verified     bool                      `json:"verified"`
	Repository   string                    `json:"repository_url"`
	Recommended  string                    `json:"recommended,omitempty"`
	InstallURL   string                    `json:"install_url"`
	Dependencies []catalog.DependencyCheck `json:"dependencies"`
	Dependents   []dependentRow            `json:"dependents"`
	Activity     []catalog.ActivityDay     `json:"activity"`
}

type dependentRow struct {
	Name     string `json:"name"`
	Requires string `json:"requires"`
}

// newPluginsShowCmd shows one plugin in detail.
func newPluginsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show plugin details, releases and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			p, all, err := findPlugin(cmd, a, args[0])
			if err != nil {
				return err
			}
			now := a.now()
			detail := buildPluginDetail(a, p, all, now)
			if a.output != outputTable {
				return renderJSON(cmd.OutOrStdout(), detail)
			}
			return renderPluginDetail(cmd.OutOrStdout(), detail, now)
		},
	}
}

func buildPluginDetail(a *app, p catalog.Plugin, all []catalog.Plugin, now time.Time) pluginDetail {
	d := pluginDetail{
		Plugin:       p,
		Verified:     catalog.IsVerified(p, a.cfg.Install.VerifiedAuthor),
		Repository:   catalog.RepositoryURL(p),
		InstallURL:   catalog.InstallURL(p, a.cfg.Install.Scheme, ""),
		Dependencies: catalog.CheckDependencies(all, p),
		Activity:     catalog.Activity(p.Repository.Releases.Releases, now),
	}
	if r, ok := catalog.RecommendedRelease(p.Repository.Releases.Releases); ok {
		d.Recommended = r.TagName
	}
	for _, dep := range catalog.Dependents(all, p.Name) {
		d.Dependents = append(d.Dependents, dependentRow{Name: dep.Plugin.Name, Requires: dep.Requires})
	}
	return d
}

func renderPluginDetail(w io.Writer, d pluginDetail, now time.Time) error {
	p := d.Plugin
	fmt.Fprintf(w, "%s %s\n", p.Name, p.Version)
	fmt.Fprintln(w, strings.Repeat("=", len(p.Name)+len(p.Version)+1))
	if p.Description.ZhTW != "" {
		fmt.Fprintln(w, p.Description.ZhTW)
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	author := strings.Join(p.Author, ", ")
	if d.Verified {
		author += " (verified)"
	}
	fmt.Fprintf(tw, "Author:\t%s\n", author)
	fmt.Fprintf(tw, "Repository:\t%s\n", d.Repository)
	fmt.Fprintf(tw, "Downloads:\t%s\n", display.Number(int64(p.Downloads())))
	if t, ok := p.LastPublished(); ok {
		fmt.Fprintf(tw, "Last release:\t%s (%s)\n", display.Timestamp(t), display.Relative(t, now))
	}
	if d.Recommended != "" {
		ch := catalog.ChannelOf(d.Recommended)
		fmt.Fprintf(tw, "Recommended:\t%s [%s]\n", d.Recommended, ch.Label())
	}
	fmt.Fprintf(tw, "Install:\t%s\n", d.InstallURL)
	if err := tw.Flush(); err != nil {
		return err
	}

	if rels := p.Repository.Releases.Releases; len(rels) > 0 {
		fmt.Fprintln(w, "\nReleases:")
		tw = newTable(w)
		for i, r := range rels {
			if i == showReleasesLimit {
				fmt.Fprintf(tw, "  ... %d more\t\t\t\n", len(rels)-showReleasesLimit)
				break
			}
			published := "-"
			if r.PublishedAt != nil {
				published = display.Timestamp(*r.PublishedAt)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				r.TagName, catalog.ChannelOf(r.TagName).Label(), published, display.CompactNumber(int64(r.Downloads)))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(d.Dependencies) > 0 {
		fmt.Fprintln(w, "\nDependencies:")
		if err := renderDependencyChecks(w, d.Dependencies); err != nil {
			return err
		}
	}
	if len(d.Dependents) > 0 {
		fmt.Fprintln(w, "\nRequired by:")
		for _, dep := range d.Dependents {
			fmt.Fprintf(w, "  %s (%s)\n", dep.Name, dep.Requires)
		}
	}

	fmt.Fprintf(w, "\nActivity (last month): %s\n", activityStrip(d.Activity))
	return nil
}

var activityGlyphs = []rune{'·', '░', '▒', '▓', '█'} //nolint:gochecknoglobals // Lookup table.

func activityStrip(days []catalog.ActivityDay) string {
	var b strings.Builder
	for _, d := range days {
		level := min(max(d.Level, 0), len(activityGlyphs)-1)
		b.WriteRune(activityGlyphs[level])
	}
	return b.String()
}

func renderDependencyChecks(w io.Writer, checks []catalog.DependencyCheck) error {
	tw := newTable(w)
	for _, c := range checks {
		available := c.Available
		if available == "" {
			available = "-"
		}
		line := fmt.Sprintf("  %s\t%s\t%s\t%s", c.Name, c.Constraint, available, c.State)
		if c.Detail != "" {
			line += "\t" + c.Detail
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

// newPluginsDepsCmd checks a plugin's dependencies against the catalog.
func newPluginsDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <name>",
		Short: "Check a plugin's dependencies and list the plugins that require it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			p, all, err := findPlugin(cmd, a, args[0])
			if err != nil {
				return err
			}

			checks := catalog.CheckDependencies(all, p)
			var dependents []dependentRow
			for _, d := range catalog.Dependents(all, p.Name) {
				dependents = append(dependents, dependentRow{Name: d.Plugin.Name, Requires: d.Requires})
			}

			out := cmd.OutOrStdout()
			if a.output != outputTable {
				return renderJSON(out, map[string]any{
					"plugin":       p.Name,
					"dependencies": checks,
					"dependents":   dependents,
				})
			}

			if len(checks) == 0 {
				fmt.Fprintf(out, "%s has no dependencies.\n", p.Name)
			} else {
				fmt.Fprintf(out, "%s depends on:\n", p.Name)
				if err = renderDependencyChecks(out, checks); err != nil {
					return err
				}
			}
			if len(dependents) == 0 {
				fmt.Fprintf(out, "No plugins require %s.\n", p.Name)
				return nil
			}
			fmt.Fprintf(out, "Required by:\n")
			for _, d := range dependents {
				fmt.Fprintf(out, "  %s (%s)\n", d.Name, d.Requires)
			}
			return nil
		},
	}
}

// newPluginsReadmeCmd prints the README of a plugin's repository.
func newPluginsReadmeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "readme <name>",
		Short: "Print a plugin's README",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			p, _, err := findPlugin(cmd, a, args[0])
			if err != nil {
				return err
			}
			if p.Repository.FullName == "" {
				return fmt.Errorf("plugin %q has no repository", p.Name)
			}

			readme, err := a.github.Readme(cmd.Context(), p.Repository.FullName)
			if err != nil {
				return err
			}
			if a.output != outputTable {
				return renderJSON(cmd.OutOrStdout(), map[string]string{
					"plugin":     p.Name,
					"repository": p.Repository.FullName,
					"readme":     readme,
				})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), strings.TrimRight(readme, "\n")+"\n")
			return err
		},
	}
}

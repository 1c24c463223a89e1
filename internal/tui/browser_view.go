package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/exptechtw/tremstore/internal/catalog"
	"github.com/exptechtw/tremstore/internal/display"
	"github.com/exptechtw/tremstore/internal/fetcher"
)

const (
	nameColumnWidth      = 24
	versionColumnWidth   = 10
	downloadsColumnWidth = 9
	maxDetailReleases    = 5
	readmeMinLines       = 3
)

//nolint:gochecknoglobals // Heatmap palette, one color per activity level.
var activityColors = []lipgloss.Color{"237", "22", "28", "34", "40"}

// View renders the current state (Bubble Tea interface).
func (m BrowserModel) View() string {
	switch m.state {
	case ViewStateLoading:
		return RenderLoading(m.loading)
	case ViewStateError:
		return m.renderError()
	case ViewStateDetail:
		return m.renderDetail()
	case ViewStateList:
		return m.renderList()
	case ViewStateQuitting:
		return ""
	}
	return ""
}

func (m BrowserModel) renderError() string {
	box := BoxStyle.Width(max(m.width-borderPadding*2, 20)).Render(ErrorStyle.Render("Error: ") + m.err.Error())
	return box + "\n\n" + MutedStyle.Render("r retry • q quit")
}

func (m BrowserModel) renderList() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("TREM plugin store"))
	b.WriteString("  ")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	if m.showFilter {
		b.WriteString("Filter: " + m.textInput.View())
	} else if q := m.textInput.Value(); q != "" {
		b.WriteString(LabelStyle.Render("Filter: ") + ValueStyle.Render(q))
	}
	b.WriteString("\n")

	if m.list.Len() == 0 {
		b.WriteString(MutedStyle.Render("No plugins match the filter."))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(WarningStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("↑/↓ move • enter details • / filter • s sort • o order • r refresh • q quit"))
	return b.String()
}

func (m BrowserModel) renderStatusBar() string {
	arrow := "↑"
	if m.sortOrder == catalog.SortDesc {
		arrow = "↓"
	}
	parts := []string{
		fmt.Sprintf("%d/%d plugins", len(m.rows), len(m.all)),
		fmt.Sprintf("sort: %s %s", m.sortField, arrow),
	}
	if !m.fetchedAt.IsZero() {
		parts = append(parts, "updated "+display.Relative(m.fetchedAt, m.opts.Now()))
	}
	if m.refreshing {
		parts = append(parts, m.loading.Inline())
	}
	status := MutedStyle.Render(strings.Join(parts, " • "))
	if m.status == fetcher.StatusStale {
		status += " " + WarningStyle.Render("[cached]")
	}
	return status
}

func renderPluginRow(p catalog.Plugin, selected bool, width int, opts BrowserOptions) string {
	mark := " "
	if catalog.IsVerified(p, opts.VerifiedAuthor) {
		mark = VerifiedStyle.Render("✓")
	}
	published := "-"
	if t, ok := p.LastPublished(); ok {
		published = display.Relative(t, opts.Now())
	}
	line := fmt.Sprintf("%-*s %-*s %*s  %s",
		nameColumnWidth, truncateText(p.Name, nameColumnWidth),
		versionColumnWidth, truncateText(p.Version, versionColumnWidth),
		downloadsColumnWidth, display.CompactNumber(int64(p.Downloads())),
		published)
	if desc := p.Description.ZhTW; desc != "" {
		line += "  " + desc
	}

	style := lipgloss.NewStyle().MaxWidth(max(width-borderPadding, 1))
	if selected {
		return mark + " " + SelectedStyle.Inherit(style).Render(line)
	}
	return mark + " " + style.Render(line)
}

func (m BrowserModel) renderDetail() string {
	p := m.selected
	var b strings.Builder

	title := HeaderStyle.Render(p.Name) + " " + ValueStyle.Render(p.Version)
	if catalog.IsVerified(p, m.opts.VerifiedAuthor) {
		title += " " + VerifiedStyle.Render("✓ verified")
	}
	b.WriteString(title + "\n")
	if p.Description.ZhTW != "" {
		b.WriteString(p.Description.ZhTW + "\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString(LabelStyle.Render(fmt.Sprintf("%-12s", label)) + ValueStyle.Render(value) + "\n")
	}
	field("Authors", strings.Join(p.Author, ", "))
	field("Downloads", display.Number(int64(p.Downloads())))
	field("Repository", catalog.RepositoryURL(p))
	field("Install", catalog.InstallURL(p, m.opts.InstallScheme, ""))
	if rec, ok := catalog.RecommendedRelease(p.Repository.Releases.Releases); ok {
		field("Recommended", rec.TagName+" ("+catalog.ChannelOf(rec.TagName).Label()+")")
	}
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-12s", "Activity")) +
		renderActivity(catalog.Activity(p.Repository.Releases.Releases, m.opts.Now())) + "\n")

	releases := p.Repository.Releases.Releases
	if len(releases) > 0 {
		b.WriteString("\n" + HeaderStyle.Render("Releases") + "\n")
		for i, r := range releases {
			if i == maxDetailReleases {
				b.WriteString(MutedStyle.Render(fmt.Sprintf("… %d more", len(releases)-maxDetailReleases)) + "\n")
				break
			}
			published := "-"
			if r.PublishedAt != nil {
				published = display.Relative(*r.PublishedAt, m.opts.Now())
			}
			b.WriteString(fmt.Sprintf("  %-14s %-8s %8s  %s\n",
				r.TagName, catalog.ChannelOf(r.TagName).Label(), display.Number(int64(r.Downloads)), published))
		}
	}

	b.WriteString("\n" + HeaderStyle.Render("README") + "\n")
	used := strings.Count(b.String(), "\n") + 2
	b.WriteString(m.readme.View(max(m.height-used, readmeMinLines)))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render("esc back • r retry README • q quit"))
	return b.String()
}

func renderActivity(days []catalog.ActivityDay) string {
	var b strings.Builder
	for _, d := range days {
		level := min(max(d.Level, 0), len(activityColors)-1)
		b.WriteString(lipgloss.NewStyle().Foreground(activityColors[level]).Render("■"))
	}
	return b.String()
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

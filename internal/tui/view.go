package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/processing"
)

const excerptRunes = 140

func (m Model) View() string {
	if m.reading {
		return m.reader.View() + "\n" + mutedStyle.Render("esc back • ↑/↓ scroll")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("AI News Dashboard"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading news...\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n" + mutedStyle.Render("press r to retry"))
		b.WriteString("\n")
	default:
		switch m.tab {
		case tabRecent:
			b.WriteString(m.renderRecent())
		case tabFeed:
			b.WriteString(m.renderFeed())
		case tabForYou:
			b.WriteString(m.renderForYou())
		case tabSaved:
			b.WriteString(m.renderSaved())
		case tabChat:
			b.WriteString(m.renderChat())
		}
	}

	if m.status != "" {
		b.WriteString("\n" + mutedStyle.Render(m.status))
	}
	b.WriteString("\n" + mutedStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			parts = append(parts, activeTab.Render(name))
		} else {
			parts = append(parts, inactiveTab.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderRecent() string {
	posts := m.recentPosts()
	if len(posts) == 0 {
		return "No news published today.\n"
	}
	var b strings.Builder
	for i, p := range posts {
		b.WriteString(m.renderPostLine(i, p, ""))
		if ex := processing.Excerpt(p, excerptRunes); ex != "" {
			b.WriteString("    " + ex + "\n")
		}
	}
	return b.String()
}

func (m Model) renderFeed() string {
	var b strings.Builder

	platform := platforms[m.platformIdx]
	if platform == "" {
		platform = "All"
	}
	b.WriteString("Platform: " + selectedStyle.Render(platform) + "\n")

	options := m.sourceOptions()
	if len(options) > 0 {
		chips := make([]string, 0, len(options))
		for i, o := range options {
			mark := "[ ]"
			if m.selected[o.Value] {
				mark = "[x]"
			}
			chip := mark + " " + o.Label
			if i == m.sourceCursor {
				chip = selectedStyle.Render(chip)
			}
			chips = append(chips, chip)
		}
		b.WriteString("Sources: " + strings.Join(chips, "  ") + "\n")
	}
	b.WriteString("\n")

	page, err := m.feedPage()
	if err != nil {
		return b.String() + errorStyle.Render(err.Error()) + "\n"
	}
	if page.Total == 0 {
		b.WriteString("No posts match the current filters.\n")
		return b.String()
	}
	for i, p := range page.Items {
		b.WriteString(m.renderPostLine(i, p, ""))
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("\nPage %d of %d • %d posts", page.Page, page.TotalPages, page.Total)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderForYou() string {
	if len(m.prefs.PreferredCategories) == 0 && len(m.prefs.PreferredSources) == 0 {
		return "Set preferences with `dashboard prefs set` to personalize this view.\n"
	}
	scored := m.visibleScored()
	if len(scored) == 0 {
		return "No posts to rank yet.\n"
	}

	var b strings.Builder
	for i, s := range scored {
		badge := scoreStyle.Render(fmt.Sprintf("%d/%d", s.RelevanceScore, m.scorer.Weights().Max))
		b.WriteString(m.renderPostLine(i, *s.Post, badge))
		b.WriteString("    " + mutedStyle.Render(s.Justification) + "\n")
	}
	if len(scored) < len(m.scored) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("\nShowing %d of %d • m for more", len(scored), len(m.scored))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSaved() string {
	if len(m.saved) == 0 {
		return "No saved posts. Press b on a post to bookmark it.\n"
	}
	var b strings.Builder
	for i, s := range m.saved {
		b.WriteString(m.renderPostLine(i, s.Post, mutedStyle.Render("saved "+s.SavedAt)))
	}
	return b.String()
}

func (m Model) renderChat() string {
	var b strings.Builder
	if len(m.messages) == 0 {
		b.WriteString(mutedStyle.Render("Ask the assistant about recent AI news.") + "\n")
	}
	for _, msg := range m.messages {
		who := userStyle.Render("You")
		if msg.Role == models.RoleAssistant {
			who = botStyle.Render("Assistant")
		}
		b.WriteString(fmt.Sprintf("%s %s\n%s\n\n", who, mutedStyle.Render(msg.Timestamp.Format("15:04")), msg.Content))
	}
	if m.waiting {
		b.WriteString(mutedStyle.Render("Assistant is typing...") + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	return b.String()
}

func (m Model) renderPostLine(i int, p models.Post, badge string) string {
	prefix := "  "
	title := processing.DisplayTitle(p)
	if i == m.cursor {
		prefix = "> "
		title = selectedStyle.Render(title)
	}
	meta := []string{p.Source}
	if p.Platform != "" {
		meta = append(meta, p.Platform)
	}
	if ts := processing.FormatTimestamp(processing.ParseTimestamp(p.Timestamp)); ts != "" {
		meta = append(meta, ts)
	}
	line := prefix + title
	if badge != "" {
		line += " " + badge
	}
	return line + "\n    " + mutedStyle.Render(strings.Join(meta, " • ")) + "\n"
}

func (m Model) help() string {
	common := "tab switch • ↑/↓ move • enter read • b save • r reload • q quit"
	switch m.tab {
	case tabFeed:
		return common + " • p platform • s/space sources • c clear • ←/→ page"
	case tabForYou:
		return common + " • m more"
	case tabSaved:
		return common + " • x remove"
	case tabChat:
		return "tab switch • enter send • ctrl+c quit"
	}
	return common
}

// articleMarkdown lays out a post for the reader view.
func articleMarkdown(p models.Post) string {
	var b strings.Builder
	b.WriteString("# " + processing.DisplayTitle(p) + "\n\n")

	meta := []string{p.Source}
	if p.Author != "" {
		meta = append(meta, "by "+p.Author)
	}
	if ts := processing.FormatTimestamp(processing.ParseTimestamp(p.Timestamp)); ts != "" {
		meta = append(meta, ts)
	}
	b.WriteString("*" + strings.Join(meta, " · ") + "*\n\n")

	if len(p.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(p.Tags, ", ") + "\n\n")
	}
	if s := strings.TrimSpace(p.Summary); s != "" {
		b.WriteString("> " + s + "\n\n")
	}
	if c := processing.StripHTML(p.Content); c != "" {
		b.WriteString(c + "\n\n")
	}
	if p.URL != "" {
		b.WriteString("[Read the original](" + p.URL + ")\n")
	}
	return b.String()
}

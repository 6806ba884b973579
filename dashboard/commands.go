package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/DeafMist/ai-news-dashboard/internal/feed"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/processing"
	"github.com/DeafMist/ai-news-dashboard/internal/tui"
)

const dateLayout = "2006-01-02"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Terminal dashboard for AI news",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		RunE: a.runTUI,
	}

	root.AddCommand(
		&cobra.Command{Use: "tui", Short: "Open the interactive dashboard", RunE: a.runTUI},
		a.feedCmd(),
		a.forYouCmd(),
		a.notesCmd(),
		&cobra.Command{Use: "sources", Short: "List configured RSS sources", RunE: a.runSources},
		&cobra.Command{Use: "runs", Short: "List recent RSS scraping runs", RunE: a.runRuns},
		a.prefsCmd(),
		a.summarizeCmd(),
		&cobra.Command{Use: "scrape", Short: "Trigger an RSS scrape on the backend", RunE: a.runScrape},
		&cobra.Command{Use: "health", Short: "Check that the backend is reachable", RunE: a.runHealth},
	)
	return root
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		a.logger().Warn("markdown renderer unavailable", slog.Any("err", err))
	}

	opts := tui.Options{Renderer: renderer, Logger: a.logger()}
	if a.cfg != nil {
		opts.PageSize = a.cfg.PageSize
		opts.PersonalizedStep = a.cfg.PersonalizedStep
		opts.Timeout = a.cfg.Timeout
	}

	p := tea.NewProgram(tui.New(a.client, a.scorer, opts), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}

func (a *app) feedCmd() *cobra.Command {
	var (
		platform string
		sources  []string
		page     int
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print one page of the filtered feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := a.client.Posts(cmd.Context())
			if err != nil {
				return err
			}
			res, err := feed.Paginate(posts, feed.Query{Platform: platform, Sources: sources, Page: page, PageSize: a.pageSize()})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(res.Items))
			for _, p := range res.Items {
				rows = append(rows, []string{
					processing.DisplayTitle(p),
					p.Source,
					p.Platform,
					processing.FormatTimestamp(processing.ParseTimestamp(p.Timestamp)),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Title", "Source", "Platform", "Published"}, rows))
			fmt.Fprintf(out, "Page %d of %d (%d posts)\n", res.Page, res.TotalPages, res.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "restrict to a platform (RSS, Website)")
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "restrict to these sources")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func (a *app) forYouCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "foryou",
		Short: "Print posts ranked by your preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := a.client.Posts(cmd.Context())
			if err != nil {
				return err
			}
			prefs, err := a.client.Preferences(cmd.Context())
			if err != nil {
				a.logger().Warn("preferences unavailable", slog.Any("err", err))
			}

			scored := a.scorer.Score(posts, prefs.PreferredCategories, prefs.PreferredSources)
			if limit > 0 && len(scored) > limit {
				scored = scored[:limit]
			}
			rows := make([][]string, 0, len(scored))
			for _, s := range scored {
				rows = append(rows, []string{
					strconv.Itoa(s.RelevanceScore),
					processing.DisplayTitle(*s.Post),
					s.Post.Source,
					s.Justification,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Score", "Title", "Source", "Why"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of posts to show")
	return cmd
}

func (a *app) notesCmd() *cobra.Command {
	notes := &cobra.Command{Use: "notes", Short: "Manage notes"}

	notes.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.Notes(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, n := range list {
				rows = append(rows, []string{strconv.FormatInt(n.ID, 10), n.Title, n.CreatedAt})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Created"}, rows))
			return nil
		},
	})

	notes.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := a.client.Note(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", headerStyle.Render(n.Title), n.Description)
			return nil
		},
	})

	var title, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.client.CreateNote(cmd.Context(), models.NoteInput{Title: title, Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note %d\n", n.ID)
			return nil
		},
	}
	create.Flags().StringVar(&title, "title", "", "note title")
	create.Flags().StringVar(&description, "description", "", "note body")
	notes.AddCommand(create)

	var editTitle, editDescription string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.client.Note(cmd.Context(), id)
			if err != nil {
				return err
			}
			in := models.NoteInput{Title: current.Title, Description: current.Description}
			if cmd.Flags().Changed("title") {
				in.Title = editTitle
			}
			if cmd.Flags().Changed("description") {
				in.Description = editDescription
			}
			if _, err := a.client.UpdateNote(cmd.Context(), id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d\n", id)
			return nil
		},
	}
	edit.Flags().StringVar(&editTitle, "title", "", "new title")
	edit.Flags().StringVar(&editDescription, "description", "", "new body")
	notes.AddCommand(edit)

	notes.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteNote(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %d\n", id)
			return nil
		},
	})

	return notes
}

func (a *app) runSources(cmd *cobra.Command, _ []string) error {
	sources, err := a.client.RSSSources(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{s.Source, s.Platform, s.Category, s.URL})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Source", "Platform", "Category", "URL"}, rows))
	return nil
}

func (a *app) runRuns(cmd *cobra.Command, _ []string) error {
	runs, err := a.client.RSSRuns(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "-"
		if r.DurationSeconds != nil {
			duration = fmt.Sprintf("%.1fs", *r.DurationSeconds)
		}
		captured := fmt.Sprintf("%d/%d", r.NumSourcesCaptured, r.NumSourcesTotal)
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10), r.StartedAt, r.Status, duration, captured, strconv.Itoa(r.NumArticlesCaptured),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Started", "Status", "Duration", "Sources", "Articles"}, rows))
	return nil
}

func (a *app) prefsCmd() *cobra.Command {
	prefs := &cobra.Command{Use: "prefs", Short: "Show or change content preferences"}

	prefs.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.client.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sources: %s\n", joinOrNone(p.PreferredSources))
			fmt.Fprintf(out, "Topics:  %s\n", joinOrNone(p.PreferredCategories))
			return nil
		},
	})

	var sources, topics []string
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := models.Preferences{PreferredSources: sources, PreferredCategories: topics}
			if err := a.client.SavePreferences(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Preferences saved")
			return nil
		},
	}
	set.Flags().StringSliceVar(&sources, "sources", nil, "preferred sources")
	set.Flags().StringSliceVar(&topics, "topics", nil, "preferred topics")
	prefs.AddCommand(set)

	return prefs
}

func (a *app) summarizeCmd() *cobra.Command {
	var (
		sources  []string
		from, to string
		combined bool
	)
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize articles of some sources over a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := time.Now()
			if to == "" {
				to = today.Format(dateLayout)
			}
			if from == "" {
				from = today.AddDate(0, 0, -7).Format(dateLayout)
			}
			start, err := time.Parse(dateLayout, from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := time.Parse(dateLayout, to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if end.Before(start) {
				return fmt.Errorf("--to %s is before --from %s", to, from)
			}

			summary, err := a.client.Summarize(cmd.Context(), models.SummaryRequest{
				Sources:   sources,
				StartDate: from,
				EndDate:   to,
				Combined:  combined,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "sources to summarize")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (default a week ago)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&combined, "combined", true, "one summary across all sources")
	return cmd
}

func (a *app) runScrape(cmd *cobra.Command, _ []string) error {
	msg, err := a.client.TriggerScrape(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func (a *app) runHealth(cmd *cobra.Command, _ []string) error {
	if err := a.client.Health(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "backend ok")
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(none)"
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

package tui

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/DeafMist/ai-news-dashboard/internal/backend"
	"github.com/DeafMist/ai-news-dashboard/internal/feed"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/personalize"
)

type tab int

const (
	tabRecent tab = iota
	tabFeed
	tabForYou
	tabSaved
	tabChat
	tabCount
)

var tabNames = [...]string{"Recent", "Feed", "For You", "Saved", "Chat"}

// platforms cycled by the feed filter; "" is All.
var platforms = []string{"", "RSS", "Website"}

// Options configure a Model.
type Options struct {
	PageSize         int
	PersonalizedStep int
	Timeout          time.Duration
	// Renderer draws opened articles. Nil shows the raw markdown.
	Renderer *glamour.TermRenderer
	Logger   *slog.Logger
	Now      func() time.Time
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	be     Backend
	scorer *personalize.Scorer
	opts   Options
	log    *slog.Logger

	tab    tab
	cursor int
	width  int
	height int

	loading bool
	err     error
	status  string

	posts  []models.Post
	prefs  models.Preferences
	saved  []models.SavedPost
	scored []models.PersonalizedPost

	platformIdx  int
	selected     map[string]bool
	sourceCursor int
	page         int
	forYouShown  int

	reading bool
	reader  viewport.Model

	input    textinput.Model
	messages []models.ChatMessage
	waiting  bool
}

// New builds the dashboard model.
func New(be Backend, scorer *personalize.Scorer, opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.PersonalizedStep <= 0 {
		opts.PersonalizedStep = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about today's AI news..."
	ti.CharLimit = 500

	return Model{
		be:          be,
		scorer:      scorer,
		opts:        opts,
		log:         log,
		loading:     true,
		selected:    map[string]bool{},
		page:        1,
		forYouShown: opts.PersonalizedStep,
		reader:      viewport.New(80, 20),
		input:       ti,
	}
}

func (m Model) Init() tea.Cmd {
	return loadData(m.be, m.opts.Timeout, m.log)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.reader.Width = msg.Width
		m.reader.Height = max(msg.Height-4, 1)
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.log.Error("load dashboard data", slog.Any("err", msg.err))
			return m, nil
		}
		m.err = nil
		m.posts = msg.posts
		m.prefs = msg.prefs
		m.saved = msg.saved
		m.scored = m.scorer.Score(m.posts, m.prefs.PreferredCategories, m.prefs.PreferredSources)
		m.pruneSelection()
		m.clampPage()
		m.clampCursor()
		m.status = strconv.Itoa(len(m.posts)) + " posts loaded"
		return m, nil

	case savedChangedMsg:
		if msg.err != nil {
			m.status = "Bookmark failed: " + msg.err.Error()
			return m, nil
		}
		if msg.refreshErr != nil {
			m.log.Warn("refresh saved posts", slog.Any("err", msg.refreshErr))
			m.status = msg.status + " (refresh failed, press r to reload)"
			return m, nil
		}
		m.saved = msg.saved
		m.status = msg.status
		m.clampCursor()
		return m, nil

	case chatReplyMsg:
		m.waiting = false
		reply := msg.reply
		if msg.err != nil {
			m.log.Warn("assistant unavailable", slog.Any("err", msg.err))
			reply = backend.OfflineReply
		}
		m.messages = append(m.messages, m.chatMessage(reply, models.RoleAssistant))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.tab == tabChat {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.reading {
		switch key {
		case "esc", "backspace", "q":
			m.reading = false
			return m, nil
		}
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		return m, cmd
	}

	switch key {
	case "tab":
		return m.switchTab((m.tab + 1) % tabCount)
	case "shift+tab":
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	}

	if m.tab == tabChat {
		return m.handleChatKey(msg)
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4", "5":
		return m.switchTab(tab(key[0] - '1'))
	case "r":
		m.loading = true
		return m, loadData(m.be, m.opts.Timeout, m.log)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.listPosts())-1 {
			m.cursor++
		}
	case "enter":
		if p, ok := m.currentPost(); ok {
			m.openArticle(p)
		}
	case "b":
		p, ok := m.currentPost()
		if !ok {
			return m, nil
		}
		if _, err := strconv.ParseInt(string(p.ID), 10, 64); err != nil {
			m.status = "This post cannot be bookmarked"
			return m, nil
		}
		return m, savePost(m.be, m.opts.Timeout, p)
	case "x":
		if m.tab == tabSaved && m.cursor < len(m.saved) {
			s := m.saved[m.cursor]
			return m, unsavePost(m.be, m.opts.Timeout, s.PostID, s.Post.Title)
		}
	default:
		switch m.tab {
		case tabFeed:
			m.handleFeedKey(key)
		case tabForYou:
			if key == "m" && m.forYouShown < len(m.scored) {
				m.forYouShown += m.opts.PersonalizedStep
			}
		}
	}
	return m, nil
}

func (m *Model) handleFeedKey(key string) {
	options := m.sourceOptions()
	switch key {
	case "p":
		m.platformIdx = (m.platformIdx + 1) % len(platforms)
		m.page = 1
		m.sourceCursor = 0
		m.pruneSelection()
		m.cursor = 0
	case "s":
		if len(options) > 0 {
			m.sourceCursor = (m.sourceCursor + 1) % len(options)
		}
	case " ", "space":
		if m.sourceCursor < len(options) {
			v := options[m.sourceCursor].Value
			if m.selected[v] {
				delete(m.selected, v)
			} else {
				m.selected[v] = true
			}
			m.page = 1
			m.cursor = 0
		}
	case "c":
		m.selected = map[string]bool{}
		m.page = 1
		m.cursor = 0
	case "right", "l", "n":
		if page, err := m.feedPage(); err == nil && m.page < page.TotalPages {
			m.page++
			m.cursor = 0
		}
	case "left", "h":
		if m.page > 1 {
			m.page--
			m.cursor = 0
		}
	}
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		question := strings.TrimSpace(m.input.Value())
		if question == "" || m.waiting {
			return m, nil
		}
		m.input.SetValue("")
		m.messages = append(m.messages, m.chatMessage(question, models.RoleUser))
		m.waiting = true
		return m, askAssistant(m.be, m.opts.Timeout, question)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) switchTab(t tab) (tea.Model, tea.Cmd) {
	m.tab = t
	m.cursor = 0
	if t == tabChat {
		return m, m.input.Focus()
	}
	m.input.Blur()
	return m, nil
}

func (m Model) chatMessage(content string, role models.ChatRole) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      role,
		Timestamp: m.opts.Now(),
	}
}

// sourceOptions lists the sources offered for the current platform.
func (m Model) sourceOptions() []feed.SourceOption {
	return feed.AvailableSources(m.posts, platforms[m.platformIdx])
}

// selectedSources returns the selection in option order.
func (m Model) selectedSources() []string {
	var out []string
	for _, o := range m.sourceOptions() {
		if m.selected[o.Value] {
			out = append(out, o.Value)
		}
	}
	return out
}

// pruneSelection drops selected sources the current platform no longer offers.
func (m *Model) pruneSelection() {
	offered := map[string]bool{}
	for _, o := range m.sourceOptions() {
		offered[o.Value] = true
	}
	for v := range m.selected {
		if !offered[v] {
			delete(m.selected, v)
		}
	}
}

// clampPage keeps the feed page inside the current result after a reload.
func (m *Model) clampPage() {
	page, err := m.feedPage()
	if err != nil {
		return
	}
	if m.page > page.TotalPages {
		m.page = max(page.TotalPages, 1)
	}
}

func (m Model) feedPage() (feed.Page, error) {
	return feed.Paginate(m.posts, feed.Query{
		Platform: platforms[m.platformIdx],
		Sources:  m.selectedSources(),
		Page:     m.page,
		PageSize: m.opts.PageSize,
	})
}

func (m Model) recentPosts() []models.Post {
	return feed.Recent(m.posts, m.opts.Now(), m.opts.PageSize)
}

func (m Model) visibleScored() []models.PersonalizedPost {
	return m.scored[:min(m.forYouShown, len(m.scored))]
}

// listPosts returns the posts of the active tab in display order.
func (m Model) listPosts() []models.Post {
	switch m.tab {
	case tabRecent:
		return m.recentPosts()
	case tabFeed:
		page, err := m.feedPage()
		if err != nil {
			return nil
		}
		return page.Items
	case tabForYou:
		scored := m.visibleScored()
		out := make([]models.Post, 0, len(scored))
		for _, s := range scored {
			out = append(out, *s.Post)
		}
		return out
	case tabSaved:
		out := make([]models.Post, 0, len(m.saved))
		for _, s := range m.saved {
			out = append(out, s.Post)
		}
		return out
	}
	return nil
}

func (m Model) currentPost() (models.Post, bool) {
	posts := m.listPosts()
	if m.cursor < 0 || m.cursor >= len(posts) {
		return models.Post{}, false
	}
	return posts[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.listPosts())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) openArticle(p models.Post) {
	md := articleMarkdown(p)
	content := md
	if m.opts.Renderer != nil {
		if rendered, err := m.opts.Renderer.Render(md); err == nil {
			content = rendered
		} else {
			m.log.Warn("render article", slog.Any("err", err))
		}
	}
	m.reader.SetContent(content)
	m.reader.GotoTop()
	m.reading = true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

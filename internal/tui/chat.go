// Package tui provides the tabbed terminal chat interface.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/host"
	"github.com/eachlabs/chattabs/internal/router"
)

var (
	// Colors for chat
	chatPurple    = lipgloss.Color("#A855F7")
	chatGreen     = lipgloss.Color("#22C55E")
	chatYellow    = lipgloss.Color("#FBBF24")
	chatRed       = lipgloss.Color("#EF4444")
	chatGray      = lipgloss.Color("#6B7280")
	chatDarkGray  = lipgloss.Color("#374151")
	chatLightGray = lipgloss.Color("#9CA3AF")
	chatWhite     = lipgloss.Color("#F9FAFB")

	// Styles for chat
	chatTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(chatPurple)

	tabStyle = lipgloss.NewStyle().
			Foreground(chatLightGray).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(chatWhite).
			Background(chatPurple).
			Bold(true).
			Padding(0, 1)

	privateTabStyle = tabStyle.
			Foreground(chatYellow)

	badgeOnStyle = lipgloss.NewStyle().
			Foreground(chatDarkGray).
			Background(chatGreen).
			Padding(0, 1)

	badgeOffStyle = lipgloss.NewStyle().
			Foreground(chatWhite).
			Background(chatGray).
			Padding(0, 1)

	chatSpeakerStyle = lipgloss.NewStyle().
				Foreground(chatGreen).
				Bold(true)

	chatPrivateStyle = lipgloss.NewStyle().
				Foreground(chatYellow)

	chatNoticeStyle = lipgloss.NewStyle().
			Foreground(chatLightGray).
			Italic(true)

	chatTimeStyle = lipgloss.NewStyle().
			Foreground(chatGray)

	chatErrorMsgStyle = lipgloss.NewStyle().
				Foreground(chatRed).
				Bold(true)

	chatInputBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(chatPurple).
				Padding(0, 1)

	chatInputBoxPrivateStyle = lipgloss.NewStyle().
					Border(lipgloss.RoundedBorder()).
					BorderForeground(chatYellow).
					Padding(0, 1)

	chatStatusStyle = lipgloss.NewStyle().
			Foreground(chatGray)

	chatHelpStyle = lipgloss.NewStyle().
			Foreground(chatGray)
)

type keyMap struct {
	Quit       key.Binding
	Send       key.Binding
	Toggle     key.Binding
	NextFilter key.Binding
	PrevFilter key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Toggle:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toggle tabs")),
	NextFilter: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
	PrevFilter: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev filter")),
}

// filterButtons are the host's filter bar, in click order.
var filterButtons = []string{
	string(channel.All),
	string(channel.Game),
	string(channel.Quest),
	string(channel.Public),
	string(channel.TypePrivate),
}

// ChatModel is the bubbletea model for the tabbed chat UI
type ChatModel struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model

	// State
	session    *host.Session
	timeLayout string
	filterIdx  int
	status     string
	isErr      bool
	width      int
	height     int
	ready      bool

	// Setting changes pushed from outside (config reloads)
	settings <-chan bool
	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
}

// Messages
type settingMsg bool
type settingsClosedMsg struct{}

// NewChatModel creates a new chat TUI model over session. settings may be
// nil; otherwise every value received sets the messaging toggle.
func NewChatModel(session *host.Session, timeLayout string, settings <-chan bool) ChatModel {
	// Text area for input
	ta := textarea.New()
	ta.Placeholder = "Say something, /help for commands..."
	ta.Focus()
	ta.CharLimit = 500
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter sends message

	// Viewport for messages
	vp := viewport.New(80, 20)

	ctx, cancel := context.WithCancel(context.Background())

	return ChatModel{
		textarea:   ta,
		viewport:   vp,
		session:    session,
		timeLayout: timeLayout,
		settings:   settings,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.waitForSetting(),
	)
}

func (m ChatModel) waitForSetting() tea.Cmd {
	if m.settings == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return settingsClosedMsg{}
		case v, ok := <-m.settings:
			if !ok {
				return settingsClosedMsg{}
			}
			return settingMsg(v)
		}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancel()
			return m, tea.Quit

		case key.Matches(msg, keys.Send):
			line := m.textarea.Value()
			m.textarea.Reset()
			status, exit := m.session.Dispatch(line)
			if exit {
				m.cancel()
				return m, tea.Quit
			}
			m.setStatus(status)
			m.updateViewport()
			return m, nil

		case key.Matches(msg, keys.Toggle):
			state, err := m.session.ToggleEnabled()
			if err != nil {
				m.setStatus("[ERROR] " + err.Error())
			} else if state {
				m.setStatus("messaging system on")
			} else {
				m.setStatus("messaging system off")
			}
			m.updateViewport()
			return m, nil

		case key.Matches(msg, keys.NextFilter), key.Matches(msg, keys.PrevFilter):
			step := 1
			if key.Matches(msg, keys.PrevFilter) {
				step = len(filterButtons) - 1
			}
			m.filterIdx = (m.filterIdx + step) % len(filterButtons)
			m.session.Chat.ClickFilter(filterButtons[m.filterIdx], router.FilterEvent{})
			m.session.Chat.Pump()
			m.setStatus("filter: " + filterButtons[m.filterIdx])
			m.updateViewport()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 3
		helpHeight := 2
		viewportHeight := m.height - headerHeight - inputHeight - helpHeight - 1
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width-2, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width - 2
			m.viewport.Height = viewportHeight
		}

		m.textarea.SetWidth(m.width - 4)
		m.updateViewport()

	case settingMsg:
		if err := m.session.SetEnabled(bool(msg)); err != nil {
			m.setStatus("[ERROR] " + err.Error())
		} else {
			m.setStatus("settings reloaded")
		}
		m.updateViewport()
		cmds = append(cmds, m.waitForSetting())

	case settingsClosedMsg:
		m.settings = nil
	}

	// Update textarea
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	// Let the viewport scroll
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) setStatus(s string) {
	m.status = s
	m.isErr = strings.HasPrefix(s, "[ERROR]")
}

func (m *ChatModel) updateViewport() {
	var content strings.Builder

	for _, msg := range m.session.Chat.Messages() {
		content.WriteString(m.renderMessage(msg) + "\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderMessage(msg *channel.Message) string {
	var b strings.Builder
	if m.timeLayout != "" && !msg.Timestamp.IsZero() {
		b.WriteString(chatTimeStyle.Render(msg.Timestamp.Format(m.timeLayout)) + " ")
	}

	switch {
	case msg.Speaker == "":
		b.WriteString(chatNoticeStyle.Render(msg.Text))
	case msg.Type == channel.TypePrivate:
		b.WriteString(chatPrivateStyle.Render(msg.Speaker+" "+msg.Text))
	default:
		b.WriteString(chatSpeakerStyle.Render(msg.Speaker) + ": " + msg.Text)
	}
	return b.String()
}

func (m ChatModel) renderTabs() string {
	ctrl := m.session.Controller
	active := ctrl.Active()

	keys := ctrl.Store().Keys()
	found := false
	for _, k := range keys {
		if k == active {
			found = true
			break
		}
	}
	if !found {
		keys = append([]channel.Key{active}, keys...)
	}

	tabs := make([]string, 0, len(keys))
	for _, k := range keys {
		switch {
		case k == active:
			tabs = append(tabs, activeTabStyle.Render(string(k)))
		case !k.IsReserved():
			tabs = append(tabs, privateTabStyle.Render(string(k)))
		default:
			tabs = append(tabs, tabStyle.Render(string(k)))
		}
	}

	badge := badgeOffStyle.Render("tabs off")
	if ctrl.Enabled() {
		badge = badgeOnStyle.Render("tabs on")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{badge, " "}, tabs...)...)
}

func (m ChatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	// Header
	header := chatTitleStyle.Render("chattabs") + "  " +
		chatStatusStyle.Render("playing as "+m.session.Chat.LocalPlayer())
	b.WriteString(header + "\n")
	b.WriteString(m.renderTabs() + "\n")
	b.WriteString(strings.Repeat("─", m.width-2) + "\n")

	// Messages viewport
	b.WriteString(m.viewport.View() + "\n")

	// Input area
	inputStyle := chatInputBoxStyle
	active := m.session.Controller.Active()
	if m.session.Controller.Enabled() && !active.IsReserved() {
		inputStyle = chatInputBoxPrivateStyle
	}
	b.WriteString(inputStyle.Render(m.textarea.View()) + "\n")

	// Status and help
	if m.isErr {
		b.WriteString(chatErrorMsgStyle.Render(m.status) + "\n")
	} else {
		b.WriteString(chatStatusStyle.Render(m.status) + "\n")
	}
	help := chatHelpStyle.Render("Enter to send • Tab to switch filter • Ctrl+T toggle tabs • Esc to quit")
	b.WriteString(help)

	return b.String()
}

// RunChat starts the chat TUI
func RunChat(session *host.Session, timeLayout string, settings <-chan bool) error {
	model := NewChatModel(session, timeLayout, settings)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

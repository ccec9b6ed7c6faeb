package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/trigger-engine/internal/handlers"
	"github.com/jwebster45206/trigger-engine/pkg/queue"
	"github.com/jwebster45206/trigger-engine/pkg/world"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "destroy hq, enter 12, tick 5 ... (/help)"

// maxPolls bounds how long the console waits for the worker to drain a game's queue.
const maxPolls = 20

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	game         *handlers.GameResponse
	seen         map[string]bool // event ids already reported from game history
	entries      []logEntry
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	polls        int

	// Scenario selection state
	showScenarioModal bool
	scenarios         []string
	scenarioMap       map[string]string
	selectedScenario  int
	loadingScenarios  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type logEntry struct {
	style  lipgloss.Style
	prefix string
	text   string
}

type scenariosLoadedMsg struct {
	scenarios   []string
	scenarioMap map[string]string
	err         error
}

type gameCreatedMsg struct {
	game *handlers.GameResponse
	err  error
}

type gameMsg struct {
	game *handlers.GameResponse
	err  error
}

type eventPostedMsg struct {
	event    *queue.Event
	accepted *handlers.EventAccepted
	err      error
}

type triggersCopiedMsg struct {
	lines int
	err   error
}

type pollMsg struct{}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	appliedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	outcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)
	metaVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:            cfg,
		client:            client,
		seen:              make(map[string]bool),
		textarea:          ta,
		logViewport:       logVp,
		metaViewport:      metaVp,
		showScenarioModal: true,
		loadingScenarios:  true,
	}
}

func (m *ConsoleUI) addEntry(style lipgloss.Style, prefix, text string) {
	m.entries = append(m.entries, logEntry{style: style, prefix: prefix, text: text})
}

// writeLog rebuilds the event log for the current viewport width.
func (m *ConsoleUI) writeLog() {
	width := m.logViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("TRIGGER ENGINE") + "\n\n")
	if m.game != nil {
		content.WriteString(fmt.Sprintf("Playing %s. Type events below; /help lists them.\n\n", m.game.Scenario))
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.entries {
		wrapped := wordwrap.String(e.text, width-len(e.prefix))
		content.WriteString(e.style.Render(e.prefix) + wrapped + "\n")
	}

	if m.loading {
		content.WriteString("\n" + m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func writeMetadata(g *handlers.GameResponse) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(g.ID.String()[:8] + "...\n\n")
	content.WriteString(fmt.Sprintf("Scenario: %s\n", g.Scenario))
	content.WriteString(fmt.Sprintf("Frame:    %d\n", g.Frame))
	content.WriteString(fmt.Sprintf("Applied:  %d\n", g.Applied))
	content.WriteString(fmt.Sprintf("Queued:   %d\n", g.Queued))
	if g.Outcome != world.OutcomePlaying {
		content.WriteString("\n" + outcomeStyle.Render(strings.ToUpper(string(g.Outcome))) + "\n")
	}

	content.WriteString("\n" + titleStyle.Render("Houses") + "\n")
	for _, h := range g.Houses {
		var flags []string
		if h.Human {
			flags = append(flags, "human")
		}
		if h.ToWin {
			flags = append(flags, "win")
		}
		if h.ToLose {
			flags = append(flags, "lose")
		}
		if h.WinBlockage > 0 {
			flags = append(flags, fmt.Sprintf("blocked %d", h.WinBlockage))
		}
		line := fmt.Sprintf("• %s $%d", h.Name, h.Credits)
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ", ") + "]"
		}
		content.WriteString(line + "\n")
	}

	content.WriteString("\n" + titleStyle.Render("Triggers") + "\n")
	if len(g.Triggers) == 0 {
		content.WriteString("None left\n")
	}
	for _, t := range g.Triggers {
		content.WriteString(fmt.Sprintf("• %s: %s → %s (%d)\n", t.Name, t.Event, t.Action, t.AttachCount))
	}
	if len(g.Missing) > 0 {
		content.WriteString("\nUnresolved placements:\n")
		for _, name := range g.Missing {
			content.WriteString("• " + name + "\n")
		}
	}
	return content.String()
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.6) - 4
	metaWidth := m.width - logWidth - 6

	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(logWidth - 4)
}

// setGame swaps in a fresh read of the game and reports history the
// console has not shown yet.
func (m *ConsoleUI) setGame(g *handlers.GameResponse) {
	before := world.OutcomePlaying
	if m.game != nil {
		before = m.game.Outcome
	}
	m.game = g

	for _, res := range g.History {
		if m.seen[res.EventID] {
			continue
		}
		m.seen[res.EventID] = true
		if res.Error != "" {
			m.addEntry(errorStyle, "✗ ", fmt.Sprintf("%s rejected: %s", res.Kind, res.Error))
		} else {
			m.addEntry(appliedStyle, "✓ ", fmt.Sprintf("%s applied, frame %d", res.Kind, res.Frame))
		}
	}
	if before == world.OutcomePlaying && g.Outcome != world.OutcomePlaying {
		m.addEntry(outcomeStyle, "", fmt.Sprintf("Game over: %s", g.Outcome))
	}

	m.metaViewport.SetContent(writeMetadata(g))
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadScenarios()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showScenarioModal {
		return m.updateScenarioModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeLog()
		if m.game != nil {
			m.metaViewport.SetContent(writeMetadata(m.game))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			if m.loading {
				m.addEntry(loadingStyle, "… ", "still waiting on the last event")
				m.writeLog()
				return m, nil
			}

			m.addEntry(userStyle, "> ", input)
			ev, err := parseCommand(input)
			if err != nil {
				m.addEntry(errorStyle, "  ", err.Error())
				m.writeLog()
				return m, nil
			}

			m.loading = true
			m.polls = 0
			m.progressTick = 0
			m.writeLog()
			return m, tea.Batch(m.sendEvent(ev), progressTick())
		}

	case eventPostedMsg:
		if msg.err != nil {
			m.loading = false
			m.addEntry(errorStyle, "  ", msg.err.Error())
			m.writeLog()
			return m, nil
		}
		m.addEntry(promptStyle, "  ", fmt.Sprintf("queued %s (%d waiting)", msg.event.Kind, msg.accepted.Queued))
		m.writeLog()
		return m, m.schedulePoll()

	case pollMsg:
		return m, m.refreshGame()

	case gameMsg:
		if msg.err != nil {
			m.loading = false
			m.addEntry(errorStyle, "  ", msg.err.Error())
			m.writeLog()
			return m, nil
		}
		m.setGame(msg.game)
		m.polls++
		if m.loading && msg.game.Queued > 0 && m.polls < maxPolls {
			m.writeLog()
			return m, m.schedulePoll()
		}
		if m.loading && msg.game.Queued > 0 {
			m.addEntry(loadingStyle, "… ", "events are still queued; is the worker running?")
		}
		m.loading = false
		m.writeLog()

	case triggersCopiedMsg:
		if msg.err != nil {
			m.addEntry(errorStyle, "  ", "copy failed: "+msg.err.Error())
		} else {
			m.addEntry(promptStyle, "  ", fmt.Sprintf("copied %d lines of [Triggers] to the clipboard", msg.lines))
		}
		m.writeLog()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLog()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		m.addEntry(titleStyle, "", "Help")
		for _, line := range strings.Split(commandHelp, "\n") {
			m.addEntry(promptStyle, "", line)
		}
		m.writeLog()
		return m, nil

	case "/refresh":
		return m, m.refreshGame()

	case "/copy":
		return m, m.copyTriggers()
	}

	m.addEntry(errorStyle, "  ", fmt.Sprintf("unknown command %q", input))
	m.writeLog()
	return m, nil
}

func (m ConsoleUI) sendEvent(ev *queue.Event) tea.Cmd {
	gameID := m.game.ID
	return func() tea.Msg {
		accepted, err := postEvent(m.client, m.config.APIBaseURL, gameID, ev)
		return eventPostedMsg{event: ev, accepted: accepted, err: err}
	}
}

func (m ConsoleUI) schedulePoll() tea.Cmd {
	return tea.Tick(m.config.PollDelay, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m ConsoleUI) refreshGame() tea.Cmd {
	gameID := m.game.ID
	return func() tea.Msg {
		g, err := getGame(m.client, m.config.APIBaseURL, gameID)
		return gameMsg{g, err}
	}
}

func (m ConsoleUI) copyTriggers() tea.Cmd {
	gameID := m.game.ID
	return func() tea.Msg {
		text, err := getTriggers(m.client, m.config.APIBaseURL, gameID)
		if err != nil {
			return triggersCopiedMsg{err: err}
		}
		if err := clipboard.WriteAll(text); err != nil {
			return triggersCopiedMsg{err: err}
		}
		return triggersCopiedMsg{lines: strings.Count(text, "\n")}
	}
}

func (m ConsoleUI) loadScenarios() tea.Cmd {
	return func() tea.Msg {
		titles, scenarioMap, err := listScenarios(m.client, m.config.APIBaseURL)
		return scenariosLoadedMsg{titles, scenarioMap, err}
	}
}

func (m ConsoleUI) createGameFromScenario(name string) tea.Cmd {
	return func() tea.Msg {
		g, err := createGame(m.client, m.config.APIBaseURL, name)
		return gameCreatedMsg{g, err}
	}
}

func (m ConsoleUI) updateScenarioModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case scenariosLoadedMsg:
		m.loadingScenarios = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.scenarios = msg.scenarios
			m.scenarioMap = msg.scenarioMap
		}

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.showScenarioModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.setGame(msg.game)
		for _, name := range msg.game.Missing {
			m.addEntry(loadingStyle, "! ", fmt.Sprintf("placement names missing trigger %q", name))
		}
		m.writeLog()
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingScenarios || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedScenario > 0 {
				m.selectedScenario--
			}
		case tea.KeyDown:
			if m.selectedScenario < len(m.scenarios)-1 {
				m.selectedScenario++
			}
		case tea.KeyEnter:
			if len(m.scenarios) > 0 && !m.loading {
				title := m.scenarios[m.selectedScenario]
				m.loading = true
				return m, m.createGameFromScenario(m.scenarioMap[title])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showScenarioModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("The game stays on the server until it expires.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderScenarioModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingScenarios:
		content.WriteString(modalTitleStyle.Render("Loading Scenarios..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available scenarios..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Creating Game..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Reading triggers and placing them..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Scenario"))
		content.WriteString("\n\n")
		if len(m.scenarios) == 0 {
			content.WriteString(errorStyle.Render("No scenarios found on the server."))
			content.WriteString("\n")
		}
		for i, title := range m.scenarios {
			if i == m.selectedScenario {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", title)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", title)))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showScenarioModal {
		return m.renderScenarioModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.6) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(logWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar draws the bar shown while waiting on the worker.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable > 60 {
		usable = 60
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

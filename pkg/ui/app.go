package ui

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/log-console-tui/pkg/config"
	"github.com/user/log-console-tui/pkg/console"
	"github.com/user/log-console-tui/pkg/format"
	"github.com/user/log-console-tui/pkg/logging"
	"github.com/user/log-console-tui/pkg/models"
)

const noticeTTL = 4 * time.Second

// App is the terminal host of a Console
type App struct {
	console     *console.Console
	pane        *LogPane
	scheduler   *TeaScheduler
	clipboard   *ClipboardManager
	events      <-chan console.Event
	unsubscribe func()

	keys           keyMap
	helpModal      *HelpModal
	severityFilter *SeverityFilterPanel
	notices        *ErrorDisplay
	prompt         *Prompt
	history        config.PromptHistory
	historyPath    string

	ready           bool
	width           int
	height          int
	activeModalName string // "none", "prompt", "severity", "help"
	selected        int64
	inserted        int
	vimMode         bool
}

type eventMsg struct {
	event console.Event
}

// NewApp builds a console drawing into a terminal pane. frame is the render
// frame period. The pane measures in rows, so margins left unset take the
// row scale presets of console.TerminalOptions.
func NewApp(opts console.Options, frame time.Duration) (*App, error) {
	if opts.Tolerance == (console.Tolerance{}) {
		opts.Tolerance = console.TerminalTolerance()
	}
	if opts.WindowTolerance <= 0 {
		opts.WindowTolerance = console.TerminalWindowTolerance
	}
	pane := NewLogPane()
	scheduler := NewTeaScheduler(frame)
	clip := NewClipboardManager()

	c, err := console.New(opts, console.Dependencies{
		Surface:   pane,
		Scheduler: scheduler,
		Formatter: format.Styled{},
		Clipboard: clip,
	})
	if err != nil {
		return nil, err
	}
	return newApp(c, pane, scheduler, clip), nil
}

func newApp(c *console.Console, pane *LogPane, scheduler *TeaScheduler, clip *ClipboardManager) *App {
	events, unsubscribe := c.Subscribe(0)
	keys := defaultKeyMap()
	return &App{
		console:         c,
		pane:            pane,
		scheduler:       scheduler,
		clipboard:       clip,
		events:          events,
		unsubscribe:     unsubscribe,
		keys:            keys,
		helpModal:       NewHelpModal(keys),
		severityFilter:  NewSeverityFilterPanel(),
		notices:         NewErrorDisplay(),
		prompt:          NewPrompt(),
		width:           120,
		height:          40,
		activeModalName: "none",
		vimMode:         true,
	}
}

// Console returns the engine behind the app, for sources to feed
func (a *App) Console() *console.Console {
	return a.console
}

// SetVimMode switches between vim and standard navigation keys
func (a *App) SetVimMode(enabled bool) {
	a.vimMode = enabled
	a.keys.setVimMode(enabled)
	a.helpModal.SetKeys(a.keys)
}

// Close stops pending callbacks and the event subscription
func (a *App) Close() {
	a.unsubscribe()
	a.scheduler.Stop()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.scheduler.Wait(), a.waitForEvent())
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return nil
		}
		return eventMsg{event: ev}
	}
}

// Update handles events and state mutations
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case schedulerMsg:
		a.scheduler.Run(msg.handle)
		return a, a.scheduler.Wait()

	case eventMsg:
		a.handleEvent(msg.event)
		return a, a.waitForEvent()

	case tea.KeyMsg:
		return a.handleKeyPress(msg)
	}

	if a.activeModalName == "prompt" {
		return a, a.prompt.Update(msg)
	}
	return a, nil
}

func (a *App) handleEvent(ev console.Event) {
	switch ev.Kind {
	case console.EventInsert:
		a.inserted++
	case console.EventSelect:
		a.selected = ev.Entry.ID
		a.pane.SetSelected(ev.Entry.ID)
	case console.EventDeselect:
		a.selected = 0
		a.pane.SetSelected(0)
	}
}

// logRows is the height of the log pane
func (a *App) logRows() int {
	return paneHeight(a.height, 1)
}

func (a *App) paneWidth() int {
	return maxInt(1, a.width-2)
}

func (a *App) resize() {
	a.pane.SetWidth(a.paneWidth())
	a.prompt.SetWidth(a.width)
	a.console.NotifyResize(a.paneWidth(), a.logRows())
}

// View renders the UI
func (a *App) View() string {
	if !a.ready {
		return "Loading...\n"
	}

	stats := a.console.Stats()
	var sb strings.Builder
	sb.WriteString(a.renderTopBar(stats))
	sb.WriteString(CreateHeader(fmt.Sprintf("CONSOLE (%d shown)", stats.Displayed), a.width, true))
	sb.WriteString("\n")
	for _, line := range strings.Split(a.pane.View(a.logRows()), "\n") {
		sb.WriteString("┃ ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(a.renderStatusPanel(stats))
	sb.WriteString(a.renderBottomLine())
	output := sb.String()

	switch a.activeModalName {
	case "severity":
		output = renderCenteredPopup(output, a.renderSeverityFilterModal(), a.width, a.height)
	case "help":
		output = a.helpModal.Render(a.width, a.height)
		if notices := a.notices.RenderList(a.width, 5); notices != "" {
			output += "\n" + notices
		}
	}
	return output
}

func (a *App) renderTopBar(stats console.Stats) string {
	left := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("27")).Padding(0, 1).Render("Log Console")
	mode := "follow"
	if !stats.AtBottom {
		pos, _ := a.console.ScrollPosition()
		mode = fmt.Sprintf("row %d/%d", pos, a.pane.Total())
	}
	keys := "std"
	if a.vimMode {
		keys = "vim"
	}
	rightText := fmt.Sprintf("view:%s  in:%d  groups:%d  keys:%s", mode, a.inserted, stats.Groups, keys)
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("31")).Padding(0, 1).Render(rightText)
	fill := maxInt(0, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", fill) + right + "\n"
}

func (a *App) renderStatusPanel(stats console.Stats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("┣%s\n", strings.Repeat("━", maxInt(0, a.width-1))))

	opts := a.console.Options()
	filter := opts.Filter.String()
	if filter == "" {
		filter = "-"
	}
	sel := "-"
	if a.selected != 0 {
		sel = fmt.Sprintf("#%d", a.selected)
	}
	line := fmt.Sprintf("stored:%d  shown:%d  pending:%d  lv:%s  filter:%s  sel:%s",
		stats.Stored, stats.Displayed, stats.Pending, a.severityFilter.Summary(opts.Levels), filter, sel)
	sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render(truncate(line, a.width-2)) + "\n")
	return sb.String()
}

func (a *App) renderBottomLine() string {
	if a.activeModalName == "prompt" {
		return a.prompt.View()
	}
	if line := a.notices.RenderLine(a.width); line != "" {
		return line
	}
	return a.helpModal.GetShortHelp(a.width)
}

func (a *App) renderSeverityFilterModal() string {
	sfp := a.severityFilter
	mode := sfp.GetMode()

	var sb strings.Builder
	sb.WriteString("┏━━ LEVEL FILTER ━━━━━━━━━━━━━━━━━━━━━━━\n")
	sb.WriteString(fmt.Sprintf("┃ Mode: %s (press 'm' to toggle)\n", mode))
	for i, level := range models.AllLevels {
		prefix := "  "
		if i == sfp.cursor {
			prefix = "▶ "
		}
		mark := "☐"
		if mode == "individual" && sfp.IsLevelSelected(level) {
			mark = "☑"
		}
		if mode == "range" {
			mark = " "
			if level == sfp.GetMinimumLevel() {
				mark = "●"
			}
		}
		text := fmt.Sprintf("%s%s %s", prefix, mark, level)
		if i == sfp.cursor {
			text = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Render(text)
		}
		sb.WriteString("┃ " + text + "\n")
	}
	if mode == "range" {
		sb.WriteString("┃ (Shows entries at this level and above)\n")
	} else {
		sb.WriteString(fmt.Sprintf("┃ Selected: %d\n", sfp.CountSelectedLevels()))
	}
	var presets []string
	for i, p := range sfp.GetFilterPresets() {
		presets = append(presets, fmt.Sprintf("%d %s", i+1, p.Name))
	}
	sb.WriteString("┃ Presets: " + strings.Join(presets, " | ") + "\n")
	sb.WriteString("┃ j/k move | space toggle | m mode | a all | d none | enter apply | esc cancel\n")
	return sb.String()
}

// handleKeyPress processes keyboard input
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.activeModalName {
	case "prompt":
		return a.handlePromptInput(msg)
	case "severity":
		return a.handleSeverityFilterInput(msg)
	case "help":
		switch {
		case key.Matches(msg, a.keys.ForceQuit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Help, a.keys.Deselect, a.keys.Quit):
			a.helpModal.SetVisible(false)
			a.activeModalName = "none"
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.ForceQuit, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		a.scrollBy(-1)
	case key.Matches(msg, a.keys.Down):
		a.scrollBy(1)
	case key.Matches(msg, a.keys.PageUp):
		a.scrollBy(-a.logRows())
	case key.Matches(msg, a.keys.PageDown):
		a.scrollBy(a.logRows())
	case key.Matches(msg, a.keys.Top):
		a.scrollTo(0)
	case key.Matches(msg, a.keys.Bottom):
		a.scrollTo(a.pane.MaxScroll(a.logRows()))
	case key.Matches(msg, a.keys.Next):
		a.cycleSelection(1)
	case key.Matches(msg, a.keys.Prev):
		a.cycleSelection(-1)
	case key.Matches(msg, a.keys.Toggle):
		a.toggleSelected()
	case key.Matches(msg, a.keys.Copy):
		a.copySelected()
	case key.Matches(msg, a.keys.CopyFormat):
		a.cycleCopyFormat()
	case key.Matches(msg, a.keys.Filter):
		return a, a.openPrompt(promptFilter)
	case key.Matches(msg, a.keys.Regex):
		return a, a.openPrompt(promptRegex)
	case key.Matches(msg, a.keys.Evaluate):
		return a, a.openPrompt(promptEval)
	case key.Matches(msg, a.keys.Severity):
		a.severityFilter.SyncFrom(a.console.Options().Levels)
		a.activeModalName = "severity"
	case key.Matches(msg, a.keys.Clear):
		a.console.Clear(false)
		a.notices.AddInfo("Console cleared", noticeTTL)
	case key.Matches(msg, a.keys.Deselect):
		a.selectEntry(0)
	case key.Matches(msg, a.keys.KeyMode):
		a.SetVimMode(!a.vimMode)
		mode := "standard"
		if a.vimMode {
			mode = "vim"
		}
		a.notices.AddInfo("Key mode: "+mode, noticeTTL)
	case key.Matches(msg, a.keys.Help):
		a.helpModal.SetVisible(true)
		a.activeModalName = "help"
	}
	return a, nil
}

// scrollTo moves the pane and reports the move to the console
func (a *App) scrollTo(pos int) {
	pos = maxInt(0, minInt(pos, a.pane.MaxScroll(a.logRows())))
	a.pane.ScrollTo(pos)
	a.console.NotifyScroll(pos)
}

func (a *App) scrollBy(delta int) {
	a.scrollTo(a.pane.ScrollTop() + delta)
}

func (a *App) selectEntry(id int64) {
	if err := a.console.Select(id); err != nil {
		a.notices.AddError(err.Error(), noticeTTL)
		return
	}
	a.selected = id
	a.pane.SetSelected(id)
}

// cycleSelection moves the selection through the entries on screen
func (a *App) cycleSelection(delta int) {
	ids := a.pane.VisibleIDs(a.logRows())
	if len(ids) == 0 {
		return
	}
	next := 0
	if delta < 0 {
		next = len(ids) - 1
	}
	for i, id := range ids {
		if id == a.selected {
			next = (i + delta + len(ids)) % len(ids)
			break
		}
	}
	a.selectEntry(ids[next])
}

func (a *App) toggleSelected() {
	if a.selected == 0 {
		a.notices.AddInfo("Select a group with tab first", noticeTTL)
		return
	}
	err := a.console.ToggleGroup(a.selected)
	switch {
	case errors.Is(err, console.ErrNotGroup):
		a.notices.AddInfo("Selected entry is not a group", noticeTTL)
	case err != nil:
		a.notices.AddError(err.Error(), noticeTTL)
	}
}

// cycleCopyFormat steps through the clipboard formats
func (a *App) cycleCopyFormat() {
	next := copyFormats[0]
	for i, f := range copyFormats {
		if f == a.clipboard.GetCopyFormat() {
			next = copyFormats[(i+1)%len(copyFormats)]
			break
		}
	}
	if err := a.clipboard.SetCopyFormat(next); err != nil {
		a.notices.AddError(err.Error(), noticeTTL)
		return
	}
	a.notices.AddInfo("Copy format: "+next, noticeTTL)
}

func (a *App) copySelected() {
	if a.selected == 0 {
		a.notices.AddInfo("Nothing selected", noticeTTL)
		return
	}
	entry, err := a.console.Lookup(a.selected)
	if err != nil {
		a.notices.AddError(err.Error(), noticeTTL)
		return
	}
	if _, err := a.clipboard.CopyEntryDefault(&entry); err != nil {
		logging.Warn("UI", "copy failed: %v", err)
		a.notices.AddError("Copy failed: "+err.Error(), noticeTTL)
		return
	}
	a.notices.AddInfo(fmt.Sprintf("Copied entry #%d", entry.ID), noticeTTL)
}

func (a *App) openPrompt(mode promptMode) tea.Cmd {
	value := ""
	opts := a.console.Options()
	switch {
	case mode == promptFilter && opts.Filter.Kind == models.FilterText:
		value = opts.Filter.Text
	case mode == promptRegex && opts.Filter.Kind == models.FilterPattern:
		value = opts.Filter.Pattern.String()
	}
	a.activeModalName = "prompt"
	return a.prompt.Open(mode, value)
}

func (a *App) handlePromptInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.prompt.Close()
		a.activeModalName = "none"
		return a, nil
	case "enter":
		a.submitPrompt()
		return a, nil
	case "ctrl+p":
		a.prompt.Recall(1)
		return a, nil
	case "ctrl+n":
		a.prompt.Recall(-1)
		return a, nil
	}
	return a, a.prompt.Update(msg)
}

func (a *App) submitPrompt() {
	mode, value := a.prompt.Mode(), a.prompt.Value()
	a.prompt.Remember(value)
	a.recordHistory(mode, value)

	switch mode {
	case promptFilter:
		a.console.SetFilter(models.TextFilter(value))
		a.notices.AddInfo(filterNotice(value), noticeTTL)
	case promptRegex:
		if value == "" {
			a.console.SetFilter(models.NoFilter())
			a.notices.AddInfo(filterNotice(""), noticeTTL)
			break
		}
		re, err := regexp.Compile(value)
		if err != nil {
			a.notices.AddError("Invalid pattern: "+err.Error(), noticeTTL)
			return
		}
		a.console.SetFilter(models.PatternFilter(re))
		a.notices.AddInfo(filterNotice("/"+value+"/"), noticeTTL)
	case promptEval:
		if value == "" {
			return
		}
		a.console.Evaluate(value)
		a.scrollTo(a.pane.MaxScroll(a.logRows()))
	}

	a.prompt.Close()
	a.activeModalName = "none"
}

// SetHistoryFile loads the prompt histories from path and saves every
// submission back to it.
func (a *App) SetHistoryFile(path string) error {
	h, err := config.LoadHistoryFile(path)
	if err != nil {
		return fmt.Errorf("failed to load prompt history: %w", err)
	}
	a.historyPath = path
	a.history = h
	for _, mode := range []promptMode{promptFilter, promptRegex, promptEval} {
		a.prompt.SetHistory(mode, h.Values(string(mode)))
	}
	return nil
}

func (a *App) recordHistory(mode promptMode, value string) {
	if a.historyPath == "" || value == "" {
		return
	}
	a.history = config.UpsertHistory(a.history, config.HistoryRecord{
		Mode:      string(mode),
		Value:     value,
		UpdatedAt: time.Now(),
	}, maxPromptHistory)
	if err := config.SaveHistoryFile(a.historyPath, a.history); err != nil {
		logging.Error("UI", err, "failed to save prompt history")
	}
}

func filterNotice(value string) string {
	if value == "" {
		return "Filter cleared"
	}
	return "Filter: " + value
}

func (a *App) handleSeverityFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sfp := a.severityFilter
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.activeModalName = "none"
	case "enter":
		levels, err := sfp.Levels()
		if err != nil {
			a.notices.AddError(err.Error(), noticeTTL)
			return a, nil
		}
		a.console.SetLevels(levels)
		a.activeModalName = "none"
	case "j", "down":
		sfp.MoveCursor(1)
	case "k", "up":
		sfp.MoveCursor(-1)
	case "space", " ":
		if err := sfp.Activate(); err != nil {
			a.notices.AddError(err.Error(), noticeTTL)
		}
	case "a":
		sfp.SelectAllLevels()
	case "d":
		sfp.DeselectAllLevels()
	case "m":
		sfp.ToggleMode()
	case "1", "2", "3":
		presets := sfp.GetFilterPresets()
		preset := presets[int(msg.String()[0]-'1')]
		if err := sfp.ApplyPreset(preset); err != nil {
			a.notices.AddError(err.Error(), noticeTTL)
			return a, nil
		}
		levels, err := sfp.Levels()
		if err != nil {
			a.notices.AddError(err.Error(), noticeTTL)
			return a, nil
		}
		a.console.SetLevels(levels)
		a.notices.AddInfo("Levels: "+preset.Name, noticeTTL)
		a.activeModalName = "none"
	}
	return a, nil
}

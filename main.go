package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aschmelyun/tidea/internal/workflow"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const VERSION = "1.0.0"

var languages = []string{"auto", "vietnamese", "english", "japanese"}

// chromeHeight is the number of lines around the list: title, statuses,
// header, error panel and toast.
const chromeHeight = 8

func newModel(ctx context.Context, session *workflow.Session, outputDir string, width, height int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	snap := session.Snapshot()
	m := model{
		ctx:       ctx,
		session:   session,
		spinner:   s,
		width:     width,
		height:    height,
		outputDir: outputDir,
		baseName:  baseNameOf(snap.MediaName),
		list:      newList(nil, width, listHeight(height)),
		viewport:  viewport.New(width, listHeight(height)),
	}
	if snap.Phase == workflow.PhaseFileStaged {
		m.loading = true
		m.loadingMsg = fmt.Sprintf("Transcribing %s (language: %s)...", snap.MediaName, snap.Language)
	}
	return m
}

func listHeight(height int) int {
	if h := height - chromeHeight; h > 4 {
		return h
	}
	return 4
}

func (m model) Init() tea.Cmd {
	if m.loading {
		return tea.Batch(
			m.spinner.Tick,
			generateTranscriptCmd(m.ctx, m.session),
		)
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, listHeight(msg.Height))
		m.viewport.Width = msg.Width
		m.viewport.Height = listHeight(msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.loading {
			if msg.String() == "q" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		if m.screen != screenContent && m.screen != screenHome && m.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		switch m.screen {
		case screenHome:
			return m.updateHome(msg)
		case screenTranscript:
			return m.updateTranscript(msg)
		case screenIdeas:
			return m.updateIdeas(msg)
		case screenSubIdeas:
			return m.updateSubIdeas(msg)
		case screenContent:
			return m.updateContent(msg)
		}

	case transcriptDoneMsg:
		m.loading = false
		m.statuses = append(m.statuses, fmt.Sprintf("Transcript generated successfully! (%d segments)", len(msg.segments)))
		m.showTranscript()
		return m, nil

	case ideasDoneMsg:
		m.loading = false
		m.statuses = append(m.statuses, fmt.Sprintf("%d ideas generated successfully!", len(msg.ideas)))
		m.showIdeas()
		return m, nil

	case contentDoneMsg:
		m.loading = false
		snap := m.session.Snapshot()
		if snap.View != workflow.ViewContent {
			return m, nil
		}
		m.showContent()
		format := workflow.FormatVideo
		if idea, ok := snap.SelectedIdea(); ok {
			format = idea.Format
		}
		return m.notify(fmt.Sprintf("%s content generated successfully!", format), false)

	case errorMsg:
		m.loading = false
		return m.notify(msg.err.Error(), true)

	case copiedMsg:
		return m.notify("Content copied to clipboard!", false)

	case savedMsg:
		m.statuses = append(m.statuses, "Saved content to "+msg.path)
		return m.notify("Content saved.", false)

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m.forward(msg)
}

func (m model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "r", "enter":
		return m.startTranscript()

	case "l":
		snap := m.session.Snapshot()
		m.session.SetLanguage(nextOf(languages, snap.Language))
		return m, nil

	case "e":
		if m.session.Snapshot().Role == workflow.RoleEditor {
			m.session.SetRole(workflow.RoleCreator)
		} else {
			m.session.SetRole(workflow.RoleEditor)
		}
		return m, nil

	case "t":
		if len(m.session.Snapshot().Transcript) > 0 {
			m.session.BackToTranscript()
			m.showTranscript()
		}
		return m, nil
	}
	return m, nil
}

func (m model) updateTranscript(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "enter", " ":
		if i, ok := m.list.SelectedItem().(segmentItem); ok {
			if _, err := m.session.ToggleSegment(i.segment.ID); err != nil {
				return m.notify(err.Error(), true)
			}
			m.list.SetItems(segmentItems(m.session.Snapshot().Transcript))
		}
		return m, nil

	case "g":
		if m.session.Snapshot().Status.Loading(workflow.StageIdeas) {
			return m, nil
		}
		m.session.Controller().ClearError(workflow.StageIdeas)
		m.loading = true
		m.loadingMsg = "Generating ideas from the retained transcript..."
		return m, tea.Batch(m.spinner.Tick, generateIdeasCmd(m.ctx, m.session))

	case "i":
		if len(m.session.Snapshot().Ideas) > 0 {
			m.session.BackToIdeas()
			m.showIdeas()
		}
		return m, nil

	case "esc":
		if m.list.FilterState() == list.Unfiltered {
			m.session.Close()
			m.screen = screenHome
			return m, nil
		}
	}
	return m.forward(msg)
}

func (m model) updateIdeas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "enter", " ":
		if i, ok := m.list.SelectedItem().(ideaItem); ok {
			if err := m.session.SelectIdea(i.idea.ID); err != nil {
				return m.notify(err.Error(), true)
			}
			m.showSubIdeas()
		}
		return m, nil

	case "f":
		if i, ok := m.list.SelectedItem().(ideaItem); ok {
			if err := m.session.SetIdeaFormat(i.idea.ID, i.idea.Format.Next()); err != nil {
				return m.notify(err.Error(), true)
			}
			m.list.SetItems(ideaItems(m.session.Snapshot()))
		}
		return m, nil

	case "g":
		if i, ok := m.list.SelectedItem().(ideaItem); ok {
			if err := m.session.SelectIdea(i.idea.ID); err != nil {
				return m.notify(err.Error(), true)
			}
		}
		return m.startContent()

	case "t", "b":
		m.session.BackToTranscript()
		m.showTranscript()
		return m, nil

	case "c":
		if err := m.session.ShowContent(); err != nil {
			return m.notify(err.Error(), true)
		}
		m.showContent()
		return m, nil

	case "esc":
		if m.list.FilterState() == list.Unfiltered {
			m.session.BackToTranscript()
			m.showTranscript()
			return m, nil
		}
	}
	return m.forward(msg)
}

func (m model) updateSubIdeas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()
	idea, ok := snap.SelectedIdea()
	if !ok {
		m.showIdeas()
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "enter", " ":
		if i, ok := m.list.SelectedItem().(subIdeaItem); ok {
			if _, err := m.session.ToggleSubIdea(i.ideaID, i.sub.ID); err != nil {
				return m.notify(err.Error(), true)
			}
			m.list.SetItems(subIdeaItems(idea, m.session.Snapshot().Selections))
		}
		return m, nil

	case "f":
		if err := m.session.SetIdeaFormat(idea.ID, idea.Format.Next()); err != nil {
			return m.notify(err.Error(), true)
		}
		return m, nil

	case "g":
		return m.startContent()

	case "esc", "backspace":
		if m.list.FilterState() == list.Unfiltered {
			m.showIdeas()
			return m, nil
		}
	}
	return m.forward(msg)
}

func (m model) updateContent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "r":
		return m.startContent()

	case "y":
		if snap.Content == "" {
			return m, nil
		}
		return m, copyContentCmd(snap.Content)

	case "s":
		idea, ok := snap.SelectedIdea()
		if !ok || snap.Content == "" {
			return m, nil
		}
		return m, saveContentCmd(m.outputDir, m.baseName, idea.Format, snap.Content)

	case "b", "esc":
		m.session.BackToIdeas()
		m.showIdeas()
		return m, nil

	case "n":
		m.session.NewContentGeneration()
		m.showIdeas()
		return m, nil
	}
	return m.forward(msg)
}

func (m model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.screen {
	case screenContent:
		m.viewport, cmd = m.viewport.Update(msg)
	case screenTranscript, screenIdeas, screenSubIdeas:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m model) startTranscript() (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()
	if snap.Status.Loading(workflow.StageUpload) {
		return m, nil
	}
	m.session.Controller().ClearError(workflow.StageUpload)
	m.loading = true
	m.loadingMsg = fmt.Sprintf("Transcribing %s (language: %s)...", snap.MediaName, snap.Language)
	return m, tea.Batch(m.spinner.Tick, generateTranscriptCmd(m.ctx, m.session))
}

func (m model) startContent() (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()
	if snap.Status.Loading(workflow.StageContent) {
		return m, nil
	}
	idea, ok := snap.SelectedIdea()
	if !ok {
		return m.notify("Please select an idea first", true)
	}
	m.session.Controller().ClearError(workflow.StageContent)
	m.loading = true
	m.loadingMsg = fmt.Sprintf("Generating %s content...", strings.ToLower(idea.Format.Label()))
	return m, tea.Batch(m.spinner.Tick, generateContentCmd(m.ctx, m.session))
}

func (m *model) showTranscript() {
	m.screen = screenTranscript
	m.list = newList(segmentItems(m.session.Snapshot().Transcript), m.width, listHeight(m.height), transcriptKeys...)
}

func (m *model) showIdeas() {
	m.screen = screenIdeas
	m.list = newList(ideaItems(m.session.Snapshot()), m.width, listHeight(m.height), ideaKeys...)
}

func (m *model) showSubIdeas() {
	snap := m.session.Snapshot()
	idea, ok := snap.SelectedIdea()
	if !ok {
		m.showIdeas()
		return
	}
	m.screen = screenSubIdeas
	m.list = newList(subIdeaItems(idea, snap.Selections), m.width, listHeight(m.height), subIdeaKeys...)
}

func (m *model) showContent() {
	m.screen = screenContent
	m.viewport.SetContent(m.session.Snapshot().Content)
	m.viewport.GotoTop()
}

func (m model) notify(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.toastSeq++
	m.toast = text
	m.toastErr = isErr
	return m, clearToastCmd(m.toastSeq)
}

func (m model) View() string {
	if m.quitting {
		return styleOutput(m.statuses)
	}

	snap := m.session.Snapshot()

	var b strings.Builder
	if len(m.statuses) > 0 {
		b.WriteString(styleOutput(m.statuses))
	}
	b.WriteString(m.headerView(snap))

	if m.loading {
		b.WriteString(m.spinner.View() + m.loadingMsg + "\n")
		return b.String()
	}

	switch m.screen {
	case screenHome:
		b.WriteString(m.homeView(snap))
	case screenTranscript:
		retained := len(workflow.RetainedSegments(snap.Transcript))
		b.WriteString(HeaderStyle.Render(fmt.Sprintf("Transcript: %d of %d segments kept", retained, len(snap.Transcript))) + "\n")
		b.WriteString(m.list.View() + "\n")
	case screenIdeas:
		b.WriteString(HeaderStyle.Render(fmt.Sprintf("Ideas: %d generated", len(snap.Ideas))) + "\n")
		b.WriteString(m.list.View() + "\n")
	case screenSubIdeas:
		if idea, ok := snap.SelectedIdea(); ok {
			b.WriteString(HeaderStyle.Render(fmt.Sprintf("#%d %s", idea.ID, idea.MainIdea)) + " " + FormatStyle.Render(string(idea.Format)) + "\n")
		}
		b.WriteString(m.list.View() + "\n")
	case screenContent:
		if idea, ok := snap.SelectedIdea(); ok {
			b.WriteString(HeaderStyle.Render(idea.Format.Label()+": "+idea.MainIdea) + "\n")
		}
		b.WriteString(ContentStyle.Render(m.viewport.View()) + "\n")
		b.WriteString(DimTextStyle.Render("  r regenerate • y copy • s save • b back to ideas • n new generation • q quit") + "\n")
	}

	if failure := snap.Status.Err(m.errorStage()); failure != nil {
		b.WriteString(ErrorPanelStyle.Render(failure.Message) + "\n")
	}
	if m.toast != "" {
		style := SuccessStyle
		if m.toastErr {
			style = ErrorStyle
		}
		b.WriteString(BulletStyle.Render("•") + style.Render(m.toast) + "\n")
	}
	return b.String()
}

// errorStage is the stage whose failure belongs on the current screen: the
// action that screen triggers.
func (m model) errorStage() workflow.Stage {
	switch m.screen {
	case screenTranscript:
		return workflow.StageIdeas
	case screenIdeas, screenSubIdeas, screenContent:
		return workflow.StageContent
	}
	return workflow.StageUpload
}

func (m model) headerView(snap workflow.Snapshot) string {
	parts := []string{
		"Role: " + string(snap.Role),
		"Language: " + snap.Language,
	}
	if snap.MediaName != "" {
		parts = append(parts, "File: "+snap.MediaName)
	}
	return DimTextStyle.Render("  "+strings.Join(parts, " | ")) + "\n"
}

func (m model) homeView(snap workflow.Snapshot) string {
	lines := []string{"r retry transcription", "l change language", "e switch role"}
	if len(snap.Transcript) > 0 {
		lines = append(lines, "t open transcript")
	}
	lines = append(lines, "q quit")
	return styleOutput(lines)
}

func nextOf(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, BulletStyle.Render("└")+ErrorStyle.Render(err.Error()))
		}
		stop()
		os.Exit(1)
	}
}

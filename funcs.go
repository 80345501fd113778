package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aschmelyun/tidea/internal/workflow"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

const toastDuration = 3 * time.Second

func generateTranscriptCmd(ctx context.Context, s *workflow.Session) tea.Cmd {
	return func() tea.Msg {
		segments, err := s.GenerateTranscript(ctx)
		if err != nil {
			return errorMsg{err: err}
		}
		return transcriptDoneMsg{segments: segments}
	}
}

func generateIdeasCmd(ctx context.Context, s *workflow.Session) tea.Cmd {
	return func() tea.Msg {
		ideas, err := s.GenerateIdeas(ctx)
		if err != nil {
			return errorMsg{err: err}
		}
		return ideasDoneMsg{ideas: ideas}
	}
}

func generateContentCmd(ctx context.Context, s *workflow.Session) tea.Cmd {
	return func() tea.Msg {
		content, err := s.GenerateContent(ctx)
		if err != nil {
			return errorMsg{err: err}
		}
		return contentDoneMsg{content: content}
	}
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func copyContentCmd(content string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(content); err != nil {
			return errorMsg{err: fmt.Errorf("failed to copy content: %w", err)}
		}
		return copiedMsg{}
	}
}

func saveContentCmd(dir, baseName string, format workflow.Format, content string) tea.Cmd {
	return func() tea.Msg {
		path, err := saveContent(dir, baseName, format, content)
		if err != nil {
			return errorMsg{err: err}
		}
		return savedMsg{path: path}
	}
}

// saveContent writes content to <dir>/<baseName>_<format>.md.
func saveContent(dir, baseName string, format workflow.Format, content string) (string, error) {
	if baseName == "" {
		baseName = "tidea"
	}
	outputFile := filepath.Join(dir, fmt.Sprintf("%s_%s.md", baseName, format.Wire()))
	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to save content: %w", err)
	}
	return outputFile, nil
}

func clearToastCmd(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (i segmentItem) FilterValue() string { return i.segment.Text }
func (i segmentItem) checked() bool       { return !i.segment.Removed }
func (i segmentItem) dimmed() bool        { return i.segment.Removed }
func (i segmentItem) title() string       { return i.segment.Text }
func (i segmentItem) header() string {
	h := i.segment.Timeline
	if i.segment.OriginalText != "" && i.segment.Language != "vietnamese" {
		h += fmt.Sprintf("  (%s) %s", i.segment.Language, i.segment.OriginalText)
	}
	return h
}

func (i ideaItem) FilterValue() string { return i.idea.MainIdea }
func (i ideaItem) checked() bool       { return i.selected }
func (i ideaItem) dimmed() bool        { return false }
func (i ideaItem) title() string       { return i.idea.MainIdea }
func (i ideaItem) header() string {
	return fmt.Sprintf("#%d %s  %s  %d/%d sub-ideas",
		i.idea.ID, FormatStyle.Render(string(i.idea.Format)), i.idea.Timestamp, i.chosen, len(i.idea.SubIdeas))
}

func (i subIdeaItem) FilterValue() string { return i.sub.Text }
func (i subIdeaItem) checked() bool       { return i.selected }
func (i subIdeaItem) dimmed() bool        { return !i.selected }
func (i subIdeaItem) title() string       { return i.sub.Text }
func (i subIdeaItem) header() string      { return i.sub.ID }

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(row)
	if !ok {
		return
	}

	checkbox := "☐"
	if i.checked() {
		checkbox = "◼"
	}

	timestampLine := TimestampStyle.Render(i.header())
	str := fmt.Sprintf("%s %s", checkbox, i.title())

	fn := ItemStyle.Render
	if i.dimmed() {
		fn = RemovedItemStyle.Render
	}
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprintf(w, "%s\n%s\n", timestampLine, fn(str))
}

func segmentItems(segments []workflow.Segment) []list.Item {
	items := make([]list.Item, len(segments))
	for i, s := range segments {
		items[i] = segmentItem{segment: s}
	}
	return items
}

func ideaItems(snap workflow.Snapshot) []list.Item {
	items := make([]list.Item, len(snap.Ideas))
	for i, idea := range snap.Ideas {
		items[i] = ideaItem{
			idea:     idea,
			selected: idea.ID == snap.SelectedIdeaID,
			chosen:   len(workflow.SelectedSubIdeas(idea, snap.Selections)),
		}
	}
	return items
}

func subIdeaItems(idea workflow.Idea, sel workflow.Selections) []list.Item {
	items := make([]list.Item, len(idea.SubIdeas))
	for i, sub := range idea.SubIdeas {
		items[i] = subIdeaItem{ideaID: idea.ID, sub: sub, selected: sel.IsSelected(idea.ID, sub.ID)}
	}
	return items
}

func newList(items []list.Item, width, height int, bindings ...key.Binding) list.Model {
	l := list.New(items, itemDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.SetShowPagination(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return bindings
	}
	return l
}

func binding(keys, help string) key.Binding {
	return key.NewBinding(key.WithKeys(strings.Split(keys, "/")...), key.WithHelp(keys, help))
}

var (
	transcriptKeys = []key.Binding{binding("space", "keep/remove"), binding("g", "ideas"), binding("i", "show ideas")}
	ideaKeys       = []key.Binding{binding("enter", "sub-ideas"), binding("f", "format"), binding("g", "generate"), binding("t", "transcript"), binding("c", "content")}
	subIdeaKeys    = []key.Binding{binding("space", "toggle"), binding("f", "format"), binding("g", "generate"), binding("esc", "ideas")}
)

func styleOutput(statuses []string) string {
	var styledStatuses []string
	for i, status := range statuses {
		bullet := "├"
		if i == len(statuses)-1 {
			bullet = "└"
		}
		styledStatuses = append(styledStatuses, BulletStyle.Render(bullet)+TextStyle.Render(status))
	}
	return strings.Join(styledStatuses, "\n") + "\n"
}

func baseNameOf(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

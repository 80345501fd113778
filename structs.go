package main

import (
	"context"

	"github.com/aschmelyun/tidea/internal/workflow"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
)

type transcriptDoneMsg struct {
	segments []workflow.Segment
}

type ideasDoneMsg struct {
	ideas []workflow.Idea
}

type contentDoneMsg struct {
	content string
}

type errorMsg struct {
	err error
}

type copiedMsg struct{}

type savedMsg struct {
	path string
}

type clearToastMsg struct {
	seq int
}

// screen is what the TUI shows. It follows the session view, with the
// sub-idea list as a drill-down of the ideas view.
type screen int

const (
	screenHome screen = iota
	screenTranscript
	screenIdeas
	screenSubIdeas
	screenContent
)

type model struct {
	ctx     context.Context
	session *workflow.Session

	spinner    spinner.Model
	loading    bool
	loadingMsg string
	list       list.Model
	viewport   viewport.Model
	screen     screen
	width      int
	height     int
	quitting   bool
	statuses   []string

	toast    string
	toastErr bool
	toastSeq int

	// outputDir is where saved content is written.
	outputDir string
	baseName  string
}

// row is a list entry rendered by itemDelegate as a dim header line above a
// checkbox line.
type row interface {
	list.Item
	header() string
	title() string
	checked() bool
	dimmed() bool
}

type segmentItem struct {
	segment workflow.Segment
}

type ideaItem struct {
	idea     workflow.Idea
	selected bool
	chosen   int
}

type subIdeaItem struct {
	ideaID   int
	sub      workflow.SubIdea
	selected bool
}

type itemDelegate struct{}

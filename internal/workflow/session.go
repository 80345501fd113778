package workflow

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// View is the screen currently shown.
type View int

const (
	ViewHome View = iota
	ViewTranscript
	ViewIdeas
	ViewContent
)

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewTranscript:
		return "transcript"
	case ViewIdeas:
		return "ideas"
	case ViewContent:
		return "content"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// Phase is how far the workflow has progressed. It is derived from the data
// the session holds, so it can move backwards only when data is replaced.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFileStaged
	PhaseTranscriptReady
	PhaseIdeasReady
	PhaseContentReady
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFileStaged:
		return "file staged"
	case PhaseTranscriptReady:
		return "transcript ready"
	case PhaseIdeasReady:
		return "ideas ready"
	case PhaseContentReady:
		return "content ready"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Role           Role
	Language       string
	MediaName      string
	Transcript     []Segment
	Ideas          []Idea
	Selections     Selections
	SelectedIdeaID int
	Content        string
	View           View
	Phase          Phase
	Status         Status
}

// SelectedIdea returns the idea with SelectedIdeaID.
func (s Snapshot) SelectedIdea() (Idea, bool) {
	return findIdea(s.Ideas, s.SelectedIdeaID)
}

// Session holds the whole upload -> transcript -> ideas -> content workflow
// for one user. Backend calls go through the Controller; the session lock is
// never held across a call.
type Session struct {
	ctrl *Controller

	mu             sync.Mutex
	role           Role
	language       string
	media          *Media
	transcript     []Segment
	ideas          []Idea
	selections     Selections
	selectedIdeaID int
	content        string
	view           View
}

func NewSession(ctrl *Controller, role Role, language string) *Session {
	if role == "" {
		role = RoleEditor
	}
	if language == "" {
		language = "auto"
	}
	return &Session{
		ctrl:       ctrl,
		role:       role,
		language:   language,
		selections: Selections{},
	}
}

func (s *Session) Controller() *Controller {
	return s.ctrl
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Role:           s.role,
		Language:       s.language,
		Transcript:     slices.Clone(s.transcript),
		Ideas:          cloneIdeas(s.ideas),
		Selections:     s.selections.Clone(),
		SelectedIdeaID: s.selectedIdeaID,
		Content:        s.content,
		View:           s.view,
		Phase:          s.phaseLocked(),
		Status:         s.ctrl.Status(),
	}
	if s.media != nil {
		snap.MediaName = s.media.Name
	}
	return snap
}

func (s *Session) phaseLocked() Phase {
	switch {
	case s.content != "":
		return PhaseContentReady
	case len(s.ideas) > 0:
		return PhaseIdeasReady
	case len(s.transcript) > 0:
		return PhaseTranscriptReady
	case s.media != nil:
		return PhaseFileStaged
	}
	return PhaseIdle
}

func (s *Session) SetRole(role Role) {
	s.mu.Lock()
	s.role = role
	s.mu.Unlock()
}

func (s *Session) SetLanguage(language string) {
	s.mu.Lock()
	s.language = language
	s.mu.Unlock()
}

// StageFile records the file the next transcription will upload.
func (s *Session) StageFile(media Media) {
	s.mu.Lock()
	s.media = &media
	s.mu.Unlock()
}

// GenerateTranscript uploads the staged file. A successful result replaces
// the transcript wholesale and opens the transcript view.
func (s *Session) GenerateTranscript(ctx context.Context) ([]Segment, error) {
	s.mu.Lock()
	if s.media == nil {
		s.mu.Unlock()
		return nil, validationf("Please upload an audio file first")
	}
	media, language := *s.media, s.language
	s.mu.Unlock()

	segments, err := s.ctrl.Upload(ctx, media, language)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.transcript = segments
	s.view = ViewTranscript
	s.mu.Unlock()
	return slices.Clone(segments), nil
}

// ToggleSegment flips the removed flag of one segment and returns the new value.
func (s *Session) ToggleSegment(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transcript {
		if s.transcript[i].ID == id {
			s.transcript[i].Removed = !s.transcript[i].Removed
			return s.transcript[i].Removed, nil
		}
	}
	return false, fmt.Errorf("transcript segment %d not found", id)
}

// SetSegmentRemoved marks one segment removed or kept.
func (s *Session) SetSegmentRemoved(id int, removed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transcript {
		if s.transcript[i].ID == id {
			s.transcript[i].Removed = removed
			return nil
		}
	}
	return fmt.Errorf("transcript segment %d not found", id)
}

// GenerateIdeas sends the retained transcript. Success replaces the idea
// list, re-selects every sub-idea and opens the ideas view.
func (s *Session) GenerateIdeas(ctx context.Context) ([]Idea, error) {
	s.mu.Lock()
	if len(s.transcript) == 0 {
		s.mu.Unlock()
		return nil, validationf("No transcript data available. Please generate a transcript first.")
	}
	if len(RetainedSegments(s.transcript)) == 0 {
		s.mu.Unlock()
		return nil, validationf("Please ensure at least one transcript item is not removed.")
	}
	s.selectedIdeaID = 0
	s.content = ""
	transcript := slices.Clone(s.transcript)
	s.mu.Unlock()

	ideas, err := s.ctrl.GenerateIdeas(ctx, transcript)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.ideas = ideas
	s.selections = NewSelections(ideas)
	s.view = ViewIdeas
	s.mu.Unlock()
	return cloneIdeas(ideas), nil
}

// SetIdeaFormat changes one idea's format. Nothing else is touched.
func (s *Session) SetIdeaFormat(ideaID int, format Format) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return validationf("Unknown format %q", format)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ideas {
		if s.ideas[i].ID == ideaID {
			s.ideas[i].Format = format
			return nil
		}
	}
	return fmt.Errorf("idea %d not found", ideaID)
}

// ToggleSubIdea flips a sub-idea's selection and returns the new value.
func (s *Session) ToggleSubIdea(ideaID int, subID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSubIdeaLocked(ideaID, subID); err != nil {
		return false, err
	}
	return s.selections.Toggle(ideaID, subID), nil
}

// SetSubIdeaSelected records an explicit selection for one sub-idea.
func (s *Session) SetSubIdeaSelected(ideaID int, subID string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSubIdeaLocked(ideaID, subID); err != nil {
		return err
	}
	s.selections.Set(ideaID, subID, selected)
	return nil
}

func (s *Session) checkSubIdeaLocked(ideaID int, subID string) error {
	idea, ok := findIdea(s.ideas, ideaID)
	if !ok {
		return fmt.Errorf("idea %d not found", ideaID)
	}
	if !slices.ContainsFunc(idea.SubIdeas, func(sub SubIdea) bool { return sub.ID == subID }) {
		return fmt.Errorf("sub-idea %s not found in idea %d", subID, ideaID)
	}
	return nil
}

// SelectIdea makes ideaID the target of content generation. Switching to a
// different idea drops the generated content; selections are kept.
func (s *Session) SelectIdea(ideaID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := findIdea(s.ideas, ideaID); !ok {
		return fmt.Errorf("idea %d not found", ideaID)
	}
	if s.selectedIdeaID != ideaID {
		s.content = ""
	}
	s.selectedIdeaID = ideaID
	return nil
}

// ContentRequest is the exact payload content generation will send.
type ContentRequest struct {
	IdeaID           int      `json:"ideaId"`
	Format           Format   `json:"format"`
	IdeaText         string   `json:"ideaText"`
	SelectedSubIdeas []string `json:"selectedSubIdeas"`
}

// PendingContentRequest composes the request for the selected idea.
func (s *Session) PendingContentRequest() (ContentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentRequestLocked()
}

func (s *Session) contentRequestLocked() (ContentRequest, error) {
	idea, ok := findIdea(s.ideas, s.selectedIdeaID)
	if !ok {
		return ContentRequest{}, validationf("Please select an idea first")
	}
	selected := SelectedSubIdeas(idea, s.selections)
	return ContentRequest{
		IdeaID:           idea.ID,
		Format:           idea.Format,
		IdeaText:         ComposeIdeaText(idea.MainIdea, selected),
		SelectedSubIdeas: selected,
	}, nil
}

// GenerateContent generates content for the selected idea. The result is
// kept only if that idea is still selected when the call returns.
func (s *Session) GenerateContent(ctx context.Context) (string, error) {
	s.mu.Lock()
	req, err := s.contentRequestLocked()
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	content, err := s.ctrl.GenerateContent(ctx, req.Format, req.IdeaText, req.SelectedSubIdeas)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.selectedIdeaID == req.IdeaID {
		s.content = content
		s.view = ViewContent
	}
	s.mu.Unlock()
	return content, nil
}

// ShowContent reopens the content view for already generated content.
func (s *Session) ShowContent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.content == "" {
		return validationf("No content generated yet. Select an idea and generate content first.")
	}
	s.view = ViewContent
	return nil
}

// BackToIdeas returns from the content view, keeping the selection.
func (s *Session) BackToIdeas() {
	s.mu.Lock()
	s.view = ViewIdeas
	s.mu.Unlock()
}

// BackToTranscript returns from the ideas view, keeping transcript edits.
func (s *Session) BackToTranscript() {
	s.mu.Lock()
	s.view = ViewTranscript
	s.mu.Unlock()
}

// NewContentGeneration clears the content and the selected idea and goes
// back to the ideas view.
func (s *Session) NewContentGeneration() {
	s.mu.Lock()
	s.content = ""
	s.selectedIdeaID = 0
	s.view = ViewIdeas
	s.mu.Unlock()
}

// Close dismisses the current view.
func (s *Session) Close() {
	s.mu.Lock()
	s.view = ViewHome
	s.mu.Unlock()
}

func findIdea(ideas []Idea, id int) (Idea, bool) {
	for _, idea := range ideas {
		if idea.ID == id {
			return idea, true
		}
	}
	return Idea{}, false
}

func cloneIdeas(ideas []Idea) []Idea {
	if ideas == nil {
		return nil
	}
	out := make([]Idea, len(ideas))
	for i, idea := range ideas {
		idea.SubIdeas = slices.Clone(idea.SubIdeas)
		out[i] = idea
	}
	return out
}

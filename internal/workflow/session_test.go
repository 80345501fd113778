package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aschmelyun/tidea/internal/api"
)

func newTestSession(backend *fakeBackend) *Session {
	return NewSession(NewController(backend, nil), RoleCreator, "english")
}

func TestSessionEndToEnd(t *testing.T) {
	backend := &fakeBackend{
		transcript: threeSegments(),
		ideas:      twoIdeas(),
		content:    api.ContentGenerationResponse{Content: "# Script"},
	}
	s := newTestSession(backend)
	ctx := context.Background()

	if got := s.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}

	s.StageFile(MediaFromBytes("talk.mp3", []byte("audio")))
	if got := s.Snapshot().Phase; got != PhaseFileStaged {
		t.Fatalf("phase = %v, want file staged", got)
	}

	segments, err := s.GenerateTranscript(ctx)
	if err != nil {
		t.Fatalf("GenerateTranscript: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("segments = %d", len(segments))
	}
	if snap := s.Snapshot(); snap.View != ViewTranscript || snap.Phase != PhaseTranscriptReady {
		t.Fatalf("after transcript: view=%v phase=%v", snap.View, snap.Phase)
	}
	if backend.languages[0] != "english" {
		t.Errorf("language sent = %q", backend.languages[0])
	}

	if removed, err := s.ToggleSegment(2); err != nil || !removed {
		t.Fatalf("ToggleSegment(2) = %v, %v", removed, err)
	}

	ideas, err := s.GenerateIdeas(ctx)
	if err != nil {
		t.Fatalf("GenerateIdeas: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("ideas = %d", len(ideas))
	}
	sent := backend.ideaCalls[0]
	if len(sent) != 2 || sent[0].Transcript != "first" || sent[1].Transcript != "third" {
		t.Fatalf("idea request = %+v", sent)
	}
	if snap := s.Snapshot(); snap.View != ViewIdeas || snap.Phase != PhaseIdeasReady {
		t.Fatalf("after ideas: view=%v phase=%v", snap.View, snap.Phase)
	}

	if _, err := s.ToggleSubIdea(1, "1-2"); err != nil {
		t.Fatalf("ToggleSubIdea: %v", err)
	}
	if err := s.SelectIdea(1); err != nil {
		t.Fatalf("SelectIdea: %v", err)
	}

	content, err := s.GenerateContent(ctx)
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if content != "# Script" {
		t.Errorf("content = %q", content)
	}

	call := backend.contentCalls[0]
	if call.ideaText != "Focus. Timers" {
		t.Errorf("idea text = %q, want %q", call.ideaText, "Focus. Timers")
	}
	if !slices.Equal(call.subIdeas, []string{"Timers"}) {
		t.Errorf("sub ideas = %q", call.subIdeas)
	}
	if call.format != "video" {
		t.Errorf("format = %q, want video", call.format)
	}

	snap := s.Snapshot()
	if snap.View != ViewContent || snap.Phase != PhaseContentReady || snap.Content != "# Script" {
		t.Fatalf("after content: %+v", snap)
	}
}

func TestSessionPreconditions(t *testing.T) {
	backend := &fakeBackend{transcript: threeSegments(), ideas: twoIdeas()}
	s := newTestSession(backend)
	ctx := context.Background()

	var verr *ValidationError
	if _, err := s.GenerateTranscript(ctx); !errors.As(err, &verr) {
		t.Fatalf("transcript without file: %v", err)
	}
	if _, err := s.GenerateIdeas(ctx); !errors.As(err, &verr) {
		t.Fatalf("ideas without transcript: %v", err)
	}
	if _, err := s.GenerateContent(ctx); !errors.As(err, &verr) {
		t.Fatalf("content without idea: %v", err)
	}

	s.StageFile(MediaFromBytes("a.wav", []byte("x")))
	if _, err := s.GenerateTranscript(ctx); err != nil {
		t.Fatal(err)
	}
	for _, id := range []int{1, 2, 3} {
		if _, err := s.ToggleSegment(id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.GenerateIdeas(ctx); !errors.As(err, &verr) {
		t.Fatalf("ideas with everything removed: %v", err)
	}
	if len(backend.ideaCalls) != 0 {
		t.Error("idea generation must not reach the backend")
	}
	if _, err := s.ToggleSegment(99); err == nil {
		t.Error("expected error for unknown segment")
	}
}

func TestSetIdeaFormatIsolation(t *testing.T) {
	backend := &fakeBackend{transcript: threeSegments(), ideas: twoIdeas()}
	s := newTestSession(backend)
	ctx := context.Background()
	s.StageFile(MediaFromBytes("a.mp3", []byte("x")))
	if _, err := s.GenerateTranscript(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GenerateIdeas(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ToggleSubIdea(1, "1-1"); err != nil {
		t.Fatal(err)
	}

	before := s.Snapshot()
	if err := s.SetIdeaFormat(2, FormatInfographic); err != nil {
		t.Fatalf("SetIdeaFormat: %v", err)
	}
	after := s.Snapshot()

	if after.Ideas[1].Format != FormatInfographic {
		t.Errorf("idea 2 format = %q", after.Ideas[1].Format)
	}
	if after.Ideas[0].Format != before.Ideas[0].Format {
		t.Errorf("idea 1 format changed to %q", after.Ideas[0].Format)
	}
	if !slices.Equal(after.Ideas[0].SubIdeas, before.Ideas[0].SubIdeas) {
		t.Error("idea 1 sub-ideas changed")
	}
	for subID, v := range before.Selections[1] {
		if after.Selections[1][subID] != v {
			t.Errorf("selection 1/%s changed", subID)
		}
	}
	if err := s.SetIdeaFormat(2, "podcast"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSelectionStickyAcrossIdeaSwitch(t *testing.T) {
	backend := &fakeBackend{
		transcript: threeSegments(),
		ideas:      twoIdeas(),
		content:    api.ContentGenerationResponse{Content: "text"},
	}
	s := newTestSession(backend)
	ctx := context.Background()
	s.StageFile(MediaFromBytes("a.mp3", []byte("x")))
	if _, err := s.GenerateTranscript(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GenerateIdeas(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ToggleSubIdea(1, "1-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectIdea(1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GenerateContent(ctx); err != nil {
		t.Fatal(err)
	}

	s.BackToIdeas()
	if snap := s.Snapshot(); snap.Content != "text" || snap.SelectedIdeaID != 1 || snap.View != ViewIdeas {
		t.Fatalf("BackToIdeas should keep content and selection: %+v", snap)
	}

	if err := s.SelectIdea(2); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Content != "" {
		t.Error("selecting another idea should clear content")
	}
	if snap.Selections.IsSelected(1, "1-1") {
		t.Error("idea 1 selection should survive switching ideas")
	}

	if _, err := s.GenerateIdeas(ctx); err != nil {
		t.Fatal(err)
	}
	snap = s.Snapshot()
	if !snap.Selections.IsSelected(1, "1-1") {
		t.Error("new idea cycle should reset selections")
	}
	if snap.SelectedIdeaID != 0 {
		t.Error("new idea cycle should clear the selected idea")
	}
}

func TestNewContentGeneration(t *testing.T) {
	backend := &fakeBackend{
		transcript: threeSegments(),
		ideas:      twoIdeas(),
		content:    api.ContentGenerationResponse{Content: "text"},
	}
	s := newTestSession(backend)
	ctx := context.Background()
	s.StageFile(MediaFromBytes("a.mp3", []byte("x")))
	_, _ = s.GenerateTranscript(ctx)
	_, _ = s.GenerateIdeas(ctx)
	_ = s.SelectIdea(2)
	if _, err := s.GenerateContent(ctx); err != nil {
		t.Fatal(err)
	}

	s.NewContentGeneration()
	snap := s.Snapshot()
	if snap.Content != "" || snap.SelectedIdeaID != 0 || snap.View != ViewIdeas {
		t.Fatalf("NewContentGeneration = %+v", snap)
	}
	if snap.Phase != PhaseIdeasReady {
		t.Errorf("phase = %v", snap.Phase)
	}

	s.BackToTranscript()
	if s.Snapshot().View != ViewTranscript {
		t.Error("BackToTranscript should open the transcript view")
	}
	s.Close()
	if s.Snapshot().View != ViewHome {
		t.Error("Close should return home")
	}
}

func TestContentDroppedWhenSelectionChanges(t *testing.T) {
	backend := &fakeBackend{
		transcript: threeSegments(),
		ideas:      twoIdeas(),
		content:    api.ContentGenerationResponse{Content: "for idea 1"},
	}
	s := newTestSession(backend)
	ctx := context.Background()
	s.StageFile(MediaFromBytes("a.mp3", []byte("x")))
	_, _ = s.GenerateTranscript(ctx)
	_, _ = s.GenerateIdeas(ctx)
	_ = s.SelectIdea(1)

	backend.observe = func() { _ = s.SelectIdea(2) }
	content, err := s.GenerateContent(ctx)
	if err != nil || content != "for idea 1" {
		t.Fatalf("GenerateContent = %q, %v", content, err)
	}
	if snap := s.Snapshot(); snap.Content != "" || snap.SelectedIdeaID != 2 {
		t.Fatalf("stale content applied: %+v", snap)
	}
}

func TestPendingContentRequestWithoutSubIdeas(t *testing.T) {
	backend := &fakeBackend{transcript: threeSegments(), ideas: twoIdeas()}
	s := newTestSession(backend)
	ctx := context.Background()
	s.StageFile(MediaFromBytes("a.mp3", []byte("x")))
	_, _ = s.GenerateTranscript(ctx)
	_, _ = s.GenerateIdeas(ctx)

	_, _ = s.ToggleSubIdea(2, "2-1")
	_, _ = s.ToggleSubIdea(2, "2-2")
	_ = s.SelectIdea(2)

	req, err := s.PendingContentRequest()
	if err != nil {
		t.Fatal(err)
	}
	if req.IdeaText != "Habits" || len(req.SelectedSubIdeas) != 0 || req.Format != FormatBlog {
		t.Errorf("request = %+v", req)
	}
}

func TestMediaFromFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "talk.MP3")
	empty := filepath.Join(dir, "empty.wav")
	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(good, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(text, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	media, err := MediaFromFile(good)
	if err != nil {
		t.Fatalf("MediaFromFile: %v", err)
	}
	if media.Name != "talk.MP3" || media.Size != 4 {
		t.Errorf("media = %+v", media)
	}
	rc, err := media.Open()
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()

	for _, path := range []string{empty, text, filepath.Join(dir, "missing.mp3"), dir} {
		var verr *ValidationError
		if _, err := MediaFromFile(path); !errors.As(err, &verr) {
			t.Errorf("MediaFromFile(%s) = %v, want validation error", path, err)
		}
	}
}

func TestExplicitSettersAreIdempotent(t *testing.T) {
	transcript := threeSegments()
	transcript.Data[1].Remove = true
	backend := &fakeBackend{transcript: transcript, ideas: twoIdeas()}
	s := newTestSession(backend)
	ctx := context.Background()

	s.StageFile(MediaFromBytes("talk.mp3", []byte("audio")))
	if _, err := s.GenerateTranscript(ctx); err != nil {
		t.Fatalf("GenerateTranscript: %v", err)
	}
	for range 2 {
		if err := s.SetSegmentRemoved(2, true); err != nil {
			t.Fatalf("SetSegmentRemoved: %v", err)
		}
	}
	if !s.Snapshot().Transcript[1].Removed {
		t.Fatal("segment 2 should stay removed")
	}
	if err := s.SetSegmentRemoved(9, true); err == nil {
		t.Error("expected error for unknown segment")
	}

	if _, err := s.GenerateIdeas(ctx); err != nil {
		t.Fatalf("GenerateIdeas: %v", err)
	}
	if got := len(backend.ideaCalls[0]); got != 2 {
		t.Errorf("segments sent = %d, want 2", got)
	}

	for range 2 {
		if err := s.SetSubIdeaSelected(1, "1-2", false); err != nil {
			t.Fatalf("SetSubIdeaSelected: %v", err)
		}
	}
	if s.Snapshot().Selections.IsSelected(1, "1-2") {
		t.Error("sub-idea 1-2 should stay deselected")
	}
	if err := s.SetSubIdeaSelected(1, "2-1", false); err == nil {
		t.Error("expected error for a sub-idea of another idea")
	}
}

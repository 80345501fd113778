package workflow

import (
	"context"
	"io"
	"sync"

	"github.com/aschmelyun/tidea/internal/api"
)

type contentCall struct {
	format   string
	ideaText string
	subIdeas []string
}

// fakeBackend records calls and returns canned responses.
type fakeBackend struct {
	mu sync.Mutex

	transcript api.TranscriptResponse
	ideas      api.IdeaGenerationResponse
	content    api.ContentGenerationResponse

	uploadErr  error
	ideasErr   error
	contentErr error
	panicOn    string

	uploads      []string
	languages    []string
	ideaCalls    [][]api.TranscriptItem
	contentCalls []contentCall

	// observe runs inside each call, before it returns.
	observe func()
}

func (f *fakeBackend) UploadForTranscript(ctx context.Context, filename string, r io.Reader, language string) (api.TranscriptResponse, error) {
	if f.panicOn == "upload" {
		panic("upload exploded")
	}
	body, _ := io.ReadAll(r)
	f.mu.Lock()
	f.uploads = append(f.uploads, filename+":"+string(body))
	f.languages = append(f.languages, language)
	f.mu.Unlock()
	f.hook()
	return f.transcript, f.uploadErr
}

func (f *fakeBackend) GenerateIdeas(ctx context.Context, items []api.TranscriptItem) (api.IdeaGenerationResponse, error) {
	f.mu.Lock()
	f.ideaCalls = append(f.ideaCalls, items)
	f.mu.Unlock()
	f.hook()
	return f.ideas, f.ideasErr
}

func (f *fakeBackend) GenerateContent(ctx context.Context, format, ideaText string, selectedSubIdeas []string) (api.ContentGenerationResponse, error) {
	f.mu.Lock()
	f.contentCalls = append(f.contentCalls, contentCall{format: format, ideaText: ideaText, subIdeas: selectedSubIdeas})
	f.mu.Unlock()
	f.hook()
	return f.content, f.contentErr
}

func (f *fakeBackend) Health(ctx context.Context) (api.HealthResponse, error) {
	return api.HealthResponse{Message: "ok"}, nil
}

func (f *fakeBackend) hook() {
	if f.observe != nil {
		f.observe()
	}
}

func threeSegments() api.TranscriptResponse {
	return api.TranscriptResponse{Data: []api.TranscriptItem{
		{Timestamp: "00:00-00:05", Transcript: "first", Language: "english"},
		{Timestamp: "00:05-00:10", Transcript: "second", Language: "english"},
		{Timestamp: "00:10-00:15", Transcript: "third", Language: "english"},
	}}
}

func twoIdeas() api.IdeaGenerationResponse {
	return api.IdeaGenerationResponse{Data: []api.IdeaItem{
		{Paragraph: "p1", MainIdea: "Focus", SubIdea: "Timers | Breaks", SupportingIdeas: []string{"Timers", "Breaks"}, Format: "video"},
		{Paragraph: "p2", MainIdea: "Habits", SubIdea: "Start small | Track", Format: "BLOG"},
	}}
}

package workflow

import (
	"slices"
	"testing"

	"github.com/aschmelyun/tidea/internal/api"
)

func TestTransformTranscriptAssignsIDs(t *testing.T) {
	segments := TransformTranscript([]api.TranscriptItem{
		{Timestamp: "00:01", Transcript: "xin chào", Language: ""},
		{Timestamp: "00:02", Transcript: "hello", OriginalTranscript: "こんにちは", Language: "japanese", Remove: true},
	})

	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].ID != 1 || segments[1].ID != 2 {
		t.Errorf("ids = %d,%d, want 1,2", segments[0].ID, segments[1].ID)
	}
	if segments[0].Language != "vietnamese" {
		t.Errorf("default language = %q", segments[0].Language)
	}
	if segments[1].OriginalText != "こんにちは" || !segments[1].Removed {
		t.Errorf("segment 2 = %+v", segments[1])
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	items := []api.TranscriptItem{
		{Timestamp: "00:00-00:05", Transcript: "a", OriginalTranscript: "A", Language: "english", Remove: false},
		{Timestamp: "00:05-00:10", Transcript: "b", OriginalTranscript: "", Language: "vietnamese", Remove: true},
		{Timestamp: "00:10-00:15", Transcript: "c", OriginalTranscript: "C", Language: "japanese", Remove: false},
	}

	got := TranscriptForIdeaGeneration(TransformTranscript(items))
	if !slices.Equal(got, items) {
		t.Fatalf("round trip = %+v, want %+v", got, items)
	}
}

func TestTransformIdeas(t *testing.T) {
	tests := []struct {
		name       string
		item       api.IdeaItem
		wantSubs   []string
		wantFormat Format
	}{
		{
			name:       "supporting ideas win",
			item:       api.IdeaItem{SubIdea: "ignored | also ignored", SupportingIdeas: []string{" one ", "two"}, Format: "post"},
			wantSubs:   []string{"one", "two"},
			wantFormat: FormatPost,
		},
		{
			name:       "blank supporting ideas dropped",
			item:       api.IdeaItem{SupportingIdeas: []string{"one", "  ", "", "two"}, Format: "video"},
			wantSubs:   []string{"one", "two"},
			wantFormat: FormatVideo,
		},
		{
			name:       "all blank supporting ideas fall back to split",
			item:       api.IdeaItem{SubIdea: "alpha | beta", SupportingIdeas: []string{" "}, Format: "video"},
			wantSubs:   []string{"alpha", "beta"},
			wantFormat: FormatVideo,
		},
		{
			name:       "split flattened sub idea",
			item:       api.IdeaItem{SubIdea: "alpha |  | beta | gamma", Format: "Infographic"},
			wantSubs:   []string{"alpha", "beta", "gamma"},
			wantFormat: FormatInfographic,
		},
		{
			name:       "no sub ideas",
			item:       api.IdeaItem{SubIdea: "", Format: "BLOG"},
			wantSubs:   []string{},
			wantFormat: FormatBlog,
		},
		{
			name:       "unknown format falls back",
			item:       api.IdeaItem{SubIdea: "x", Format: "podcast"},
			wantSubs:   []string{"x"},
			wantFormat: FormatVideo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ideas := TransformIdeas([]api.IdeaItem{{MainIdea: "first"}, tt.item})
			idea := ideas[1]
			if idea.ID != 2 {
				t.Errorf("id = %d, want 2", idea.ID)
			}
			if idea.Format != tt.wantFormat {
				t.Errorf("format = %q, want %q", idea.Format, tt.wantFormat)
			}
			var texts []string
			for i, sub := range idea.SubIdeas {
				texts = append(texts, sub.Text)
				if want := subIdeaID(2, i+1); sub.ID != want {
					t.Errorf("sub id = %q, want %q", sub.ID, want)
				}
				if !sub.Selected {
					t.Errorf("sub %s should default to selected", sub.ID)
				}
			}
			if len(texts) != len(tt.wantSubs) || (len(texts) > 0 && !slices.Equal(texts, tt.wantSubs)) {
				t.Errorf("subs = %q, want %q", texts, tt.wantSubs)
			}
			if idea.SubIdea != tt.item.SubIdea {
				t.Errorf("legacy sub idea = %q", idea.SubIdea)
			}
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	if f, err := ParseFormat(" infographic "); err != nil || f != FormatInfographic {
		t.Errorf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("podcast"); err == nil {
		t.Error("expected error for unknown format")
	}
	if FormatInfographic.Next() != FormatVideo {
		t.Errorf("Next wraps to %q", FormatInfographic.Next())
	}
	if FormatBlog.Wire() != "blog" {
		t.Errorf("Wire() = %q", FormatBlog.Wire())
	}
}

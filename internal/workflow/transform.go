package workflow

import (
	"fmt"
	"strings"

	"github.com/aschmelyun/tidea/internal/api"
)

const (
	defaultLanguage  = "vietnamese"
	subIdeaSeparator = " | "
	composeSeparator = ". "
)

// TransformTranscript converts backend segments to view segments, numbering
// them from 1 in response order.
func TransformTranscript(items []api.TranscriptItem) []Segment {
	segments := make([]Segment, len(items))
	for i, item := range items {
		segments[i] = Segment{
			ID:           i + 1,
			Timeline:     item.Timestamp,
			Text:         item.Transcript,
			OriginalText: item.OriginalTranscript,
			Language:     languageOrDefault(item.Language),
			Removed:      item.Remove,
		}
	}
	return segments
}

// TranscriptForIdeaGeneration converts view segments back to wire form.
// Removed flags travel with each item.
func TranscriptForIdeaGeneration(segments []Segment) []api.TranscriptItem {
	items := make([]api.TranscriptItem, len(segments))
	for i, s := range segments {
		items[i] = api.TranscriptItem{
			Timestamp:          s.Timeline,
			Transcript:         s.Text,
			OriginalTranscript: s.OriginalText,
			Language:           languageOrDefault(s.Language),
			Remove:             s.Removed,
		}
	}
	return items
}

// TransformIdeas converts backend ideas to view ideas. Sub-ideas come from
// the non-blank supporting_ideas when there are any, otherwise from
// splitting sub_idea.
func TransformIdeas(items []api.IdeaItem) []Idea {
	ideas := make([]Idea, len(items))
	for i, item := range items {
		id := i + 1
		texts := nonBlank(item.SupportingIdeas)
		if len(texts) == 0 {
			texts = splitSubIdeas(item.SubIdea)
		}

		subIdeas := make([]SubIdea, 0, len(texts))
		for j, text := range texts {
			subIdeas = append(subIdeas, SubIdea{
				ID:       subIdeaID(id, j+1),
				Text:     strings.TrimSpace(text),
				Selected: true,
			})
		}

		ideas[i] = Idea{
			ID:                id,
			Paragraph:         item.Paragraph,
			OriginalParagraph: item.OriginalParagraph,
			Language:          languageOrDefault(item.Language),
			Timestamp:         item.Timestamp,
			MainIdea:          item.MainIdea,
			SubIdea:           item.SubIdea,
			SubIdeas:          subIdeas,
			Format:            NormalizeFormat(item.Format),
		}
	}
	return ideas
}

func splitSubIdeas(joined string) []string {
	return nonBlank(strings.Split(joined, subIdeaSeparator))
}

func nonBlank(texts []string) []string {
	var out []string
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	}
	return out
}

func subIdeaID(ideaID, n int) string {
	return fmt.Sprintf("%d-%d", ideaID, n)
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return defaultLanguage
	}
	return lang
}

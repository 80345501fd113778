package workflow

import "strings"

// Selections maps idea ID -> sub-idea ID -> selected. NewSelections fills
// every entry, but a missing entry still reads as selected so a sparse map
// built elsewhere behaves the same way.
type Selections map[int]map[string]bool

// NewSelections records the default selection of every sub-idea.
func NewSelections(ideas []Idea) Selections {
	sel := make(Selections, len(ideas))
	for _, idea := range ideas {
		entries := make(map[string]bool, len(idea.SubIdeas))
		for _, sub := range idea.SubIdeas {
			entries[sub.ID] = sub.Selected
		}
		sel[idea.ID] = entries
	}
	return sel
}

// IsSelected reports whether a sub-idea takes part in generation. Only an
// explicit false excludes it.
func (s Selections) IsSelected(ideaID int, subID string) bool {
	selected, ok := s[ideaID][subID]
	return !ok || selected
}

// Set records an explicit selection value.
func (s Selections) Set(ideaID int, subID string, selected bool) {
	entries, ok := s[ideaID]
	if !ok {
		entries = make(map[string]bool)
		s[ideaID] = entries
	}
	entries[subID] = selected
}

// Toggle flips a sub-idea and returns its new value.
func (s Selections) Toggle(ideaID int, subID string) bool {
	next := !s.IsSelected(ideaID, subID)
	s.Set(ideaID, subID, next)
	return next
}

// Clone returns a deep copy.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for ideaID, entries := range s {
		cp := make(map[string]bool, len(entries))
		for k, v := range entries {
			cp[k] = v
		}
		out[ideaID] = cp
	}
	return out
}

// SelectedSubIdeas returns the texts of idea's selected sub-ideas in their
// original order.
func SelectedSubIdeas(idea Idea, sel Selections) []string {
	out := make([]string, 0, len(idea.SubIdeas))
	for _, sub := range idea.SubIdeas {
		if sel.IsSelected(idea.ID, sub.ID) {
			out = append(out, sub.Text)
		}
	}
	return out
}

// ComposeIdeaText joins the main idea and the selected sub-ideas with ". ".
// With nothing selected the result is just the main idea.
func ComposeIdeaText(mainIdea string, selected []string) string {
	parts := make([]string, 0, len(selected)+1)
	if main := strings.TrimSpace(mainIdea); main != "" {
		parts = append(parts, main)
	}
	for _, text := range selected {
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, composeSeparator)
}

// RetainedSegments returns the segments not marked removed, in order.
func RetainedSegments(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if !s.Removed {
			out = append(out, s)
		}
	}
	return out
}

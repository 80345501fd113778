package workflow

import (
	"fmt"
	"strings"
)

// Format is the target content type for generation.
type Format string

const (
	FormatVideo       Format = "Video"
	FormatBlog        Format = "Blog"
	FormatPost        Format = "Post"
	FormatInfographic Format = "Infographic"
)

// Formats lists every format in display order.
var Formats = []Format{FormatVideo, FormatBlog, FormatPost, FormatInfographic}

// ParseFormat matches s case-insensitively against the known formats.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimSpace(s)
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// NormalizeFormat is ParseFormat with a FormatVideo fallback, so an idea
// always carries one of the four values.
func NormalizeFormat(s string) Format {
	f, err := ParseFormat(s)
	if err != nil {
		return FormatVideo
	}
	return f
}

// Next cycles through Formats.
func (f Format) Next() Format {
	for i, candidate := range Formats {
		if candidate == f {
			return Formats[(i+1)%len(Formats)]
		}
	}
	return FormatVideo
}

// Wire returns the lower-case form the backend expects.
func (f Format) Wire() string {
	return strings.ToLower(string(f))
}

// Label is the long display name for f.
func (f Format) Label() string {
	switch f {
	case FormatVideo:
		return "Video Script"
	case FormatBlog:
		return "Blog Article"
	case FormatPost:
		return "Social Media Post"
	case FormatInfographic:
		return "Infographic Content"
	}
	return string(f)
}

// Segment is a transcript line in view form. ID is 1-based and assigned by
// position when the backend response is transformed.
type Segment struct {
	ID           int    `json:"id"`
	Timeline     string `json:"timeline"`
	Text         string `json:"text"`
	OriginalText string `json:"originalText"`
	Language     string `json:"language"`
	Removed      bool   `json:"removed"`
}

// SubIdea is a supporting point under an idea. ID is "<ideaID>-<n>".
type SubIdea struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

type Idea struct {
	ID                int       `json:"id"`
	Paragraph         string    `json:"paragraph"`
	OriginalParagraph string    `json:"originalParagraph"`
	Language          string    `json:"language"`
	Timestamp         string    `json:"timestamp"`
	MainIdea          string    `json:"mainIdea"`
	SubIdea           string    `json:"subIdea"`
	SubIdeas          []SubIdea `json:"subIdeas"`
	Format            Format    `json:"format"`
}

// Role is who the user says they are. It is display-only.
type Role string

const (
	RoleEditor  Role = "editor"
	RoleCreator Role = "creator"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEditor, "":
		return RoleEditor, nil
	case RoleCreator:
		return RoleCreator, nil
	}
	return "", fmt.Errorf("unknown role %q (want editor or creator)", s)
}

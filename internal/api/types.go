package api

// TranscriptItem is one transcript segment as the backend sends and receives it.
type TranscriptItem struct {
	Timestamp          string `json:"timestamp"`
	Transcript         string `json:"transcript"`
	OriginalTranscript string `json:"original_transcript"`
	Language           string `json:"language"`
	Remove             bool   `json:"remove"`
}

type TranscriptResponse struct {
	Data []TranscriptItem `json:"data"`
}

type ideaRequest struct {
	Data []TranscriptItem `json:"data"`
}

// IdeaItem is one generated idea. SupportingIdeas is optional; older
// backends only send the flattened SubIdea joined with " | ".
type IdeaItem struct {
	Paragraph         string   `json:"paragraph"`
	OriginalParagraph string   `json:"original_paragraph"`
	Language          string   `json:"language"`
	Timestamp         string   `json:"timestamp"`
	MainIdea          string   `json:"main_idea"`
	SubIdea           string   `json:"sub_idea"`
	SupportingIdeas   []string `json:"supporting_ideas,omitempty"`
	Format            string   `json:"format"`
}

type IdeaGenerationResponse struct {
	Data []IdeaItem `json:"data"`
}

type contentRequest struct {
	Format           string   `json:"format"`
	IdeaText         string   `json:"idea_text"`
	SelectedSubIdeas []string `json:"selected_sub_ideas"`
}

type ContentGenerationResponse struct {
	Content string `json:"content"`
}

type HealthResponse struct {
	Message string `json:"message"`
}

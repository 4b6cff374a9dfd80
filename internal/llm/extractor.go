// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from an
// input (text or attached media).
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "VideoContent")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
// When inputText is empty the prompt refers to the attached media instead,
// which is how multimodal video extraction requests are built.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the source, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	if inputText != "" {
		sb.WriteString("Input text:\n\"\"\"\n")
		sb.WriteString(inputText)
		sb.WriteString("\n\"\"\"\n")
	} else {
		sb.WriteString("Analyze the attached media file.\n")
	}

	return sb.String()
}

// VideoContentSchema returns the extraction schema for video content
// processing: full spoken transcript, on-screen text, and basic metadata.
func VideoContentSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "VideoContent",
		Description: `You are an expert video content analyst. TRANSCRIBE VERBATIM - do not paraphrase, summarize, or censor.
Your task is to extract all spoken and on-screen text from a video.
IMPORTANT: Preserve the exact wording; compliance decisions depend on it.
Goal: Extract the full spoken transcript, all on-screen text (captions, overlays, banners, product labels), and basic media metadata.`,
		Fields: []SchemaField{
			{
				Name:        "transcript",
				Type:        "\"string\"",
				Description: "Full spoken transcript, verbatim, in source language",
				Required:    true,
			},
			{
				Name:        "ocr_text",
				Type:        "\"string\"",
				Description: "All visible on-screen text in order of appearance, one line per occurrence",
				Required:    false,
			},
			{
				Name:        "duration_seconds",
				Type:        "number",
				Description: "Total video duration in seconds",
				Required:    false,
			},
			{
				Name:        "resolution",
				Type:        "\"string\"",
				Description: "Video resolution, e.g. '1920x1080'",
				Required:    false,
			},
			{
				Name:        "language",
				Type:        "\"string\"",
				Description: "Primary spoken language as a BCP-47 tag, e.g. 'en-US'",
				Required:    false,
			},
		},
	}
}

package generator

import (
	"bytes"
	"fmt"
	"text/template"
)

// SystemPrompt is the fixed system instruction for viewer generation
const SystemPrompt = `You are a Python expert specializing in Streamlit and data visualization.
Create visualizations that are appropriate for the dataset's purpose and content.
Provide only raw Python code without markdown formatting.`

// userPromptTemplate is the fixed instruction template. The generated code
// must define display_instance(instance); navigation is added by the launcher.
const userPromptTemplate = `Generate a Streamlit Python script to visualize instances from a dataset.
The script must define a function called 'display_instance' that takes a single parameter 'instance'
and visualizes it appropriately.

Dataset Information:
{{.Card}}

Dataset structure:
{{.Summary}}

Requirements:
- Create a function called 'display_instance(instance)' that handles the visualization
- Display all fields appropriately (text, images, audio, etc.)
- Make it visually appealing with proper headers and sections
- Handle all data types properly
- Use st.columns where appropriate for layout
- Don't include any navigation controls (they're handled elsewhere)
- Do not include markdown code block markers
- Consider the dataset's purpose and content when designing the visualization
- Use the example instances as a guide for formatting and layout
{{- if .Extra}}

Additional requirements:
{{.Extra}}
{{- end}}

The function will be called with the current instance at the end of the script.
Only respond with the raw Python code, no explanations.`

// noCardSection substitutes for a missing dataset card
const noCardSection = "No README available for this dataset."

// PromptBuilder composes generation prompts from a schema summary,
// an optional dataset card, and user-supplied extra requirements
type PromptBuilder struct {
	userTemplate *template.Template
}

// promptData carries the template substitutions
type promptData struct {
	Summary string
	Card    string
	Extra   string
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		userTemplate: template.Must(template.New("user").Parse(userPromptTemplate)),
	}
}

// Build renders the user prompt. Pure: identical inputs yield identical output.
func (pb *PromptBuilder) Build(summary, card, extra string) (string, error) {
	if card == "" {
		card = noCardSection
	} else {
		card = "Dataset README:\n" + card
	}

	var buf bytes.Buffer
	err := pb.userTemplate.Execute(&buf, promptData{
		Summary: summary,
		Card:    card,
		Extra:   extra,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return buf.String(), nil
}

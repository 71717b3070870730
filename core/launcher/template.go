package launcher

import (
	"bytes"
	"fmt"
	"text/template"
)

// viewerShell wraps the generated display_instance code with dataset
// loading and navigation controls (previous/next/random/index). The
// launched app re-opens the dataset itself, so the script is standalone.
const viewerShell = `
import streamlit as st
import random
from datasets import load_dataset

# Cache the dataset loading
@st.cache_resource
def get_dataset():
    return load_dataset("{{.Dataset}}")

# Get the dataset
dataset = get_dataset()
split = "{{.Split}}"
data = dataset[split]

# Session state for index tracking
if 'current_index' not in st.session_state:
    st.session_state.current_index = 0

# Navigation controls
st.title("Dataset Viewer: {{.Dataset}}")

col1, col2, col3, col4 = st.columns([1, 1, 1, 2])

with col1:
    if st.button("⬅️ Previous"):
        st.session_state.current_index = (st.session_state.current_index - 1) % len(data)

with col2:
    if st.button("Random 🎲"):
        st.session_state.current_index = random.randint(0, len(data) - 1)

with col3:
    if st.button("Next ➡️"):
        st.session_state.current_index = (st.session_state.current_index + 1) % len(data)

with col4:
    st.session_state.current_index = st.number_input(
        "Go to index",
        min_value=0,
        max_value=len(data) - 1,
        value=st.session_state.current_index
    )

st.write(f"Showing instance {st.session_state.current_index} of {len(data) - 1}")

# Get current instance
instance = data[st.session_state.current_index]

{{.DisplayCode}}

# Always call display_instance with current instance
display_instance(instance)
`

var shellTemplate = template.Must(template.New("viewer").Parse(viewerShell))

// shellData carries the template substitutions
type shellData struct {
	Dataset     string
	Split       string
	DisplayCode string
}

// ComposeScript embeds the generated display code into the navigation shell
func ComposeScript(dataset, split, displayCode string) (string, error) {
	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, shellData{
		Dataset:     dataset,
		Split:       split,
		DisplayCode: displayCode,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render viewer script: %w", err)
	}
	return buf.String(), nil
}

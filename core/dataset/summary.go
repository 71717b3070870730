package dataset

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxValueLen bounds how much of a single field value ends up in the summary
const maxValueLen = 120

// Summarize renders a compact, deterministic description of the dataset
// structure: the field schema followed by up to sampleSize example instances
// with large values reduced to type/shape descriptors. Identical handles
// produce byte-identical summaries, which keeps cache keys stable.
func Summarize(ctx context.Context, h *Handle, sampleSize int) (string, error) {
	if sampleSize <= 0 {
		sampleSize = 5
	}
	if sampleSize > h.NumRows() {
		sampleSize = h.NumRows()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s (config: %s, split: %s)\n", h.Name(), h.Config(), h.Split())
	fmt.Fprintf(&b, "Rows: %d\n", h.NumRows())

	b.WriteString("Fields:\n")
	for _, f := range h.Schema() {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", f.Name, f.Type, f.DType)
	}

	fieldTypes := make(map[string]FieldType, len(h.Schema()))
	for _, f := range h.Schema() {
		fieldTypes[f.Name] = f.Type
	}

	b.WriteString("Example instances:\n")
	for i := 0; i < sampleSize; i++ {
		row, err := h.Row(ctx, i)
		if err != nil {
			return "", fmt.Errorf("failed to sample row %d: %w", i, err)
		}

		fmt.Fprintf(&b, "[%d]", i)
		// Walk fields in schema order so the output never depends on map order.
		for j, f := range h.Schema() {
			sep := " "
			if j > 0 {
				sep = ", "
			}
			fmt.Fprintf(&b, "%s%s: %s", sep, f.Name, formatValue(row[f.Name], fieldTypes[f.Name]))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// formatValue reduces a row value to a short descriptor. Binary payloads
// (images, audio) never make it into the summary verbatim.
func formatValue(v interface{}, ft FieldType) string {
	if v == nil {
		return "null"
	}

	switch ft {
	case TypeImage:
		return "[image]"
	case TypeAudio:
		return "[audio]"
	}

	switch val := v.(type) {
	case string:
		return truncateString(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		// JSON numbers decode as float64; keep integers clean
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []interface{}:
		return fmt.Sprintf("[list with %d elements]", len(val))
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "{dict with keys: " + strings.Join(keys, ", ") + "}"
	default:
		return fmt.Sprintf("[%T]", v)
	}
}

// truncateString caps long strings and flattens newlines. The cut point
// backs up to a rune boundary so the result stays valid UTF-8.
func truncateString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxValueLen {
		return s
	}

	cut := maxValueLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

package exhibit

import (
	"fmt"
	"strings"
)

// Markdown renders entries as a two-column table headed by title. Section
// headers are set in bold.
func Markdown(title string, entries []Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escapeCell(title))
	if len(entries) == 0 {
		sb.WriteString("_No exhibits._\n")
		return sb.String()
	}
	sb.WriteString("| Exhibit | Pages |\n|---|---:|\n")
	for _, e := range entries {
		label := escapeCell(e.Label)
		if e.SectionHeader {
			label = "**" + label + "**"
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", label, e.PageRef)
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

package scanning

import (
	"fmt"
	"strings"
)

// receiptTranscriptPrompt is the shared prompt used by all LLM providers.
// The model is asked for a verbatim transcript rather than interpreted
// fields: field extraction is deterministic and happens downstream, so
// the model's only job is to read.
const receiptTranscriptPrompt = `You are transcribing a receipt or invoice image. Read every line of visible text and reproduce it exactly.

Rules:
- Output one line of text per physical line on the receipt, top to bottom
- Preserve the original spelling, capitalization, and numbers exactly as printed
- Keep item names and their prices on the same line when they appear on the same line
- Do not summarize, interpret, translate, or reorder anything
- Do not add labels, commentary, or markdown formatting
- If a line is unreadable, skip it entirely rather than guessing`

// parseTranscript splits an LLM transcript into receipt lines. Models
// sometimes wrap output in markdown fences or pad it with blank lines
// despite the prompt.
func parseTranscript(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("empty transcript")
	}

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("empty transcript")
	}
	return lines, nil
}

package vision

import "fmt"

// FallbackLabel is the key used for name blocks without a visible heading.
const FallbackLabel = "text"

func ocrPrompt(fallbackKey string) string {
	return fmt.Sprintf(`Extract ALL visible end-credit key→value pairs from this image.

Rules
- Use the exact on-screen label/heading as the key when present.
- If multiple names appear under one label (commas/bullets/newlines/columns), put EACH as a separate string in `+"`values`"+`.
- If a row shows two columns (e.g., character ↔ actor), create entries where LEFT is the key and RIGHT is the single value.
- If a name block has NO visible label, use the key %q.
- Preserve capitalization, punctuation (Jr., ASC, CSA), diacritics.
- Omit unreadable text; do not invent.
- Return ONLY JSON matching the provided schema.
`, fallbackKey)
}

const refineInstruction = "Identify the media title from these end-credit key→values.\n" +
	"Return JSON with field 'title' only. Formats allowed:\n" +
	" • TV: Title_SxxEyy\n" +
	" • Film: Title        or Title (YYYY)\n" +
	"If unsure, return 'UNKNOWN_TITLE'."

const searchInstruction = "Using ONLY grounded web results, identify the media (TV episode or feature film) " +
	"that matches these end-credit key→values. Prefer imdb.com, thetvdb.com, tvmaze.com, " +
	"wikipedia.org, tcm.com.\n\n" +
	"Return EXACTLY ONE LINE (no JSON, no code fences):\n" +
	"  • TV episode: Title_SxxEyy\n" +
	"  • Feature film: Title        or Title (YYYY)\n" +
	"If uncertain, return exactly: UNKNOWN_TITLE"

func refinePrompt(previous string) string {
	if previous == "" {
		return refineInstruction
	}
	return refineInstruction + "\nPrevious guess: " + previous
}

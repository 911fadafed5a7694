// Package title normalizes raw title guesses into episode identifiers, film
// titles, or the unknown sentinel.
package title

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// UnknownText is the sentinel string used by the refinement services.
const UnknownText = "UNKNOWN_TITLE"

// Kind tags a normalized guess.
type Kind int

const (
	Unknown Kind = iota
	Episode
	Film
)

func (k Kind) String() string {
	switch k {
	case Episode:
		return "episode"
	case Film:
		return "film"
	default:
		return "unknown"
	}
}

var (
	episodePattern = regexp.MustCompile(`^.+_S\d{2}E\d{2}$`)
	filmPattern    = regexp.MustCompile(`^(.+?)(?: \((\d{4})\))?$`)
)

// Guess is a normalized title guess.
type Guess struct {
	Kind  Kind
	Title string
	Year  string
}

// Known reports whether the guess resolved to an episode or film.
func (g Guess) Known() bool {
	return g.Kind != Unknown
}

// String renders the canonical form used for comparison and file names.
func (g Guess) String() string {
	switch g.Kind {
	case Episode:
		return g.Title
	case Film:
		if g.Year != "" {
			return g.Title + " (" + g.Year + ")"
		}
		return g.Title
	default:
		return UnknownText
	}
}

// Normalize converts raw service output into a Guess. Anything that is not a
// well-formed episode identifier or film title becomes Unknown. Normalizing
// the String() of a result yields the same result.
func Normalize(raw string) Guess {
	text := strings.TrimSpace(raw)
	if text == "" || strings.EqualFold(text, UnknownText) {
		return Guess{}
	}
	if episodePattern.MatchString(text) {
		return Guess{Kind: Episode, Title: text}
	}
	match := filmPattern.FindStringSubmatch(text)
	if match == nil {
		return Guess{}
	}
	name := strings.TrimSpace(match[1])
	if utf8.RuneCountInString(name) < 2 {
		return Guess{}
	}
	return Guess{Kind: Film, Title: name, Year: match[2]}
}

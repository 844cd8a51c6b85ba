package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"jokegen/internal/domain"
)

// ExtractionMode selects how the punchline is cut out of a completion.
type ExtractionMode string

const (
	// ExtractExact takes everything after the first answer marker, trimmed.
	ExtractExact ExtractionMode = "exact"
	// ExtractLegacy reproduces the historical slice: the offset is computed
	// from the misspelled marker "Answser:", one character longer than the
	// marker actually searched for, and the result is not trimmed.
	ExtractLegacy ExtractionMode = "legacy"
)

const legacyMarkerLen = len("Answser:")

func ParseExtractionMode(s string) (ExtractionMode, error) {
	switch m := ExtractionMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ExtractExact:
		return ExtractExact, nil
	case ExtractLegacy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown extraction mode: %q", s)
	}
}

// CleanCompletion strips the EOS token, turns newlines into spaces and trims.
// Applying it twice gives the same result as applying it once.
func CleanCompletion(raw, eos string) string {
	text := raw
	if eos != "" {
		for strings.Contains(text, eos) {
			text = strings.ReplaceAll(text, eos, "")
		}
	}
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

// ExtractCandidate splits a cleaned completion into the question part, the
// classifier's answer part (marker included) and the punchline.
func ExtractCandidate(index int, raw, cleaned string, mode ExtractionMode) domain.Candidate {
	c := domain.Candidate{Index: index, Raw: raw, Text: cleaned}
	if mode == ExtractLegacy {
		c.Question, _ = legacySplit(cleaned)
		c.Answer = legacyPunchline(cleaned)
		return c
	}

	idx := strings.Index(cleaned, domain.AnswerMarker)
	if idx < 0 {
		c.Question = cleaned
		return c
	}
	c.Question = strings.TrimSpace(cleaned[:idx])
	c.Answer = strings.TrimSpace(cleaned[idx+len(domain.AnswerMarker):])
	return c
}

// ClassifierPair builds the classifier input for a candidate. The answer
// side keeps the marker, matching the format the classifier was trained on.
func ClassifierPair(c domain.Candidate, mode ExtractionMode) domain.Pair {
	if mode == ExtractLegacy {
		q, a := legacySplit(c.Text)
		return domain.Pair{Question: q, Answer: a}
	}

	idx := strings.Index(c.Text, domain.AnswerMarker)
	if idx < 0 {
		return domain.Pair{Question: c.Text}
	}
	return domain.Pair{
		Question: strings.TrimSpace(c.Text[:idx]),
		Answer:   strings.TrimSpace(c.Text[idx:]),
	}
}

// legacySplit mirrors character-indexed slicing where a missing marker
// yields index -1: the question loses its last character and the answer is
// that character.
func legacySplit(text string) (question, answer string) {
	idx := strings.Index(text, domain.AnswerMarker)
	if idx >= 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx:])
	}
	if text == "" {
		return "", ""
	}
	_, size := utf8.DecodeLastRuneInString(text)
	cut := len(text) - size
	return strings.TrimSpace(text[:cut]), strings.TrimSpace(text[cut:])
}

func legacyPunchline(text string) string {
	runes := []rune(text)
	start := legacyMarkerLen - 1 // index -1 plus the offset
	if idx := strings.Index(text, domain.AnswerMarker); idx >= 0 {
		start = utf8.RuneCountInString(text[:idx]) + legacyMarkerLen
	}
	if start >= len(runes) {
		return ""
	}
	return string(runes[start:])
}

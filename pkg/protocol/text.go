package protocol

import (
	"bytes"
	"unicode/utf8"
)

// Converts a header field to wire bytes: spaces become underscores, anything outside
// printable US-ASCII is dropped, and the result is truncated to maxLength.
// Empty values become NILVALUE.
func cleanField(input string, maxLength int) (cleanBytes []byte) {
	cleanBytes = make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		b := input[i]
		if b == fieldSeparator {
			b = fieldSubstitute
		}
		if b >= 0x21 && b <= 0x7E {
			cleanBytes = append(cleanBytes, b)
		}
	}

	if len(cleanBytes) > maxLength {
		cleanBytes = cleanBytes[:maxLength]
	}
	if len(cleanBytes) == 0 {
		cleanBytes = append(cleanBytes, emptyFieldChar...)
	}
	return
}

// Removes null-byte sequences from data
func cleanBytes(data []byte) (cleanBytes []byte) {
	cleanBytes = data[:0]
	for _, b := range data {
		if b != 0 {
			cleanBytes = append(cleanBytes, b)
		}
	}
	return
}

// Strips any run of trailing whitespace, CR and LF
func StripTerminators(line []byte) (stripped []byte) {
	stripped = bytes.TrimRight(line, trailingCutset)
	return
}

// Cuts data to at most limit bytes without splitting a UTF-8 sequence
func truncateRunes(data []byte, limit int) (truncated []byte) {
	if limit <= 0 {
		return data[:0]
	}
	if len(data) <= limit {
		return data
	}

	cut := limit
	// Back off continuation bytes so the cut lands on a rune start
	for cut > 0 && cut > limit-utf8.UTFMax && !utf8.RuneStart(data[cut]) {
		cut--
	}
	if !utf8.RuneStart(data[cut]) {
		cut = limit
	}
	truncated = data[:cut]
	return
}

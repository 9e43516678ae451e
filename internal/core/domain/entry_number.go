package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultEntryNumberPrefix is used when no prefix is configured.
const DefaultEntryNumberPrefix = "JE"

// FormatEntryNumber renders <prefix>-<year>-<seq>, with seq zero-padded to four digits.
// Sequences beyond 9999 simply grow wider.
func FormatEntryNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// ParseEntrySequence extracts the sequence from an entry number of the given prefix
// and year. ok is false for numbers that belong to another prefix or year.
func ParseEntrySequence(prefix string, year int, entryNumber string) (seq int64, ok bool) {
	head := fmt.Sprintf("%s-%d-", prefix, year)
	if !strings.HasPrefix(entryNumber, head) {
		return 0, false
	}
	seq, err := strconv.ParseInt(entryNumber[len(head):], 10, 64)
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

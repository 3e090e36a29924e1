// Package ids allocates identifiers for rows appended to the tabular store.
//
// The store has no sequences and no uniqueness constraints, so identifiers are
// generated client side with enough randomness that concurrent writers never
// collide.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

// DeckPrefix starts every deck identifier.
const DeckPrefix = "Mazo"

const deckSuffixBytes = 4

var deckIDPattern = regexp.MustCompile(`^` + DeckPrefix + `-(\d+)-([0-9a-f]{8})$`)

// NewContentID returns a random UUIDv4 for cards, exercises, catalog words and sessions.
func NewContentID() string {
	return uuid.NewString()
}

// NewDeckID returns "Mazo-<count>-<suffix>". count is the number of deck rows
// observed before the insert; the random suffix keeps ids unique when two
// writers observe the same count.
func NewDeckID(count int) string {
	buf := make([]byte, deckSuffixBytes)
	rand.Read(buf)
	return fmt.Sprintf("%s-%d-%s", DeckPrefix, count, hex.EncodeToString(buf))
}

// ParseDeckID splits a deck id into its observed count and random suffix.
func ParseDeckID(id string) (count int, suffix string, err error) {
	m := deckIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, "", fmt.Errorf("invalid deck id %q", id)
	}
	count, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("invalid deck id %q: %w", id, err)
	}
	return count, m[2], nil
}

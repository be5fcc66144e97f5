package cloze

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"strings"
)

const distractorCount = 3

var vowels = []byte("aeiou")

// Distractors derives three plausible wrong answers from the correct word.
// The derivation is seeded from the word itself so repeated runs over the
// same source produce identical items.
func Distractors(answer string) []string {
	lower := strings.ToLower(answer)
	rng := rand.New(rand.NewSource(seedFrom(lower)))

	seen := map[string]bool{lower: true}
	out := make([]string, 0, distractorCount)

	mutators := []func(*rand.Rand, string) string{
		swapAdjacent,
		replaceVowel,
		alterEnding,
	}

	for _, mutate := range mutators {
		d := lower
		// A mutation can land back on an already produced form; nudge until
		// it does not, bounded so a degenerate word cannot loop forever.
		for i := 0; i < 8; i++ {
			d = mutate(rng, d)
			if !seen[d] {
				break
			}
		}
		if seen[d] {
			d = d + string(rune('a'+rng.Intn(26)))
		}
		seen[d] = true
		out = append(out, matchCase(answer, d))
	}
	return out
}

func seedFrom(word string) int64 {
	sum := sha256.Sum256([]byte(word))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

func swapAdjacent(rng *rand.Rand, w string) string {
	if len(w) < 3 {
		return w + w
	}
	b := []byte(w)
	i := 1 + rng.Intn(len(b)-2)
	b[i], b[i+1] = b[i+1], b[i]
	return string(b)
}

func replaceVowel(rng *rand.Rand, w string) string {
	b := []byte(w)
	for _, i := range rng.Perm(len(b)) {
		if !isVowel(b[i]) {
			continue
		}
		v := vowels[rng.Intn(len(vowels))]
		if v == b[i] {
			v = vowels[(indexOfVowel(v)+1)%len(vowels)]
		}
		b[i] = v
		return string(b)
	}
	return swapAdjacent(rng, w)
}

var endings = []string{"ed", "er", "ly", "al", "ic", "es"}

func alterEnding(rng *rand.Rand, w string) string {
	if len(w) < 4 {
		return w + endings[rng.Intn(len(endings))]
	}
	return w[:len(w)-2] + endings[rng.Intn(len(endings))]
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func indexOfVowel(b byte) int {
	for i, v := range vowels {
		if v == b {
			return i
		}
	}
	return 0
}

func matchCase(original, mutated string) string {
	if original == "" || mutated == "" {
		return mutated
	}
	if original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(mutated[:1]) + mutated[1:]
	}
	return mutated
}

// Package compare grades a guessed anime against the hidden target.
// Everything here is pure: no I/O, no randomness, no shared state.
package compare

import (
	"strings"
	"unicode"

	"aniguess/pkg/models"
)

// Anime produces the per-attribute verdicts for one guess. Attributes
// are graded independently and directional verdicts are stated from the
// target's perspective: "higher" tells the player the target's value is
// above the guessed one. Missing values on either side grade as
// mismatch, never as zero and never as an error.
func Anime(guess, target models.Anime) models.Comparison {
	return models.Comparison{
		Title:    exactString(guess.Title, target.Title),
		Year:     ordinalInt(guess.Year, target.Year),
		Score:    ordinalFloat(guess.Score, target.Score),
		Episodes: ordinalInt(guess.Episodes, target.Episodes),
		Format:   exactString(guess.Format, target.Format),
		Source:   exactString(guess.Source, target.Source),
		Season:   exactString(guess.Season, target.Season),
		Studios:  setOverlap(guess.Studios, target.Studios),
		Genres:   tagTiers(guess.Genres, target.Genres, target.Tags),
		Tags:     tagTiers(guess.Tags, target.Genres, target.Tags),
	}
}

func exactString(guess, target string) models.Verdict {
	g, t := Norm(guess), Norm(target)
	if g == "" || t == "" {
		return models.VerdictMismatch
	}
	if g == t {
		return models.VerdictExact
	}
	return models.VerdictMismatch
}

func ordinalInt(guess, target *int) models.Verdict {
	if guess == nil || target == nil {
		return models.VerdictMismatch
	}
	switch {
	case *guess == *target:
		return models.VerdictExact
	case *target > *guess:
		return models.VerdictHigher
	default:
		return models.VerdictLower
	}
}

func ordinalFloat(guess, target *float64) models.Verdict {
	if guess == nil || target == nil {
		return models.VerdictMismatch
	}
	switch {
	case *guess == *target:
		return models.VerdictExact
	case *target > *guess:
		return models.VerdictHigher
	default:
		return models.VerdictLower
	}
}

// setOverlap grades set-membership attributes (studios): any shared
// member is exact, since co-productions make full set equality too strict.
func setOverlap(guess, target []string) models.Verdict {
	if len(guess) == 0 || len(target) == 0 {
		return models.VerdictMismatch
	}
	targetSet := normSet(target)
	for _, g := range guess {
		if _, ok := targetSet[Norm(g)]; ok {
			return models.VerdictExact
		}
	}
	return models.VerdictMismatch
}

// tagTiers grades each guessed tag: in the target's primary set →
// primary, only in the secondary set → secondary, else none. Tags are
// whole-set members; no substring matching. Tags absent from the guess
// never appear in the output.
func tagTiers(guessTags, targetPrimary, targetSecondary []string) []models.TagVerdict {
	if len(guessTags) == 0 {
		return nil
	}
	primary := normSet(targetPrimary)
	secondary := normSet(targetSecondary)

	verdicts := make([]models.TagVerdict, 0, len(guessTags))
	for _, tag := range guessTags {
		key := Norm(tag)
		tier := models.TagNone
		if _, ok := primary[key]; ok {
			tier = models.TagPrimary
		} else if _, ok := secondary[key]; ok {
			tier = models.TagSecondary
		}
		verdicts = append(verdicts, models.TagVerdict{Tag: tag, Tier: tier})
	}
	return verdicts
}

func normSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if key := Norm(v); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Norm converts a name to its canonical matching form: lowercase, with
// every non-letter/digit run collapsed to a single space.
func Norm(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// MatchesAny reports whether a guessed name equals any of the accepted
// variants after normalization.
func MatchesAny(guess string, variants []string) bool {
	g := Norm(guess)
	if g == "" {
		return false
	}
	for _, v := range variants {
		if Norm(v) == g {
			return true
		}
	}
	return false
}

package models

// Verdict is the per-attribute result of comparing a guess against the
// target. Directional verdicts are stated from the target's perspective:
// VerdictHigher means the target's value is higher than the guessed one,
// i.e. the player should guess upwards.
type Verdict string

const (
	VerdictExact    Verdict = "exact"
	VerdictHigher   Verdict = "higher"
	VerdictLower    Verdict = "lower"
	VerdictMismatch Verdict = "mismatch"
)

// TagTier grades a single guessed tag against the target's tag sets.
type TagTier string

const (
	TagPrimary   TagTier = "primary"   // tag is in the target's primary set
	TagSecondary TagTier = "secondary" // tag is only in the target's secondary set
	TagNone      TagTier = "none"
)

// TagVerdict pairs one guessed tag with its tier.
type TagVerdict struct {
	Tag  string  `json:"tag"`
	Tier TagTier `json:"tier"`
}

// Comparison holds the ordered per-attribute verdicts for one guess.
// Attributes are independent; no aggregate score is computed here.
// Presentation and scoring belong to the caller.
type Comparison struct {
	Title    Verdict      `json:"title"`
	Year     Verdict      `json:"year"`
	Score    Verdict      `json:"score"`
	Episodes Verdict      `json:"episodes"`
	Format   Verdict      `json:"format"`
	Source   Verdict      `json:"source"`
	Season   Verdict      `json:"season"`
	Studios  Verdict      `json:"studios"`
	Genres   []TagVerdict `json:"genres"`
	Tags     []TagVerdict `json:"tags"`
}

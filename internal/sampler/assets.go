package sampler

import "aniguess/pkg/models"

// ComposeStages selects n images for the reveal stages, deterministically
// for a given asset list. Early stages prefer per-episode stills and fall
// back to backdrops only when the stills run out; the final stage prefers
// a backdrop. Duplicate URLs count once. Returns nil when fewer than n
// distinct images are available.
func ComposeStages(assets []models.ImageAsset, n int) []models.ImageAsset {
	if n <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(assets))
	var stills, backdrops []models.ImageAsset
	for _, a := range assets {
		if a.Original == "" {
			continue
		}
		if _, dup := seen[a.Original]; dup {
			continue
		}
		seen[a.Original] = struct{}{}
		if a.Category == models.ImageBackdrop {
			backdrops = append(backdrops, a)
		} else {
			stills = append(stills, a)
		}
	}
	if len(stills)+len(backdrops) < n {
		return nil
	}

	stages := make([]models.ImageAsset, 0, n)
	usedStills, usedBackdrops := 0, 0

	for len(stages) < n-1 && usedStills < len(stills) {
		stages = append(stages, stills[usedStills])
		usedStills++
	}
	for len(stages) < n-1 && usedBackdrops < len(backdrops) {
		stages = append(stages, backdrops[usedBackdrops])
		usedBackdrops++
	}

	switch {
	case usedBackdrops < len(backdrops):
		stages = append(stages, backdrops[usedBackdrops])
	case usedStills < len(stills):
		stages = append(stages, stills[usedStills])
	default:
		return nil
	}
	return stages
}

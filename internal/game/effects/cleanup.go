package effects

// StripEndOfTurn returns active without the effects that end at cleanup.
// Permanent and static effects are untouched.
func StripEndOfTurn(active []Effect) []Effect {
	return strip(active, DurationEndOfTurn)
}

// StripEndOfCombat returns active without the effects that end with combat.
func StripEndOfCombat(active []Effect) []Effect {
	return strip(active, DurationEndOfCombat)
}

func strip(active []Effect, d Duration) []Effect {
	out := active[:0]
	for _, e := range active {
		if e.Duration != d {
			out = append(out, e)
		}
	}
	return out
}

// RemoveBySource drops every effect created by sourceID regardless of duration.
func RemoveBySource(active []Effect, sourceID string) []Effect {
	out := active[:0]
	for _, e := range active {
		if e.SourceID != sourceID {
			out = append(out, e)
		}
	}
	return out
}

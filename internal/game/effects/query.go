package effects

// ExtraLandDrops sums the additional land plays granted to playerID.
func ExtraLandDrops(active []Effect, playerID string) int {
	n := 0
	for i := range active {
		e := &active[i]
		if e.Type == ExtraLandDrop && e.AppliesToPlayer(playerID) {
			drops := e.ExtraLandDrops
			if drops == 0 {
				drops = 1
			}
			n += drops
		}
	}
	return n
}

// SkipsDraw reports whether playerID skips the draw step's draw.
func SkipsDraw(active []Effect, playerID string) bool {
	return anyForPlayer(active, SkipDraw, playerID)
}

// HasShroud reports whether playerID cannot be targeted.
func HasShroud(active []Effect, playerID string) bool {
	return anyForPlayer(active, GrantPlayerShroud, playerID)
}

// PreventsDamage reports whether damage to playerID is prevented.
func PreventsDamage(active []Effect, playerID string) bool {
	return anyForPlayer(active, PreventDamageToPlayer, playerID)
}

// CostModifier sums ModifyCost deltas that apply to casting obj. The caster is
// obj.ControllerID. Negative results reduce the generic cost.
func CostModifier(active []Effect, obj *Object) int {
	n := 0
	for i := range active {
		e := &active[i]
		if e.Type == ModifyCost && e.Filter.Matches(obj, e) {
			n += e.CostMod
		}
	}
	return n
}

// AttackCaps returns the attack-power caps that apply to attacker. Each cap is
// keyed to the hand size of the effect's controller.
func AttackCaps(active []Effect, attacker *Object) []*Effect {
	var out []*Effect
	for i := range active {
		e := &active[i]
		if e.Type == AttackPowerCapByHandSize && e.Filter.Matches(attacker, e) {
			out = append(out, e)
		}
	}
	return out
}

func anyForPlayer(active []Effect, t Type, playerID string) bool {
	for i := range active {
		if active[i].Type == t && active[i].AppliesToPlayer(playerID) {
			return true
		}
	}
	return false
}

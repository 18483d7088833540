package effects

import (
	"slices"
	"sort"
	"strings"
)

// Layer is the bucket an effect is applied in. Lower layers apply first.
type Layer int

const (
	LayerType Layer = 1 + iota
	LayerAbility
	LayerPTDefining
	LayerPTSet
	LayerPTModify
	LayerPTCounters
	// LayerRules holds effects that change game rules for players rather than
	// object characteristics. The object pass skips them.
	LayerRules
)

var layerNames = map[Layer]string{
	LayerType:       "type",
	LayerAbility:    "ability",
	LayerPTDefining: "pt-defining",
	LayerPTSet:      "pt-set",
	LayerPTModify:   "pt-modify",
	LayerPTCounters: "pt-counters",
	LayerRules:      "rules",
}

func (l Layer) String() string {
	if n, ok := layerNames[l]; ok {
		return n
	}
	return "unknown"
}

// Object holds the characteristics of one permanent during a recompute pass.
// Base fields are inputs; the rest is reset from them and then rewritten by
// the effects that match.
type Object struct {
	CardID       string
	ControllerID string

	BaseTypes     []string
	BaseSubtypes  []string
	BaseKeywords  KeywordSet
	BasePower     int
	BaseToughness int
	// CounterPower and CounterToughness are the summed +1/+1 and -1/-1
	// counter deltas, applied after every modification effect.
	CounterPower     int
	CounterToughness int

	Types            []string
	Subtypes         []string
	Keywords         KeywordSet
	Power            int
	Toughness        int
	AbilitiesRemoved bool
}

// Reset restores the derived characteristics to the base values.
func (o *Object) Reset() {
	o.Types = append(o.Types[:0], o.BaseTypes...)
	o.Subtypes = append(o.Subtypes[:0], o.BaseSubtypes...)
	o.Keywords = o.BaseKeywords.Clone()
	o.Power = o.BasePower
	o.Toughness = o.BaseToughness
	o.AbilitiesRemoved = false
}

// HasType reports whether the object currently has the card type.
func (o *Object) HasType(t string) bool {
	return containsFold(o.Types, t)
}

// HasSubtype reports whether the object currently has the subtype.
func (o *Object) HasSubtype(t string) bool {
	return containsFold(o.Subtypes, t)
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, v) })
}

// Order sorts effects by layer, then timestamp. The sort is stable so effects
// sharing both keep their insertion order.
func Order(active []Effect) []*Effect {
	ordered := make([]*Effect, len(active))
	for i := range active {
		ordered[i] = &active[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Layer != ordered[j].Layer {
			return ordered[i].Layer < ordered[j].Layer
		}
		return ordered[i].Timestamp < ordered[j].Timestamp
	})
	return ordered
}

// Recalculate resets every object and reapplies the active effects in layer
// and timestamp order. It is a full pass and safe to repeat.
func Recalculate(objects []*Object, active []Effect, board Board) {
	for _, o := range objects {
		o.Reset()
	}
	ordered := Order(active)
	countersApplied := false
	for _, e := range ordered {
		if e.Layer > LayerPTModify && !countersApplied {
			applyCounters(objects)
			countersApplied = true
		}
		if e.Layer == LayerRules {
			continue
		}
		for _, o := range objects {
			if e.Filter.Matches(o, e) {
				apply(e, o, board)
			}
		}
	}
	if !countersApplied {
		applyCounters(objects)
	}
}

func applyCounters(objects []*Object) {
	for _, o := range objects {
		o.Power += o.CounterPower
		o.Toughness += o.CounterToughness
	}
}

func apply(e *Effect, o *Object, board Board) {
	switch e.Type {
	case BecomeCreature:
		for _, t := range e.AddTypes {
			if !o.HasType(t) {
				o.Types = append(o.Types, t)
			}
		}
		for _, t := range e.AddSubtypes {
			if !o.HasSubtype(t) {
				o.Subtypes = append(o.Subtypes, t)
			}
		}
		if !o.HasType("Creature") {
			o.Types = append(o.Types, "Creature")
		}
		o.Power, o.Toughness = e.SetPower, e.SetToughness
	case GrantKeyword:
		o.Keywords.Add(e.Keyword)
	case RemoveKeyword:
		o.Keywords.Remove(e.Keyword)
	case RemoveAbilities:
		clear(o.Keywords)
		o.AbilitiesRemoved = true
	case DefinePowerToughness:
		n := 0
		if e.Count != nil && board != nil {
			n = e.Count.Evaluate(board, e.ControllerID)
		}
		o.Power, o.Toughness = e.SetPower+n, e.SetToughness+n
	case SetBasePowerToughness, SetPowerToughness:
		o.Power, o.Toughness = e.SetPower, e.SetToughness
	case ModifyPowerToughness:
		mult := 1
		if e.Count != nil && board != nil {
			mult = e.Count.Evaluate(board, e.ControllerID)
		}
		o.Power += e.PowerMod * mult
		o.Toughness += e.ToughnessMod * mult
	}
}

// Prune drops effects whose source is gone, unless their duration lets them
// outlive it.
func Prune(active []Effect, board Board) []Effect {
	out := active[:0]
	for _, e := range active {
		if e.OutlivesSource() || board.SourcePresent(e.SourceID) {
			out = append(out, e)
		}
	}
	return out
}

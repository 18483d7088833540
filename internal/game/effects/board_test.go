package effects

// fakeBoard is a minimal Board backed by an in-memory list of permanents.
type fakeBoard struct {
	present map[string]bool
	perms   []fakePermanent
}

type fakePermanent struct {
	controller string
	zone       CountZone
	types      []string
	subtypes   []string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{present: map[string]bool{}}
}

func (b *fakeBoard) SourcePresent(id string) bool {
	return b.present[id]
}

func (b *fakeBoard) CountMatching(zone CountZone, scope CountScope, controllerID, cardType, subtype string) int {
	n := 0
	for _, p := range b.perms {
		if p.zone != zone {
			continue
		}
		if scope == ScopeController && p.controller != controllerID {
			continue
		}
		if scope == ScopeOpponents && p.controller == controllerID {
			continue
		}
		if cardType != "" && !containsFold(p.types, cardType) {
			continue
		}
		if subtype != "" && !containsFold(p.subtypes, subtype) {
			continue
		}
		n++
	}
	return n
}

func creature(id, controller string, p, t int, subtypes ...string) *Object {
	return &Object{
		CardID:        id,
		ControllerID:  controller,
		BaseTypes:     []string{"Creature"},
		BaseSubtypes:  subtypes,
		BasePower:     p,
		BaseToughness: t,
	}
}

func goblin(controller string) fakePermanent {
	return fakePermanent{controller: controller, zone: ZoneBattlefield, types: []string{"Creature"}, subtypes: []string{"Goblin"}}
}

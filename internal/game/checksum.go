package game

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Checksum returns a BLAKE2b-256 digest of the observable game state. Two
// games that reached the same position by the same actions hash equally;
// generated IDs are part of the digest, so only compare checksums of one
// game, or of a replay of it with the same card IDs.
func (e *Engine) Checksum() string {
	sum := blake2b.Sum256([]byte(e.canonicalState()))
	return hex.EncodeToString(sum[:])
}

// canonicalState renders the state independently of map iteration order.
func (e *Engine) canonicalState() string {
	s := e.state
	var b strings.Builder
	fmt.Fprintf(&b, "GAME:%s|%d|%s|%s|%s|%t|%s|%t\n",
		s.ID, s.TurnNumber(), s.Phase(), s.Turn.ActivePlayer(), s.Turn.PriorityPlayer(),
		s.IsGameOver, s.Winner, s.IsDraw)

	for _, p := range s.Players {
		fmt.Fprintf(&b, "PLAYER:%s|%d|%t|%s|%d\n", p.ID, p.Life, p.Lost, p.ManaPool, len(p.History))
		for _, z := range p.zones() {
			fmt.Fprintf(&b, "  %s:", z.Name)
			for _, c := range z.Cards {
				b.WriteString(cardLine(c))
			}
			b.WriteString("\n")
		}
		for _, em := range p.Emblems {
			fmt.Fprintf(&b, "  EMBLEM:%s|%s\n", em.ID, em.Effect.Type)
		}
	}

	b.WriteString("STACK:\n")
	for i, entry := range s.Stack.List() {
		fmt.Fprintf(&b, "  %d:%s|%s\n", i, entry.EntryID(), entry.Describe())
	}

	b.WriteString("EFFECTS:\n")
	for _, ef := range s.ActiveEffects {
		fmt.Fprintf(&b, "  %s|%s|%s|%d|%s\n", ef.ID, ef.Type, ef.SourceID, ef.Timestamp, ef.Duration)
	}
	fmt.Fprintf(&b, "DELAYED:%d\nEXTRA:%s\n", s.DelayedTriggers.Len(), strings.Join(s.ExtraTurns, ","))
	if mc := s.MidCast(); mc != nil {
		fmt.Fprintf(&b, "MIDCAST:%s|%s|%s\n", mc.CardID, mc.PlayerID, mc.Remaining())
	}
	return b.String()
}

func cardLine(c *GameCard) string {
	kws := make([]string, 0, len(c.ActiveKeywords))
	for _, k := range c.ActiveKeywords.Sorted() {
		kws = append(kws, string(k))
	}
	types := slices.Clone(c.Types)
	slices.Sort(types)
	return fmt.Sprintf(" [%s|%s|%s|%d/%d|%s|%s|%t|%d|%s]",
		c.ID, c.Name(), c.ControllerID, c.EffectivePower, c.EffectiveToughness,
		strings.Join(types, ","), strings.Join(kws, ","), c.Tapped, c.Damage, c.Counters)
}

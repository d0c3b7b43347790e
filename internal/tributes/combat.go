package tributes

import (
	"github.com/talgya/tribute-arena/internal/entropy"
)

// AttackOutcome is the result of one contest between two tributes.
type AttackOutcome uint8

const (
	Miss AttackOutcome = iota
	Wound
	Kill
)

func (o AttackOutcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Wound:
		return "wound"
	case Kill:
		return "kill"
	default:
		return "unknown"
	}
}

// Combat constants.
const (
	CombatDie      = 20 // Each side rolls 1d20
	ViolenceStress = 20 // Sanity the winner loses for hurting someone
)

// AttackResult captures the rolls and the effect of an attack.
type AttackResult struct {
	Outcome       AttackOutcome
	Winner        *Tribute // nil on a miss
	Loser         *Tribute // nil on a miss
	AttackerTotal int
	DefenderTotal int
	Damage        int
}

// ResolveAttack runs a contest between attacker and defender. The attacker
// rolls d20+strength, the defender d20+dexterity; the higher total wins and
// an equal total is a miss. The winner deals damage equal to its strength.
//
// A tribute may be passed as both attacker and defender; counters are then
// recorded once and a self-kill is not credited as a kill.
func ResolveAttack(attacker, defender *Tribute, day int, src entropy.Source) AttackResult {
	res := AttackResult{
		AttackerTotal: entropy.Roll(src, CombatDie) + attacker.Strength,
		DefenderTotal: entropy.Roll(src, CombatDie) + defender.Dexterity,
	}
	self := attacker == defender

	switch {
	case res.AttackerTotal > res.DefenderTotal:
		res.Winner, res.Loser = attacker, defender
	case res.DefenderTotal > res.AttackerTotal:
		res.Winner, res.Loser = defender, attacker
	default:
		res.Outcome = Miss
		attacker.Statistics.Draws++
		if !self {
			defender.Statistics.Draws++
		}
		return res
	}

	res.Damage = res.Winner.Strength
	res.Loser.TakesDamage(res.Damage)
	res.Winner.TakesMentalDamage(ViolenceStress)

	if res.Loser.IsAlive() {
		res.Outcome = Wound
		res.Loser.Status = Status{Kind: Wounded}
		return res
	}

	res.Outcome = Kill
	res.Loser.Kill(res.Winner.Name, day)
	res.Loser.Statistics.Defeats++
	if !self {
		res.Winner.Statistics.Kills++
		res.Winner.Statistics.Wins++
	}
	return res
}

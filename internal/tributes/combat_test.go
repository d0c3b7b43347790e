package tributes

import "testing"

func TestResolveAttackTieIsMiss(t *testing.T) {
	a, d := newTribute(1, 1), newTribute(2, 2)
	a.Strength, d.Dexterity = 15, 15
	// Both roll 10.
	res := ResolveAttack(a, d, 3, &scripted{ints: []int{9, 9}})

	if res.Outcome != Miss {
		t.Fatalf("outcome = %s, want miss", res.Outcome)
	}
	if res.AttackerTotal != 25 || res.DefenderTotal != 25 {
		t.Fatalf("totals = %d/%d, want 25/25", res.AttackerTotal, res.DefenderTotal)
	}
	if a.Statistics.Draws != 1 || d.Statistics.Draws != 1 {
		t.Fatalf("draws = %d/%d, want 1/1", a.Statistics.Draws, d.Statistics.Draws)
	}
	if a.Health != 100 || d.Health != 100 || a.Sanity != 100 || d.Sanity != 100 {
		t.Fatal("a miss must not change vitals")
	}
}

func TestResolveAttackWound(t *testing.T) {
	a, d := newTribute(1, 1), newTribute(2, 2)
	a.Strength = 30
	d.Dexterity = 5
	res := ResolveAttack(a, d, 1, &scripted{ints: []int{9, 9}})

	if res.Outcome != Wound {
		t.Fatalf("outcome = %s, want wound", res.Outcome)
	}
	if res.Winner != a || res.Loser != d {
		t.Fatal("attacker should win")
	}
	if d.Health != 70 {
		t.Fatalf("defender health = %d, want 70", d.Health)
	}
	if d.Status.Kind != Wounded {
		t.Fatalf("defender status = %s, want wounded", d.Status)
	}
	if a.Sanity != 80 {
		t.Fatalf("attacker sanity = %d, want 80", a.Sanity)
	}
	if a.Statistics.Kills != 0 || a.Statistics.Wins != 0 {
		t.Fatal("a wound is not a kill")
	}
}

func TestResolveAttackDefenderCanWin(t *testing.T) {
	a, d := newTribute(1, 1), newTribute(2, 2)
	a.Strength = 1
	d.Dexterity = 40
	d.Strength = 25
	res := ResolveAttack(a, d, 1, &scripted{ints: []int{0, 0}})

	if res.Winner != d || res.Loser != a {
		t.Fatal("defender should win")
	}
	if a.Health != 75 {
		t.Fatalf("attacker health = %d, want 75", a.Health)
	}
	if d.Sanity != 80 {
		t.Fatalf("defender sanity = %d, want 80", d.Sanity)
	}
}

func TestResolveAttackKill(t *testing.T) {
	a, d := newTribute(1, 1), newTribute(2, 2)
	a.Name, d.Name = "Cato", "Rue"
	a.Strength = 50
	d.Health = 1
	d.Dexterity = 1
	res := ResolveAttack(a, d, 4, &scripted{ints: []int{0, 19}})

	if res.Outcome != Kill {
		t.Fatalf("outcome = %s, want kill", res.Outcome)
	}
	if d.Health != 0 || d.Status.Kind != RecentlyDead {
		t.Fatalf("loser health/status = %d/%s", d.Health, d.Status)
	}
	if d.KilledBy != "Cato" || d.DayKilled != 4 {
		t.Fatalf("killed by %q on day %d", d.KilledBy, d.DayKilled)
	}
	if a.Statistics.Kills != 1 || a.Statistics.Wins != 1 || d.Statistics.Defeats != 1 {
		t.Fatalf("counters: kills=%d wins=%d defeats=%d", a.Statistics.Kills, a.Statistics.Wins, d.Statistics.Defeats)
	}
}

func TestResolveAttackSelf(t *testing.T) {
	a := newTribute(1, 1)
	a.Strength = 40
	a.Dexterity = 10
	a.Health = 30
	res := ResolveAttack(a, a, 2, &scripted{ints: []int{9, 9}})

	if res.Outcome != Kill {
		t.Fatalf("outcome = %s, want kill", res.Outcome)
	}
	if a.Statistics.Kills != 0 {
		t.Fatal("self-kill must not count as a kill")
	}
	if a.Statistics.Defeats != 1 {
		t.Fatalf("defeats = %d, want 1", a.Statistics.Defeats)
	}

	b := newTribute(2, 2)
	b.Strength, b.Dexterity = 10, 10
	ResolveAttack(b, b, 2, &scripted{ints: []int{4, 4}})
	if b.Statistics.Draws != 1 {
		t.Fatalf("self draw recorded %d times, want 1", b.Statistics.Draws)
	}
}

func TestResolveAttackTotalsAreD20PlusStats(t *testing.T) {
	src := &scripted{}
	for atk := 0; atk < 20; atk++ {
		for def := 0; def < 20; def++ {
			a, d := newTribute(1, 1), newTribute(2, 2)
			a.Strength, d.Dexterity = 7, 12
			src.ints = []int{atk, def}
			res := ResolveAttack(a, d, 1, src)
			if res.AttackerTotal != atk+1+7 || res.DefenderTotal != def+1+12 {
				t.Fatalf("totals %d/%d for rolls %d/%d", res.AttackerTotal, res.DefenderTotal, atk+1, def+1)
			}
			if res.AttackerTotal == res.DefenderTotal && res.Outcome != Miss {
				t.Fatalf("equal totals must miss, got %s", res.Outcome)
			}
		}
	}
}

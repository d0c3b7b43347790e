package tributes

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
)

func TestStatusTickEffects(t *testing.T) {
	tcs := []struct {
		name   string
		status Status
		check  func(t *testing.T, tr *Tribute)
	}{
		{"wounded", Status{Kind: Wounded}, func(t *testing.T, tr *Tribute) {
			if tr.Health != 99 {
				t.Fatalf("health = %d, want 99", tr.Health)
			}
		}},
		{"sick", Status{Kind: Sick}, func(t *testing.T, tr *Tribute) {
			if tr.Strength != 9 || tr.Speed != 49 {
				t.Fatalf("strength/speed = %d/%d, want 9/49", tr.Strength, tr.Speed)
			}
		}},
		{"electrocuted", Status{Kind: Electrocuted}, func(t *testing.T, tr *Tribute) {
			if tr.Health != 80 {
				t.Fatalf("health = %d, want 80", tr.Health)
			}
		}},
		{"frozen", Status{Kind: Frozen}, func(t *testing.T, tr *Tribute) {
			if tr.Speed != 49 {
				t.Fatalf("speed = %d, want 49", tr.Speed)
			}
		}},
		{"overheated", Status{Kind: Overheated}, func(t *testing.T, tr *Tribute) {
			if tr.Speed != 49 {
				t.Fatalf("speed = %d, want 49", tr.Speed)
			}
		}},
		{"starving", Status{Kind: Starving}, func(t *testing.T, tr *Tribute) {
			if tr.Strength != 9 {
				t.Fatalf("strength = %d, want 9", tr.Strength)
			}
		}},
		{"dehydrated", Status{Kind: Dehydrated}, func(t *testing.T, tr *Tribute) {
			if tr.Strength != 9 {
				t.Fatalf("strength = %d, want 9", tr.Strength)
			}
		}},
		{"poisoned", Status{Kind: Poisoned}, func(t *testing.T, tr *Tribute) {
			if tr.Sanity != 95 {
				t.Fatalf("sanity = %d, want 95", tr.Sanity)
			}
		}},
		{"infected", Status{Kind: Infected}, func(t *testing.T, tr *Tribute) {
			if tr.Health != 98 || tr.Sanity != 98 {
				t.Fatalf("health/sanity = %d/%d, want 98/98", tr.Health, tr.Sanity)
			}
		}},
		{"drowned", Status{Kind: Drowned}, func(t *testing.T, tr *Tribute) {
			if tr.Health != 98 || tr.Sanity != 98 {
				t.Fatalf("health/sanity = %d/%d, want 98/98", tr.Health, tr.Sanity)
			}
		}},
		{"mauled by bear", MauledBy(Bear), func(t *testing.T, tr *Tribute) {
			if tr.Health != 90 {
				t.Fatalf("health = %d, want 90", tr.Health)
			}
		}},
		{"burned", Status{Kind: Burned}, func(t *testing.T, tr *Tribute) {
			if tr.Health != 95 {
				t.Fatalf("health = %d, want 95", tr.Health)
			}
		}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTribute(1, 1)
			tr.Status = tc.status
			if !ApplyStatusTick(tr, &scripted{}) {
				t.Fatal("expected a direct effect")
			}
			tc.check(t, tr)
		})
	}
}

func TestStatusTickBrokenIsCoinFlip(t *testing.T) {
	tr := newTribute(1, 1)
	tr.Status = Status{Kind: Broken}
	ApplyStatusTick(tr, &scripted{floats: []float64{0.1}})
	if tr.Speed != 45 || tr.Strength != 10 {
		t.Fatalf("expected speed hit, got speed=%d strength=%d", tr.Speed, tr.Strength)
	}

	ApplyStatusTick(tr, &scripted{floats: []float64{0.9}})
	if tr.Strength != 5 {
		t.Fatalf("expected strength hit, got strength=%d", tr.Strength)
	}
}

func TestStatusTickFloorsAtOne(t *testing.T) {
	tr := newTribute(1, 1)
	tr.Strength, tr.Speed = 1, 1
	tr.Status = Status{Kind: Sick}
	ApplyStatusTick(tr, &scripted{})
	if tr.Strength != 1 || tr.Speed != 1 {
		t.Fatalf("expected floor of 1, got %d/%d", tr.Strength, tr.Speed)
	}
}

func TestStatusTickHealthyHasNoDirectEffect(t *testing.T) {
	tr := newTribute(1, 1)
	before := *tr
	if ApplyStatusTick(tr, &scripted{}) {
		t.Fatal("healthy should have no direct effect")
	}
	if tr.Attributes != before.Attributes {
		t.Fatal("healthy tick changed attributes")
	}
}

func TestDeathFromStatusIsRecentlyDead(t *testing.T) {
	tr := newTribute(1, 1)
	tr.Health = 15
	tr.Status = Status{Kind: Electrocuted}
	ApplyStatusTick(tr, &scripted{})
	if tr.Health != 0 {
		t.Fatalf("health = %d, want 0", tr.Health)
	}
	if tr.Status.Kind != RecentlyDead {
		t.Fatalf("status = %s, want recently dead", tr.Status)
	}
}

func TestVitalsSaturate(t *testing.T) {
	tr := newTribute(1, 1)
	tr.Heals(50)
	tr.HealsMental(50)
	if tr.Health != 100 || tr.Sanity != 100 {
		t.Fatalf("expected saturation at 100, got %d/%d", tr.Health, tr.Sanity)
	}
	tr.TakesDamage(500)
	tr.TakesMentalDamage(500)
	if tr.Health != 0 || tr.Sanity != 0 {
		t.Fatalf("expected saturation at 0, got %d/%d", tr.Health, tr.Sanity)
	}
	tr.Heals(10)
	if tr.Health != 0 {
		t.Fatal("the dead do not heal")
	}
}

func TestSufferOnlyWhenAlone(t *testing.T) {
	tr := newTribute(1, 1)
	tr.Bravery = 30
	if loss := Suffer(tr, false, &scripted{floats: []float64{0}}); loss != 0 {
		t.Fatalf("expected no suffering in company, lost %d", loss)
	}
	if loss := Suffer(tr, true, &scripted{floats: []float64{0}}); loss != 7 {
		t.Fatalf("expected loss of 7, got %d", loss)
	}
	if tr.Sanity != 93 {
		t.Fatalf("sanity = %d, want 93", tr.Sanity)
	}

	tr.Bravery = 100
	if loss := Suffer(tr, true, &scripted{floats: []float64{0}}); loss != 0 {
		t.Fatalf("fearless tributes never suffer, lost %d", loss)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	statuses := []Status{{Kind: Healthy}, {Kind: RecentlyDead}, {Kind: Buried}, MauledBy(Wolf), MauledBy(Hippo)}
	for _, s := range statuses {
		got, err := ParseStatus(s.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", s.String(), err)
		}
		if got != s {
			t.Fatalf("round-trip %v -> %v", s, got)
		}
	}

	b, err := json.Marshal(MauledBy(Lion))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"mauled(lion)"` {
		t.Fatalf("unexpected json %s", b)
	}
	var back Status
	if err := json.Unmarshal(b, &back); err != nil || back != MauledBy(Lion) {
		t.Fatalf("unmarshal: %v %v", back, err)
	}

	for _, bad := range []string{"mauled", "mauled(dragon)", "exploded"} {
		if _, err := ParseStatus(bad); !errors.Is(err, ErrUnknownStatus) {
			t.Fatalf("ParseStatus(%q) error = %v, want ErrUnknownStatus", bad, err)
		}
	}
}

func TestStatusOrdering(t *testing.T) {
	ss := []Status{{Kind: Dead}, MauledBy(Bear), {Kind: Healthy}, MauledBy(Squirrel), {Kind: Wounded}}
	sort.Slice(ss, func(i, j int) bool { return ss[i].Less(ss[j]) })
	want := []Status{{Kind: Healthy}, {Kind: Wounded}, MauledBy(Squirrel), MauledBy(Bear), {Kind: Dead}}
	for i := range want {
		if ss[i] != want[i] {
			t.Fatalf("position %d = %v, want %v", i, ss[i], want[i])
		}
	}
}

func TestEventsMapOntoStatuses(t *testing.T) {
	seen := map[StatusKind]bool{}
	for k := 0; k < numEventKinds; k++ {
		e := TributeEvent{Kind: EventKind(k), Animal: Wolf}
		s := e.Status()
		if seen[s.Kind] {
			t.Fatalf("status %s mapped twice", s)
		}
		seen[s.Kind] = true
		if s.IsDead() || s.Kind == Healthy {
			t.Fatalf("event %s maps to non-affliction %s", e, s)
		}
	}
	if got := (TributeEvent{Kind: AnimalAttack, Animal: Tiger}).Status(); got != MauledBy(Tiger) {
		t.Fatalf("animal attack status = %v", got)
	}
}

func TestAvoidsEvent(t *testing.T) {
	tr := newTribute(1, 1)
	tr.Luck = 100
	if !AvoidsEvent(tr, &scripted{floats: []float64{0}}) {
		t.Fatal("perfect luck always avoids events")
	}
	tr.Luck = 30
	if AvoidsEvent(tr, &scripted{floats: []float64{0.5}}) {
		t.Fatal("roll 0.5 under 0.7 hit chance should not avoid")
	}
}

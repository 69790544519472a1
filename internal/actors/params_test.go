package actors

import (
	"testing"

	"toyworld/internal/core"
)

func TestFireParamsOverrides(t *testing.T) {
	p := DefaultFireParams()

	if err := core.ApplyOverride(&p, "fire_stable_threshold", "12"); err != nil {
		t.Fatal(err)
	}
	if err := core.ApplyOverride(&p, "fire_heat_step", "1.5"); err != nil {
		t.Fatal(err)
	}
	if p.StableThreshold != 12 || p.HeatStep != 1.5 {
		t.Fatalf("overrides not applied: %+v", p)
	}
	if err := core.ApplyOverride(&p, "fire_heat_step", "-1"); err == nil {
		t.Fatal("negative heat step should be rejected")
	}
	if err := core.ApplyOverride(&p, "fire_ignited_cadence", "soon"); err == nil {
		t.Fatal("non-numeric value should be rejected")
	}
	if err := core.ApplyOverride(&p, "lava_flux", "1"); err == nil {
		t.Fatal("unknown key should be rejected")
	}

	param, ok := p.Parameters().Lookup("fire_max_heat")
	if !ok || param.Value != "4" {
		t.Fatalf("unexpected max heat parameter %+v", param)
	}
}

func TestRegistryBuildsEveryKind(t *testing.T) {
	env := NewEnv(nil, DefaultFireParams())
	for _, kind := range Kinds() {
		actor, err := New(env, kind, core.Vector2I{X: 2, Y: 3})
		if err != nil {
			t.Fatal(err)
		}
		if actor.Kind() != kind {
			t.Fatalf("factory for %s built %s", kind, actor.Kind())
		}
		if actor.TilesetID() == 0 {
			t.Fatalf("%s has no tile in the default tileset", kind)
		}
	}
	if _, err := New(env, "dragon", core.Vector2I{}); err == nil {
		t.Fatal("unknown kind should fail")
	}
}

func TestAvatarHeadingIsSeeded(t *testing.T) {
	env := NewEnv(nil, DefaultFireParams())
	a := NewAvatar(env, core.Vector2I{})
	b := NewAvatar(env, core.Vector2I{})
	ra, rb := core.NewRNG(99), core.NewRNG(99)
	for i := 0; i < 5; i++ {
		_ = a.Update(nil, ra)
		_ = b.Update(nil, rb)
		if a.Direction() != b.Direction() {
			t.Fatalf("update %d: headings diverged %f vs %f", i, a.Direction(), b.Direction())
		}
	}
	if a.NextUpdateAfter() != AvatarTurnCadence {
		t.Fatalf("avatar should reschedule itself, got %d", a.NextUpdateAfter())
	}
}

package core

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"pkt.systems/tweenly/internal/geom"
	"pkt.systems/tweenly/schema"
)

func tweenSpecs() map[string]schema.TweenSpec {
	return map[string]schema.TweenSpec{
		"rotation":    {Kind: schema.TweenRotation, StartTime: 2, TimeLength: 4, Angle: math.Pi, Centre: schema.Vec2{X: 10, Y: 5}},
		"scale":       {Kind: schema.TweenScale, StartTime: 2, TimeLength: 4, Factor: 3, Centre: schema.Vec2{X: -4, Y: 2}},
		"translation": {Kind: schema.TweenTranslation, StartTime: 2, TimeLength: 4, Vector: schema.Vec2{X: 7, Y: -3}},
	}
}

func TestRotationScenario(t *testing.T) {
	c, _ := newTestController(t)
	g := newFakeGeometry(0, 0)
	s := mustShape(t, c, g, 0, 10)
	centre := schema.Vec2{X: 10, Y: 0}
	tw := mustTween(t, c, s, schema.TweenSpec{Kind: schema.TweenRotation, StartTime: 2, TimeLength: 4, Angle: math.Pi, Centre: centre})

	c.NewClockTime(0)
	assertState(t, g, geometryState{pos: schema.Vec2{}, scale: 1})
	if tw.State() != schema.TweenNotStarted {
		t.Fatalf("expected not started, got %s", tw.State())
	}

	c.NewClockTime(4)
	assertState(t, g, geometryState{pos: geom.RotateAbout(schema.Vec2{}, math.Pi/2, centre), rotation: math.Pi / 2, scale: 1})
	if tw.State() != schema.TweenInProgress {
		t.Fatalf("expected in progress, got %s", tw.State())
	}

	c.NewClockTime(6)
	assertState(t, g, geometryState{pos: schema.Vec2{X: 20, Y: 0}, rotation: math.Pi, scale: 1})
	if tw.State() != schema.TweenFinished {
		t.Fatalf("expected finished, got %s", tw.State())
	}

	c.NewClockTime(0)
	assertState(t, g, geometryState{pos: schema.Vec2{}, scale: 1})
	if tw.State() != schema.TweenNotStarted {
		t.Fatalf("expected not started, got %s", tw.State())
	}
}

func TestGoToTimeIsIdempotent(t *testing.T) {
	for name, spec := range tweenSpecs() {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestController(t)
			g := newFakeGeometry(1, 2)
			s := mustShape(t, c, g, 0, 10)
			tw := mustTween(t, c, s, spec)

			tw.GoToTime(3.3)
			first := g.state()
			updates := g.updates
			tw.GoToTime(3.3)
			if g.state() != first {
				t.Fatalf("expected %+v, got %+v", first, g.state())
			}
			if g.updates != updates {
				t.Fatalf("expected no geometry update, got %d more", g.updates-updates)
			}
		})
	}
}

func TestFinishEqualsGoToEnd(t *testing.T) {
	for name, spec := range tweenSpecs() {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestController(t)
			ga := newFakeGeometry(1, 2)
			gb := newFakeGeometry(1, 2)
			a := mustTween(t, c, mustShape(t, c, ga, 0, 10), spec)
			b := mustTween(t, c, mustShape(t, c, gb, 0, 10), spec)

			for _, at := range []float64{2.5, 3.7, 5.1} {
				a.GoToTime(at)
				b.GoToTime(at)
			}
			a.Finish()
			b.GoToTime(b.EndTime())
			if ga.state() != gb.state() {
				t.Fatalf("expected finish %+v to equal goToTime(end) %+v", ga.state(), gb.state())
			}
			if a.State() != schema.TweenFinished || b.State() != schema.TweenFinished {
				t.Fatalf("expected both finished, got %s and %s", a.State(), b.State())
			}
		})
	}
}

func TestBeforeStartRestoresOriginal(t *testing.T) {
	for name, spec := range tweenSpecs() {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestController(t)
			g := newFakeGeometry(3, -1)
			tw := mustTween(t, c, mustShape(t, c, g, 0, 10), spec)
			original := g.state()

			for _, at := range []float64{2.1, 2.9, 4.4, 5.99, 7, 3.3} {
				tw.GoToTime(at)
			}
			tw.BeforeStart()
			assertState(t, g, original)
			if tw.State() != schema.TweenNotStarted {
				t.Fatalf("expected not started, got %s", tw.State())
			}
		})
	}
}

func TestBeforeStartResetsTrackingExactly(t *testing.T) {
	c, _ := newTestController(t)
	g := newFakeGeometry(0, 0)
	rot := mustTween(t, c, mustShape(t, c, g, 0, 10), tweenSpecs()["rotation"])
	rot.GoToTime(4.2)
	rot.BeforeStart()
	m := rot.motion.(*rotationMotion)
	if m.applied != 0 || m.caused != (schema.Vec2{}) {
		t.Fatalf("expected identity tracking, got applied=%v caused=%v", m.applied, m.caused)
	}

	g2 := newFakeGeometry(0, 0)
	sc := mustTween(t, c, mustShape(t, c, g2, 0, 10), tweenSpecs()["scale"])
	sc.GoToTime(4.2)
	sc.BeforeStart()
	ms := sc.motion.(*scaleMotion)
	if ms.applied != 1 || ms.caused != (schema.Vec2{}) {
		t.Fatalf("expected identity tracking, got applied=%v caused=%v", ms.applied, ms.caused)
	}
}

func TestScaleTweenKeepsPivot(t *testing.T) {
	c, _ := newTestController(t)
	g := newFakeGeometry(2, 2)
	centre := schema.Vec2{X: 6, Y: -2}
	mustTween(t, c, mustShape(t, c, g, 0, 10), schema.TweenSpec{Kind: schema.TweenScale, StartTime: 1, TimeLength: 2, Factor: 0.5, Centre: centre})

	for _, at := range []float64{1.2, 1.4, 1.9, 2.6, 3.5} {
		c.NewClockTime(at)
	}
	assertState(t, g, geometryState{pos: geom.ScaleAbout(schema.Vec2{X: 2, Y: 2}, 0.5, centre), scale: 0.5})
}

func TestTweenRejectsInvalidParameters(t *testing.T) {
	c, _ := newTestController(t)
	s := mustShape(t, c, newFakeGeometry(0, 0), 2, 8)
	cases := []struct {
		name string
		spec schema.TweenSpec
		want error
	}{
		{"zero length", schema.TweenSpec{Kind: schema.TweenTranslation, StartTime: 3, TimeLength: 0}, schema.ErrInvalidTween},
		{"before lifetime", schema.TweenSpec{Kind: schema.TweenTranslation, StartTime: 0, TimeLength: 2}, schema.ErrTweenOutsideLifetime},
		{"after lifetime", schema.TweenSpec{Kind: schema.TweenTranslation, StartTime: 8, TimeLength: 1}, schema.ErrTweenOutsideLifetime},
		{"zero scale", schema.TweenSpec{Kind: schema.TweenScale, StartTime: 3, TimeLength: 1}, schema.ErrInvalidTween},
		{"unknown kind", schema.TweenSpec{Kind: "shear", StartTime: 3, TimeLength: 1}, schema.ErrInvalidTween},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.AddTween(s, tc.spec); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(s.Tweens()) != 0 {
				t.Fatalf("expected no tween, got %d", len(s.Tweens()))
			}
		})
	}
	if undo, _ := c.Actions().Depth(); undo != 1 {
		t.Fatalf("expected only the shape on the history, got %d", undo)
	}
}

func TestTweenPartiallyOutsideLifetimeIsAccepted(t *testing.T) {
	c, _ := newTestController(t)
	s := mustShape(t, c, newFakeGeometry(0, 0), 2, 8)
	if _, err := c.AddTween(s, schema.TweenSpec{Kind: schema.TweenTranslation, StartTime: 7, TimeLength: 4, Vector: schema.Vec2{X: 1}}); err != nil {
		t.Fatalf("expected overlap to be accepted, got %v", err)
	}
}

func within(a, b schema.Vec2, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func fraction(t, start, length float64) float64 {
	return geom.Clamp((t-start)/length, 0, 1)
}

func TestLongScrubMatchesAbsoluteComputation(t *testing.T) {
	c, _ := newTestController(t)
	origin := schema.Vec2{X: 3, Y: 4}
	centre := schema.Vec2{X: -5, Y: 1}
	move := schema.Vec2{X: 12, Y: -6}

	rg := newFakeGeometry(origin.X, origin.Y)
	rs := mustShape(t, c, rg, 0, 10)
	mustTween(t, c, rs, schema.TweenSpec{Kind: schema.TweenRotation, StartTime: 1, TimeLength: 6, Angle: 5 * math.Pi, Centre: centre})
	mustTween(t, c, rs, schema.TweenSpec{Kind: schema.TweenTranslation, StartTime: 3, TimeLength: 5, Vector: move})

	sg := newFakeGeometry(origin.X, origin.Y)
	ss := mustShape(t, c, sg, 0, 10)
	mustTween(t, c, ss, schema.TweenSpec{Kind: schema.TweenScale, StartTime: 2, TimeLength: 3, Factor: 4, Centre: centre})
	mustTween(t, c, ss, schema.TweenSpec{Kind: schema.TweenTranslation, StartTime: 0.5, TimeLength: 8, Vector: move})

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 20000; i++ {
		at := rng.Float64() * 9.9
		if i%97 == 0 {
			at = float64(rng.IntN(10))
		}
		c.NewClockTime(at)

		angle := 5 * math.Pi * fraction(at, 1, 6)
		wantR := geom.RotateAbout(origin, angle, centre).Add(move.Mul(fraction(at, 3, 5)))
		if !within(rg.pos, wantR, 1e-6) || math.Abs(rg.rotation-angle) > 1e-6 {
			t.Fatalf("step %d at %v: rotation drifted: got %v/%v, want %v/%v", i, at, rg.pos, rg.rotation, wantR, angle)
		}

		factor := 1 + 3*fraction(at, 2, 3)
		wantS := geom.ScaleAbout(origin, factor, centre).Add(move.Mul(fraction(at, 0.5, 8)))
		if !within(sg.pos, wantS, 1e-6) || math.Abs(sg.scale-factor) > 1e-6 {
			t.Fatalf("step %d at %v: scale drifted: got %v/%v, want %v/%v", i, at, sg.pos, sg.scale, wantS, factor)
		}
	}

	c.NewClockTime(0)
	if !within(rg.pos, origin, 1e-9) || !within(sg.pos, origin, 1e-9) {
		t.Fatalf("expected both shapes back at origin, got %v and %v", rg.pos, sg.pos)
	}
}

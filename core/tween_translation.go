package core

import "pkt.systems/tweenly/schema"

type translationMotion struct {
	total   schema.Vec2
	applied schema.Vec2
}

func (m *translationMotion) goTo(g Geometry, f float64) bool {
	return m.moveTo(g, m.total.Mul(f))
}

func (m *translationMotion) finish(g Geometry) bool {
	return m.moveTo(g, m.total)
}

func (m *translationMotion) rewind(g Geometry) bool {
	return m.moveTo(g, schema.Vec2{})
}

func (m *translationMotion) moveTo(g Geometry, target schema.Vec2) bool {
	delta := target.Sub(m.applied)
	if delta == (schema.Vec2{}) {
		return false
	}
	g.Translate(delta)
	g.UpdateGeometry()
	m.applied = target
	return true
}

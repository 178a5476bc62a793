package core

import "pkt.systems/tweenly/schema"

// rotationMotion rotates about a centre given relative to the shape. The
// translation the rotation itself causes is tracked and subtracted so the
// pivot stays where it was requested.
type rotationMotion struct {
	total          float64
	relativeCentre schema.Vec2
	applied        float64
	caused         schema.Vec2
}

func (m *rotationMotion) goTo(g Geometry, f float64) bool {
	return m.rotateTo(g, m.total*f)
}

func (m *rotationMotion) finish(g Geometry) bool {
	return m.rotateTo(g, m.total)
}

func (m *rotationMotion) rewind(g Geometry) bool {
	moved := m.rotateTo(g, 0)
	m.caused = schema.Vec2{}
	return moved
}

func (m *rotationMotion) rotateTo(g Geometry, target float64) bool {
	delta := target - m.applied
	if delta == 0 {
		return false
	}
	before := g.Position()
	g.Rotate(delta, before.Add(m.relativeCentre.Sub(m.caused)))
	g.UpdateGeometry()
	m.caused = m.caused.Add(g.Position().Sub(before))
	m.applied = target
	return true
}

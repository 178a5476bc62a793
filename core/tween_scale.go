package core

import "pkt.systems/tweenly/schema"

// scaleMotion interpolates the scale factor linearly from 1 to total and
// applies the ratio to the previously applied factor on each step.
type scaleMotion struct {
	total          float64
	relativeCentre schema.Vec2
	applied        float64
	caused         schema.Vec2
}

func (m *scaleMotion) goTo(g Geometry, f float64) bool {
	return m.scaleTo(g, 1+(m.total-1)*f)
}

func (m *scaleMotion) finish(g Geometry) bool {
	return m.scaleTo(g, m.total)
}

func (m *scaleMotion) rewind(g Geometry) bool {
	moved := m.scaleTo(g, 1)
	m.caused = schema.Vec2{}
	return moved
}

func (m *scaleMotion) scaleTo(g Geometry, target float64) bool {
	if target == m.applied {
		return false
	}
	before := g.Position()
	g.Scale(target/m.applied, before.Add(m.relativeCentre.Sub(m.caused)))
	g.UpdateGeometry()
	m.caused = m.caused.Add(g.Position().Sub(before))
	m.applied = target
	return true
}

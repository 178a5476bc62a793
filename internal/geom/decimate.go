package geom

import (
	"math"

	"pkt.systems/tweenly/schema"
)

// Decimate simplifies a polyline with the Ramer-Douglas-Peucker algorithm,
// keeping both endpoints and any point further than epsilon from the chord.
func Decimate(line []schema.Vec2, epsilon float64) []schema.Vec2 {
	if len(line) <= 2 {
		return append([]schema.Vec2(nil), line...)
	}
	out := []schema.Vec2{line[0]}
	out = append(out, decimateInner(line, epsilon)...)
	return append(out, line[len(line)-1])
}

// decimateInner returns the interior points of line worth keeping.
func decimateInner(line []schema.Vec2, epsilon float64) []schema.Vec2 {
	if len(line) <= 2 {
		return nil
	}
	first := line[0]
	last := line[len(line)-1]
	chord := Distance(first, last)

	greatest := -1.0
	index := 0
	for i := 1; i < len(line)-1; i++ {
		d := segmentDistance(line[i], first, last, chord)
		if d > greatest {
			greatest = d
			index = i
		}
	}
	if greatest < epsilon {
		return nil
	}
	out := decimateInner(line[:index+1], epsilon)
	out = append(out, line[index])
	return append(out, decimateInner(line[index:], epsilon)...)
}

// segmentDistance is the distance from p to the segment a-b.
func segmentDistance(p, a, b schema.Vec2, length float64) float64 {
	if length == 0 {
		return Distance(p, a)
	}
	ab := b.Sub(a)
	t := Clamp(Dot(p.Sub(a), ab)/(length*length), 0, 1)
	closest := a.Add(ab.Mul(t))
	return math.Abs(Distance(p, closest))
}

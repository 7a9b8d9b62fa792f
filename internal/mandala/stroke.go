package mandala

// Segment is one straight piece of a stroke.
type Segment struct {
	From, To Point
}

// ExtendStroke replicates the pointer move prev -> curr into every sector.
// For sector i the segment and its left-right mirror (reflected across the
// vertical line through the centre) are both rotated by i sector angles
// about the centre, giving 2*Sectors segments, original first.
func ExtendStroke(prev, curr Point, g Geometry) []Segment {
	mirror := MirrorX(g.Center.X)
	theta := g.SectorAngle()
	segs := make([]Segment, 0, 2*g.Sectors)
	for i := 0; i < g.Sectors; i++ {
		rot := Rotation(g.Center, float64(i)*theta)
		mrot := Compose(mirror, rot)
		segs = append(segs,
			Segment{From: Apply(rot, prev), To: Apply(rot, curr)},
			Segment{From: Apply(mrot, prev), To: Apply(mrot, curr)},
		)
	}
	return segs
}

package mesh

// ScoreRecord holds the selection metrics of one component. Defined is false
// when the component has no faces or zero surface area, which keeps an
// unmeasurable component distinguishable from one that legitimately scores
// zero. Volume is reported as computed and may be zero or negative for open
// or inconsistently wound components.
type ScoreRecord struct {
	SurfaceArea float64
	Volume      float64
	Defined     bool
}

// Ratio returns the surface-to-volume ratio. It is only meaningful when the
// record is Defined and the volume is positive.
func (s ScoreRecord) Ratio() float64 {
	return s.SurfaceArea / s.Volume
}

// ScoreOf computes the selection metrics of a mesh
func ScoreOf(m *Mesh) ScoreRecord {
	if len(m.Faces) == 0 {
		return ScoreRecord{}
	}
	area := m.SurfaceArea()
	return ScoreRecord{
		SurfaceArea: area,
		Volume:      m.Volume(),
		Defined:     area > 0,
	}
}

// ScoreAll scores every component in the set, index-aligned with the input
func ScoreAll(components []*Component) []ScoreRecord {
	scores := make([]ScoreRecord, len(components))
	for i, c := range components {
		scores[i] = ScoreOf(c.Mesh)
	}
	return scores
}

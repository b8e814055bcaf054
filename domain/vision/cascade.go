package vision

// DefaultThreshold is the minimum score treated as a detection.
const DefaultThreshold = 0.96

// Hit identifies the template that satisfied a cascade.
type Hit struct {
	Index    int
	Template *Template
	Result   MatchResult
}

// Decision is the full outcome of a cascade evaluation. Scores holds one
// entry per evaluated template; templates after the hit are not evaluated.
type Decision struct {
	Hit     Hit
	Matched bool
	Scores  []float64
}

// Evaluate matches templates against s in order and stops at the first one
// whose best score reaches its threshold. A template's own Threshold takes
// precedence over threshold when set.
func Evaluate(s *Snapshot, templates []*Template, threshold float64) Decision {
	m := NewMatcher(s)
	d := Decision{Scores: make([]float64, 0, len(templates))}
	for i, t := range templates {
		r := m.Match(t)
		d.Scores = append(d.Scores, r.Score)
		limit := threshold
		if t != nil && t.Threshold > 0 {
			limit = t.Threshold
		}
		if r.Score >= limit {
			d.Hit = Hit{Index: i, Template: t, Result: r}
			d.Matched = true
			return d
		}
	}
	return d
}

// MatchFirst reports the first template in order whose score reaches
// threshold.
func MatchFirst(s *Snapshot, templates []*Template, threshold float64) (Hit, bool) {
	d := Evaluate(s, templates, threshold)
	return d.Hit, d.Matched
}

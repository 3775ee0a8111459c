package result

import (
	"math"
	"sort"
)

// Level bands for the detail view.
const (
	LevelLow      = "Low"
	LevelModerate = "Moderate"
	LevelHigh     = "High"
)

// Band thresholds, inclusive upper bounds.
const (
	LowMax      = 30.0
	ModerateMax = 70.0
)

// DefaultMatchLabel names a source that carries neither source nor url.
const DefaultMatchLabel = "Source"

// DisplayedMatches is how many sources the detail view lists.
const DisplayedMatches = 5

// ComponentScores splits the overall score into display buckets.
// INVARIANT: High >= 0.
type ComponentScores struct {
	Exact    float64
	Minimal  float64
	Moderate float64
	High     float64
}

// Match is one normalized web source.
type Match struct {
	Label string
	Score float64
}

// Normalized is the single display model both server shapes reduce to.
// INVARIANT: every float is finite.
type Normalized struct {
	ResultID   ID
	Score      float64
	Level      string
	IsInternet bool
	Components ComponentScores
	Matches    []Match
	File1Name  string
	File2Name  string
	CreatedAt  string
}

// Band maps a score to its detail-view level. The server's own level field
// is kept separately for list views and never fed through here.
func Band(score float64) string {
	switch {
	case score <= LowMax:
		return LevelLow
	case score <= ModerateMax:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Normalize reduces either server shape to the display model.
// PRE: raw may be nil
// POST: result is fully populated; missing or non-numeric scores read as 0,
// Matches is non-nil, Components.High = max(0, Score - Components.Exact)
func Normalize(raw Raw) Normalized {
	var (
		env                             Envelope
		score, exact, jaccard, sequence Number
		sources                         []SourceMatch
	)
	switch r := raw.(type) {
	case *CompareResult:
		env = r.Envelope
		score = r.PlagiarismScore
		exact = r.TFIDFScore
		jaccard = r.JaccardScore
		sequence = r.SequenceScore
	case *InternetResult:
		env = r.Envelope
		score = r.PlagiarismScore.Coalesce(r.OverallScore)
		exact = r.TFIDFScore.Coalesce(r.OverallScore)
		jaccard = r.JaccardScore
		sequence = r.SequenceScore
		sources = r.Matches
	}

	n := Normalized{
		ResultID:   env.ResultID,
		Score:      score.OrZero(),
		IsInternet: env.File2Name == WebSearchName,
		File1Name:  env.File1Name,
		File2Name:  env.File2Name,
		CreatedAt:  env.CreatedAt,
		Matches:    make([]Match, 0, len(sources)),
	}
	n.Components = ComponentScores{
		Exact:    exact.OrZero(),
		Minimal:  jaccard.OrZero(),
		Moderate: sequence.OrZero(),
		High:     math.Max(0, n.Score-exact.OrZero()),
	}
	n.Level = Band(n.Score)
	for _, s := range sources {
		n.Matches = append(n.Matches, Match{Label: matchLabel(s), Score: s.Score.OrZero()})
	}
	return n
}

func matchLabel(s SourceMatch) string {
	switch {
	case s.Source != "":
		return s.Source
	case s.URL != "":
		return s.URL
	default:
		return DefaultMatchLabel
	}
}

// TopMatches returns up to n matches, highest score first. Ties keep their
// server order. The input slice is not modified.
func TopMatches(matches []Match, n int) []Match {
	out := append([]Match(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

package result

// Analytics is the account-wide summary shown on the dashboard.
type Analytics struct {
	TotalChecks       int            `json:"total_checks"`
	AverageScore      Number         `json:"average_score"`
	HighestScore      Number         `json:"highest_score"`
	LevelDistribution map[string]int `json:"level_distribution"`
}

// LevelCount is one bar of the level distribution.
type LevelCount struct {
	Level string
	Count int
}

// distributionOrder is the server's bucket naming for the distribution.
var distributionOrder = []string{"Low", "Medium", "High"}

// Distribution returns the buckets in display order, zero-filled.
func (a Analytics) Distribution() []LevelCount {
	out := make([]LevelCount, 0, len(distributionOrder))
	for _, l := range distributionOrder {
		out = append(out, LevelCount{Level: l, Count: a.LevelDistribution[l]})
	}
	return out
}

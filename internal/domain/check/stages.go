package check

// StageStatus is the display status of one cosmetic stage.
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageActive  StageStatus = "active"
	StageDone    StageStatus = "done"
)

// StageNames are the cosmetic analysis stages, in display order.
var StageNames = []string{"Preprocessing", "Lexical Analysis", "Tokenization"}

// Stage is one row of the progress indicator.
type Stage struct {
	Name   string
	Status StageStatus
}

// Progress returns the indicator after tick ticks of PROCESSING.
// Tick 0 is the entry state: the first stage done, the second active.
// A negative tick is the idle indicator with every stage pending.
// Ticks past the last stage report every stage done.
func Progress(tick int) []Stage {
	out := make([]Stage, len(StageNames))
	for i, name := range StageNames {
		status := StagePending
		switch {
		case tick < 0:
		case i <= tick:
			status = StageDone
		case i == tick+1:
			status = StageActive
		}
		out[i] = Stage{Name: name, Status: status}
	}
	return out
}

// FinalTick is the tick at which every stage reads done.
func FinalTick() int {
	return len(StageNames) - 1
}

package segments

import "fmt"

// Candidate is a contiguous sub-range of a source video selected for the
// montage. Produced by the selector, consumed once by the assembler to
// extract a physical segment file.
type Candidate struct {
	SourcePath string
	StartTime  float64
	Duration   float64
}

// End returns the exclusive end time of the candidate.
func (c Candidate) End() float64 {
	return c.StartTime + c.Duration
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s@%.2fs+%.2fs", c.SourcePath, c.StartTime, c.Duration)
}

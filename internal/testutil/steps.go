package testutil

// StepCounter numbers scenario steps. The first call to Next returns 1.
//
// Not safe for concurrent use; a scenario runs on one goroutine.
type StepCounter struct {
	n int
}

// Next advances and returns the step number.
func (c *StepCounter) Next() int {
	c.n++
	return c.n
}

package telemetry

import (
	"gonum.org/v1/gonum/stat"
)

// WindowStats summarizes a window of simulation steps. One CSV row each.
type WindowStats struct {
	Window        int     `csv:"window"`
	SimTimeEnd    float64 `csv:"sim_time_end"`
	Steps         int     `csv:"steps"`
	FlowsAlive    int     `csv:"flows_alive"`
	TimersPending int     `csv:"timers_pending"`
	Entities      int     `csv:"entities"`
	Started       int     `csv:"started"`
	Woken         int     `csv:"woken"`
	Completed     int     `csv:"completed"`
	Cancelled     uint64  `csv:"cancelled"`
	Commits       int     `csv:"commits"`
	Aborts        int     `csv:"aborts"`
	Moves         int     `csv:"moves"`
	WakesMean     float64 `csv:"wakes_mean"`
	WakesStdDev   float64 `csv:"wakes_std"`
}

// StepSample is what the scheduler and world report after one step.
type StepSample struct {
	Now        float64
	FlowsAlive int
	Timers     int
	Entities   int
	Started    int
	Woken      int
	Completed  int
	Cancelled  uint64 // cumulative
}

// Collector accumulates step samples into windows.
type Collector struct {
	window int
	index  int

	wakes     []float64
	started   int
	completed int
	commits   int
	aborts    int
	moves     int

	cancelledBase uint64
	last          StepSample
}

// NewCollector emits a window every window steps (at least 1).
func NewCollector(window int) *Collector {
	if window < 1 {
		window = 1
	}
	return &Collector{window: window, wakes: make([]float64, 0, window)}
}

func (c *Collector) AddCommit()     { c.commits++ }
func (c *Collector) AddAbort()      { c.aborts++ }
func (c *Collector) AddMoves(n int) { c.moves += n }

// Record adds one step. It returns the finished window when this step
// completes one.
func (c *Collector) Record(s StepSample) (WindowStats, bool) {
	c.wakes = append(c.wakes, float64(s.Woken))
	c.started += s.Started
	c.completed += s.Completed
	c.last = s
	if len(c.wakes) < c.window {
		return WindowStats{}, false
	}
	return c.Flush(), true
}

// Flush closes the current window even if it is short. It returns a zero
// WindowStats with Steps == 0 when nothing was recorded.
func (c *Collector) Flush() WindowStats {
	if len(c.wakes) == 0 {
		return WindowStats{}
	}
	woken := 0
	for _, w := range c.wakes {
		woken += int(w)
	}
	mean, std := stat.MeanStdDev(c.wakes, nil)
	if len(c.wakes) < 2 {
		std = 0
	}
	ws := WindowStats{
		Window:        c.index,
		SimTimeEnd:    c.last.Now,
		Steps:         len(c.wakes),
		FlowsAlive:    c.last.FlowsAlive,
		TimersPending: c.last.Timers,
		Entities:      c.last.Entities,
		Started:       c.started,
		Woken:         woken,
		Completed:     c.completed,
		Cancelled:     c.last.Cancelled - c.cancelledBase,
		Commits:       c.commits,
		Aborts:        c.aborts,
		Moves:         c.moves,
		WakesMean:     mean,
		WakesStdDev:   std,
	}
	c.index++
	c.cancelledBase = c.last.Cancelled
	c.wakes = c.wakes[:0]
	c.started, c.completed = 0, 0
	c.commits, c.aborts, c.moves = 0, 0, 0
	return ws
}

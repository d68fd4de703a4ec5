package system

import (
	"go.uber.org/zap"

	"github.com/odnodvorets/flowsim/internal/core/ecs"
	"github.com/odnodvorets/flowsim/internal/core/event"
	coresys "github.com/odnodvorets/flowsim/internal/core/system"
	"github.com/odnodvorets/flowsim/internal/flow"
	"github.com/odnodvorets/flowsim/internal/telemetry"
)

// TelemetrySystem samples the scheduler every step and writes one CSV row per
// window. Phase 3 (PostUpdate).
type TelemetrySystem struct {
	world     *ecs.World
	sched     *flow.Scheduler
	flows     *FlowSystem
	collector *telemetry.Collector
	out       *telemetry.OutputManager
	log       *zap.Logger
	windows   []telemetry.WindowStats
}

// NewTelemetrySystem subscribes to action and movement events on bus. out
// may be nil, in which case windows are only kept in memory.
func NewTelemetrySystem(world *ecs.World, sched *flow.Scheduler, flows *FlowSystem, bus *event.Bus, window int, out *telemetry.OutputManager, log *zap.Logger) *TelemetrySystem {
	s := &TelemetrySystem{
		world:     world,
		sched:     sched,
		flows:     flows,
		collector: telemetry.NewCollector(window),
		out:       out,
		log:       log,
	}
	event.Subscribe(bus, func(event.ActionCommitted) { s.collector.AddCommit() })
	event.Subscribe(bus, func(event.ActionAborted) { s.collector.AddAbort() })
	event.Subscribe(bus, func(event.Moved) { s.collector.AddMoves(1) })
	return s
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *TelemetrySystem) Update(_ float64) {
	st := s.flows.Last()
	ws, ok := s.collector.Record(telemetry.StepSample{
		Now:        st.Now,
		FlowsAlive: s.sched.Len(),
		Timers:     s.sched.Timers().Len(),
		Entities:   s.world.Pool().Len(),
		Started:    st.Started,
		Woken:      st.Woken,
		Completed:  st.Completed,
		Cancelled:  s.sched.Totals().Cancelled,
	})
	if ok {
		s.emit(ws)
	}
}

// Flush writes the partial last window. Called at shutdown.
func (s *TelemetrySystem) Flush() {
	if ws := s.collector.Flush(); ws.Steps > 0 {
		s.emit(ws)
	}
}

// Windows returns every window emitted so far.
func (s *TelemetrySystem) Windows() []telemetry.WindowStats { return s.windows }

func (s *TelemetrySystem) emit(ws telemetry.WindowStats) {
	s.windows = append(s.windows, ws)
	if err := s.out.WriteTelemetry(ws); err != nil {
		s.log.Error("telemetry write failed", zap.Error(err))
		return
	}
	s.log.Debug("telemetry window",
		zap.Int("window", ws.Window),
		zap.Float64("sim_time", ws.SimTimeEnd),
		zap.Int("flows", ws.FlowsAlive),
		zap.Float64("wakes_mean", ws.WakesMean),
	)
}

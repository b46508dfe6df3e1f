package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/glyphon/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type movementSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Movers.Values() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type spawnerSystem struct {
	Positions ecs.Query[struct{ *Position }]
	counts    []int
}

func (s *spawnerSystem) Execute(frame *ecs.UpdateFrame) {
	s.counts = append(s.counts, s.Positions.Len())
	frame.Commands.Spawn(Position{})
}

type frameCounter struct {
	Frames int
}

type counterSystem struct {
	Counter ecs.Singleton[frameCounter]
}

func (s *counterSystem) Execute(*ecs.UpdateFrame) {
	s.Counter.Get().Frames++
}

func TestSchedulerRunsQueries(t *testing.T) {
	w := newTestWorld()
	e := spawn(w, Position{}, Velocity{DX: 2, DY: 1})

	scheduler := ecs.NewScheduler(w, nil)
	scheduler.Register(&movementSystem{})
	scheduler.Once(0.5)
	scheduler.Once(0.5)

	pos, err := ecs.GetComponent[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 2, Y: 1}, *pos)
}

func TestSchedulerFlushesBetweenFrames(t *testing.T) {
	w := newTestWorld()
	sys := &spawnerSystem{}

	scheduler := ecs.NewScheduler(w, nil)
	scheduler.Register(sys)
	for i := 0; i < 3; i++ {
		scheduler.Once(0.016)
	}

	assert.Equal(t, []int{0, 1, 2}, sys.counts)
	assert.Equal(t, 3, w.EntityCount())
}

func TestSchedulerSingletons(t *testing.T) {
	w := newTestWorld()
	ecs.NewSingleton[frameCounter](w)

	scheduler := ecs.NewScheduler(w, nil)
	scheduler.Register(&counterSystem{})
	scheduler.Once(0.1)
	scheduler.Once(0.1)

	var counter *frameCounter
	require.True(t, ecs.ReadSingleton(w, &counter))
	assert.Equal(t, 2, counter.Frames)
}

func TestSchedulerStats(t *testing.T) {
	w := newTestWorld()
	scheduler := ecs.NewScheduler(w, nil)
	scheduler.Register(&movementSystem{})
	scheduler.Register(ecs.SystemFunc(func(*ecs.UpdateFrame) {}))

	for i := 0; i < 4; i++ {
		scheduler.Once(0.016)
	}

	stats := scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, int64(8), stats.TotalExecutions)
	assert.Equal(t, "movementSystem", stats.Systems[0].Name)
	assert.Equal(t, "SystemFunc", stats.Systems[1].Name)
	for _, s := range stats.Systems {
		assert.Equal(t, int64(4), s.ExecutionCount)
		assert.LessOrEqual(t, s.MinDuration, s.MaxDuration)
	}
}

func TestSchedulerLogsFlushErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := newTestWorld()

	type unknown struct{}
	scheduler := ecs.NewScheduler(w, zap.New(core))
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		frame.Commands.Spawn(unknown{})
	}))
	scheduler.Once(0.016)

	require.Equal(t, 1, logs.FilterMessage("command flush failed").Len())
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	w := newTestWorld()
	ticks := 0
	scheduler := ecs.NewScheduler(w, nil)
	scheduler.Register(ecs.SystemFunc(func(*ecs.UpdateFrame) { ticks++ }))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx, 5*time.Millisecond)

	assert.Positive(t, ticks)
}

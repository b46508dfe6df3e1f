package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/glyphon/ecs"
	"github.com/plus3/glyphon/render"
)

// PerformanceWindow shows frame timing, world storage counts, scheduler
// timings and the render backend's counters.
type PerformanceWindow struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	timer         *FrameTimer

	scheduler *ecs.Scheduler
	backend   *render.Backend
}

func NewPerformanceWindow(historyFrames int, scheduler *ecs.Scheduler, backend *render.Backend) *PerformanceWindow {
	if historyFrames <= 0 {
		historyFrames = 1
	}
	return &PerformanceWindow{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		timer:         NewFrameTimer(),
		scheduler:     scheduler,
		backend:       backend,
	}
}

// Record adds one frame time, in seconds, to the history ring.
func (ps *PerformanceWindow) Record(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// AverageFrameTime returns the mean of the history in milliseconds.
func (ps *PerformanceWindow) AverageFrameTime() float32 {
	var sum float32
	for _, ft := range ps.frameHistory {
		sum += ft
	}
	return sum / float32(ps.historyFrames)
}

func (ps *PerformanceWindow) Render(world *ecs.World) {
	ps.Record(ps.timer.GetDeltaTime())

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 300), imgui.CondOnce)
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := world.CollectStats()

	imgui.Text(fmt.Sprintf("Entities: %d (capacity %d)", stats.EntityCount, stats.EntityCapacity))
	imgui.Text(fmt.Sprintf("Component Types: %d", stats.ComponentTypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	avg := ps.AverageFrameTime()
	fps := float32(0)
	if avg > 0 {
		fps = 1000.0 / avg
	}
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, fps))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if ps.backend != nil && imgui.TreeNodeStr("Renderer") {
		last := ps.backend.Stats()
		diag := ps.backend.Diagnostics()
		imgui.Text(fmt.Sprintf("Commands: %d  Draw Calls: %d", last.Commands, last.DrawCalls))
		imgui.Text(fmt.Sprintf("Vertices: %d  Skipped: %d", last.Vertices, last.Skipped))
		imgui.Separator()
		imgui.Text(fmt.Sprintf("Executes: %d", diag.Executes))
		imgui.Text(fmt.Sprintf("Unknown Shader: %d  Unknown Texture: %d", diag.UnknownShader, diag.UnknownTexture))
		imgui.Text(fmt.Sprintf("Unsupported: %d  Malformed: %d", diag.Unsupported, diag.MalformedVertices))
		imgui.Text(fmt.Sprintf("Device Errors: %d  Shader Failures: %d", diag.DeviceErrors, diag.ShaderFailures))
		imgui.Text(fmt.Sprintf("Tile Maps Skipped: %d", diag.TileMapsSkipped))
		imgui.TreePop()
	}

	if ps.scheduler != nil && imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, sys := range ps.scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Storage Details") {
		for _, s := range stats.StorageBreakdown {
			imgui.BulletText(fmt.Sprintf("%s: %d", s.ComponentType, s.Count))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singleton Details") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}

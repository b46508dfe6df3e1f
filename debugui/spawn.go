package debugui

import (
	"fmt"

	"github.com/plus3/glyphon/ecs"
	"github.com/plus3/glyphon/render"
)

// Windows bundles the debug windows spawned into a world.
type Windows struct {
	Performance *PerformanceWindow
	Entities    *EntityBrowser
	Inspector   *ComponentInspector
	Queries     *QueryDebugger
}

// Spawn creates the debug windows and one ImguiItem entity per window.
// scheduler and backend may be nil; their sections are then hidden.
func Spawn(world *ecs.World, scheduler *ecs.Scheduler, backend *render.Backend) (*Windows, error) {
	w := &Windows{
		Performance: NewPerformanceWindow(120, scheduler, backend),
		Entities:    NewEntityBrowser(100),
		Inspector:   NewComponentInspector(),
		Queries:     NewQueryDebugger(),
	}

	items := []func(){
		func() { w.Performance.Render(world) },
		func() {
			w.Entities.Render(world)
			selected, ok := w.Entities.Selected()
			w.Inspector.Render(world, selected, ok)
		},
		func() { w.Queries.Render(world) },
	}
	for _, render := range items {
		e := world.CreateEntity()
		if _, err := ecs.AddComponent(world, e, ImguiItem{Render: render}); err != nil {
			return nil, fmt.Errorf("debugui: spawn window: %w", err)
		}
	}
	ecs.NewSingleton[ImguiInputState](world)
	return w, nil
}

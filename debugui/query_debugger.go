package debugui

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/glyphon/ecs"
)

// QueryDebugger counts the entities that carry every selected component type.
type QueryDebugger struct {
	selectedComponentTypes map[string]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{
		selectedComponentTypes: make(map[string]bool),
	}
}

func (qd *QueryDebugger) Render(world *ecs.World) {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 320), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 260), imgui.CondOnce)
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedComponentTypes = make(map[string]bool)
	}

	for _, s := range world.CollectStats().StorageBreakdown {
		selected := qd.selectedComponentTypes[s.ComponentType]
		if imgui.Checkbox(s.ComponentType, &selected) {
			qd.Toggle(s.ComponentType, selected)
		}
	}

	imgui.Separator()

	types := qd.selectedTypes(world)
	if len(types) == 0 {
		imgui.Text("No component types selected")
		return
	}

	matches := MatchingEntities(world, types)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))
	for i, e := range matches {
		if i == 20 {
			imgui.Text(fmt.Sprintf("... and %d more", len(matches)-i))
			break
		}
		imgui.BulletText(e.String())
	}
}

func (qd *QueryDebugger) Toggle(typeName string, selected bool) {
	if selected {
		qd.selectedComponentTypes[typeName] = true
	} else {
		delete(qd.selectedComponentTypes, typeName)
	}
}

func (qd *QueryDebugger) selectedTypes(world *ecs.World) []reflect.Type {
	names := make([]string, 0, len(qd.selectedComponentTypes))
	for name := range qd.selectedComponentTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	types := make([]reflect.Type, 0, len(names))
	for _, name := range names {
		if t, ok := world.Registry().Lookup(name); ok {
			types = append(types, t)
		}
	}
	return types
}

// MatchingEntities returns the live entities holding every type in types.
func MatchingEntities(world *ecs.World, types []reflect.Type) []ecs.Entity {
	var matches []ecs.Entity
	for e := range world.Entities() {
		ok := true
		for _, t := range types {
			if world.GetComponentAny(e, t) == nil {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, e)
		}
	}
	return matches
}

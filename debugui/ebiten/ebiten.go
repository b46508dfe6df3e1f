// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	hebiten "github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/glyphon/debugui"
	"github.com/plus3/glyphon/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Overlay runs the ImguiSystem over a world inside an ImGui frame and draws
// the result over the game screen. It satisfies ebitenctx.Overlay.
type Overlay struct {
	backend   ImguiBackend
	scheduler *ecs.Scheduler
}

// NewOverlay creates the ImGui backend for an already configured ebiten
// window. The world must have the debugui components registered.
func NewOverlay(title string, width, height int, world *ecs.World) *Overlay {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	ecs.NewSingleton[ImguiBackend](world, ImguiBackend{EbitenBackend: backend})

	scheduler := ecs.NewScheduler(world, nil)
	scheduler.Register(&debugui.ImguiSystem{})

	return &Overlay{
		backend:   ImguiBackend{EbitenBackend: backend},
		scheduler: scheduler,
	}
}

func (o *Overlay) Update(dt float64) {
	o.backend.BeginFrame()
	o.scheduler.Once(dt)
	o.backend.EndFrame()
}

func (o *Overlay) Draw(screen *hebiten.Image) {
	o.backend.EbitenBackend.Draw(screen)
}

func (o *Overlay) Layout(width, height int) {
	o.backend.EbitenBackend.Layout(width, height)
}

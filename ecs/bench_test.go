package ecs_test

import (
	"testing"

	"github.com/plus3/glyphon/ecs"
)

func BenchmarkCreateWithComponents(b *testing.B) {
	w := newTestWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := w.CreateEntity()
		ecs.AddComponent(w, e, Position{X: 1.0, Y: 2.0})
		ecs.AddComponent(w, e, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkDestroy(b *testing.B) {
	w := newTestWorld()

	ids := make([]ecs.Entity, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = spawn(w, Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.DestroyEntity(ids[i])
	}
}

func BenchmarkGetComponent(b *testing.B) {
	w := newTestWorld()
	e := spawn(w, Position{X: 1.0, Y: 2.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.GetComponent[Position](w, e)
	}
}

func benchWorld(n int) *ecs.World {
	w := newTestWorld()
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			spawn(w, Position{X: float32(i)}, Velocity{DX: 1})
		} else {
			spawn(w, Position{X: float32(i)})
		}
	}
	return w
}

func BenchmarkViewIter(b *testing.B) {
	w := benchWorld(10000)
	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for item := range view.Values() {
			item.Position.X += item.Velocity.DX
		}
	}
}

func BenchmarkForEach2(b *testing.B) {
	w := benchWorld(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.ForEach2(w, func(_ ecs.Entity, p *Position, v *Velocity) {
			p.X += v.DX
		})
	}
}

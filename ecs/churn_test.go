package ecs_test

import (
	"math/rand"
	"testing"

	"github.com/plus3/glyphon/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type churnState struct {
	pos    *Position
	vel    *Velocity
	health *Health
}

// TestWorldChurn drives a world through a seeded mix of creates, destroys,
// adds and removes, checking it against a plain map after every step.
func TestWorldChurn(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		rng := rand.New(rand.NewSource(seed))
		w := newTestWorld()
		live := map[ecs.Entity]*churnState{}
		var handles, dead []ecs.Entity

		pick := func() (ecs.Entity, bool) {
			if len(handles) == 0 {
				return ecs.Entity{}, false
			}
			return handles[rng.Intn(len(handles))], true
		}
		drop := func(e ecs.Entity) {
			for i, h := range handles {
				if h == e {
					handles[i] = handles[len(handles)-1]
					handles = handles[:len(handles)-1]
					return
				}
			}
		}

		for step := 0; step < 2000; step++ {
			switch op := rng.Intn(10); {
			case op < 3:
				e := w.CreateEntity()
				require.NotContains(t, live, e, "seed %d step %d: handle reused while live", seed, step)
				live[e] = &churnState{}
				handles = append(handles, e)
			case op < 5:
				e, ok := pick()
				if !ok {
					continue
				}
				w.DestroyEntity(e)
				w.DestroyEntity(e)
				delete(live, e)
				drop(e)
				dead = append(dead, e)
			case op < 7:
				e, ok := pick()
				if !ok {
					continue
				}
				p := Position{X: float32(step), Y: float32(seed)}
				_, err := ecs.AddComponent(w, e, p)
				require.NoError(t, err)
				live[e].pos = &p
				if rng.Intn(2) == 0 {
					v := Velocity{DX: float32(step)}
					_, err = ecs.AddComponent(w, e, v)
					require.NoError(t, err)
					live[e].vel = &v
				}
			case op < 8:
				e, ok := pick()
				if !ok {
					continue
				}
				h := Health{Current: step, Max: step + 1}
				_, err := ecs.AddComponent(w, e, h)
				require.NoError(t, err)
				live[e].health = &h
			default:
				e, ok := pick()
				if !ok {
					continue
				}
				if rng.Intn(2) == 0 {
					ecs.RemoveComponent[Position](w, e)
					live[e].pos = nil
				} else {
					ecs.RemoveComponent[Velocity](w, e)
					live[e].vel = nil
				}
			}

			if step%50 == 0 {
				checkChurn(t, w, live, dead)
			}
		}
		checkChurn(t, w, live, dead)
	}
}

func checkChurn(t *testing.T, w *ecs.World, live map[ecs.Entity]*churnState, dead []ecs.Entity) {
	t.Helper()

	assert.Equal(t, len(live), w.EntityCount())
	for e := range live {
		assert.True(t, w.IsAlive(e), "%s should be alive", e)
	}

	for _, e := range dead {
		assert.False(t, w.IsAlive(e), "%s should be dead", e)
		_, err := ecs.GetComponent[Position](w, e)
		assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
		_, err = ecs.GetComponent[Health](w, e)
		assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
		_, err = ecs.AddComponent(w, e, Position{})
		assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
	}

	want := map[ecs.Entity]Position{}
	for e, s := range live {
		if s.pos != nil && s.vel != nil {
			want[e] = *s.pos
		}
	}
	got := map[ecs.Entity]Position{}
	ecs.ForEach2(w, func(e ecs.Entity, p *Position, _ *Velocity) {
		assert.NotContains(t, got, e, "%s visited twice", e)
		got[e] = *p
	})
	assert.Equal(t, want, got)

	withHealth := 0
	for e, s := range live {
		h, err := ecs.GetComponent[Health](w, e)
		if s.health == nil {
			assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
			continue
		}
		withHealth++
		require.NoError(t, err)
		assert.Equal(t, *s.health, *h)
	}
	n := 0
	for range ecs.EntitiesWith[Health](w) {
		n++
	}
	assert.Equal(t, withHealth, n, "orphaned Health components")
}

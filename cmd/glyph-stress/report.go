package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/glyphon/render"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Entities int
	Overlays int
	Device   string

	// Results
	TotalFrames    int64
	TotalTime      time.Duration
	FrameTime      Stats
	DrawCalls      int64
	Vertices       int64
	Diagnostics    render.Diagnostics
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// PerFrame divides a running total by the number of frames.
func (r *Report) PerFrame(total int64) float64 {
	if r.TotalFrames == 0 {
		return 0
	}
	return float64(total) / float64(r.TotalFrames)
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Glyph Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Free Glyphs:** {{.Entities}}
- **Overlay Glyphs:** {{.Overlays}}
- **Device:** {{.Device}}

## Performance Results
- **Total Frames:** {{.TotalFrames}}
- **Total Test Time:** {{.TotalTime}}
- **Frame Time (update + render):**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}
- **Draw Calls / Frame:** {{printf "%.2f" (.PerFrame .DrawCalls)}}
- **Vertices / Frame:** {{printf "%.0f" (.PerFrame .Vertices)}}

## Renderer Diagnostics
- Executes:           {{.Diagnostics.Executes}}
- Unknown Shader:     {{.Diagnostics.UnknownShader}}
- Unknown Texture:    {{.Diagnostics.UnknownTexture}}
- Malformed Vertices: {{.Diagnostics.MalformedVertices}}
- Device Errors:      {{.Diagnostics.DeviceErrors}}
- Tile Maps Skipped:  {{.Diagnostics.TileMapsSkipped}}

## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MB (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}} bytes
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} MB (start) -> {{mb .MemStatsEnd.Sys}} MB (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}

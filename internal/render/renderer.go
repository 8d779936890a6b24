package render

import (
	"image/color"
	"time"

	"git.lost.host/meutraa/beatline/internal/game"
)

type Renderer interface {
	Init() error
	Deinit() error
	Resize(cols, rows int)
	AddDecoration(col, row int, content string, frames int)
	RenderLoop(period time.Duration, frame func(dt time.Duration) bool)
	Draw(now float64, stats game.Stats)
	Fill(row, column int, message string)
	FillColor(row, column int, color color.RGBA, message string)
}

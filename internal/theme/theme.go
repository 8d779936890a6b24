package theme

import (
	"image/color"

	"git.lost.host/meutraa/beatline/internal/game"
)

type Theme interface {
	RenderNote(note game.Note) string
	RenderHitField(lane int) string
	RenderGrade(g game.Grade) string
	GradeColor(g game.Grade) color.RGBA
}

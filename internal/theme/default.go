package theme

import (
	"fmt"
	"image/color"

	"git.lost.host/meutraa/beatline/internal/game"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(note game.Note) string {
	c := noteColor(note)
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, kindSyms[note.Kind])
}

func (t *DefaultTheme) RenderHitField(lane int) string {
	return barSym
}

func (t *DefaultTheme) RenderGrade(g game.Grade) string {
	c := t.GradeColor(g)
	return fmt.Sprintf("\033[1;38;2;%v;%v;%vm%-7v\033[0m", c.R, c.G, c.B, g)
}

func (t *DefaultTheme) GradeColor(g game.Grade) color.RGBA {
	if int(g) >= len(gradeColors) {
		return white
	}
	return gradeColors[g]
}

const barSym = "-"

var (
	white = color.RGBA{255, 255, 255, 255}

	kindSyms = map[game.NoteKind]string{
		game.Tap:   "⬤",
		game.Hold:  "▮",
		game.Flick: "➚",
	}

	// Indexed by effective level, anything past Hard is white
	levelColors = [...]color.RGBA{
		{255, 255, 255, 255},
		{0, 118, 236, 255}, // easy blue
		{236, 195, 0, 255}, // medium yellow
		{236, 30, 0, 255},  // hard red
	}

	gradeColors = [game.GradeCount]color.RGBA{
		{173, 236, 236, 255}, // light blue
		{0, 236, 128, 255},   // green
		{236, 195, 0, 255},   // yellow
		{236, 128, 0, 255},   // orange
		{236, 30, 0, 255},    // red
	}
)

// noteColor picks the level colour and dims it by intensity, so quiet melody
// notes fade into the background.
func noteColor(n game.Note) color.RGBA {
	c := white
	if l := n.EffectiveLevel(); l < len(levelColors) {
		c = levelColors[l]
	}
	scale := 0.4 + 0.6*float64(n.Intensity)
	return color.RGBA{
		R: uint8(float64(c.R) * scale),
		G: uint8(float64(c.G) * scale),
		B: uint8(float64(c.B) * scale),
		A: 255,
	}
}

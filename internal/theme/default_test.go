package theme

import (
	"strings"
	"testing"

	"git.lost.host/meutraa/beatline/internal/game"
)

func TestNoteColorIntensity(t *testing.T) {
	loud := noteColor(game.Note{Level: 3, Intensity: 1})
	quiet := noteColor(game.Note{Level: 3, Intensity: 0})
	if loud != levelColors[3] {
		t.Log("full intensity", loud, "expected", levelColors[3])
		t.Fail()
	}
	if quiet.R >= loud.R {
		t.Log("quiet note not dimmed", quiet, loud)
		t.Fail()
	}
	if c := noteColor(game.Note{Level: 9, Intensity: 1}); c != white {
		t.Log("unknown level", c)
		t.Fail()
	}
}

func TestRenderNote(t *testing.T) {
	th := &DefaultTheme{}
	for kind, sym := range kindSyms {
		out := th.RenderNote(game.Note{Kind: kind, Intensity: 1})
		if !strings.Contains(out, sym) || !strings.HasSuffix(out, "\033[0m") {
			t.Log(kind, "rendered as", out)
			t.Fail()
		}
	}
	if out := th.RenderGrade(game.Perfect); !strings.Contains(out, "Perfect") {
		t.Log("grade rendered as", out)
		t.Fail()
	}
	if c := th.GradeColor(game.Grade(42)); c != white {
		t.Log("unknown grade colour", c)
		t.Fail()
	}
}

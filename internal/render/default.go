package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/beatline/internal/game"
	"git.lost.host/meutraa/beatline/internal/judge"
	"git.lost.host/meutraa/beatline/internal/session"
	"git.lost.host/meutraa/beatline/internal/theme"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var (
	_ Renderer               = (*DefaultRenderer)(nil)
	_ session.Listener       = (*DefaultRenderer)(nil)
	_ session.RegionListener = (*DefaultRenderer)(nil)
)

const (
	barRow        = 2 // rows between the hit bar and the bottom
	columnSpacing = 2
	gradeFrames   = 60
	missFrames    = 240
)

// DefaultRenderer draws a play to an ANSI terminal. It listens to the session
// for entities and draws them where their time puts them on each Draw.
type DefaultRenderer struct {
	theme     theme.Theme
	lookahead float64
	lanes     int

	out          io.Writer
	fd           int
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration

	rows, cols int
	hitRow     int
	laneCols   []int
	sideCol    int

	sprites map[uint64]*sprite
	score   int64
	state   game.State
	region  *game.Section
}

type decoration struct {
	X, Y    int
	Content string
	Frames  int // remaining frames until removed
}

type sprite struct {
	note    game.Note
	painted []int // rows drawn on the last frame
}

// NewDefaultRenderer draws to out. fd is the terminal behind out, used for raw
// mode and size; pass -1 when out is not a terminal.
func NewDefaultRenderer(out io.Writer, fd int, th theme.Theme, lanes int, lookahead float64) *DefaultRenderer {
	if lanes < 1 {
		lanes = 1
	}
	r := &DefaultRenderer{
		theme:     th,
		lookahead: lookahead,
		lanes:     lanes,
		out:       out,
		fd:        fd,
		sprites:   map[uint64]*sprite{},
	}
	r.Resize(80, 24)
	return r
}

func (r *DefaultRenderer) Init() error {
	if r.fd < 0 || !term.IsTerminal(r.fd) {
		return nil
	}
	state, err := term.MakeRaw(r.fd)
	if nil != err {
		return errors.Wrap(err, "unable to make terminal raw")
	}
	r.restoreState = state

	cols, rows, err := term.GetSize(r.fd)
	if nil != err {
		return errors.Wrap(err, "unable to get terminal size")
	}
	r.Resize(cols, rows)

	fmt.Fprintf(r.out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	if r.restoreState == nil {
		return nil
	}
	fmt.Fprintf(r.out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	err := term.Restore(r.fd, r.restoreState)
	r.restoreState = nil
	return err
}

// Resize lays the lanes out around the middle column.
func (r *DefaultRenderer) Resize(cols, rows int) {
	r.cols, r.rows = cols, rows
	r.hitRow = rows - barRow
	mid := cols >> 1
	r.laneCols = make([]int, r.lanes)
	for i := range r.laneCols {
		r.laneCols[i] = mid + columnSpacing*(2*i-(r.lanes-1))
	}
	r.sideCol = r.laneCols[0] - 36
	if r.sideCol < 2 {
		r.sideCol = 2
	}
}

func (r *DefaultRenderer) laneCol(lane int) int {
	if lane < 0 {
		lane = -lane
	}
	return r.laneCols[lane%r.lanes]
}

// row is where a note due at t sits at time now. The hit bar is now, the top
// row is now + lookahead.
func (r *DefaultRenderer) row(t, now float64) int {
	field := float64(r.hitRow - 1)
	return r.hitRow - int(math.Round((t-now)/r.lookahead*field))
}

func (r *DefaultRenderer) inField(row int) bool {
	return row > 0 && row < r.rows
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, strings.Repeat(" ", visibleLen(d.Content)))
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop calls frame once per period until it returns false, flushing
// what it drew after each call.
func (r *DefaultRenderer) RenderLoop(period time.Duration, frame func(dt time.Duration) bool) {
	cont := true
	last := time.Now()
	for cont {
		now := time.Now()
		deadline := now.Add(period)

		cont = frame(now.Sub(last))
		last = now

		r.tickDecorations()
		r.flush()

		time.Sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) OnSpawn(id uint64, note game.Note, travel float64) {
	r.sprites[id] = &sprite{note: note}
}

func (r *DefaultRenderer) OnExpire(id uint64) {
	s, ok := r.sprites[id]
	if !ok {
		return
	}
	r.erase(s)
	delete(r.sprites, id)

	col := r.laneCol(s.note.Lane)
	cen := r.rows >> 1
	r.AddDecoration(col-1, cen-1, "\033[1;31m╭\033[0m", missFrames)
	r.AddDecoration(col+1, cen-1, "\033[1;31m╮\033[0m", missFrames)
	r.AddDecoration(col-1, cen, "\033[1;31m╰\033[0m", missFrames)
	r.AddDecoration(col+1, cen, "\033[1;31m╯\033[0m", missFrames)
	r.AddDecoration(r.laneCols[0], r.hitRow+1, r.theme.RenderGrade(game.Miss), gradeFrames)
}

func (r *DefaultRenderer) OnJudged(res judge.Result) {
	if s, ok := r.sprites[res.ID]; ok {
		r.erase(s)
		delete(r.sprites, res.ID)
	}
	r.AddDecoration(r.laneCols[0], r.hitRow+1, r.theme.RenderGrade(res.Grade), gradeFrames)

	// Early presses land right of centre, late ones left
	os := r.cols>>1 + int(math.Round(res.Offset*200))
	if os > 0 && os < r.cols {
		r.FillColor(r.hitRow-1, os, r.theme.GradeColor(res.Grade), "|")
		r.decorations = append(r.decorations, &decoration{X: os, Y: r.hitRow - 1, Content: " ", Frames: gradeFrames * 2})
	}
}

func (r *DefaultRenderer) OnScoreChanged(total, delta int64) {
	r.score = total
}

func (r *DefaultRenderer) OnStateChanged(state game.State) {
	r.state = state
	if state == game.Stopped || state == game.Idle {
		r.region = nil
		for id, s := range r.sprites {
			r.erase(s)
			delete(r.sprites, id)
		}
	}
}

func (r *DefaultRenderer) OnRegion(section game.Section, travel float64) {
	r.region = &section
}

func (r *DefaultRenderer) erase(s *sprite) {
	col := r.laneCol(s.note.Lane)
	for _, row := range s.painted {
		if row != r.hitRow {
			r.Fill(row, col, " ")
		}
	}
	s.painted = s.painted[:0]
}

// Draw moves every spawned note to its row at now and redraws the hit bar and
// the side panel.
func (r *DefaultRenderer) Draw(now float64, stats game.Stats) {
	for i := 0; i < r.lanes; i++ {
		r.Fill(r.hitRow, r.laneCols[i], r.theme.RenderHitField(i))
	}

	for _, s := range r.sprites {
		r.erase(s)
		col := r.laneCol(s.note.Lane)
		head := r.row(s.note.Time, now)
		if s.note.Kind == game.Hold && s.note.Duration > 0 {
			tail := r.row(s.note.Time+s.note.Duration, now)
			for row := head - 1; row > tail; row-- {
				if r.inField(row) && row != r.hitRow {
					r.Fill(row, col, "│")
					s.painted = append(s.painted, row)
				}
			}
		}
		if r.inField(head) {
			r.Fill(head, col, r.theme.RenderNote(s.note))
			s.painted = append(s.painted, head)
		}
	}

	r.Fill(10, r.sideCol, fmt.Sprintf("      Score:  %6v", r.score))
	r.Fill(11, r.sideCol, fmt.Sprintf("      Stdev:  %6.2f", stats.Stdev()*1000))
	r.Fill(12, r.sideCol, fmt.Sprintf("       Mean:  %6.2f", stats.Mean()*1000))
	r.Fill(13, r.sideCol, fmt.Sprintf("     Misses:  %6v", stats.Expired))
	r.Fill(14, r.sideCol, fmt.Sprintf("      State:  %-8v", r.state))
	if r.region != nil && now > r.region.End {
		r.region = nil
	}
	label := ""
	if r.region != nil {
		label = fmt.Sprintf("%v (%v)", r.region.Name, r.region.Type)
	}
	r.Fill(15, r.sideCol, fmt.Sprintf("     Region:  %-24.24v", label))
	for i, judgement := range game.Judgements {
		r.Fill(18+i, r.sideCol, fmt.Sprintf("%7v:  %6v", judgement.Name, stats.Counts[i]))
	}
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column int, c color.RGBA, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) flush() {
	r.out.Write([]byte(r.buffer.String()))
	r.buffer.Reset()
}

// visibleLen counts the runes of s outside escape sequences.
func visibleLen(s string) int {
	n, esc := 0, false
	for _, c := range s {
		switch {
		case esc:
			if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
				esc = false
			}
		case c == '\033':
			esc = true
		default:
			n++
		}
	}
	return n
}

package parser

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"

	"git.lost.host/meutraa/beatline/internal/game"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// DefaultParser reads the JSON charts written by the note generator.
type DefaultParser struct{}

type chartFile struct {
	Metadata struct {
		Title     string `json:"title"`
		AudioFile string `json:"audio_file"`
	} `json:"metadata"`
	Timing struct {
		BPM float64 `json:"bpm"`
	} `json:"timing"`
	Notes    []noteRecord    `json:"notes"`
	Sections []sectionRecord `json:"vocal_sections"`
}

type noteRecord struct {
	TimeSeconds     *float64 `json:"time_seconds"`
	Lane            int      `json:"lane"`
	Type            string   `json:"type"`
	Intensity       float32  `json:"intensity"`
	Level           int      `json:"level"`
	DurationSeconds float64  `json:"duration_seconds"`
}

type sectionRecord struct {
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	SectionName string  `json:"section_name"`
	VocalType   string  `json:"vocal_type"`
}

func (p *DefaultParser) Parse(file string) (*game.Chart, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, errors.Wrap(err, "unable to open chart")
	}
	defer f.Close()

	chart, err := p.Decode(f)
	if nil != err {
		return nil, errors.Wrapf(err, "%v", file)
	}
	return chart, nil
}

func (p *DefaultParser) Decode(r io.Reader) (*game.Chart, error) {
	var cf chartFile
	if err := json.NewDecoder(r).Decode(&cf); nil != err {
		return nil, errors.Wrap(err, "malformed chart")
	}

	chart := &game.Chart{
		Title:     cf.Metadata.Title,
		AudioFile: cf.Metadata.AudioFile,
		BPM:       cf.Timing.BPM,
		Notes:     make([]game.Note, 0, len(cf.Notes)),
	}

	for i, rec := range cf.Notes {
		note, err := p.note(rec)
		if nil != err {
			return nil, errors.Wrapf(err, "note %d", i)
		}
		switch note.Kind {
		case game.Hold:
			chart.HoldCount++
		case game.Flick:
			chart.FlickCount++
		default:
			chart.TapCount++
		}
		chart.Notes = append(chart.Notes, note)
	}

	for i, rec := range cf.Sections {
		if invalidTime(rec.StartTime) || invalidTime(rec.EndTime) || rec.EndTime < rec.StartTime {
			return nil, errors.Errorf("section %d: bad range %v-%v", i, rec.StartTime, rec.EndTime)
		}
		chart.Sections = append(chart.Sections, game.Section{
			Start: rec.StartTime,
			End:   rec.EndTime,
			Name:  rec.SectionName,
			Type:  rec.VocalType,
		})
	}

	// The scheduler relies on this order and never sorts
	sort.SliceStable(chart.Notes, func(i, j int) bool {
		return chart.Notes[i].Time < chart.Notes[j].Time
	})
	sort.SliceStable(chart.Sections, func(i, j int) bool {
		return chart.Sections[i].Start < chart.Sections[j].Start
	})

	return chart, nil
}

func invalidTime(t float64) bool {
	return math.IsNaN(t) || math.IsInf(t, 0) || t < 0
}

func (p *DefaultParser) note(rec noteRecord) (game.Note, error) {
	if rec.TimeSeconds == nil {
		return game.Note{}, errors.New("missing time_seconds")
	}
	if invalidTime(*rec.TimeSeconds) {
		return game.Note{}, errors.Errorf("bad time %v", *rec.TimeSeconds)
	}
	if rec.Level < 0 {
		return game.Note{}, errors.Errorf("negative level %v", rec.Level)
	}
	if rec.Lane < 0 {
		return game.Note{}, errors.Errorf("negative lane %v", rec.Lane)
	}

	kind := game.ParseKind(rec.Type)
	duration := 0.0
	if kind == game.Hold && rec.DurationSeconds > 0 && !invalidTime(rec.DurationSeconds) {
		duration = rec.DurationSeconds
	}

	return game.Note{
		Time:      *rec.TimeSeconds,
		Lane:      rec.Lane,
		Kind:      kind,
		Intensity: clampIntensity(rec.Intensity),
		Level:     rec.Level,
		Duration:  duration,
	}, nil
}

func clampIntensity(i float32) float32 {
	if math32.IsNaN(i) {
		return 0
	}
	return math32.Max(0, math32.Min(1, i))
}

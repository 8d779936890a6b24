// Package history stores finished plays in sqlite.
package history

import (
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"git.lost.host/meutraa/beatline/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Play is one finished session as stored in the history.
type Play struct {
	ID          string
	Fingerprint string
	Difficulty  game.Difficulty
	Score       int64
	Presses     []game.Press
	PlayedAt    time.Time
}

// Store persists plays in a sqlite database.
type Store struct {
	db *sql.DB
}

type PressesCompact struct {
	Lane  int
	Times []float64
}

// compactPresses groups press times by lane, lanes ascending, keeping the
// order of presses within a lane.
func compactPresses(presses []game.Press) []PressesCompact {
	byLane := map[int][]float64{}
	for _, p := range presses {
		byLane[p.Lane] = append(byLane[p.Lane], p.Time)
	}
	lanes := make([]int, 0, len(byLane))
	for lane := range byLane {
		lanes = append(lanes, lane)
	}
	sort.Ints(lanes)

	out := make([]PressesCompact, len(lanes))
	for i, lane := range lanes {
		out[i] = PressesCompact{Lane: lane, Times: byLane[lane]}
	}
	return out
}

// uncompactPresses restores presses in time order. Presses at the same time
// keep lane order.
func uncompactPresses(compact []PressesCompact) []game.Press {
	presses := []game.Press{}
	for _, c := range compact {
		for _, t := range c.Times {
			presses = append(presses, game.Press{Lane: c.Lane, Time: t})
		}
	}
	sort.SliceStable(presses, func(i, j int) bool {
		return presses[i].Time < presses[j].Time
	})
	return presses
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return nil, errors.Wrap(err, "unable to open history")
	}

	initStatement := `
	create table if not exists plays
	  (
		  id text not null primary key,
		  fingerprint text not null,
		  difficulty integer not null,
		  score integer not null,
		  presses blob,
		  played_at integer not null
	  );
	create index if not exists plays_fingerprint on plays(fingerprint);
	`
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return nil, errors.Wrap(err, "unable to create history tables")
	}

	return &Store{db: db}, nil
}

func (h *Store) Close() error {
	return h.db.Close()
}

// Save stores a play and returns its id. A zero PlayedAt is set to now.
func (h *Store) Save(p Play) (string, error) {
	data, err := json.Marshal(compactPresses(p.Presses))
	if nil != err {
		return "", errors.Wrap(err, "unable to marshal presses")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PlayedAt.IsZero() {
		p.PlayedAt = time.Now()
	}
	_, err = h.db.Exec(
		"insert into plays(id, fingerprint, difficulty, score, presses, played_at) values(?, ?, ?, ?, ?, ?)",
		p.ID, p.Fingerprint, int(p.Difficulty), p.Score, data, p.PlayedAt.UnixNano(),
	)
	if nil != err {
		return "", errors.Wrap(err, "unable to save play")
	}
	return p.ID, nil
}

// Load returns every play of a chart, oldest first.
func (h *Store) Load(fingerprint string) ([]Play, error) {
	rows, err := h.db.Query(
		"select id, fingerprint, difficulty, score, presses, played_at from plays where fingerprint = ? order by played_at",
		fingerprint,
	)
	if nil != err {
		return nil, errors.Wrap(err, "unable to load plays")
	}
	defer rows.Close()

	plays := []Play{}
	for rows.Next() {
		var (
			p          Play
			difficulty int
			data       []byte
			playedAt   int64
		)
		if err := rows.Scan(&p.ID, &p.Fingerprint, &difficulty, &p.Score, &data, &playedAt); nil != err {
			return nil, errors.Wrap(err, "unable to scan play")
		}
		var compact []PressesCompact
		if err := json.Unmarshal(data, &compact); nil != err {
			return nil, errors.Wrapf(err, "unable to unmarshal presses of %v", p.ID)
		}
		p.Difficulty = game.Difficulty(difficulty)
		p.Presses = uncompactPresses(compact)
		p.PlayedAt = time.Unix(0, playedAt)
		plays = append(plays, p)
	}
	return plays, errors.Wrap(rows.Err(), "unable to read plays")
}

// Best is the highest scoring play of a chart at a difficulty.
func (h *Store) Best(fingerprint string, d game.Difficulty) (Play, bool, error) {
	plays, err := h.Load(fingerprint)
	if nil != err {
		return Play{}, false, err
	}
	var (
		best  Play
		found bool
	)
	for _, p := range plays {
		if p.Difficulty != d {
			continue
		}
		if !found || p.Score > best.Score {
			best, found = p, true
		}
	}
	return best, found, nil
}

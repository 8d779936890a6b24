package config

import (
	"time"

	"git.lost.host/meutraa/beatline/internal/game"
	"git.lost.host/meutraa/beatline/internal/score"
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

// Config holds every tunable of a session and of the player around it.
// Times are in seconds unless typed as a Duration.
type Config struct {
	HitWindow       float64 `env:"HIT_WINDOW" envDefault:"0.05"`
	Lookahead       float64 `env:"LOOKAHEAD" envDefault:"2.0"`
	RegionLookahead float64 `env:"REGION_LOOKAHEAD" envDefault:"3.0"`
	LatencyOffset   float64 `env:"LATENCY_OFFSET" envDefault:"0.02"`
	Difficulty      int     `env:"DIFFICULTY" envDefault:"1"`
	Grace           float64 `env:"GRACE" envDefault:"1.0"`
	FinishGuard     float64 `env:"FINISH_GUARD" envDefault:"2.0"`
	MinTravel       float64 `env:"MIN_TRAVEL" envDefault:"0.05"`

	BaseReward     int    `env:"BASE_REWARD" envDefault:"10"`
	ScoreModel     string `env:"SCORE_MODEL" envDefault:"multiplier"`
	FallbackReward bool   `env:"FALLBACK_REWARD" envDefault:"true"`

	Keys        string        `env:"KEYS" envDefault:"dfjk"`
	History     string        `env:"HISTORY" envDefault:"./scores.db"`
	FramePeriod time.Duration `env:"FRAME_PERIOD" envDefault:"4ms"`
	Debug       bool          `env:"DEBUG"`
}

const EnvPrefix = "BEATLINE_"

// Default is the configuration with no environment applied.
func Default() Config {
	return Config{
		HitWindow:       0.05,
		Lookahead:       2.0,
		RegionLookahead: 3.0,
		LatencyOffset:   0.02,
		Difficulty:      int(game.Easy),
		Grace:           1.0,
		FinishGuard:     2.0,
		MinTravel:       0.05,
		BaseReward:      score.DefaultBaseReward,
		ScoreModel:      score.ModelMultiplier,
		FallbackReward:  true,
		Keys:            "dfjk",
		History:         "./scores.db",
		FramePeriod:     4 * time.Millisecond,
	}
}

// Load reads the configuration from BEATLINE_* variables, falling back to
// the defaults.
func Load() (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); nil != err {
		return c, errors.Wrap(err, "parse env")
	}
	return c, nil
}

// Flags binds command line flags over c, so flags win over the environment.
func Flags(app *kingpin.Application, c *Config) {
	app.Flag("hit-window", "Largest timing error that still hits, in seconds").
		Default(ftoa(c.HitWindow)).Short('w').Float64Var(&c.HitWindow)
	app.Flag("lookahead", "Seconds a note is shown before it is due").
		Default(ftoa(c.Lookahead)).Float64Var(&c.Lookahead)
	app.Flag("offset", "Latency offset added to the playback position, in seconds").
		Default(ftoa(c.LatencyOffset)).Short('o').Float64Var(&c.LatencyOffset)
	app.Flag("difficulty", "1 easy, 2 medium, 3 hard").
		Default(itoa(c.Difficulty)).Short('d').IntVar(&c.Difficulty)
	app.Flag("grace", "Seconds after its time before an unhit note is dropped").
		Default(ftoa(c.Grace)).Float64Var(&c.Grace)
	app.Flag("base-reward", "Reward multiplied by the grade multiplier").
		Default(itoa(c.BaseReward)).IntVar(&c.BaseReward)
	app.Flag("score-model", "multiplier or fixed").
		Default(c.ScoreModel).EnumVar(&c.ScoreModel, score.ModelMultiplier, score.ModelFixed)
	app.Flag("fallback-reward", "Award the basic reward for presses that hit nothing").
		Default(btoa(c.FallbackReward)).BoolVar(&c.FallbackReward)
	app.Flag("keys", "Keys for each lane, left to right").
		Default(c.Keys).Short('k').StringVar(&c.Keys)
	app.Flag("history", "Score history database").
		Default(c.History).StringVar(&c.History)
	app.Flag("frame-period", "Render frame period").
		Default(c.FramePeriod.String()).Short('p').DurationVar(&c.FramePeriod)
	app.Flag("debug", "Verbose logging").
		Default(btoa(c.Debug)).BoolVar(&c.Debug)
}

func (c Config) Validate() error {
	switch {
	case c.HitWindow <= 0:
		return errors.Errorf("hit window must be positive, got %v", c.HitWindow)
	case c.Lookahead <= 0 || c.RegionLookahead <= 0:
		return errors.New("lookahead must be positive")
	case c.Grace < 0:
		return errors.Errorf("grace must not be negative, got %v", c.Grace)
	case c.FinishGuard < 0:
		return errors.Errorf("finish guard must not be negative, got %v", c.FinishGuard)
	case c.MinTravel <= 0:
		return errors.Errorf("minimum travel must be positive, got %v", c.MinTravel)
	case !game.Difficulty(c.Difficulty).Valid():
		return errors.Errorf("difficulty must be 1-3, got %v", c.Difficulty)
	case c.ScoreModel != score.ModelMultiplier && c.ScoreModel != score.ModelFixed:
		return errors.Errorf("unknown score model %q", c.ScoreModel)
	case len([]rune(c.Keys)) == 0:
		return errors.New("at least one lane key is required")
	}
	return nil
}

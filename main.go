package main

import (
	"fmt"
	"os"

	"git.lost.host/meutraa/beatline/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		logrus.Fatalln(err)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if nil != err {
		return err
	}

	app := kingpin.New("beatline", "Four lane rhythm game for the terminal.")
	config.Flags(app, &cfg)
	chartFile := app.Arg("chart", "Chart JSON file").Required().ExistingFile()
	audioFile := app.Arg("audio", "mp3 or ogg file, defaults to the chart's audio_file").String()
	if _, err := app.Parse(args); nil != err {
		return err
	}
	if err := cfg.Validate(); nil != err {
		return err
	}

	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	log.Level = logrus.WarnLevel
	if cfg.Debug {
		log.Level = logrus.DebugLevel
	}

	p := &Program{}
	defer p.Deinit()
	if err := p.Init(cfg, log, *chartFile, *audioFile); nil != err {
		return err
	}
	if err := p.Play(); nil != err {
		return err
	}

	best, ok, err := p.Save()
	if nil != err {
		log.WithError(err).Error("unable to save play")
	}
	fmt.Print(p.Summary(best, ok))
	return nil
}

package parser

import (
	"io"

	"git.lost.host/meutraa/beatline/internal/game"
)

type Parser interface {
	Parse(file string) (*game.Chart, error)
	Decode(r io.Reader) (*game.Chart, error)
}

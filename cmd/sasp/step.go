package main

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// stepPrompt asks whether to search for the next model.
type stepPrompt struct {
	readline *readline.Instance
}

func newStepPrompt(in io.Reader, out io.Writer) (*stepPrompt, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "next? ",
		Stdin:                  io.NopCloser(in),
		Stdout:                 out,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, err
	}
	return &stepPrompt{readline: rl}, nil
}

// next returns true on ';' or an empty line, and false on '.' or at end of input.
func (p *stepPrompt) next() bool {
	for {
		line, err := p.readline.Readline()
		if err != nil {
			return false
		}
		switch strings.TrimSpace(line) {
		case ";", "":
			return true
		case ".":
			return false
		}
	}
}

func (p *stepPrompt) close() error {
	return p.readline.Close()
}

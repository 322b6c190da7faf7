//go:build headless

package main

import "errors"

type playCmd struct {
	EngineFlags

	In string `arg:"" type:"existingfile" help:"Input WAV file."`
}

func (c *playCmd) Run() error {
	return errors.New("play is not available in headless builds")
}

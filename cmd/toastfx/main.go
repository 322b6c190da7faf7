// Command toastfx runs the envelope-driven saturation engine offline.
//
// Usage:
//
//	toastfx render [flags] <in.wav> <out.wav>
//	toastfx tone [flags]
//	toastfx play [flags] <in.wav>
//
// render processes a WAV file and prints a level report, tone measures the
// harmonic distortion of a generated sine and play previews a file through
// the default audio device (not available in headless builds).
package main

import (
	"github.com/alecthomas/kong"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string           `help:"Log level (debug, info, warn, error)." default:"info" enum:"debug,info,warn,error"`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	Render renderCmd `cmd:"" help:"Process a WAV file."`
	Tone   toneCmd   `cmd:"" help:"Measure distortion of a generated sine."`
	Play   playCmd   `cmd:"" help:"Preview a WAV file through the audio device."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("toastfx"),
		kong.Description("Envelope-driven transformer saturation"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(styledHelpPrinter),
	)

	if err := InitLogger(cli.LogLevel); err != nil {
		ctx.FatalIfErrorf(err)
	}

	ctx.FatalIfErrorf(ctx.Run())
}

//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/ersatz"
	"github.com/farcloser/ersatz/internal/decode"
	"github.com/farcloser/ersatz/internal/types"
)

var (
	errInvalidArgCount  = errors.New("expected exactly one argument: file path or \"-\" for stdin")
	errInvalidBitDepth  = errors.New("must be 16, 24, or 32")
	errMissingPCMFormat = errors.New("--pcm requires --sample-rate")
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Score an audio file for signs of lossy transcoding",
		ArgsUsage: "<file | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
			&cli.IntFlag{
				Name:    "max-seconds",
				Usage:   "Seconds of audio to analyze from the start (negative for the whole file)",
				Value:   ersatz.DefaultMaxSeconds,
				Sources: cli.EnvVars("ERSATZ_MAX_SECONDS"),
			},
			&cli.IntFlag{
				Name:  "declared-rate",
				Usage: "Sample rate the file claims to have, in Hz (informational)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail when the input cannot be decoded or is too short",
			},
			&cli.BoolFlag{
				Name:  "no-external",
				Usage: "Never fall back to ffmpeg for containers without a native decoder",
			},

			// Raw PCM input.
			&cli.BoolFlag{
				Name:  "pcm",
				Usage: "Treat the input as raw interleaved little-endian PCM",
			},
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"s"},
				Usage:   "Sample rate of raw PCM in Hz (e.g., 44100, 48000, 96000)",
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth of raw PCM (16, 24, or 32)",
				Value:   16,
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Channel count of raw PCM",
				Value:   2,
			},

			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"D"},
				Usage:   "Include all measurements in output and log decoding steps",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			debug := cmd.Bool("debug")
			if debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			opts := ersatz.Options{MaxSeconds: cmd.Int("max-seconds")}

			switch {
			case cmd.Bool("pcm"):
				format, err := parsePCMFormat(cmd)
				if err != nil {
					return err
				}

				opts.Decoder = pcmDecoder{format: format}
			case cmd.Bool("no-external"):
				opts.Decoder = decode.Auto{}
			}

			inputPath := cmd.Args().First()

			data, err := readInput(inputPath)
			if err != nil {
				return err
			}

			result, err := ersatz.Analyze(ctx, data, cmd.Int("declared-rate"), opts)
			if err != nil {
				slog.Debug("analysis incomplete", "file", inputPath, "error", err)

				degenerate := errors.Is(err, ersatz.ErrUndecodable) || errors.Is(err, ersatz.ErrTooShort)
				if cmd.Bool("strict") || !degenerate {
					return fmt.Errorf("analysis failed: %w", err)
				}
			}

			return outputResult(inputPath, result, err, cmd.String("format"), debug)
		},
	}
}

func parsePCMFormat(cmd *cli.Command) (types.PCMFormat, error) {
	sampleRate := cmd.Int("sample-rate")
	if sampleRate <= 0 {
		return types.PCMFormat{}, errMissingPCMFormat
	}

	bitDepth, err := toBitDepth(cmd.Int("bit-depth"))
	if err != nil {
		return types.PCMFormat{}, fmt.Errorf("--bit-depth: %w", err)
	}

	channels := cmd.Int("channels")
	if channels <= 0 {
		return types.PCMFormat{}, fmt.Errorf("--channels: invalid channel count %d", channels)
	}

	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   uint(channels), //nolint:gosec // validated positive value
	}, nil
}

func toBitDepth(v int) (types.BitDepth, error) {
	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}

// pcmDecoder reads headerless PCM whose layout is given on the command line.
type pcmDecoder struct {
	format types.PCMFormat
}

func (d pcmDecoder) Decode(_ context.Context, data []byte, maxSeconds int) (*types.SampleBuffer, error) {
	return decode.PCM(bytes.NewReader(data), d.format, maxSeconds)
}

func readInput(source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(source) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", source, err)
	}

	return data, nil
}

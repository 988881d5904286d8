// SPDX-License-Identifier: EPL-2.0

// Command cmxsim feeds one or more audio files through an in-memory
// cmx conference and writes back what each member would have heard.
// It exists to exercise every format decoder (formats/*) against the
// conference engine without a live ISDN/SIP card.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ik5/audpbx/audio"
	"github.com/ik5/audpbx/cmx"
	"github.com/ik5/audpbx/companding"
	"github.com/ik5/audpbx/dtmf"
	"github.com/ik5/audpbx/formats/wav"
	"github.com/ik5/audpbx/ingest"
)

// tickSamples is one simulated 20 ms frame at the engine's 8 kHz
// domain, the same tick size the original mISDN driver uses for its
// inbound HDLC frames.
const tickSamples = 160

func main() {
	confID := pflag.Uint64P("conf", "c", 1, "conference id to place every input file into")
	lawName := pflag.StringP("law", "l", "alaw", "companding law to encode with: alaw or ulaw")
	echo := pflag.Bool("echo", false, "enable echo (hear your own voice back) for every member")
	txMix := pflag.Bool("txmix", false, "additively mix a member's own transmit queue into its output")
	decodeDTMF := pflag.Bool("dtmf", false, "decode DTMF digits off every member's receive path and log them")
	outDir := pflag.StringP("out", "o", ".", "directory to write per-member output WAV files into")
	debug := pflag.Bool("debug", false, "log conference transitions and a final registry dump at debug level")
	help := pflag.Bool("help", false, "display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: cmxsim [flags] file [file...]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || len(pflag.Args()) == 0 {
		pflag.Usage()
		if *help {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger := log.New(os.Stderr)
	if *debug {
		logger.SetLevel(log.DebugLevel)
	} else if *decodeDTMF {
		logger.SetLevel(log.InfoLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	law := companding.ALaw
	if *lawName == "ulaw" {
		law = companding.ULaw
	}

	if err := run(pflag.Args(), *confID, law, *echo, *txMix, *decodeDTMF, *outDir, logger); err != nil {
		logger.Error("cmxsim failed", "err", err)
		os.Exit(1)
	}
}

type member struct {
	name    string
	channel *cmx.Channel
	source  *ingest.Source
	file    *os.File
	out     []int16
}

func (m *member) Close() error {
	err := m.source.Close()
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func run(files []string, confID uint64, law companding.Law, echo, txMixFlag, decodeDTMF bool, outDir string, logger *log.Logger) error {
	reg := ingest.NewFormatRegistry()
	registry := cmx.NewRegistry(nil)
	registry.Logger = logger

	members := make([]*member, 0, len(files))
	for _, path := range files {
		m, err := openMember(path, confID, law, echo, txMixFlag, decodeDTMF, reg, logger)
		if err != nil {
			return fmt.Errorf("cmxsim: %s: %w", path, err)
		}
		members = append(members, m)

		if err := registry.Reconfigure(m.channel); err != nil {
			return fmt.Errorf("cmxsim: join %s: %w", path, err)
		}
	}
	defer func() {
		for _, m := range members {
			m.Close()
		}
	}()

	frame := make([]byte, tickSamples)
	out := make([]byte, tickSamples)
	for {
		active := 0
		for _, m := range members {
			n, err := m.source.NextFrame(frame)
			if n > 0 {
				if rerr := m.channel.Receive(frame[:n]); rerr != nil {
					logger.Warn("receive dropped", "member", m.name, "err", rerr)
				}
				if digits := m.channel.DrainDigits(); digits != "" {
					logger.Info("dtmf digits", "member", m.name, "digits", digits)
				}
			}
			if err == nil {
				active++
			}
		}

		for _, m := range members {
			m.channel.Send(out)
			for _, b := range out {
				m.out = append(m.out, int16(companding.ToS32(law, b)))
			}
		}

		if active == 0 {
			break
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("cmxsim: %w", err)
	}
	for i, m := range members {
		outPath := filepath.Join(outDir, fmt.Sprintf("member-%d.wav", i))
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("cmxsim: %w", err)
		}
		err = wav.WriteWAV16(f, ingest.SampleRate, m.out)
		f.Close()
		if err != nil {
			return fmt.Errorf("cmxsim: write %s: %w", outPath, err)
		}
		logger.Debug("wrote member output", "path", outPath, "samples", len(m.out))
	}

	if logger.GetLevel() <= log.DebugLevel {
		for _, snap := range registry.Dump() {
			logger.Debug("conference snapshot", "id", snap.ID, "solution", snap.Solution.Kind, "members", len(snap.MemberHWIDs))
		}
	}

	return nil
}

func openMember(path string, confID uint64, law companding.Law, echo, txMixFlag, decodeDTMF bool, reg *audio.Registry, logger *log.Logger) (*member, error) {
	format, ok := ingest.FormatByExtension(path)
	if !ok {
		return nil, fmt.Errorf("unrecognized format for %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := ingest.Open(f, format, reg, law)
	if err != nil {
		f.Close()
		return nil, err
	}

	ch := cmx.NewChannel(law)
	ch.Echo = echo
	ch.TxMix = txMixFlag
	ch.ConfID = confID
	ch.Active = true
	ch.Logger = logger
	if decodeDTMF {
		ch.DTMF = dtmf.NewDecoder()
		ch.DTMF.Logger = logger
	}

	return &member{name: filepath.Base(path), channel: ch, source: src, file: f}, nil
}

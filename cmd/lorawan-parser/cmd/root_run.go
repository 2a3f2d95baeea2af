package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tanupoo/lorawan-parser/internal/config"
	"github.com/tanupoo/lorawan-parser/internal/decoder"
	"github.com/tanupoo/lorawan-parser/internal/hexformat"
	"github.com/tanupoo/lorawan-parser/internal/report"
	"github.com/tanupoo/lorawan-parser/lorawan"
)

func run(cmd *cobra.Command, args []string) error {
	log.SetLevel(log.Level(uint8(config.C.General.LogLevel)))

	v, err := lorawan.VersionFromString(config.C.Parser.LoRaWANVersion)
	if err != nil {
		return err
	}
	stringType, err := hexformat.StringTypeFromString(config.C.Parser.StringType)
	if err != nil {
		return err
	}
	if config.C.Parser.UpperFCnt > 0xffff {
		return fmt.Errorf("upper-fcnt %d does not fit 16 bits", config.C.Parser.UpperFCnt)
	}

	opts := decoder.Options{
		Version:     v,
		AppKey:      config.C.Parser.Keys.AppKey,
		NwkSKey:     config.C.Parser.Keys.NwkSKey,
		AppSKey:     config.C.Parser.Keys.AppSKey,
		SNwkSIntKey: config.C.Parser.Keys.SNwkSIntKey,
		NwkSEncKey:  config.C.Parser.Keys.NwkSEncKey,
		FCntUpper:   uint16(config.C.Parser.UpperFCnt),
	}

	if err := deriveSessionKeys(cmd, stringType, &opts); err != nil {
		return err
	}

	frames, err := collectFrames(cmd, args)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return cmd.Help()
	}

	var failed int
	for i, f := range frames {
		if i > 0 {
			fmt.Println()
		}
		raw, err := hexformat.Decode(stringType, f)
		if err != nil {
			failed++
			log.WithError(err).WithField("frame", f).Error("parse frame error")
			continue
		}
		res, err := decoder.Decode(raw, opts)
		if err != nil {
			failed++
			log.WithError(err).WithField("frame", f).Error("decode frame error")
			continue
		}

		if config.C.General.JSONOutput {
			err = report.RenderJSON(os.Stdout, res)
		} else {
			err = report.Render(os.Stdout, res)
		}
		if err != nil {
			return errors.Wrap(err, "render error")
		}
		if res.CommandError != nil {
			log.WithError(res.CommandError).Warning("mac-command stream decoded partially")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d frames could not be decoded", failed, len(frames))
	}
	return nil
}

// deriveSessionKeys fills in the session keys from a join-request /
// join-accept pair when both frames and the appkey were given. Keys set
// explicitly take precedence.
func deriveSessionKeys(cmd *cobra.Command, stringType hexformat.StringType, opts *decoder.Options) error {
	jrStr, err := cmd.Flags().GetString("join-request")
	if err != nil {
		return err
	}
	jaStr, err := cmd.Flags().GetString("join-accept")
	if err != nil {
		return err
	}
	if jrStr == "" && jaStr == "" {
		return nil
	}
	if jrStr == "" || jaStr == "" {
		return fmt.Errorf("join-request and join-accept must be given together")
	}
	if opts.AppKey == nil {
		return fmt.Errorf("an appkey is needed to derive session keys")
	}

	jrRaw, err := hexformat.Decode(stringType, jrStr)
	if err != nil {
		return errors.Wrap(err, "parse join-request")
	}
	jaRaw, err := hexformat.Decode(stringType, jaStr)
	if err != nil {
		return errors.Wrap(err, "parse join-accept")
	}

	sk, err := decoder.DeriveSessionKeys(jrRaw, jaRaw, *opts.AppKey, opts.Version)
	if err != nil {
		return errors.Wrap(err, "derive session keys")
	}

	fields := log.Fields{
		"nwkskey": sk.NwkSKey,
		"appskey": sk.AppSKey,
	}
	if opts.Version == lorawan.LoRaWAN1_1 {
		fields["snwksintkey"] = sk.SNwkSIntKey
		fields["nwksenckey"] = sk.NwkSEncKey
	}
	log.WithFields(fields).Info("session keys derived")

	if opts.NwkSKey == nil {
		k := sk.NwkSKey
		opts.NwkSKey = &k
	}
	if opts.AppSKey == nil {
		k := sk.AppSKey
		opts.AppSKey = &k
	}
	if opts.Version == lorawan.LoRaWAN1_1 {
		if opts.SNwkSIntKey == nil {
			k := sk.SNwkSIntKey
			opts.SNwkSIntKey = &k
		}
		if opts.NwkSEncKey == nil {
			k := sk.NwkSEncKey
			opts.NwkSEncKey = &k
		}
	}
	return nil
}

// collectFrames gathers the frame strings from the arguments and, when
// from-file is given, from the file ("-" reads stdin). Blank lines and
// lines starting with # are skipped.
func collectFrames(cmd *cobra.Command, args []string) ([]string, error) {
	frames := append([]string(nil), args...)

	fromFile, err := cmd.Flags().GetString("from-file")
	if err != nil {
		return nil, err
	}
	if fromFile == "" {
		return frames, nil
	}

	f := os.Stdin
	if fromFile != "-" {
		f, err = os.Open(fromFile)
		if err != nil {
			return nil, errors.Wrap(err, "open frames file")
		}
		defer f.Close()
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		frames = append(frames, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read frames file")
	}
	return frames, nil
}

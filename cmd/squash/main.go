package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	pb "github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/adler32"
	"github.com/frostdev-ops/Loolib-sub000/internal/config"
)

const (
	EnvVarPrefix = "SQUASH"

	// stdio names standard input or output in place of a file.
	stdio = "-"
)

type CLI struct {
	Compress   CompressCmd   `cmd:"" help:"Compress a file"`
	Decompress DecompressCmd `cmd:"" help:"Decompress a file"`
	Checksum   ChecksumCmd   `cmd:"" help:"Print the Adler-32 and xxhash64 of a file"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Quiet   bool             `kong:"help='Disable the progress bar',short='q'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`
}

type CompressCmd struct {
	Input     string `arg:"" help:"File to compress ('-' for stdin)"`
	Output    string `help:"Output file ('-' for stdout); defaults to the input name plus an extension" short:"o"`
	Algorithm string `help:"Compression algorithm" enum:"${algorithms}" default:"${algorithm}" short:"a"`
	Level     int    `help:"Compression level (-1 for the default, 0-9)" default:"-1" short:"l"`
	Encoding  string `help:"Transport encoding applied to the output" enum:"none,channel,print" default:"none" short:"e"`
}

type DecompressCmd struct {
	Input     string `arg:"" help:"File to decompress ('-' for stdin)"`
	Output    string `help:"Output file ('-' for stdout); defaults to the input name without its extension" short:"o"`
	Algorithm string `help:"Compression algorithm" enum:"${algorithms}" default:"${algorithm}" short:"a"`
	Encoding  string `help:"Transport encoding of the input" enum:"none,channel,print" default:"none" short:"e"`
	MaxOutput int64  `help:"Refuse to produce more than this many bytes" default:"${max_output}"`
}

type ChecksumCmd struct {
	Input string `arg:"" help:"File to checksum ('-' for stdin)"`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("squash"),
		kong.Description("DEFLATE, zlib and gzip codec with transport encodings"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version":    config.VERSION,
			"algorithms": strings.Join(compression.GetSupportedAlgorithms(), ","),
			"algorithm":  compression.DefaultAlgorithm,
			"max_output": strconv.Itoa(config.DefaultMaxOutputSize),
		})

	logrus.SetOutput(os.Stderr)
	if cli.Debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.Debug("debug mode enabled")
	}

	ctx.FatalIfErrorf(ctx.Run(cli))
}

func (c *CompressCmd) Run(cli *CLI) error {
	if c.Level < config.MinLevel || c.Level > config.MaxLevel {
		return errors.Errorf("level must be between %d and %d (got %d)", config.MinLevel, config.MaxLevel, c.Level)
	}

	data, err := readInput(c.Input, cli.Quiet)
	if err != nil {
		return err
	}

	out, stats, err := compression.Compress(data, compression.Options{
		Algorithm: c.Algorithm,
		Level:     c.Level,
		Encoding:  c.Encoding,
	})
	if err != nil {
		return err
	}

	dst := c.Output
	if dst == "" {
		dst = compressedName(c.Input, c.Algorithm, c.Encoding)
	}
	if err := writeOutput(dst, out); err != nil {
		return err
	}

	logStats(stats, dst)
	return nil
}

func (c *DecompressCmd) Run(cli *CLI) error {
	data, err := readInput(c.Input, cli.Quiet)
	if err != nil {
		return err
	}

	out, stats, err := compression.Decompress(data, compression.Options{
		Algorithm: c.Algorithm,
		Encoding:  c.Encoding,
		MaxOutput: int(c.MaxOutput),
	})
	if err != nil {
		return err
	}

	dst := c.Output
	if dst == "" {
		dst = decompressedName(c.Input, c.Algorithm, c.Encoding)
	}
	if err := writeOutput(dst, out); err != nil {
		return err
	}

	logStats(stats, dst)
	return nil
}

func (c *ChecksumCmd) Run(cli *CLI) error {
	data, err := readInput(c.Input, cli.Quiet)
	if err != nil {
		return err
	}

	fmt.Printf("adler32 %08x  xxhash64 %016x  %s\n", adler32.Checksum(data), compression.Fingerprint(data), c.Input)
	return nil
}

// readInput reads the whole of path, showing a byte progress bar on stderr
// for regular files unless quiet is set.
func readInput(path string, quiet bool) ([]byte, error) {
	if path == stdio {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "unable to read stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open input")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "unable to stat input")
	}

	var r io.Reader = f
	if !quiet {
		bar := pb.Full.Start64(info.Size())
		bar.Set(pb.Bytes, true)
		defer bar.Finish()
		r = bar.NewProxyReader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read '%s'", path)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if path == stdio {
		_, err := os.Stdout.Write(data)
		return errors.Wrap(err, "unable to write stdout")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "unable to write '%s'", path)
	}
	return nil
}

// compressedName is input with the algorithm's extension appended, or stdout
// when reading from stdin.
func compressedName(input, algorithm, encoding string) string {
	if input == stdio {
		return stdio
	}
	return input + "." + compression.Extension(algorithm, encoding)
}

// decompressedName strips the algorithm's extension from input, or appends
// ".out" when input does not carry it.
func decompressedName(input, algorithm, encoding string) string {
	if input == stdio {
		return stdio
	}
	ext := "." + compression.Extension(algorithm, encoding)
	if base := filepath.Base(input); strings.HasSuffix(base, ext) && base != ext {
		return strings.TrimSuffix(input, ext)
	}
	return input + ".out"
}

func logStats(stats *compression.Stats, dst string) {
	logrus.WithFields(logrus.Fields{
		"algorithm": stats.Algorithm,
		"encoding":  stats.Encoding,
		"in":        stats.OriginalSize,
		"out":       stats.ProcessedSize,
		"ratio":     fmt.Sprintf("%.2f%%", stats.CompressionRatio),
		"output":    dst,
	}).Info("done")
}

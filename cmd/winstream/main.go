// Command winstream inspects and edits binary files through windowed streams.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/winstream/core/binio"
	"github.com/FocuswithJustin/winstream/core/digest"
	"github.com/FocuswithJustin/winstream/core/encoding"
	apperrors "github.com/FocuswithJustin/winstream/core/errors"
	"github.com/FocuswithJustin/winstream/core/layout"
	"github.com/FocuswithJustin/winstream/core/stream"
	"github.com/FocuswithJustin/winstream/internal/config"
	"github.com/FocuswithJustin/winstream/internal/logging"
	"github.com/FocuswithJustin/winstream/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for winstream.
type CLI struct {
	// Global flags
	Config    string `help:"YAML config file (default: $WINSTREAM_CONFIG)" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat string `name:"log-format" help:"Log format: text, json"`
	Endian    string `help:"Byte order: little or big"`
	Encoding  string `help:"Text encoding name, e.g. utf-8, utf-16le, shift_jis"`

	Dump    DumpCmd    `cmd:"" help:"Hex dump a window of a file"`
	Read    ReadCmd    `cmd:"" help:"Decode records described by a layout"`
	String  StringCmd  `cmd:"" help:"Read a null-terminated string"`
	Pad     PadCmd     `cmd:"" help:"Pad the end of a file to a multiple"`
	Extend  ExtendCmd  `cmd:"" help:"Extend a file to a length"`
	Hash    HashCmd    `cmd:"" help:"Hash a window of a file"`

	ShowConfig ShowConfigCmd `cmd:"" name:"show-config" help:"Print the effective configuration as YAML"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// Env is the resolved runtime state handed to every command.
type Env struct {
	Out        io.Writer
	Config     *config.Config
	Endianness binio.Endianness
	Encoding   encoding.Encoding
}

// setup loads the config file, applies flag overrides and initializes
// logging.
func (c *CLI) setup(out io.Writer) (*Env, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Endian != "" {
		cfg.Endianness = c.Endian
	}
	if c.Encoding != "" {
		cfg.Encoding = c.Encoding
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.InitLogger(level, format)

	return &Env{
		Out:        out,
		Config:     cfg,
		Endianness: cfg.ByteOrder(),
		Encoding:   cfg.TextEncoding(),
	}, nil
}

func (e *Env) reader(w *stream.Window) *binio.Reader {
	r := binio.NewReader(w)
	r.Endianness = e.Endianness
	r.Encoding = e.Encoding
	return r
}

func (e *Env) writer(w *stream.Window) *binio.Writer {
	wr := binio.NewWriter(w)
	wr.Endianness = e.Endianness
	wr.Encoding = e.Encoding
	return wr
}

// WindowFlags select a region of the input file.
type WindowFlags struct {
	Offset int64 `help:"Window start in bytes" default:"0"`
	Length int64 `help:"Window length in bytes (-1 for the rest of the file)" default:"-1"`
}

// open returns a read-only window over the selected region of path.
func (f WindowFlags) open(path string) (*stream.Window, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, apperrors.Wrap(err, "invalid path")
	}
	file, err := stream.OpenFile(path, stream.ModeRead)
	if err != nil {
		return nil, err
	}
	if f.Offset == 0 && f.Length == stream.RestOfStore {
		return file, nil
	}
	defer file.Close()
	return stream.OpenFrom(file, f.Offset, f.Length)
}

func parseFill(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid fill byte %q: %w", s, err)
	}
	return byte(v), nil
}

// DumpCmd prints a hex dump of a window.
type DumpCmd struct {
	Path string `arg:"" help:"File to dump" type:"existingfile"`
	WindowFlags `embed:""`
}

func (c *DumpCmd) Run(env *Env) error {
	w, err := c.open(c.Path)
	if err != nil {
		return err
	}
	defer w.Close()

	d := hex.Dumper(env.Out)
	buf := make([]byte, env.Config.ChunkSize)
	for {
		n, err := w.Read(buf)
		if n > 0 {
			if _, werr := d.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return d.Close()
}

// ReadCmd decodes records from a window.
type ReadCmd struct {
	Path   string `arg:"" help:"File to read" type:"existingfile"`
	Layout string `arg:"" help:"Record layout, or @file to read it from a file"`
	Count  int    `help:"Number of consecutive records to decode" default:"1"`
	Format string `help:"Output format: text, yaml, json, cbor" enum:"text,yaml,json,cbor" default:"text"`
	WindowFlags `embed:""`
}

func (c *ReadCmd) Run(env *Env) error {
	src := c.Layout
	if name, ok := strings.CutPrefix(src, "@"); ok {
		data, err := validation.ReadLimited(name, validation.MaxLayoutSize)
		if err != nil {
			return apperrors.Wrap(err, "failed to read layout")
		}
		src = string(data)
	}
	l, err := layout.Parse(src)
	if err != nil {
		return err
	}

	w, err := c.open(c.Path)
	if err != nil {
		return err
	}
	defer w.Close()

	r := env.reader(w)
	var records [][]fieldOutput
	for i := 0; i < c.Count; i++ {
		rec, err := l.Decode(r)
		if c.Format != "text" {
			records = append(records, recordOutput(rec))
		} else {
			if c.Count > 1 {
				fmt.Fprintf(env.Out, "# record %d\n", i)
			}
			for _, f := range rec {
				fmt.Fprintf(env.Out, "%-16s @%-8d %s\n", f.Name, f.Offset, f)
			}
		}
		if err != nil {
			err = apperrors.Wrapf(err, "record %d", i)
			if records != nil {
				err = errors.Join(err, writeStructured(env.Out, c.Format, records))
			}
			return err
		}
	}
	if records != nil {
		return writeStructured(env.Out, c.Format, records)
	}
	return nil
}

// StringCmd reads one null-terminated string.
type StringCmd struct {
	Path   string `arg:"" help:"File to read" type:"existingfile"`
	Offset int64  `help:"Offset of the string" default:"0"`
}

func (c *StringCmd) Run(env *Env) error {
	w, err := WindowFlags{Offset: c.Offset, Length: stream.RestOfStore}.open(c.Path)
	if err != nil {
		return err
	}
	defer w.Close()

	s, err := env.reader(w).ReadString(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, encoding.EscapeControl(s))
	return nil
}

// openForUpdate opens the whole of path for reading and writing.
func openForUpdate(path string) (*stream.Window, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, apperrors.Wrap(err, "invalid path")
	}
	return stream.OpenFile(path, stream.ModeReadWrite)
}

// PadCmd pads a file so its length is a multiple of a block size.
type PadCmd struct {
	Path     string `arg:"" help:"File to pad" type:"path"`
	Multiple int    `help:"Block size to align to" required:""`
	Fill     string `help:"Fill byte (decimal or 0x-prefixed hex)" default:"0"`
}

func (c *PadCmd) Run(env *Env) error {
	fill, err := parseFill(c.Fill)
	if err != nil {
		return err
	}
	w, err := openForUpdate(c.Path)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	if err := env.writer(w).WritePadding(fill, c.Multiple, false); err != nil {
		return err
	}
	return printLength(env.Out, w)
}

// ExtendCmd grows a file to a length.
type ExtendCmd struct {
	Path   string `arg:"" help:"File to extend" type:"path"`
	Length int64  `help:"Target length in bytes" required:""`
	Fill   string `help:"Fill byte (decimal or 0x-prefixed hex)" default:"0"`
}

func (c *ExtendCmd) Run(env *Env) error {
	fill, err := parseFill(c.Fill)
	if err != nil {
		return err
	}
	w, err := openForUpdate(c.Path)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := env.writer(w).WriteUntilLength(fill, c.Length); err != nil {
		return err
	}
	return printLength(env.Out, w)
}

func printLength(out io.Writer, w *stream.Window) error {
	n, err := w.Length()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "length %d\n", n)
	return nil
}

// HashCmd prints SHA-256 and BLAKE3 digests of a window.
type HashCmd struct {
	Path   string `arg:"" help:"File to hash" type:"existingfile"`
	Verify string `help:"Fail unless the window matches this SHA-256 or BLAKE3 digest"`
	Format string `help:"Output format: text, yaml, json, cbor" enum:"text,yaml,json,cbor" default:"text"`
	WindowFlags `embed:""`
}

func (c *HashCmd) Run(env *Env) error {
	w, err := c.open(c.Path)
	if err != nil {
		return err
	}
	defer w.Close()

	if c.Verify != "" {
		if err := digest.Verify(w, c.Verify); err != nil {
			return err
		}
		fmt.Fprintln(env.Out, "OK")
		return nil
	}

	sum, err := digest.Sum(w)
	if err != nil {
		return err
	}
	if c.Format != "text" {
		return writeStructured(env.Out, c.Format, sum)
	}
	fmt.Fprintf(env.Out, "sha256  %s\nblake3  %s\nsize    %d\n", sum.SHA256, sum.BLAKE3, sum.Size)
	return nil
}

// ShowConfigCmd prints the configuration after flag overrides.
type ShowConfigCmd struct{}

func (c *ShowConfigCmd) Run(env *Env) error {
	data, err := env.Config.Marshal()
	if err != nil {
		return err
	}
	_, err = env.Out.Write(data)
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(env *Env) error {
	fmt.Fprintf(env.Out, "winstream version %s\n", version)
	return nil
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("winstream"),
		kong.Description("Windowed binary stream inspector"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}
}

// execute runs the selected command and reports windows left open.
func execute(ctx *kong.Context, cli *CLI, out io.Writer) error {
	env, err := cli.setup(out)
	if err != nil {
		return err
	}
	log := logging.LoggerFromContext(logging.WithCommand(context.Background(), ctx.Command()))
	log.Debug("running command", "endianness", env.Endianness.String(), "encoding", env.Encoding.Name())
	err = ctx.Run(env)
	if err != nil {
		log.Debug("command failed", "error", err)
	}
	if live := stream.LiveWindows(); live != 0 {
		logging.WindowLeak(ctx.Command(), live)
	}
	return err
}

// run parses args and executes them, for tests.
func run(args []string, out io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli, append(kongOptions(), kong.Writers(out, out))...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return execute(ctx, &cli, out)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kongOptions()...)
	err := execute(ctx, &cli, os.Stdout)
	ctx.FatalIfErrorf(err)
}

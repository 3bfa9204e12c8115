package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wirechan/channel"
	"github.com/wippyai/wirechan/codec"
	"github.com/wippyai/wirechan/internal/config"
	"github.com/wippyai/wirechan/internal/observability"
	"github.com/wippyai/wirechan/internal/sample"
)

type options struct {
	configPath  string
	typeName    string
	encodePath  string
	decodePath  string
	outPath     string
	schema      bool
	trace       bool
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file (optional)")
	flag.StringVar(&opts.typeName, "type", "", "Wire type name ("+strings.Join(documentNames(), ", ")+")")
	flag.StringVar(&opts.encodePath, "encode", "", "YAML value to encode (- for stdin)")
	flag.StringVar(&opts.decodePath, "decode", "", "Binary stream to decode (- for stdin)")
	flag.StringVar(&opts.outPath, "out", "", "Output file (default stdout)")
	flag.BoolVar(&opts.schema, "schema", false, "Print registered types and wire shapes")
	flag.BoolVar(&opts.trace, "trace", false, "Print one line per dispatched value")
	flag.BoolVar(&opts.interactive, "i", false, "Browse the decode trace in a TUI")
	flag.Parse()

	if !opts.schema && opts.encodePath == "" && opts.decodePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -schema")
		fmt.Fprintln(os.Stderr, "       inspect -type <name> -encode <value.yaml> [-out file]")
		fmt.Fprintln(os.Stderr, "       inspect -type <name> -decode <stream.bin> [-trace | -i]")
		os.Exit(1)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, opts, os.Stdin, os.Stdout); err != nil {
		logger.Debug("inspect failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options, stdin io.Reader, stdout io.Writer) error {
	reg, err := sample.NewRegistry()
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	out := stdout
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch {
	case opts.schema:
		return printSchema(reg, out)
	case opts.encodePath != "":
		doc, err := lookupDocument(opts.typeName)
		if err != nil {
			return err
		}
		data, err := readInput(opts.encodePath, stdin)
		if err != nil {
			return err
		}
		return encode(cfg, reg, doc, data, out)
	default:
		doc, err := lookupDocument(opts.typeName)
		if err != nil {
			return err
		}
		data, err := readInput(opts.decodePath, stdin)
		if err != nil {
			return err
		}
		if opts.interactive {
			return runInteractive(cfg, reg, doc, data)
		}
		return decode(cfg, reg, doc, data, opts.trace, out)
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func printSchema(reg *codec.Registry, out io.Writer) error {
	for _, d := range reg.Describe() {
		if _, err := fmt.Fprintf(out, "%-36s %4d  %s\n", d.Type, d.MinSize, d.Shape); err != nil {
			return err
		}
	}
	return nil
}

// encode writes doc's binary form to out, or a hex dump when out is a terminal.
func encode(cfg *config.Config, reg *codec.Registry, doc document, value []byte, out io.Writer) error {
	var buf bytes.Buffer
	ch, err := channel.NewWriter(reg, &buf, cfg.ChannelOptions()...)
	if err != nil {
		return err
	}
	if err := doc.encode(ch, value); err != nil {
		return fmt.Errorf("encode %s: %w", doc.name, err)
	}
	if err := ch.Close(); err != nil {
		return err
	}

	if isTerminal(out) {
		_, err = io.WriteString(out, hex.Dump(buf.Bytes()))
		return err
	}
	_, err = out.Write(buf.Bytes())
	return err
}

func decode(cfg *config.Config, reg *codec.Registry, doc document, data []byte, trace bool, out io.Writer) error {
	v, events, err := decodeTraced(cfg, reg, doc, data)
	if trace {
		for _, ev := range events {
			if _, werr := fmt.Fprintln(out, formatEvent(ev)); werr != nil {
				return werr
			}
		}
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", doc.name, err)
	}

	text, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("render %s: %w", doc.name, err)
	}
	_, err = out.Write(text)
	return err
}

// decodeTraced decodes one value and returns the trace of every value
// dispatched along the way, including those before a failure.
func decodeTraced(cfg *config.Config, reg *codec.Registry, doc document, data []byte) (any, []channel.Event, error) {
	var rec channel.Recorder
	opts := append(cfg.ChannelOptions(), channel.WithTracer(rec.Record))
	ch, err := channel.NewReader(reg, bytes.NewReader(data), opts...)
	if err != nil {
		return nil, nil, err
	}
	v, err := doc.decode(ch)
	if err == nil && ch.Offset() != int64(len(data)) {
		err = fmt.Errorf("%d trailing bytes after offset %d", int64(len(data))-ch.Offset(), ch.Offset())
	}
	return v, rec.Events(), err
}

func formatEvent(ev channel.Event) string {
	status := ""
	if ev.Err != nil {
		status = "  ! " + ev.Err.Error()
	}
	return fmt.Sprintf("%6d..%-6d %s%s%s", ev.Start, ev.End, strings.Repeat("  ", ev.Depth), ev.Type, status)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Command cborpipe converts between CBOR, JSON and diagnostic notation
// on stdin/stdout or files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	cbor "github.com/synadia-labs/cborium"
)

// CLI defines the cborpipe command-line interface.
//
// We deliberately keep it minimal: each subcommand reads one input
// (file or stdin), converts it, and writes to one output (file or
// stdout).
type CLI struct {
	Json2cbor Json2cborCmd `cmd:"" name:"json2cbor" help:"Convert a JSON document to canonical CBOR."`
	Cbor2json Cbor2jsonCmd `cmd:"" name:"cbor2json" help:"Convert CBOR items to JSON, one document per line."`
	Diag      DiagCmd      `cmd:"" name:"diag" help:"Render CBOR items in RFC 8949 diagnostic notation."`
}

type common struct {
	Input  string `short:"i" help:"Input file (defaults to stdin)"`
	Output string `short:"o" help:"Output file (defaults to stdout)"`
}

func (c *common) readAll() ([]byte, error) {
	if c.Input == "" || c.Input == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(c.Input)
}

func (c *common) writer() (io.WriteCloser, error) {
	if c.Output == "" || c.Output == "-" {
		return os.Stdout, nil
	}
	return os.Create(c.Output)
}

func (c *common) emit(out []byte) error {
	w, err := c.writer()
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if w != os.Stdout {
		return w.Close()
	}
	return nil
}

// Json2cborCmd converts one JSON document to canonical CBOR.
type Json2cborCmd struct {
	common
	SelfDescribe bool `help:"Prefix the output with the self-describe tag (55799)."`
}

func (c *Json2cborCmd) Run() error {
	in, err := c.readAll()
	if err != nil {
		return err
	}
	var out []byte
	if c.SelfDescribe {
		out = cbor.AppendSelfDescribe(out)
	}
	out, err = cbor.FromJSON(out, in)
	if err != nil {
		return err
	}
	return c.emit(out)
}

// Cbor2jsonCmd converts a CBOR sequence to newline-separated JSON.
type Cbor2jsonCmd struct {
	common
}

func (c *Cbor2jsonCmd) Run() error {
	in, err := c.readAll()
	if err != nil {
		return err
	}
	var out []byte
	for len(in) > 0 {
		in, _, err = cbor.StripSelfDescribe(in)
		if err != nil {
			return err
		}
		var doc []byte
		doc, in, err = cbor.ToJSON(in)
		if err != nil {
			return fmt.Errorf("cbor2json: %w", err)
		}
		out = append(out, doc...)
		out = append(out, '\n')
	}
	return c.emit(out)
}

// DiagCmd renders a CBOR sequence in diagnostic notation.
type DiagCmd struct {
	common
}

func (c *DiagCmd) Run() error {
	in, err := c.readAll()
	if err != nil {
		return err
	}
	s, err := cbor.DiagDocument(in)
	if err != nil {
		return err
	}
	return c.emit(append([]byte(s), '\n'))
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cborpipe"),
		kong.Description("Pipe CBOR to and from JSON and diagnostic notation."),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

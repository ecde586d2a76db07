package main

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/winstream/core/layout"
)

// cborMode encodes with Core Deterministic Encoding so equal records give
// equal bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("winstream: CBOR encoder initialization failed: " + err.Error())
	}
}

// fieldOutput is the structured form of one decoded field.
type fieldOutput struct {
	Name   string `json:"name" yaml:"name"`
	Offset int64  `json:"offset" yaml:"offset"`
	Value  any    `json:"value" yaml:"value"`
}

func recordOutput(rec layout.Record) []fieldOutput {
	fields := make([]fieldOutput, len(rec))
	for i, f := range rec {
		fields[i] = fieldOutput{Name: f.Name, Offset: f.Offset, Value: f.Value}
	}
	return fields
}

// writeStructured encodes v to out as yaml, json or cbor.
func writeStructured(out io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "cbor":
		data, err := cborMode.Marshal(v)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

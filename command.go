package muxschema

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// RunSchemaCommand implements the "schema" subcommand: it builds the
// document for the router and writes it formatted to stdout, or to the
// file given with --output. An output path ending in .yaml or .yml
// switches the encoding to YAML.
//
//	if len(os.Args) > 1 && os.Args[1] == "schema" {
//	    err := spec.RunSchemaCommand(r, os.Args[2:], os.Stdout)
//	    ...
//	}
func (s *Spec) RunSchemaCommand(r *mux.Router, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(stdout)
	output := fs.String("output", "", "write the document to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := s.Build(r)
	if err != nil {
		return err
	}

	var data []byte
	if hasYAMLExt(*output) {
		data, err = yaml.Marshal(doc)
	} else {
		// encoding/json, not the conversion codec: Schema omission relies
		// on omitzero, which goccy does not implement.
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(*output, data, 0o644)
}

func hasYAMLExt(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

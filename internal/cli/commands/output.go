package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/schemascan/internal/cli/ui"
	"github.com/conduit-lang/schemascan/internal/docs"
	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
)

const (
	formatJSON       = "json"
	formatJSONSchema = "jsonschema"
	formatTable      = "table"
)

// render writes models in format. A single model is written on its own;
// several are written as a JSON array.
func render(w io.Writer, models []*model.Model, format string, noColor bool) error {
	switch format {
	case formatJSON:
		var data []byte
		var err error
		if len(models) == 1 {
			data, err = model.Serialize(models[0])
		} else {
			data, err = json.MarshalIndent(models, "", "  ")
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case formatJSONSchema:
		gen := docs.NewJSONSchemaGenerator(docs.Config{})
		schemas := make([]any, 0, len(models))
		for _, m := range models {
			schema, err := gen.Generate(m)
			if err != nil {
				return err
			}
			schemas = append(schemas, schema)
		}
		var v any = schemas
		if len(schemas) == 1 {
			v = schemas[0]
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON schema: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case formatTable:
		for i, m := range models {
			if i > 0 {
				fmt.Fprintln(w)
			}
			renderTable(w, m, noColor)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, m *model.Model, noColor bool) {
	for _, t := range m.Types {
		title := "Type " + t.Name
		if t.Name != t.ID {
			title += " (" + t.ID + ")"
		}
		if t.Deprecated {
			title += " " + deprecationNote(t.Since)
		}
		ui.Header(w, title, noColor)

		table := ui.NewTable(w, noColor, "PROPERTY", "TYPE", "REQUIRED", "NULLABLE", "DEFAULT", "NOTES")
		for _, p := range t.Properties {
			var notes []string
			if p.DeclaredName != p.Name {
				notes = append(notes, "declared "+p.DeclaredName)
			}
			if p.Deprecated {
				notes = append(notes, deprecationNote(p.Since))
			}
			table.AddRow(p.Name, p.Type.String(), yesNo(p.Required), yesNo(p.Nullable), defaultCell(p.HasDefault, p.Default), strings.Join(notes, "; "))
		}
		table.Render()
		fmt.Fprintln(w)
	}

	if len(m.Operations) == 0 {
		return
	}

	ui.Header(w, "Operations", noColor)
	table := ui.NewTable(w, noColor, "ROUTE", "METHOD", "PARAMETERS", "RESULT", "NOTES")
	for _, op := range m.Operations {
		params := make([]string, 0, len(op.Parameters))
		for _, p := range op.Parameters {
			param := p.Name + " " + p.Type.String()
			if p.Required {
				param += "!"
			}
			params = append(params, param)
		}

		result := "void"
		if op.Result != nil {
			result = op.Result.String()
		}

		var notes []string
		if op.Streaming {
			notes = append(notes, "streaming")
		}
		if op.Deprecated {
			notes = append(notes, deprecationNote(op.Since))
		}
		if n := len(op.Alternates); n > 0 {
			notes = append(notes, strconv.Itoa(n)+" overload(s) dropped")
		}

		table.AddRow(op.Route, op.Owner+"."+op.Method, strings.Join(params, ", "), result, strings.Join(notes, "; "))
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func defaultCell(has bool, expr string) string {
	if !has {
		return "-"
	}
	if expr == "" {
		return "(implicit)"
	}
	return expr
}

func deprecationNote(since string) string {
	if since == "" {
		return "deprecated"
	}
	return "deprecated since " + since
}

// reportError writes err to w unless it was already reported
func reportError(w io.Writer, err error, noColor bool) {
	if errors.Is(err, errReported) {
		return
	}
	if se, ok := scanerrors.As(err); ok {
		ui.WriteScanError(w, se, noColor)
		return
	}
	errorColor := color.New(color.FgRed, color.Bold)
	if noColor {
		errorColor.DisableColor()
	}
	errorColor.Fprintf(w, "Error: %v\n", err)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/promptmeta"
	"github.com/simonhull/promptmeta/internal/config"
)

// report is the serialized form of one image.
type report struct {
	Path     string                 `json:"path" yaml:"path"`
	Format   string                 `json:"format" yaml:"format"`
	Width    int                    `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int                    `json:"height,omitempty" yaml:"height,omitempty"`
	Result   promptmeta.ParseResult `json:"result" yaml:"result"`
	Warnings []string               `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newReport(img *promptmeta.Image, raw bool) report {
	r := report{
		Path:   img.Path,
		Format: img.Format.String(),
		Width:  img.Width,
		Height: img.Height,
		Result: img.Result,
	}
	if !raw {
		r.Result.Raw = ""
		r.Result.RawParts = nil
	}
	for _, w := range img.Warnings {
		r.Warnings = append(r.Warnings, w.String())
	}
	return r
}

func render(w io.Writer, output string, images []*promptmeta.Image, raw bool) error {
	reports := make([]report, len(images))
	for i, img := range images {
		reports[i] = newReport(img, raw)
	}

	if output != config.OutputText {
		return encode(w, output, reports)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderText(w, r, raw)
	}
	return nil
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, output string, v any) error {
	switch output {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}
}

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	toolColor    = color.New(color.FgGreen, color.Bold)
	unknownColor = color.New(color.FgYellow)
	keyColor     = color.New(color.FgWhite, color.Bold)
	warnColor    = color.New(color.FgYellow)
)

func renderText(w io.Writer, r report, raw bool) {
	titleColor.Fprintln(w, r.Path)
	if r.Width > 0 && r.Height > 0 {
		fmt.Fprintf(w, "%s, %dx%d\n", r.Format, r.Width, r.Height)
	} else {
		fmt.Fprintln(w, r.Format)
	}

	res := r.Result
	keyColor.Fprint(w, "Tool: ")
	if res.IsUnknown() {
		unknownColor.Fprintln(w, res.Tool)
	} else {
		toolColor.Fprintln(w, res.Tool)
	}

	section(w, "Positive", res.Positive)
	section(w, "Negative", res.Negative)

	if len(res.SettingEntries) > 0 {
		keyColor.Fprintln(w, "Settings:")
		width := 0
		for _, e := range res.SettingEntries {
			width = max(width, len(e.Key))
		}
		for _, e := range res.SettingEntries {
			fmt.Fprintf(w, "  %-*s  %s\n", width, e.Key, e.Value)
		}
	}

	if raw {
		section(w, "Raw", res.CombinedRaw())
	}

	for _, warning := range r.Warnings {
		warnColor.Fprintf(w, "warning: %s\n", warning)
	}
}

func section(w io.Writer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	keyColor.Fprintf(w, "%s:\n", title)
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

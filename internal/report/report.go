// Package report renders probe results for people and for build tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"

	"cdetect/internal/toolchain"
)

// Format selects the output encoding.
type Format string

const (
	FormatPretty  Format = "pretty"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPretty, FormatJSON, FormatMsgpack:
		return f, nil
	case "":
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: pretty, json, msgpack)", s)
	}
}

// Attempt is one probed standard.
type Attempt struct {
	Standard string `json:"standard" msgpack:"standard"`
	ExitCode int32  `json:"exit_code" msgpack:"exit_code"`
}

// Entry is the serialisable view of one probed compiler.
type Entry struct {
	Compiler     string    `json:"compiler" msgpack:"compiler"`
	Flavour      string    `json:"flavour" msgpack:"flavour"`
	Target       string    `json:"target,omitempty" msgpack:"target,omitempty"`
	ExtraOpts    []string  `json:"extra_opts,omitempty" msgpack:"extra_opts,omitempty"`
	CompileFlags []string  `json:"compile_flags,omitempty" msgpack:"compile_flags,omitempty"`
	LinkFlags    []string  `json:"link_flags,omitempty" msgpack:"link_flags,omitempty"`
	Standards    []string  `json:"standards" msgpack:"standards"`
	Attempts     []Attempt `json:"attempts,omitempty" msgpack:"attempts,omitempty"`
	Error        string    `json:"error,omitempty" msgpack:"error,omitempty"`
}

// NewEntry converts probe output. outcomes may be nil.
func NewEntry(props *toolchain.Properties, outcomes []toolchain.Outcome, probeErr error) Entry {
	e := Entry{Standards: []string{}}
	if props != nil {
		e.Compiler = props.Path
		e.Flavour = props.Flavour.String()
		e.ExtraOpts = props.ExtraOpts
		e.CompileFlags = props.CompileFlags
		e.LinkFlags = props.LinkFlags
		if props.Target != nil {
			e.Target = props.Target.String()
		}
		for _, std := range props.Standards {
			e.Standards = append(e.Standards, std.String())
		}
	}
	for _, o := range outcomes {
		e.Attempts = append(e.Attempts, Attempt{Standard: o.Standard.String(), ExitCode: o.ExitCode})
	}
	if probeErr != nil {
		e.Error = probeErr.Error()
	}
	return e
}

// Options tweaks rendering.
type Options struct {
	Format  Format
	Verbose bool // pretty only: list every attempt
}

// Write renders entries to w.
func Write(w io.Writer, entries []Entry, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(entries)
	case FormatPretty, "":
		return writePretty(w, entries, opts.Verbose)
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
}

// Decode reads entries written with FormatMsgpack.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return entries, nil
}

var (
	headerColor = color.New(color.Bold)
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

func writePretty(w io.Writer, entries []Entry, verbose bool) error {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(headerColor.Sprint(e.Compiler))
		sb.WriteString(dimColor.Sprintf(" (%s", e.Flavour))
		if e.Target != "" {
			sb.WriteString(dimColor.Sprintf(", %s", e.Target))
		}
		sb.WriteString(dimColor.Sprint(")"))
		sb.WriteString("\n")

		if e.Error != "" {
			sb.WriteString("  ")
			sb.WriteString(failColor.Sprint("error: "))
			sb.WriteString(e.Error)
			sb.WriteString("\n")
			continue
		}

		if verbose && len(e.Attempts) > 0 {
			for _, a := range e.Attempts {
				if a.ExitCode == 0 {
					fmt.Fprintf(&sb, "  %s -std=%s\n", okColor.Sprint("✓"), a.Standard)
				} else {
					fmt.Fprintf(&sb, "  %s -std=%s %s\n", failColor.Sprint("✗"), a.Standard, dimColor.Sprintf("(exit %d)", a.ExitCode))
				}
			}
			continue
		}

		if len(e.Standards) == 0 {
			sb.WriteString("  ")
			sb.WriteString(failColor.Sprint("no standards accepted"))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(okColor.Sprint(strings.Join(e.Standards, " ")))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

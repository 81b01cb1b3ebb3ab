package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Report output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes reports to w in the given format.
func Render(w io.Writer, format string, reports ...*Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		for _, r := range reports {
			if err := renderText(w, r); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("scenario: unknown output format %q", format)
	}
}

func renderText(w io.Writer, r *Report) error {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	if _, err := fmt.Fprintf(w, "%s %s (%d steps, %d failures)\n", status, r.Name, len(r.Steps), r.Failures); err != nil {
		return err
	}
	for _, st := range r.Steps {
		line := fmt.Sprintf("  %3d %-6s %-10s", st.Index, st.Op, st.Target)
		switch {
		case st.Op == OpChain:
			line += " " + FormatChain(st.Chain)
		case st.OK:
			line += " ok"
		default:
			line += " rejected: " + st.Error
		}
		if st.Mismatch != "" {
			line += "  !! " + st.Mismatch
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	heads := make([]string, 0, len(r.Final.Chains))
	for h := range r.Final.Chains {
		heads = append(heads, h)
	}
	sort.Strings(heads)
	for _, h := range heads {
		if _, err := fmt.Fprintf(w, "  chain %s: %s\n", h, FormatChain(r.Final.Chains[h])); err != nil {
			return err
		}
	}
	return nil
}

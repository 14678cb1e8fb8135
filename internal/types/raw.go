package types

import "strings"

// BuildCombinedRaw joins titled parts into one diagnostic string.
//
// With no parts raw is returned unchanged. Otherwise each part renders as a
// "### <title>" header line followed by its trimmed body, and parts are
// separated by a blank line. A part with an empty body renders as its header
// alone.
func BuildCombinedRaw(raw string, parts []RawPart) string {
	if len(parts) == 0 {
		return raw
	}
	sections := make([]string, 0, len(parts))
	for _, p := range parts {
		header := strings.TrimSpace("### " + p.Title)
		body := strings.TrimSpace(p.Text)
		if body == "" {
			sections = append(sections, header)
			continue
		}
		sections = append(sections, header+"\n"+body)
	}
	return strings.Join(sections, "\n\n")
}

// JoinNonBlank joins the trimmed non-blank values with sep.
func JoinNonBlank(sep string, values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

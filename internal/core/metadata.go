package core

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gemcook/internal/types"
)

// CookbookMetadata is the input of the metadata.rb emitter.
type CookbookMetadata struct {
	Package      types.Package
	Dependencies []types.Dependency
	// Readme holds the README contents when HasReadme is set.
	Readme    string
	HasReadme bool
}

// Render produces metadata.rb. Optional fields newer than Chef 12.0 are
// guarded with defined? so older clients still load the file.
func (m CookbookMetadata) Render() (string, error) {
	version, err := m.Package.CookbookVersion()
	if err != nil {
		return "", err
	}
	spec := m.Package.Spec

	var buf strings.Builder
	buf.WriteString(m.Package.LicenseHeader)
	fmt.Fprintf(&buf, "name %s\n", rubyInspect(m.Package.CookbookName()))
	fmt.Fprintf(&buf, "version %s\n", rubyInspect(version))
	if spec.Description != "" {
		fmt.Fprintf(&buf, "description %s\n", rubyInspect(spec.Description))
	}
	if m.HasReadme {
		fmt.Fprintf(&buf, "long_description %s\n", rubyInspect(m.Readme))
	}
	if len(spec.Authors) > 0 {
		fmt.Fprintf(&buf, "maintainer %s\n", rubyInspect(strings.Join(spec.Authors, ", ")))
	}
	if len(spec.Email) > 0 {
		fmt.Fprintf(&buf, "maintainer_email %s\n", rubyInspect(strings.Join(spec.Email, ",")))
	}
	if spec.Homepage != "" {
		fmt.Fprintf(&buf, "source_url %s if defined?(source_url)\n", rubyInspect(spec.Homepage))
	}
	if issues := m.Package.IssuesURL(); issues != "" {
		fmt.Fprintf(&buf, "issues_url %s if defined?(issues_url)\n", rubyInspect(issues))
	}
	if len(spec.Licenses) > 0 {
		fmt.Fprintf(&buf, "license %s\n", rubyInspect(strings.Join(spec.Licenses, ", ")))
	}
	for _, dep := range m.Dependencies {
		buf.WriteString("depends " + rubyInspect(dep.Name))
		if !dep.Constraint.IsDefault() {
			buf.WriteString(", " + rubyInspect(dep.Constraint.String()))
		}
		buf.WriteString("\n")
	}
	chefVersion := spec.Metadata[types.MetadataChefVersion]
	if chefVersion == "" {
		chefVersion = types.DefaultChefVersion
	}
	fmt.Fprintf(&buf, "chef_version %s if defined?(chef_version)\n", rubyInspect(chefVersion))
	return buf.String(), nil
}

// rubyInspect quotes s the way Ruby's String#inspect does for UTF-8
// strings, so the result is a valid double-quoted literal.
func rubyInspect(s string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&buf, "\\x%02X", s[i])
			i++
			continue
		}
		i += size
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\f':
			buf.WriteString(`\f`)
		case '\v':
			buf.WriteString(`\v`)
		case '\a':
			buf.WriteString(`\a`)
		case '\b':
			buf.WriteString(`\b`)
		case 0x1b:
			buf.WriteString(`\e`)
		case '#':
			// "#{", "#$" and "#@" would interpolate.
			if i < len(s) && (s[i] == '{' || s[i] == '$' || s[i] == '@') {
				buf.WriteString(`\#`)
			} else {
				buf.WriteByte('#')
			}
		default:
			if unicode.IsPrint(r) {
				buf.WriteRune(r)
			} else {
				fmt.Fprintf(&buf, "\\u%04X", r)
			}
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

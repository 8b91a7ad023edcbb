package checker

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/sepolicy/sechecker/internal/policy"
	"gopkg.in/yaml.v3"
)

// FrameworkVersion is the profile-schema version this package
// understands (spec.md §6 "validated against ... the current framework
// version").
const FrameworkVersion = "1.0"

// profileXML and its children mirror the DTD-shaped document of
// spec.md §6: root <sechecker version="X.Y"> containing <profile
// name="..."> with <desc> and a sequence of <module>, each carrying
// zero or more <option> with <item> children.
type profileXML struct {
	XMLName xml.Name    `xml:"sechecker"`
	Version string      `xml:"version,attr"`
	Profile profileBody `xml:"profile"`
}

type profileBody struct {
	Name    string      `xml:"name,attr"`
	Desc    string      `xml:"desc"`
	Modules []moduleXML `xml:"module"`
}

type moduleXML struct {
	Name    string      `xml:"name,attr"`
	Output  string      `xml:"output,attr"`
	Options []optionXML `xml:"option"`
}

type optionXML struct {
	Name  string    `xml:"name,attr"`
	Items []itemXML `xml:"item"`
}

type itemXML struct {
	Value string `xml:"value,attr"`
}

// ProfileModule is one <module> entry resolved into the types the
// runner/CLI actually consume.
type ProfileModule struct {
	Name    string
	Output  OutputMode
	Options map[string][]string // option name -> item values, override semantics
}

// Profile is a parsed, validated profile document (spec.md §6).
type Profile struct {
	Name    string
	Desc    string
	Modules []ProfileModule
}

// LoadProfile decodes and structurally validates a profile document
// against the shape spec.md §6 describes. No third-party XML/DTD
// validator appears anywhere in the retrieved example pack (checked:
// none of the seven repos import one) so the DTD conformance spec.md
// requires is enforced here by a small hand-written structural check
// layered on encoding/xml's decode, rather than a general schema
// validator — the one ambient concern in this repository built on the
// standard library (see DESIGN.md).
func LoadProfile(r io.Reader) (*Profile, error) {
	var doc profileXML
	var raw bytes.Buffer
	dec := xml.NewDecoder(io.TeeReader(r, &raw))
	dec.Strict = true
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed profile: %v", policy.ErrInput, err)
	}
	scan := xml.NewDecoder(&raw)
	for {
		tok, err := scan.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok {
			switch se.Name.Local {
			case "sechecker", "profile", "desc", "module", "option", "item":
			default:
				return nil, fmt.Errorf("%w: unknown profile element <%s>", policy.ErrInput, se.Name.Local)
			}
		}
	}
	if doc.Version != FrameworkVersion {
		return nil, fmt.Errorf("%w: profile version %q does not match framework version %q", policy.ErrInput, doc.Version, FrameworkVersion)
	}
	if doc.Profile.Name == "" {
		return nil, fmt.Errorf("%w: profile element missing required name attribute", policy.ErrInput)
	}
	if len(doc.Profile.Modules) == 0 {
		return nil, fmt.Errorf("%w: profile %q lists no modules", policy.ErrInput, doc.Profile.Name)
	}

	p := &Profile{Name: doc.Profile.Name, Desc: doc.Profile.Desc}
	for _, m := range doc.Profile.Modules {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: module element missing required name attribute", policy.ErrInput)
		}
		mode, err := ParseOutputMode(m.Output)
		if err != nil {
			return nil, fmt.Errorf("%w: module %q: %v", policy.ErrInput, m.Name, err)
		}
		pm := ProfileModule{Name: m.Name, Output: mode, Options: make(map[string][]string)}
		for _, o := range m.Options {
			if o.Name == "" {
				return nil, fmt.Errorf("%w: option element in module %q missing required name attribute", policy.ErrInput, m.Name)
			}
			values := make([]string, 0, len(o.Items))
			for _, item := range o.Items {
				values = append(values, item.Value)
			}
			pm.Options[o.Name] = values
		}
		p.Modules = append(p.Modules, pm)
	}
	return p, nil
}

// LoadOptionDefaults decodes the optional sechecker.yaml sidecar of
// SPEC_FULL.md §2 into a module-name -> option-name -> values table
// that supplies Option defaults a profile doesn't itself override.
// Profiles remain authoritative: ApplyProfile only ever calls
// SetOption with override=false on an option the profile left
// untouched, never replacing an explicit profile override.
func LoadOptionDefaults(r io.Reader) (map[string]map[string][]string, error) {
	var doc map[string]map[string][]string
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed option defaults file: %v", policy.ErrInput, err)
	}
	return doc, nil
}

// ApplyProfile constructs Modules for every <module> in p (in document
// order), applying option overrides and output modes. sidecar may be
// nil; when present, it supplies defaults for options the profile
// itself didn't set.
func ApplyProfile(p *Profile, sidecar map[string]map[string][]string) ([]Module, map[string]OutputMode, error) {
	mods := make([]Module, 0, len(p.Modules))
	modes := make(map[string]OutputMode, len(p.Modules))
	for _, pm := range p.Modules {
		mod, err := New(pm.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: profile %q: %v", policy.ErrInput, p.Name, err)
		}
		modes[pm.Name] = pm.Output
		opts := mod.Options()
		for name, values := range pm.Options {
			if opt, ok := opts[name]; ok {
				opt.SetOption(values, true)
			}
		}
		if defaults, ok := sidecar[pm.Name]; ok {
			for name, values := range defaults {
				if opt, ok := opts[name]; ok && len(pm.Options[name]) == 0 {
					opt.SetOption(values, false)
				}
			}
		}
		mods = append(mods, mod)
	}
	return mods, modes, nil
}

package fscontext

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sepolicy/sechecker/internal/policy"
)

const noLabel = "<<none>>"

// Load reads the file_contexts text format of spec.md §6: line-oriented
// UTF-8, each non-blank non-comment line "path-regex WS [type-spec WS]
// context". pol may be nil, in which case contexts are stored verbatim
// without validation.
func Load(r io.Reader, pol *policy.Model) (*List, error) {
	list := NewList(pol)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseLine(line, list.Model, len(list.Entries))
		if err != nil {
			return nil, fmt.Errorf("%w: file_contexts line %d: %v", policy.ErrInput, lineNo, err)
		}
		list.Entries = append(list.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading file_contexts: %v", policy.ErrResource, err)
	}
	return list, nil
}

func parseLine(line string, pol *policy.Model, id int) (*Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("expected at least a path and a context, got %q", line)
	}

	entry := &Entry{ID: id, Pattern: fields[0], ObjType: ObjAny}
	rest := fields[1:]
	if objType, ok := objectTypeSpecs[rest[0]]; ok {
		entry.ObjType = objType
		rest = rest[1:]
	}
	if len(rest) != 1 {
		return nil, fmt.Errorf("expected exactly one context field, got %d", len(rest))
	}
	ctxField := rest[0]

	if ctxField == noLabel {
		entry.HasContext = false
		return entry, nil
	}
	entry.HasContext = true

	parts := strings.SplitN(ctxField, ":", 4)
	if len(parts) < 3 {
		return nil, fmt.Errorf("malformed context %q", ctxField)
	}
	entry.User, entry.Role, entry.Type = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		entry.HasRange = true
		entry.RangeText = parts[3]
	}

	if pol != nil {
		if err := validateContext(pol, entry); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

func validateContext(pol *policy.Model, e *Entry) error {
	if _, ok := pol.Users.Lookup(e.User); !ok {
		return fmt.Errorf("%w: unknown user %q", policy.ErrLookup, e.User)
	}
	if _, ok := pol.Roles.Lookup(e.Role); !ok {
		return fmt.Errorf("%w: unknown role %q", policy.ErrLookup, e.Role)
	}
	if _, ok := pol.Types.Lookup(e.Type); !ok {
		return fmt.Errorf("%w: unknown type %q", policy.ErrLookup, e.Type)
	}
	if e.HasRange {
		rng, err := parseRange(e.RangeText)
		if err != nil {
			return err
		}
		for _, lvl := range []policy.RawLevel{rng.Low, rng.High} {
			if lvl.Sensitivity == "" {
				continue
			}
			if _, ok := pol.Sensitivities.Lookup(lvl.Sensitivity); !ok {
				return fmt.Errorf("%w: unknown sensitivity %q", policy.ErrLookup, lvl.Sensitivity)
			}
			for _, c := range lvl.Categories {
				if _, ok := pol.Categories.Lookup(c); !ok {
					return fmt.Errorf("%w: unknown category %q", policy.ErrLookup, c)
				}
			}
		}
		e.MLSRange = resolveRangeReadOnly(pol, rng)
	}
	return nil
}

// resolveRangeReadOnly interns nothing: every symbol was already
// confirmed present by validateContext, so Lookup (not Intern) is safe
// and keeps this parse path from mutating the model's symbol tables.
func resolveRangeReadOnly(pol *policy.Model, rng policy.RawRange) policy.Range {
	low := resolveLevelReadOnly(pol, rng.Low)
	if rng.High.Sensitivity == "" {
		return policy.NewRange(low, policy.Level{})
	}
	return policy.NewRange(low, resolveLevelReadOnly(pol, rng.High))
}

func resolveLevelReadOnly(pol *policy.Model, lvl policy.RawLevel) policy.Level {
	sensID, _ := pol.Sensitivities.Lookup(lvl.Sensitivity)
	catIDs := make([]uint32, 0, len(lvl.Categories))
	for _, c := range lvl.Categories {
		if id, ok := pol.Categories.Lookup(c); ok {
			catIDs = append(catIDs, uint32(id))
		}
	}
	return policy.NewLevel(sensID, catIDs...)
}

// parseRange parses the conventional SELinux range-string notation:
// "low" or "low-high", each level "sensitivity" or
// "sensitivity:cat[,cat...]" with a contiguous run written "cN.cM".
func parseRange(s string) (policy.RawRange, error) {
	var low, high string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		low, high = s[:i], s[i+1:]
	} else {
		low = s
	}
	lowLevel, err := parseLevel(low)
	if err != nil {
		return policy.RawRange{}, err
	}
	rng := policy.RawRange{Low: lowLevel}
	if high != "" {
		highLevel, err := parseLevel(high)
		if err != nil {
			return policy.RawRange{}, err
		}
		rng.High = highLevel
	}
	return rng, nil
}

func parseLevel(s string) (policy.RawLevel, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return policy.RawLevel{Sensitivity: s}, nil
	}
	sens := s[:i]
	cats, err := parseCategoryList(s[i+1:])
	if err != nil {
		return policy.RawLevel{}, err
	}
	return policy.RawLevel{Sensitivity: sens, Categories: cats}, nil
}

func parseCategoryList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if dot := strings.IndexByte(tok, '.'); dot >= 0 {
			names, err := expandCategoryRange(tok[:dot], tok[dot+1:])
			if err != nil {
				return nil, err
			}
			out = append(out, names...)
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

// expandCategoryRange expands a contiguous "cN.cM" run into individual
// category names, the inverse of policy.FormatCategoryNames.
func expandCategoryRange(lo, hi string) ([]string, error) {
	loNum, err := categoryNumber(lo)
	if err != nil {
		return nil, err
	}
	hiNum, err := categoryNumber(hi)
	if err != nil {
		return nil, err
	}
	if hiNum < loNum {
		return nil, fmt.Errorf("malformed category range %q.%q", lo, hi)
	}
	out := make([]string, 0, hiNum-loNum+1)
	for n := loNum; n <= hiNum; n++ {
		out = append(out, "c"+strconv.Itoa(n))
	}
	return out, nil
}

func categoryNumber(name string) (int, error) {
	if !strings.HasPrefix(name, "c") {
		return 0, fmt.Errorf("malformed category name %q", name)
	}
	return strconv.Atoi(name[1:])
}

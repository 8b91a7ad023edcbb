package expand

import (
	"fmt"
	"sort"

	"github.com/sepolicy/sechecker/internal/policy"
)

// syntheticAttrName follows spec.md §3: "@ttrNNNN (padded to four
// digits, stable over a single load)".
func syntheticAttrName(n int) string {
	return fmt.Sprintf("@ttr%04d", n)
}

// buildAttributesFromMap reads the attribute-to-type bitmap and
// materializes an attribute symbol per row (a row with no members
// still yields a declared, memberless attribute), generating a
// synthetic name for an unnamed row and linking it to each member type
// (spec.md §4.2 build_attributes_from_map).
func buildAttributesFromMap(m *policy.Model, raw policy.RawImage) (int, error) {
	attrMap := raw.RawAttributeMap()
	names := make([]string, 0, len(attrMap))
	for name := range attrMap {
		names = append(names, name)
	}
	sort.Strings(names)

	synth := 0
	for _, name := range names {
		attrName := name
		if attrName == "" {
			synth++
			attrName = syntheticAttrName(synth)
		}

		var attrID policy.ID
		if existing, ok := m.Types.Lookup(attrName); ok {
			if !m.IsAttributeID(existing) {
				return synth, fmt.Errorf("%w: attribute %q collides with an existing type symbol", policy.ErrPolicyInconsistent, attrName)
			}
			attrID = existing
		} else {
			attrID = m.Types.Intern(attrName)
			m.MarkAttribute(attrID)
		}

		members := attrMap[name]
		sortedMembers := append([]string(nil), members...)
		sort.Strings(sortedMembers)
		for _, typeName := range sortedMembers {
			typeID, ok := m.Types.Lookup(typeName)
			if !ok {
				return synth, fmt.Errorf("%w: attribute %q has unknown member type %q", policy.ErrPolicyInconsistent, attrName, typeName)
			}
			if m.IsAttributeID(typeID) {
				return synth, fmt.Errorf("%w: attribute %q lists attribute %q as a member type", policy.ErrPolicyInconsistent, attrName, typeName)
			}
			m.SetAttributeMember(attrID, typeID)
		}
	}
	return synth, nil
}

// fillAttributeHoles materializes n synthetic, memberless attribute
// symbols for ids a kernel image allocated but never named or populated
// (spec.md §4.2 fill_attribute_holes). It must run after
// buildAttributesFromMap so the synthetic counter continues from where
// that pass left off.
func fillAttributeHoles(m *policy.Model, raw policy.RawImage, lastSynth int) {
	n := raw.RawEmptyAttributeHoles()
	for i := 0; i < n; i++ {
		lastSynth++
		name := syntheticAttrName(lastSynth)
		id := m.Types.Intern(name)
		m.MarkAttribute(id)
	}
}

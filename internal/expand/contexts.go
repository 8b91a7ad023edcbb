package expand

import (
	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/policy"
)

// resolveLevel interns a raw level's sensitivity and category names and
// returns the corresponding policy.Level.
func resolveLevel(m *policy.Model, lvl policy.RawLevel) policy.Level {
	sensID := m.Sensitivities.Intern(lvl.Sensitivity)
	catIDs := make([]uint32, 0, len(lvl.Categories))
	for _, c := range lvl.Categories {
		catIDs = append(catIDs, uint32(m.Categories.Intern(c)))
	}
	return policy.NewLevel(sensID, catIDs...)
}

func resolveRange(m *policy.Model, r policy.RawRange) policy.Range {
	low := resolveLevel(m, r.Low)
	if r.High.Sensitivity == "" {
		return policy.NewRange(low, policy.Level{})
	}
	high := resolveLevel(m, r.High)
	return policy.NewRange(low, high)
}

func resolveContext(m *policy.Model, rc policy.RawContext) policy.Context {
	ctx := policy.Context{
		User: m.Users.Intern(rc.User),
		Role: m.Roles.Intern(rc.Role),
		Type: m.Types.Intern(rc.Type),
	}
	if rc.Range != nil {
		ctx.Range = resolveRange(m, *rc.Range)
		ctx.HasRange = true
	}
	return ctx
}

func buildContextOccurrences(m *policy.Model, raw policy.RawImage) {
	for _, f := range raw.RawFSUse() {
		m.Contexts.FSUse = append(m.Contexts.FSUse, policy.FSUseRule{
			Kind:    f.Kind,
			FSType:  f.FSType,
			Context: resolveContext(m, f.Context),
		})
	}
	for _, g := range raw.RawGenfscon() {
		m.Contexts.Genfscon = append(m.Contexts.Genfscon, policy.GenfsconRule{
			FSType:  g.FSType,
			Path:    g.Path,
			Context: resolveContext(m, g.Context),
		})
	}
	for _, p := range raw.RawPortcon() {
		m.Contexts.Portcon = append(m.Contexts.Portcon, policy.PortconRule{
			Protocol: p.Protocol,
			Port:     p.Port,
			PortEnd:  p.PortEnd,
			Context:  resolveContext(m, p.Context),
		})
	}
	for _, n := range raw.RawNetifcon() {
		m.Contexts.Netifcon = append(m.Contexts.Netifcon, policy.NetifconRule{
			Interface:     n.Interface,
			IfContext:     resolveContext(m, n.IfContext),
			PacketContext: resolveContext(m, n.PacketContext),
		})
	}
	for _, n := range raw.RawNodecon() {
		m.Contexts.Nodecon = append(m.Contexts.Nodecon, policy.NodeconRule{
			Address: n.Address,
			Netmask: n.Netmask,
			Context: resolveContext(m, n.Context),
		})
	}
}

func buildUserRoleAndRangeTables(m *policy.Model, raw policy.RawImage) {
	for userName, roles := range raw.RawUserRoles() {
		uid := m.Users.Intern(userName)
		set := m.UserRoles[uid]
		if set == nil {
			set = bitset.New(m.Roles.Count() + 1)
			m.UserRoles[uid] = set
		}
		for _, r := range roles {
			set.Set(uint32(m.Roles.Intern(r)))
		}
	}
	for roleName, types := range raw.RawRoleTypes() {
		rid := m.Roles.Intern(roleName)
		set := m.RoleTypes[rid]
		if set == nil {
			set = bitset.New(m.Types.Count() + 1)
			m.RoleTypes[rid] = set
		}
		for _, t := range types {
			set.Set(uint32(m.Types.Intern(t)))
		}
	}
	for userName, rr := range raw.RawUserRanges() {
		uid := m.Users.Intern(userName)
		m.UserRange[uid] = resolveRange(m, rr)
	}
}

package query

import (
	"github.com/sepolicy/sechecker/internal/match"
	"github.com/sepolicy/sechecker/internal/policy"
)

// GenfsconQuery selects genfscon entries by filesystem type and/or path
// prefix (spec.md §4.4 network/filesystem contexts).
type GenfsconQuery struct {
	FSType NameSelector
	Path   NameSelector
}

func (q *GenfsconQuery) Run(m *policy.Model) ([]policy.GenfsconRule, error) {
	fsSel, err := optionalSelector(q.FSType)
	if err != nil {
		return nil, err
	}
	pathSel, err := optionalSelector(q.Path)
	if err != nil {
		return nil, err
	}
	var out []policy.GenfsconRule
	for _, g := range m.Contexts.Genfscon {
		if fsSel != nil && !fsSel.Match(g.FSType) {
			continue
		}
		if pathSel != nil && !pathSel.Match(g.Path) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

// PortconQuery selects portcon entries by protocol and/or port number.
type PortconQuery struct {
	Protocol string // "", "tcp", or "udp"
	Port     int    // 0 means "any port"
}

func (q *PortconQuery) Run(m *policy.Model) ([]policy.PortconRule, error) {
	var out []policy.PortconRule
	for _, p := range m.Contexts.Portcon {
		if q.Protocol != "" && p.Protocol != q.Protocol {
			continue
		}
		if q.Port != 0 {
			end := p.PortEnd
			if end == 0 {
				end = p.Port
			}
			if q.Port < p.Port || q.Port > end {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// NetifconQuery selects netifcon entries by interface name.
type NetifconQuery struct{ Interface NameSelector }

func (q *NetifconQuery) Run(m *policy.Model) ([]policy.NetifconRule, error) {
	sel, err := optionalSelector(q.Interface)
	if err != nil {
		return nil, err
	}
	var out []policy.NetifconRule
	for _, n := range m.Contexts.Netifcon {
		if sel != nil && !sel.Match(n.Interface) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// NodeconQuery selects nodecon entries by address.
type NodeconQuery struct{ Address NameSelector }

func (q *NodeconQuery) Run(m *policy.Model) ([]policy.NodeconRule, error) {
	sel, err := optionalSelector(q.Address)
	if err != nil {
		return nil, err
	}
	var out []policy.NodeconRule
	for _, n := range m.Contexts.Nodecon {
		if sel != nil && !sel.Match(n.Address) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// FSUseQuery selects fs_use_* entries by filesystem type.
type FSUseQuery struct{ FSType NameSelector }

func (q *FSUseQuery) Run(m *policy.Model) ([]policy.FSUseRule, error) {
	sel, err := optionalSelector(q.FSType)
	if err != nil {
		return nil, err
	}
	var out []policy.FSUseRule
	for _, f := range m.Contexts.FSUse {
		if sel != nil && !sel.Match(f.FSType) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func optionalSelector(ns NameSelector) (*match.Selector, error) {
	if ns.Pattern == "" {
		return nil, nil
	}
	return match.NewSelector(ns.Mode, ns.Pattern)
}

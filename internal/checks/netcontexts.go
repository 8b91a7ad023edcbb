package checks

import (
	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("find_netif_types", newFindNetifTypes)
	checker.Register("find_node_types", newFindNodeTypes)
	checker.Register("find_port_types", newFindPortTypes)
}

// initialSIDType looks up name among pol.InitialSIDs and returns its
// bound context's type, if any (spec.md §4.8 "plus the matching
// initial-SID context").
func initialSIDType(pol *policy.Model, name string) (policy.ID, bool) {
	for _, sid := range pol.InitialSIDs {
		if sid.Name == name && sid.Context != nil {
			return sid.Context.Type, true
		}
	}
	return policy.Undefined, false
}

func addInitialSIDType(pol *policy.Model, result *checker.Result, sidName string) {
	if id, ok := initialSIDType(pol, sidName); ok {
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(id)},
			checker.Proof{Element: checker.None, Prefix: "Bound to the " + sidName + " initial SID."})
	}
}

// --- find_netif_types ---

type findNetifTypes struct{ checker.Base }

func newFindNetifTypes() checker.Module {
	return &findNetifTypes{checker.Base{
		ModuleName: "find_netif_types",
		Sev:        checker.SevLow,
		ModSummary: "types used in netifcon entries",
		ModDesc:    "Scans the netifcon occurrence table plus the netif initial SID (spec.md §4.8).",
	}}
}

func (c *findNetifTypes) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	for _, n := range pol.Contexts.Netifcon {
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(n.IfContext.Type)},
			checker.Proof{Element: checker.None, Prefix: "Interface context of netifcon " + n.Interface + "."})
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(n.PacketContext.Type)},
			checker.Proof{Element: checker.None, Prefix: "Packet context of netifcon " + n.Interface + "."})
	}
	addInitialSIDType(pol, result, "netif")
	return result, nil
}

// --- find_node_types ---

type findNodeTypes struct{ checker.Base }

func newFindNodeTypes() checker.Module {
	return &findNodeTypes{checker.Base{
		ModuleName: "find_node_types",
		Sev:        checker.SevLow,
		ModSummary: "types used in nodecon entries",
		ModDesc:    "Scans the nodecon occurrence table plus the node initial SID (spec.md §4.8).",
	}}
}

func (c *findNodeTypes) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	for _, n := range pol.Contexts.Nodecon {
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(n.Context.Type)},
			checker.Proof{Element: checker.None, Prefix: "Context of nodecon " + n.Address + "."})
	}
	addInitialSIDType(pol, result, "node")
	return result, nil
}

// --- find_port_types ---

type findPortTypes struct{ checker.Base }

func newFindPortTypes() checker.Module {
	return &findPortTypes{checker.Base{
		ModuleName: "find_port_types",
		Sev:        checker.SevLow,
		ModSummary: "types used in portcon entries",
		ModDesc:    "Scans the portcon occurrence table plus the port initial SID (spec.md §4.8).",
	}}
}

func (c *findPortTypes) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	for _, p := range pol.Contexts.Portcon {
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(p.Context.Type)},
			checker.Proof{Element: checker.None, Prefix: "Context of a portcon entry."})
	}
	addInitialSIDType(pol, result, "port")
	return result, nil
}

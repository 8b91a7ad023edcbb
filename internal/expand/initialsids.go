package expand

import "github.com/sepolicy/sechecker/internal/policy"

// initialSIDNames is the fixed, zero-indexed kernel SID enumeration
// spec.md §6 supplies ("used by add_initial_sid_names").
var initialSIDNames = []string{
	"undefined", "kernel", "security", "unlabeled", "fs", "file",
	"file_labels", "init", "any_socket", "port", "netif", "netmsg",
	"node", "igmp_packet", "icmp_socket", "tcp_socket",
	"sysctl_modprobe", "sysctl", "sysctl_fs", "sysctl_kernel",
	"sysctl_net", "sysctl_net_unix", "sysctl_vm", "sysctl_dev", "kmod",
	"policy", "scmp_packet", "devnull",
}

// addInitialSIDNames assigns each raw initial-SID entry its well-known
// name when the image didn't record one, resolving its bound context
// if present (spec.md §4.2, §6). Ids beyond the known range receive the
// sentinel name "undefined".
func addInitialSIDNames(m *policy.Model, raw policy.RawImage) {
	for i, sid := range raw.RawInitialSIDs() {
		name := sid.Name
		if name == "" {
			idx := i + 1 // index 0 of initialSIDNames is "undefined"; entries are 1-based
			if idx < len(initialSIDNames) {
				name = initialSIDNames[idx]
			} else {
				name = "undefined"
			}
		}
		entry := policy.InitialSIDEntry{Name: name}
		if sid.Context != nil {
			ctx := resolveContext(m, *sid.Context)
			entry.Context = &ctx
		}
		m.InitialSIDs = append(m.InitialSIDs, entry)
	}
}

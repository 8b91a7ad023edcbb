package policy

// Context is a complete SELinux security context: (user, role, type,
// range?). Range is the zero Range (absent) in non-MLS policies
// (spec.md §3).
type Context struct {
	User     ID
	Role     ID
	Type     ID
	Range    Range
	HasRange bool
}

// FSUseRule is a `fs_use_<kind>` statement: the default context a
// filesystem type's xattr/transition/task labeling uses.
type FSUseRule struct {
	Kind    string // "xattr", "trans", or "task"
	FSType  string
	Context Context
}

// GenfsconRule is a `genfscon` statement binding a path within a
// pseudo-filesystem to a context.
type GenfsconRule struct {
	FSType  string
	Path    string
	Context Context
}

// PortconRule is a `portcon` statement binding a protocol/port (or
// port range) to a context.
type PortconRule struct {
	Protocol string // "tcp" or "udp"
	Port     int
	PortEnd  int // 0 if a single port
	Context  Context
}

// NetifconRule is a `netifcon` statement binding a network interface to
// an interface context and a default packet context.
type NetifconRule struct {
	Interface     string
	IfContext     Context
	PacketContext Context
}

// NodeconRule is a `nodecon` statement binding an IP address/netmask to
// a context. libqpol exposes this alongside genfscon/fs_use/portcon/
// netifcon as a fifth context-occurrence kind.
type NodeconRule struct {
	Address string
	Netmask string
	Context Context
}

// ContextOccurrences is the set of non-file-context places a context
// appears in the compiled policy (spec.md §2, C3's "context occurrences
// (fs_use, portcon, netifcon, nodecon, genfscon)").
type ContextOccurrences struct {
	FSUse    []FSUseRule
	Genfscon []GenfsconRule
	Portcon  []PortconRule
	Netifcon []NetifconRule
	Nodecon  []NodeconRule
}

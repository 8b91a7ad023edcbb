package fscontext

import "fmt"

// objectTypeSpecText is the inverse of objectTypeSpecs, used to render
// an entry back to its canonical file_contexts line.
var objectTypeSpecText = map[ObjectType]string{
	ObjRegular:     "--",
	ObjDirectory:   "-d",
	ObjCharDevice:  "-c",
	ObjBlockDevice: "-b",
	ObjSymlink:     "-l",
	ObjSocket:      "-s",
	ObjNamedPipe:   "-p",
}

// RenderEntry renders e in the canonical file_contexts line form
// (spec.md §6): "path-regex [type-spec] context", with the context
// rendered verbatim as stored (see Entry.RangeText) since an entry may
// exist unvalidated against any Model.
func RenderEntry(e *Entry) string {
	ctx := "<<none>>"
	if e.HasContext {
		ctx = fmt.Sprintf("%s:%s:%s", e.User, e.Role, e.Type)
		if e.HasRange {
			ctx += ":" + e.RangeText
		}
	}
	if spec, ok := objectTypeSpecText[e.ObjType]; ok {
		return fmt.Sprintf("%s %s %s", e.Pattern, spec, ctx)
	}
	return fmt.Sprintf("%s %s", e.Pattern, ctx)
}

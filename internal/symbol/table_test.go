package symbol

import "testing"

func TestInternIdempotent(t *testing.T) {
	tbl := NewTable(Type)
	a := tbl.Intern("httpd_t")
	b := tbl.Intern("httpd_t")
	if a != b {
		t.Fatalf("expected idempotent intern, got %d and %d", a, b)
	}
	if a == Undefined {
		t.Fatalf("expected non-zero id")
	}
}

func TestInsertionOrderIsAscending(t *testing.T) {
	tbl := NewTable(Role)
	names := []string{"object_r", "system_r", "user_r"}
	for _, n := range names {
		tbl.Intern(n)
	}
	var seen []string
	tbl.Iter(func(id ID, name string) {
		seen = append(seen, name)
	})
	for i, n := range names {
		if seen[i] != n {
			t.Fatalf("expected ascending insertion order, got %v", seen)
		}
	}
}

func TestLookupNeverInserts(t *testing.T) {
	tbl := NewTable(Class)
	_, ok := tbl.Lookup("file")
	if ok {
		t.Fatalf("expected unknown name to be absent")
	}
	if tbl.Count() != 0 {
		t.Fatalf("lookup must not insert, count=%d", tbl.Count())
	}
}

func TestNameOfUnknownID(t *testing.T) {
	tbl := NewTable(User)
	if _, err := tbl.NameOf(42); err == nil {
		t.Fatalf("expected error for unknown id")
	}
	if _, err := tbl.NameOf(Undefined); err == nil {
		t.Fatalf("expected error for Undefined id")
	}
}

func TestCount(t *testing.T) {
	tbl := NewTable(Permission)
	tbl.Intern("read")
	tbl.Intern("write")
	tbl.Intern("read")
	if tbl.Count() != 2 {
		t.Fatalf("expected count 2, got %d", tbl.Count())
	}
}

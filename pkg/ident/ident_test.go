package ident

import (
	"encoding/json"
	"fmt"
	"testing"
)

type point struct{ X, Y int }

type customHash uint64

func (c customHash) HashKey() uint64 { return uint64(c) }

func TestNewKeyDeterministic(t *testing.T) {
	a := NewKey("header")
	b := NewKey("header")
	if a.Id() != b.Id() {
		t.Errorf("NewKey ids differ: %v vs %v", a.Id(), b.Id())
	}
	if a.Label() != "header" {
		t.Errorf("Label = %q, want header", a.Label())
	}
	if NewKey("footer").Id() == a.Id() {
		t.Error("distinct labels produced the same id")
	}
	if a.Id() == Root {
		t.Error("literal key must never use the root id")
	}
}

func TestSibling(t *testing.T) {
	base := NewKey("row")

	tests := []struct {
		name string
		a, b any
		same bool
	}{
		{"same int", 1, 1, true},
		{"different int", 1, 2, false},
		{"same string", "x", "x", true},
		{"int vs uint", int(1), uint(1), false},
		{"int vs string", 1, "1", false},
		{"struct", point{1, 2}, point{1, 2}, true},
		{"struct differs", point{1, 2}, point{2, 1}, false},
		{"hasher", customHash(7), customHash(7), true},
		{"nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Sibling(base, tt.a)
			b := Sibling(base, tt.b)
			if (a.Id() == b.Id()) != tt.same {
				t.Errorf("Sibling(%v) == Sibling(%v) is %v, want %v", tt.a, tt.b, a.Id() == b.Id(), tt.same)
			}
			if a.Label() != "row" {
				t.Errorf("Label = %q, want row", a.Label())
			}
			if a.Id() == base.Id() {
				t.Error("sibling id must differ from base id")
			}
		})
	}
}

func TestSiblingManyDistinct(t *testing.T) {
	base := NewKey("item")
	seen := make(map[Id]int, 10000)
	for i := 0; i < 10000; i++ {
		id := Sibling(base, i).Id()
		if prev, ok := seen[id]; ok {
			t.Fatalf("Sibling(%d) collides with Sibling(%d)", i, prev)
		}
		seen[id] = i
	}
}

func TestScoped(t *testing.T) {
	k := NewKey("label").Id()
	if k.Scoped(Root) != k {
		t.Error("root scope must leave the id untouched")
	}
	s1 := NewKey("scope-1").Id()
	s2 := NewKey("scope-2").Id()
	if k.Scoped(s1) == k.Scoped(s2) {
		t.Error("different scopes produced the same id")
	}
	if k.Scoped(s1) != k.Scoped(s1) {
		t.Error("Scoped is not deterministic")
	}
	// Mixing must not be symmetric.
	if k.Scoped(s1) == s1.Scoped(k) {
		t.Error("Scoped is symmetric")
	}
}

func TestTwinOf(t *testing.T) {
	base := NewKey("dup").Id()
	seen := map[Id]bool{base: true}
	for i := uint32(0); i < 8; i++ {
		id := TwinOf(base, i)
		if seen[id] {
			t.Fatalf("twin %d repeats an earlier id", i)
		}
		seen[id] = true
		if TwinOf(base, i) != id {
			t.Errorf("TwinOf(%d) not stable", i)
		}
	}
}

func TestMixChildOrderSensitive(t *testing.T) {
	a := NewKey("a").Id()
	b := NewKey("b").Id()
	ab := MixChild(MixChild(ChildrenSeed, a), b)
	ba := MixChild(MixChild(ChildrenSeed, b), a)
	if ab == ba {
		t.Error("children hash must depend on order")
	}
	if ab != MixChild(MixChild(ChildrenSeed, a), b) {
		t.Error("children hash not deterministic")
	}
}

func TestCaller(t *testing.T) {
	keys := make([]Key, 2)
	for i := range keys {
		keys[i] = Caller(0)
	}
	if keys[0].Id() != keys[1].Id() {
		t.Error("same call site produced different keys")
	}
	other := Caller(0)
	if other.Id() == keys[0].Id() {
		t.Error("different call sites produced the same key")
	}
}

func TestIdString(t *testing.T) {
	if got := Id(255).String(); got != "00000000000000ff" {
		t.Errorf("String = %q, want 00000000000000ff", got)
	}
	k := NewKey("x")
	if got := k.String(); got != fmt.Sprintf("x(%s)", k.Id()) {
		t.Errorf("Key.String = %q", got)
	}
}

func TestIdText(t *testing.T) {
	id := NewKey("row").Id()
	b, err := json.Marshal(map[string]Id{"id": id})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if want := `{"id":"` + id.String() + `"}`; string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}

	var out struct{ ID Id }
	if err := json.Unmarshal([]byte(`{"ID":"`+id.String()+`"}`), &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if out.ID != id {
		t.Errorf("Unmarshal = %v, want %v", out.ID, id)
	}

	if _, err := ParseId("not-hex"); err == nil {
		t.Error("ParseId should reject non-hex input")
	}
}

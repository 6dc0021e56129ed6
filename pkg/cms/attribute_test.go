package cms

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestValues(t *testing.T) {
	src := []Value{v1, v2}
	vals := NewValues(src...)

	t.Run("CopiesInput", func(t *testing.T) {
		src[0] = v3
		if string(vals.At(0)) != string(v1) {
			t.Error("NewValues must not alias the caller's slice")
		}
	})

	t.Run("Identity", func(t *testing.T) {
		if vals.ID() == uuid.Nil {
			t.Error("expected a non-nil identity tag")
		}
		if NewValues(v1).ID() == vals.ID() {
			t.Error("identity tags must differ between containers")
		}
	})

	t.Run("Append", func(t *testing.T) {
		if err := vals.Append(v3); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := vals.Append(nil); !errors.Is(err, ErrNilArgument) {
			t.Errorf("Append(nil) error = %v", err)
		}
		if vals.Len() != 3 {
			t.Errorf("Len() = %d, want 3", vals.Len())
		}
	})

	t.Run("All", func(t *testing.T) {
		var got []Value
		for _, v := range vals.All() {
			got = append(got, v)
		}
		if !equalValues(got, []Value{v1, v2, v3}) {
			t.Errorf("All() = %x", got)
		}
	})

	t.Run("SliceIsCopy", func(t *testing.T) {
		s := vals.Slice()
		s[0] = nil
		if vals.At(0) == nil {
			t.Error("Slice must return a copy")
		}
	})
}

func TestNewAttribute(t *testing.T) {
	a := NewAttribute("1.2.3", v1, v2, v3)
	if a.OID != "1.2.3" {
		t.Errorf("OID = %q", a.OID)
	}
	if !equalValues(a.Values.Slice(), []Value{v1, v2, v3}) {
		t.Errorf("values = %x", a.Values.Slice())
	}
}

package strings

import (
	"testing"

	"ablo/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	def := []string{"*"}

	if got := IfEmpty(nil, def); len(got) != 1 || got[0] != "*" {
		t.Fatalf("IfEmpty(nil) = %v, want %v", got, def)
	}
	if got := IfEmpty([]string{}, def); len(got) != 1 || got[0] != "*" {
		t.Fatalf("IfEmpty(empty) = %v, want %v", got, def)
	}

	in := []string{"https://ablo.app"}
	if got := IfEmpty(in, def); len(got) != 1 || got[0] != "https://ablo.app" {
		t.Fatalf("IfEmpty(non-empty) = %v, want %v", got, in)
	}

	ints := IfEmpty([]int{}, []int{7860})
	if len(ints) != 1 || ints[0] != 7860 {
		t.Fatalf("IfEmpty[int] = %v, want [7860]", ints)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString("pinata-jwt", "jwt"); got != "pinata-jwt" {
		t.Fatalf("MustString = %q, want %q", got, "pinata-jwt")
	}
	testkit.MustPanic(t, func() { MustString("", "jwt") })
	testkit.MustPanic(t, func() { MustString("   ", "jwt") })
}

func TestMustPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already clean", in: "/images", want: "/images"},
		{name: "missing leading slash", in: "assets", want: "/assets"},
		{name: "trailing slash stripped", in: "/meta/", want: "/meta"},
		{name: "surrounding whitespace", in: "  /images  ", want: "/images"},
		{name: "nested path kept", in: "assets/registrations", want: "/assets/registrations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MustPrefix(tt.in); got != tt.want {
				t.Fatalf("MustPrefix(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	testkit.MustPanic(t, func() { MustPrefix("") })
	testkit.MustPanic(t, func() { MustPrefix(" / ") })
}

func TestEmptyToNil(t *testing.T) {
	if got := EmptyToNil("   "); got != "" {
		t.Fatalf("EmptyToNil(whitespace) = %q, want empty", got)
	}
	if got := EmptyToNil(" style "); got != " style " {
		t.Fatalf("EmptyToNil kept = %q, want %q", got, " style ")
	}
}

func TestDeref(t *testing.T) {
	if got := Deref(nil); got != "" {
		t.Fatalf("Deref(nil) = %q, want empty", got)
	}
	s := "0xabc"
	if got := Deref(&s); got != "0xabc" {
		t.Fatalf("Deref = %q, want %q", got, "0xabc")
	}
}

/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

import "testing"

// TestFieldTypeDescriptorRoundTrips exercises spec.md §8: for every
// parseable field descriptor d, ParseFieldType(d).Descriptor() == d.
func TestFieldTypeDescriptorRoundTrips(t *testing.T) {
	cases := []string{
		"B", "C", "D", "F", "I", "J", "S", "Z",
		"Ljava/lang/String;",
		"[I",
		"[[D",
		"[Ljava/lang/Object;",
		"[[Ljava/lang/String;",
	}
	for _, d := range cases {
		ft, err := ParseFieldType(d)
		if err != nil {
			t.Fatalf("ParseFieldType(%q): %v", d, err)
		}
		if got := ft.Descriptor(); got != d {
			t.Fatalf("ParseFieldType(%q).Descriptor() = %q, want %q", d, got, d)
		}
	}
}

func TestFieldTypeIsReference(t *testing.T) {
	ft, err := ParseFieldType("I")
	if err != nil {
		t.Fatal(err)
	}
	if ft.IsReference() {
		t.Fatal("primitive int must not be a reference type")
	}

	ft, err = ParseFieldType("Ljava/lang/Object;")
	if err != nil {
		t.Fatal(err)
	}
	if !ft.IsReference() {
		t.Fatal("object type must be a reference type")
	}

	ft, err = ParseFieldType("[I")
	if err != nil {
		t.Fatal(err)
	}
	if !ft.IsReference() {
		t.Fatal("array type must be a reference type")
	}
}

func TestFieldTypeRejectsTrailingCharacters(t *testing.T) {
	if _, err := ParseFieldType("II"); err == nil {
		t.Fatal("expected trailing characters after a complete descriptor to fail")
	}
}

func TestFieldTypeRejectsUnterminatedClassName(t *testing.T) {
	if _, err := ParseFieldType("Ljava/lang/String"); err == nil {
		t.Fatal("expected missing terminating ';' to fail")
	}
}

func TestFieldTypeRejectsEmptyDescriptor(t *testing.T) {
	if _, err := ParseFieldType(""); err == nil {
		t.Fatal("expected empty descriptor to fail")
	}
}

func TestFieldTypeRejectsUnknownTag(t *testing.T) {
	if _, err := ParseFieldType("Q"); err == nil {
		t.Fatal("expected unknown type tag to fail")
	}
}

/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reader

import "testing"

// TestMethodDescriptorRoundTrips exercises spec.md §8: for every parseable
// method descriptor d, an equivalent render round-trips.
func TestMethodDescriptorRoundTrips(t *testing.T) {
	cases := []string{
		"()V",
		"(I)I",
		"(ILjava/lang/String;)V",
		"([I[[Ljava/lang/Object;D)J",
		"()Ljava/lang/String;",
	}
	for _, d := range cases {
		md, err := ParseMethodDescriptor(d)
		if err != nil {
			t.Fatalf("ParseMethodDescriptor(%q): %v", d, err)
		}
		if got := md.Descriptor(); got != d {
			t.Fatalf("ParseMethodDescriptor(%q).Descriptor() = %q, want %q", d, got, d)
		}
	}
}

func TestMethodDescriptorIsVoid(t *testing.T) {
	md, err := ParseMethodDescriptor("()V")
	if err != nil {
		t.Fatal(err)
	}
	if !md.IsVoid() {
		t.Fatal("()V must be void")
	}

	md, err = ParseMethodDescriptor("()I")
	if err != nil {
		t.Fatal(err)
	}
	if md.IsVoid() {
		t.Fatal("()I must not be void")
	}
}

func TestMethodDescriptorParamSlotsCountsWideTypesTwice(t *testing.T) {
	md, err := ParseMethodDescriptor("(IJDLjava/lang/Object;)V")
	if err != nil {
		t.Fatal(err)
	}
	// I(1) + J(2) + D(2) + Object(1) == 6
	if got := md.ParamSlots(); got != 6 {
		t.Fatalf("ParamSlots() = %d, want 6", got)
	}
}

func TestMethodDescriptorRejectsMissingParens(t *testing.T) {
	if _, err := ParseMethodDescriptor("IV"); err == nil {
		t.Fatal("expected missing opening paren to fail")
	}
}

func TestMethodDescriptorRejectsTrailingGarbage(t *testing.T) {
	if _, err := ParseMethodDescriptor("()VI"); err == nil {
		t.Fatal("expected trailing characters after void return to fail")
	}
}

package window

import "testing"

func TestSpec_String(t *testing.T) {
	cases := map[Spec]string{
		{Class: "#32770", Title: "Error"}: `#32770 "Error"`,
		{Class: "TWINCONTROL"}:            "TWINCONTROL",
		{Title: "Fortnite  "}:             `"Fortnite  "`,
	}
	for spec, want := range cases {
		if got := spec.String(); got != want {
			t.Fatalf("String()=%s want %s", got, want)
		}
	}
}

func TestSpec_IsZero(t *testing.T) {
	if !(Spec{}).IsZero() {
		t.Fatalf("empty spec should be zero")
	}
	if (Spec{Title: "x"}).IsZero() {
		t.Fatalf("spec with title should not be zero")
	}
}

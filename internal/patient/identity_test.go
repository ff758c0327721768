package patient

import (
	"encoding/hex"
	"testing"
)

func TestGenerateIDDeterministic(t *testing.T) {
	first := GenerateID("Jane Doe", "2024-01-31")
	second := GenerateID("Jane Doe", "2024-01-31")

	if first != second {
		t.Errorf("same inputs produced different digests: %q vs %q", first, second)
	}
}

func TestGenerateIDNormalizesNameAndDate(t *testing.T) {
	base := GenerateID("Jane Doe", "2024-01-31")

	tests := []struct {
		name          string
		inputName     any
		admissionDate any
	}{
		{name: "extra whitespace and different case", inputName: " jane   doe ", admissionDate: "2024-01-31"},
		{name: "all caps", inputName: "JANE   DOE", admissionDate: "2024-01-31"},
		{name: "tabs and newlines collapse", inputName: "jane\t doe\n", admissionDate: "2024-01-31"},
		{name: "timestamp collapses to same date", inputName: "Jane Doe", admissionDate: "2024-01-31T09:15:00Z"},
		{name: "slash-separated date", inputName: "Jane Doe", admissionDate: "2024/01/31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateID(tt.inputName, tt.admissionDate)
			if got != base {
				t.Errorf("GenerateID(%v, %v) = %q, want %q", tt.inputName, tt.admissionDate, got, base)
			}
		})
	}
}

func TestGenerateIDNeverEmpty(t *testing.T) {
	tests := []struct {
		name          string
		inputName     any
		admissionDate any
	}{
		{name: "both nil", inputName: nil, admissionDate: nil},
		{name: "empty strings", inputName: "", admissionDate: ""},
		{name: "unparsable date", inputName: "Jane Doe", admissionDate: "never"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateID(tt.inputName, tt.admissionDate)
			if len(got) != 64 {
				t.Fatalf("digest length = %d, want 64", len(got))
			}
			if _, err := hex.DecodeString(got); err != nil {
				t.Errorf("digest is not lowercase hex: %q", got)
			}
		})
	}
}

func TestGenerateIDDistinguishesInputs(t *testing.T) {
	a := GenerateID("Jane Doe", "2024-01-31")
	b := GenerateID("John Doe", "2024-01-31")
	c := GenerateID("Jane Doe", "2024-02-01")
	d := GenerateID(nil, nil)

	if a == b {
		t.Error("different names collided")
	}
	if a == c {
		t.Error("different admission dates collided")
	}
	if a == d {
		t.Error("populated inputs collided with all-empty inputs")
	}
}

package csvfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carelake/patientload/internal/patient"
)

const sampleHeader = "Name,Age,Gender,Blood Type,Medical Condition,Date of Admission,Doctor,Hospital,Insurance Provider,Billing Amount,Room Number,Admission Type,Discharge Date,Medication,Test Results"

func TestParse(t *testing.T) {
	data := sampleHeader + "\n" +
		"Bobby Jackson,30,Male,B-,Cancer,2024-01-31,Matthew Smith,Sons and Miller,Blue Cross,18856.28,328,Urgent,2024-02-02,Paracetamol,Normal\n" +
		"Leslie Terry,62,Male,A+,Obesity,2019-08-20,Samantha Davies,Kim Inc,Medicare,33643.33,265,Emergency,2019-08-26,Ibuprofen,Inconclusive\n"

	records, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first[patient.ColName] != "Bobby Jackson" {
		t.Errorf("Name = %v, want Bobby Jackson", first[patient.ColName])
	}
	if first[patient.ColBillingAmount] != "18856.28" {
		t.Errorf("Billing Amount = %v, want 18856.28", first[patient.ColBillingAmount])
	}
}

func TestParseEmptyCellsBecomeAbsent(t *testing.T) {
	data := sampleHeader + "\n" +
		"Jane Doe,,Female,,,2024-01-31,,,,,,,,,\n"

	records, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	rec := records[0]
	if rec[patient.ColAge] != nil {
		t.Errorf("empty Age cell = %v, want nil", rec[patient.ColAge])
	}
	if rec[patient.ColDoctor] != nil {
		t.Errorf("empty Doctor cell = %v, want nil", rec[patient.ColDoctor])
	}
	if rec[patient.ColName] != "Jane Doe" {
		t.Errorf("Name = %v, want Jane Doe", rec[patient.ColName])
	}
}

func TestParseSkipsEmptyRows(t *testing.T) {
	data := sampleHeader + "\n" +
		"Jane Doe,30,Female,A+,Asthma,2024-01-31,Dr A,General,Aetna,100,1,Urgent,2024-02-02,None,Normal\n" +
		",,,,,,,,,,,,,,\n" +
		"   ,,,,,,,,,,,,,,\n" +
		"John Roe,40,Male,B+,Diabetes,2024-03-01,Dr B,General,Cigna,200,2,Elective,2024-03-05,Insulin,Abnormal\n"

	records, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2 (blank rows skipped)", len(records))
	}
}

func TestParseHeaderAfterPreamble(t *testing.T) {
	data := "Patient Export\nGenerated 2026-08-27\n" + sampleHeader + "\n" +
		"Jane Doe,30,Female,A+,Asthma,2024-01-31,Dr A,General,Aetna,100,1,Urgent,2024-02-02,None,Normal\n"

	records, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestParseMissingColumnsFatal(t *testing.T) {
	data := "Name,Age,Gender\nJane Doe,30,Female\n"

	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatal("Parse() accepted a dataset with missing columns")
	}
	if !strings.Contains(err.Error(), "Blood Type") {
		t.Errorf("error %q does not name a missing column", err)
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Error("Parse() accepted an empty file")
	}
}

func TestReadFileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.csv")
	if err := os.WriteFile(path, []byte(sampleHeader+"\nJane Doe,30,Female,A+,Asthma,2024-01-31,Dr A,General,Aetna,100,1,Urgent,2024-02-02,None,Normal\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	oldMax := MaxFileSize
	MaxFileSize = 8
	defer func() { MaxFileSize = oldMax }()

	if _, err := Read(path); err == nil || !strings.Contains(err.Error(), "limit") {
		t.Errorf("Read() err = %v, want size limit error", err)
	}

	MaxFileSize = oldMax
	records, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "abc", want: "abc"},
		{name: "whitespace", input: "  abc  ", want: "abc"},
		{name: "excel formula prefix", input: `="12345"`, want: "12345"},
		{name: "leading equals", input: "=abc", want: "abc"},
		{name: "surrounding quotes", input: `"abc"`, want: "abc"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

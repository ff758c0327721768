package patient

import (
	"testing"
	"time"
)

func sampleRow() RawRecord {
	return RawRecord{
		ColName:              "bobby JacksOn",
		ColAge:               "30",
		ColGender:            "Male",
		ColBloodType:         "B-",
		ColMedicalCondition:  "Cancer",
		ColDateOfAdmission:   "2024-01-31",
		ColDoctor:            "Matthew Smith",
		ColHospital:          "Sons and Miller",
		ColInsuranceProvider: "Blue Cross",
		ColBillingAmount:     "18856.281305978155",
		ColRoomNumber:        "328",
		ColAdmissionType:     "Urgent",
		ColDischargeDate:     "2024-02-02",
		ColMedication:        "Paracetamol",
		ColTestResults:       "Normal",
	}
}

func TestMapRecord(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	doc := MapRecord(sampleRow(), now)

	if doc.PatientID != GenerateID("bobby JacksOn", "2024-01-31") {
		t.Error("patient id does not match the stable digest of name and admission date")
	}
	if doc.Name.Full == nil || *doc.Name.Full != "Bobby Jackson" {
		t.Errorf("Name.Full = %v, want %q", doc.Name.Full, "Bobby Jackson")
	}
	if doc.Name.Normalized == nil || *doc.Name.Normalized != "bobby jackson" {
		t.Errorf("Name.Normalized = %v, want %q", doc.Name.Normalized, "bobby jackson")
	}
	if doc.Age == nil || *doc.Age != 30 {
		t.Errorf("Age = %v, want 30", doc.Age)
	}
	if doc.Gender == nil || *doc.Gender != "Male" {
		t.Errorf("Gender = %v, want Male", doc.Gender)
	}
	if doc.Admission.Type == nil || *doc.Admission.Type != "Urgent" {
		t.Errorf("Admission.Type = %v, want Urgent", doc.Admission.Type)
	}
	if doc.Admission.Date == nil || *doc.Admission.Date != "2024-01-31" {
		t.Errorf("Admission.Date = %v, want 2024-01-31", doc.Admission.Date)
	}
	if doc.Admission.DischargeDate == nil || *doc.Admission.DischargeDate != "2024-02-02" {
		t.Errorf("Admission.DischargeDate = %v, want 2024-02-02", doc.Admission.DischargeDate)
	}
	if doc.Admission.RoomNumber == nil || *doc.Admission.RoomNumber != 328 {
		t.Errorf("Admission.RoomNumber = %v, want 328", doc.Admission.RoomNumber)
	}
	if doc.BillingAmount == nil || *doc.BillingAmount != 18856.28 {
		t.Errorf("BillingAmount = %v, want 18856.28 (rounded to 2 decimals)", doc.BillingAmount)
	}
	if !doc.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", doc.UpdatedAt, now)
	}
	if !doc.CreatedAt.IsZero() {
		t.Error("CreatedAt must stay zero at mapping time; the store sets it on first insert")
	}
}

func TestMapRecordBillingRounding(t *testing.T) {
	now := time.Now().UTC()

	row := sampleRow()
	row[ColBillingAmount] = "1234.5678"
	doc := MapRecord(row, now)
	if doc.BillingAmount == nil || *doc.BillingAmount != 1234.57 {
		t.Errorf("BillingAmount = %v, want 1234.57", doc.BillingAmount)
	}

	row[ColBillingAmount] = nil
	doc = MapRecord(row, now)
	if doc.BillingAmount != nil {
		t.Errorf("absent billing amount mapped to %v, want absent (not zero)", *doc.BillingAmount)
	}
}

func TestMapRecordTrimsTextFields(t *testing.T) {
	now := time.Now().UTC()

	row := sampleRow()
	row[ColGender] = "  Male "
	row[ColMedication] = " Paracetamol  "
	row[ColTestResults] = "   "

	doc := MapRecord(row, now)

	if doc.Gender == nil || *doc.Gender != "Male" {
		t.Errorf("Gender = %v, want Male", doc.Gender)
	}
	if doc.Medication == nil || *doc.Medication != "Paracetamol" {
		t.Errorf("Medication = %v, want Paracetamol", doc.Medication)
	}
	if doc.TestResults != nil {
		t.Errorf("whitespace-only test results mapped to %v, want absent", *doc.TestResults)
	}
}

func TestMapRecordDegradesMalformedFields(t *testing.T) {
	now := time.Now().UTC()

	row := sampleRow()
	row[ColAge] = "thirty"
	row[ColRoomNumber] = ""
	row[ColDischargeDate] = "sometime soon"
	row[ColBloodType] = nil

	doc := MapRecord(row, now)

	if doc.Age != nil {
		t.Errorf("unparsable age mapped to %v, want absent", *doc.Age)
	}
	if doc.Admission.RoomNumber != nil {
		t.Errorf("empty room number mapped to %v, want absent", *doc.Admission.RoomNumber)
	}
	if doc.Admission.DischargeDate != nil {
		t.Errorf("unparsable discharge date mapped to %v, want absent", *doc.Admission.DischargeDate)
	}
	if doc.BloodType != nil {
		t.Errorf("missing blood type mapped to %v, want absent", *doc.BloodType)
	}
	// A broken field never changes the identity.
	if doc.PatientID != GenerateID("bobby JacksOn", "2024-01-31") {
		t.Error("malformed non-key fields changed the patient id")
	}
}

func TestMapRecordEmptyRowStillKeyed(t *testing.T) {
	now := time.Now().UTC()
	doc := MapRecord(RawRecord{}, now)

	if len(doc.PatientID) != 64 {
		t.Fatalf("empty row produced patient id of length %d, want 64", len(doc.PatientID))
	}
	if doc.Name.Full != nil || doc.Name.Normalized != nil {
		t.Error("empty row produced a non-absent name")
	}
}

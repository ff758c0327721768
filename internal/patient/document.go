// Package patient defines the canonical patient document and the mapping
// from raw dataset rows to documents keyed by a stable surrogate identifier.
package patient

import (
	"time"

	"github.com/carelake/patientload/internal/normalize"
)

// Source column names expected in the dataset header.
const (
	ColName              = "Name"
	ColAge               = "Age"
	ColGender            = "Gender"
	ColBloodType         = "Blood Type"
	ColMedicalCondition  = "Medical Condition"
	ColDateOfAdmission   = "Date of Admission"
	ColDoctor            = "Doctor"
	ColHospital          = "Hospital"
	ColInsuranceProvider = "Insurance Provider"
	ColBillingAmount     = "Billing Amount"
	ColRoomNumber        = "Room Number"
	ColAdmissionType     = "Admission Type"
	ColDischargeDate     = "Discharge Date"
	ColMedication        = "Medication"
	ColTestResults       = "Test Results"
)

// ExpectedColumns is the fixed set of columns a dataset must provide.
// A source missing any of these fails validation before any batch work.
var ExpectedColumns = []string{
	ColName, ColAge, ColGender, ColBloodType, ColMedicalCondition,
	ColDateOfAdmission, ColDoctor, ColHospital, ColInsuranceProvider,
	ColBillingAmount, ColRoomNumber, ColAdmissionType, ColDischargeDate,
	ColMedication, ColTestResults,
}

// RawRecord is one source row: column name to loosely typed cell value.
// Produced by the dataset reader, consumed once by MapRecord.
type RawRecord map[string]any

// Admission is the nested admission record of a patient document.
type Admission struct {
	Type          *string `bson:"type" json:"type"`
	Date          *string `bson:"date" json:"date"`
	DischargeDate *string `bson:"discharge_date" json:"discharge_date"`
	RoomNumber    *int    `bson:"room_number" json:"room_number"`
}

// Document is the canonical patient record persisted in the collection.
//
// PatientID is the sole upsert key: a deterministic digest of the lowercased
// trimmed name and the normalized admission date. CreatedAt is set by the
// store only when a document is first inserted and is never overwritten by
// later upserts; it is therefore excluded from the unconditional field set
// (see store.BulkUpsert) and tagged omitempty here.
type Document struct {
	PatientID         string         `bson:"patient_id" json:"patient_id"`
	Name              normalize.Name `bson:"name" json:"name"`
	Age               *int           `bson:"age" json:"age"`
	Gender            *string        `bson:"gender" json:"gender"`
	BloodType         *string        `bson:"blood_type" json:"blood_type"`
	MedicalCondition  *string        `bson:"medical_condition" json:"medical_condition"`
	Admission         Admission      `bson:"admission" json:"admission"`
	Doctor            *string        `bson:"doctor" json:"doctor"`
	Hospital          *string        `bson:"hospital" json:"hospital"`
	InsuranceProvider *string        `bson:"insurance_provider" json:"insurance_provider"`
	BillingAmount     *float64       `bson:"billing_amount" json:"billing_amount"`
	Medication        *string        `bson:"medication" json:"medication"`
	TestResults       *string        `bson:"test_results" json:"test_results"`
	UpdatedAt         time.Time      `bson:"updated_at" json:"updated_at"`
	CreatedAt         time.Time      `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

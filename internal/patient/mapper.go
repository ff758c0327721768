package patient

import (
	"time"

	"github.com/carelake/patientload/internal/normalize"
)

// MapRecord assembles the canonical document for one raw source row.
//
// Every field runs through the normalizer, so a malformed cell degrades to
// an absent field rather than failing the row. UpdatedAt is set to now;
// CreatedAt is left zero because insert-vs-update is only known at write
// time (the store sets it on first insert). Deterministic given (raw, now).
func MapRecord(raw RawRecord, now time.Time) *Document {
	doc := &Document{
		PatientID:        GenerateID(raw[ColName], raw[ColDateOfAdmission]),
		Name:             normalize.NormalizeName(raw[ColName]),
		Age:              normalize.ToInt(raw[ColAge]),
		Gender:           normalize.ToText(raw[ColGender]),
		BloodType:        normalize.ToText(raw[ColBloodType]),
		MedicalCondition: normalize.ToText(raw[ColMedicalCondition]),
		Admission: Admission{
			Type:          normalize.ToText(raw[ColAdmissionType]),
			Date:          normalize.ToISODate(raw[ColDateOfAdmission]),
			DischargeDate: normalize.ToISODate(raw[ColDischargeDate]),
			RoomNumber:    normalize.ToInt(raw[ColRoomNumber]),
		},
		Doctor:            normalize.ToText(raw[ColDoctor]),
		Hospital:          normalize.ToText(raw[ColHospital]),
		InsuranceProvider: normalize.ToText(raw[ColInsuranceProvider]),
		Medication:        normalize.ToText(raw[ColMedication]),
		TestResults:       normalize.ToText(raw[ColTestResults]),
		UpdatedAt:         now,
	}

	if amount := normalize.ToFloat(raw[ColBillingAmount]); amount != nil {
		rounded := normalize.Round2(*amount)
		doc.BillingAmount = &rounded
	}

	return doc
}

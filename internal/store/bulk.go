package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carelake/patientload/internal/engine"
	"github.com/carelake/patientload/internal/patient"
)

// BulkUpsert applies one batch of documents as a single unordered bulk
// write. Each record is a conditional upsert keyed on patient_id: every
// field is overwritten unconditionally except created_at, which is set only
// when the document is first inserted. Unordered execution means one
// record's failure does not prevent the rest of the batch from being
// applied; any per-record failures are aggregated into a *BulkError.
func (s *Store) BulkUpsert(ctx context.Context, docs []*patient.Document) (engine.BatchResult, error) {
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"patient_id": doc.PatientID}).
			SetUpdate(updateFor(doc)).
			SetUpsert(true))
	}

	res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return engine.BatchResult{}, translateBulkError(err, docs)
	}

	return engine.BatchResult{
		Submitted: int64(len(docs)),
		Matched:   res.MatchedCount,
		Modified:  res.ModifiedCount,
		Upserted:  res.UpsertedCount,
	}, nil
}

// updateFor builds the two-part update for one document: the unconditional
// field set, and the created_at value applied only on insert. The insert
// timestamp equals the write's updated_at, so a document's created_at
// always records its first write.
func updateFor(doc *patient.Document) bson.M {
	return bson.M{
		"$set": bson.M{
			"patient_id":         doc.PatientID,
			"name":               doc.Name,
			"age":                doc.Age,
			"gender":             doc.Gender,
			"blood_type":         doc.BloodType,
			"medical_condition":  doc.MedicalCondition,
			"admission":          doc.Admission,
			"doctor":             doc.Doctor,
			"hospital":           doc.Hospital,
			"insurance_provider": doc.InsuranceProvider,
			"billing_amount":     doc.BillingAmount,
			"medication":         doc.Medication,
			"test_results":       doc.TestResults,
			"updated_at":         doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": doc.UpdatedAt,
		},
	}
}

// translateBulkError converts a driver bulk write exception into a
// *BulkError carrying the patient_id of each rejected record.
func translateBulkError(err error, docs []*patient.Document) error {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return fmt.Errorf("bulk write: %w", err)
	}

	failures := make([]WriteFailure, 0, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		failure := WriteFailure{
			Index:   we.Index,
			Code:    we.Code,
			Message: we.Message,
		}
		if we.Index >= 0 && we.Index < len(docs) {
			failure.PatientID = docs[we.Index].PatientID
		}
		failures = append(failures, failure)
	}

	return &BulkError{Failures: failures}
}

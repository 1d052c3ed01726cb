package ledger

import (
	"time"

	"medcommons/contracts/fhe"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
)

// Record is one append-only ledger entry: four opaque ciphertexts plus
// provenance. Records are immutable after creation; there is no update or
// delete anywhere in this package, which is what makes computations over the
// ledger reproducible - any batch is a frozen, enumerable prefix.
type Record struct {
	ID        id.RecordID
	Fields    Fields
	CreatedAt time.Time
	Submitter id.ActorID
}

// Fields carries the four encrypted columns of a record in their fixed
// batch order.
type Fields struct {
	Patient   fhe.Ciphertext
	Diagnosis fhe.Ciphertext
	Treatment fhe.Ciphertext
	Outcome   fhe.Ciphertext
}

// Ordered returns the field ciphertexts in the batch order the computation
// service expects: patient, diagnosis, treatment, outcome.
func (f Fields) Ordered() []fhe.Ciphertext {
	return []fhe.Ciphertext{f.Patient, f.Diagnosis, f.Treatment, f.Outcome}
}

// Clone deep-copies the record so callers can never mutate stored ledger
// state through a returned slice header.
func (r Record) Clone() Record {
	r.Fields = Fields{
		Patient:   cloneCiphertext(r.Fields.Patient),
		Diagnosis: cloneCiphertext(r.Fields.Diagnosis),
		Treatment: cloneCiphertext(r.Fields.Treatment),
		Outcome:   cloneCiphertext(r.Fields.Outcome),
	}
	return r
}

func cloneCiphertext(ct fhe.Ciphertext) fhe.Ciphertext {
	data := make([]byte, len(ct.Data))
	copy(data, ct.Data)
	return fhe.Ciphertext{Tag: ct.Tag, Data: data}
}

// Validate rejects submissions with missing or malformed ciphertexts before
// anything reaches the store.
func (f Fields) Validate() error {
	named := []struct {
		name string
		ct   fhe.Ciphertext
	}{
		{"patient", f.Patient},
		{"diagnosis", f.Diagnosis},
		{"treatment", f.Treatment},
		{"outcome", f.Outcome},
	}
	for _, field := range named {
		if err := field.ct.Validate(); err != nil {
			return dErrors.Newf(dErrors.CodeInvalidInput, "%s ciphertext: %v", field.name, err)
		}
	}
	return nil
}

package record

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// Record is a crop record as persisted by the remote service.
type Record struct {
	ID        string    `json:"id"`
	CropName  string    `json:"cropName"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Fields is the writable subset of a record, supplied by the caller
// when creating a record.
type Fields struct {
	CropName string  `json:"cropName"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// Partial carries the fields of an update. Nil fields are left
// untouched by the service.
type Partial struct {
	CropName *string  `json:"cropName,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// Normalized returns a copy with all string fields in Unicode NFC form.
// User input arrives from different platforms and input methods; queued
// payloads must compare and serialize identically regardless of how the
// text was composed.
func (f Fields) Normalized() Fields {
	f.CropName = norm.NFC.String(f.CropName)
	f.Unit = norm.NFC.String(f.Unit)
	f.Notes = norm.NFC.String(f.Notes)
	return f
}

// Normalized returns a copy with all set string fields in Unicode NFC form.
func (p Partial) Normalized() Partial {
	if p.CropName != nil {
		v := norm.NFC.String(*p.CropName)
		p.CropName = &v
	}
	if p.Unit != nil {
		v := norm.NFC.String(*p.Unit)
		p.Unit = &v
	}
	if p.Notes != nil {
		v := norm.NFC.String(*p.Notes)
		p.Notes = &v
	}
	return p
}

// IsZero reports whether the partial carries no changes at all.
func (p Partial) IsZero() bool {
	return p.CropName == nil && p.Quantity == nil && p.Unit == nil && p.Notes == nil
}

package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsNormalized(t *testing.T) {
	// "Maïs" with the ï decomposed into 'i' + combining diaeresis.
	f := Fields{CropName: "Maïs", Quantity: 3, Unit: "kg"}.Normalized()

	assert.Equal(t, "Maïs", f.CropName, "string fields composed to NFC")
	assert.Equal(t, 3.0, f.Quantity, "non-string fields untouched")
	assert.Equal(t, "kg", f.Unit)
}

func TestPartialNormalized(t *testing.T) {
	name := "Maïs"
	p := Partial{CropName: &name}.Normalized()
	assert.Equal(t, "Maïs", *p.CropName)

	var untouched Partial
	assert.True(t, untouched.Normalized().IsZero(), "nil fields stay nil")
}

func TestPartialIsZero(t *testing.T) {
	assert.True(t, Partial{}.IsZero())

	unit := "kg"
	assert.False(t, Partial{Unit: &unit}.IsZero())
}

package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	in := "ACME  STORE\t\tMAIN ST\r\nTOTAL   12.50   \n\n\n\nTHANK YOU\n"
	want := "ACME STORE MAIN ST\nTOTAL 12.50\n\nTHANK YOU"
	assert.Equal(t, want, Normalize(in))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}

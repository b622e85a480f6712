package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)
	rowID := "d4c3b2a1-0000-1111-2222-333344445555"

	token := EncodeToken(createdAt, rowID)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedTime, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedTime, "Timestamp should match after decode")
	assert.Equal(t, rowID, decodedID, "Row id should match after decode")

	// Zero time round-trips too
	zeroToken := EncodeToken(time.Time{}, "id")
	decodedZero, _, err := DecodeToken(zeroToken)
	assert.NoError(t, err)
	assert.True(t, decodedZero.IsZero(), "Zero time should survive the round trip")

	// Current time with nanosecond precision
	now := time.Now().UTC()
	nowToken := EncodeToken(now, rowID)
	decodedNow, _, err := DecodeToken(nowToken)
	assert.NoError(t, err)
	assert.True(t, now.Equal(decodedNow), "Current time should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	// Invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	// Missing separator
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo" // no "|" inside
	_, _, err = DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for a token without separator")

	// Unparseable timestamp
	badTimeToken := EncodeMultiFieldToken("notadate", "some-id")
	_, _, err = DecodeToken(badTimeToken)
	assert.Error(t, err, "Should return an error for an invalid timestamp")
	assert.Contains(t, err.Error(), "timestamp parse")
}

func TestEncodeMultiFieldToken(t *testing.T) {
	fields := []string{"field1", "field2", "field3"}
	token := EncodeMultiFieldToken(fields...)

	decodedFields, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, fields, decodedFields, "Fields should match after decode")

	// Pipes inside a field split like separators; callers must not embed them.
	specialToken := EncodeMultiFieldToken("a|b", "c")
	decodedSpecial, err := DecodeMultiFieldToken(specialToken)
	assert.NoError(t, err)
	assert.Len(t, decodedSpecial, 3)
}

package sign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	_, keys, err := Generate()
	require.NoError(t, err)

	message := []byte("some session id bytes")
	signature := keys.Sign(message)

	require.NoError(t, keys.Verify(message, signature))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	_, keys, err := Generate()
	require.NoError(t, err)

	signature := keys.Sign([]byte("original"))
	err = keys.Verify([]byte("tampered"), signature)
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyRejectsSignatureFromOtherKeypair(t *testing.T) {
	_, keysA, err := Generate()
	require.NoError(t, err)
	_, keysB, err := Generate()
	require.NoError(t, err)

	message := []byte("payload")
	signature := keysA.Sign(message)

	err = keysB.Verify(message, signature)
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyRejectsTruncatedSignature(t *testing.T) {
	_, keys, err := Generate()
	require.NoError(t, err)

	signature := keys.Sign([]byte("payload"))
	err = keys.Verify([]byte("payload"), signature[:len(signature)-1])
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestFromEncodedRestoresKeypair(t *testing.T) {
	encoded, original, err := Generate()
	require.NoError(t, err)

	restored, err := FromEncoded(encoded)
	require.NoError(t, err)

	// The restored private half must produce signatures the original public
	// half accepts, and vice versa.
	message := []byte("payload")
	require.NoError(t, original.Verify(message, restored.Sign(message)))
	require.NoError(t, restored.Verify(message, original.Sign(message)))
}

func TestFromEncodedRejectsBadInput(t *testing.T) {
	_, err := FromEncoded("not base64!!!")
	assert.ErrorIs(t, err, ErrInvalidKey)

	// Valid base64 but wrong length.
	_, err = FromEncoded("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSignatureEncoding(t *testing.T) {
	_, keys, err := Generate()
	require.NoError(t, err)

	signature := keys.Sign([]byte("payload"))
	decoded, err := DecodeSignature(EncodeSignature(signature))
	require.NoError(t, err)
	assert.Equal(t, signature, decoded)

	_, err = DecodeSignature("%%%")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

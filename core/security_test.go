package core

import (
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveFileKeyR234MatchesAcrossCalls(t *testing.T) {
	o := []byte("0123456789012345678901234567890x")
	id0 := []byte("0123456789012345")
	k1 := deriveFileKeyR234([]byte(""), o, Permissions(-4), id0, 3, 16, true)
	k2 := deriveFileKeyR234([]byte(""), o, Permissions(-4), id0, 3, 16, true)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 16)
}

func TestCheckUserPasswordR234AcceptsTheDerivingPassword(t *testing.T) {
	o := []byte("owner-entry-32-bytes-padded-xxxx")
	id0 := []byte("0123456789012345")
	for _, r := range []int{2, 3, 4} {
		key := deriveFileKeyR234([]byte(""), o, Permissions(-4), id0, r, 16, true)
		u := computeUR234(key, r, id0)
		assert.True(t, checkUserPasswordR234(key, r, id0, u), "r=%d", r)
	}
}

func TestCheckUserPasswordR234RejectsWrongPassword(t *testing.T) {
	o := []byte("owner-entry-32-bytes-padded-xxxx")
	id0 := []byte("0123456789012345")
	for _, r := range []int{2, 3, 4} {
		rightKey := deriveFileKeyR234([]byte(""), o, Permissions(-4), id0, r, 16, true)
		storedU := computeUR234(rightKey, r, id0)

		wrongKey := deriveFileKeyR234([]byte("wrong"), o, Permissions(-4), id0, r, 16, true)
		assert.False(t, checkUserPasswordR234(wrongKey, r, id0, storedU), "r=%d", r)
	}
}

func TestDeriveKeyR6RejectsWrongPassword(t *testing.T) {
	correctPass := []byte("correct horse")
	validationSalt := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	keySalt := []byte{9, 10, 11, 12, 13, 14, 15, 16}

	u := make([]byte, 48)
	copy(u[0:32], alg2b(correctPass, validationSalt, nil))
	copy(u[32:40], validationSalt)
	copy(u[40:48], keySalt)

	// Build a /UE that genuinely decrypts to a known file key under the
	// intermediate key alg2b derives for the correct password, so the
	// success path is exercised alongside the rejection path.
	ikey := alg2b(correctPass, keySalt, nil)
	block, err := aes.NewCipher(ikey)
	assert.NoError(t, err)
	iv := make([]byte, 16)
	wantKey := make([]byte, 32)
	for i := range wantKey {
		wantKey[i] = byte(i)
	}
	ue := make([]byte, 32)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ue, wantKey)

	key, err := deriveKeyR6(nil, u, nil, ue, correctPass)
	assert.NoError(t, err)
	assert.Equal(t, wantKey, key)

	_, err = deriveKeyR6(nil, u, nil, ue, []byte("wrong password"))
	assert.Error(t, err)
	var encErr *EncryptionError
	assert.ErrorAs(t, err, &encErr)
	assert.Equal(t, "AuthenticationFailed", encErr.Reason)
}

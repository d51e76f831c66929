package core

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha256"
	"crypto/sha512"

	"github.com/corpusreader/pdftext/common"
)

// Permissions mirrors the /P bit flags (Table 22, ISO 32000-1): this core
// only ever opens documents for reading, so it records the flags for
// diagnostics but never enforces them (Non-goals: no write
// support, so "can this user print" is not a question this core answers).
type Permissions int32

// padding is the 32-byte password-padding string fixed by the Standard
// Security Handler (7.6.3.3, Algorithm 2, step (a)).
var padding = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF,
	0xFA, 0x01, 0x08, 0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C,
	0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// Decryptor implements the Standard Security Handler (7.6, ISO 32000-1):
// revisions 2-4 (RC4 or AES-128, file key derived from MD5) and revisions
// 5-6 (AES-256, file key derived from SHA-256/384/512, PDF 2.0/Extension
// Level 3). It is constructed once per document in newDecryptorFromTrailer
// and then used to decrypt every indirect object and stream body as they
// are parsed.
//
// Only reading is supported: this package never re-encrypts, so there is
// no key-generation or /O-computation path, only derivation, decrypt, and
// (for R2-4) recomputing /U to authenticate a candidate password.
type Decryptor struct {
	v, r  int
	keyLen int // file key length, bytes
	key   []byte // derived file encryption key
	id0   []byte

	useAES       bool // stream/string crypt filter is an AESV2/AESV3 filter
	encryptMeta  bool
	skipStrings  bool // StrF == Identity
	skipStreams  bool // StmF == Identity
}

// newDecryptorFromTrailer reads the /Encrypt dictionary referenced from the
// trailer and derives the file encryption key using userPass (empty for
// the common case of PDFs encrypted only to "protect against accidental
// editing", which open with the empty user password). A userPass that does
// not authenticate as the document's user password surfaces as
// EncryptionError; userPass is not tried as an owner password.
func newDecryptorFromTrailer(p *objParser, encObj Object, trailer *Dict, userPass []byte) (*Decryptor, error) {
	dict, ok := GetDict(encObj)
	if !ok {
		if ref, isRef := encObj.(*Reference); isRef {
			resolved, err := p.resolveDepth(ref, 0)
			if err != nil {
				return nil, &EncryptionError{Reason: "cannot resolve /Encrypt dictionary"}
			}
			dict, ok = GetDict(resolved)
		}
		if !ok {
			return nil, &EncryptionError{Reason: "/Encrypt is not a dictionary"}
		}
	}

	filterName, _ := GetName(dict.Get("Filter"))
	if filterName != "" && filterName != "Standard" {
		return nil, &EncryptionError{Reason: "unsupported security handler: " + filterName}
	}

	v, _ := GetInt(dict.Get("V"))
	r, _ := GetInt(dict.Get("R"))
	length, _ := GetInt(dict.Get("Length"))
	if length == 0 {
		length = 40
	}
	p64, _ := GetInt(dict.Get("P"))
	encMeta := true
	if b, ok := GetBool(dict.Get("EncryptMetadata")); ok {
		encMeta = b
	}
	oBytes, _ := GetStringBytes(dict.Get("O"))
	uBytes, _ := GetStringBytes(dict.Get("U"))

	var id0 []byte
	if idArr, ok := GetArray(trailer.Get("ID")); ok && idArr.Len() > 0 {
		id0, _ = GetStringBytes(idArr.Get(0))
	}

	d := &Decryptor{
		v: int(v), r: int(r),
		keyLen:      int(length) / 8,
		id0:         id0,
		encryptMeta: encMeta,
	}
	if d.keyLen == 0 {
		d.keyLen = 5
	}

	if v >= 4 {
		stmF, _ := GetName(dict.Get("StmF"))
		strF, _ := GetName(dict.Get("StrF"))
		d.skipStreams = stmF == "Identity"
		d.skipStrings = strF == "Identity"

		if cfDict, ok := GetDict(dict.Get("CF")); ok {
			name := stmF
			if name == "" || name == "Identity" {
				name = strF
			}
			if name != "" {
				if filt, ok := GetDict(cfDict.Get(Name(name))); ok {
					cfm, _ := GetName(filt.Get("CFM"))
					d.useAES = cfm == "AESV2" || cfm == "AESV3"
					if cfLen, ok := GetInt(filt.Get("Length")); ok && cfLen > 0 {
						if cfLen >= 40 {
							cfLen /= 8
						}
						d.keyLen = int(cfLen)
					}
				}
			}
		}
		if v == 5 {
			d.useAES = true
			d.keyLen = 32
		}
	}

	if r >= 5 {
		oe, _ := GetStringBytes(dict.Get("OE"))
		ue, _ := GetStringBytes(dict.Get("UE"))
		key, err := deriveKeyR6(oBytes, uBytes, oe, ue, userPass)
		if err != nil {
			return nil, err
		}
		d.key = key
		return d, nil
	}

	key := deriveFileKeyR234(userPass, oBytes, Permissions(p64), id0, int(r), d.keyLen, encMeta)
	if !checkUserPasswordR234(key, int(r), id0, uBytes) {
		return nil, &EncryptionError{Reason: "AuthenticationFailed"}
	}
	d.key = key
	common.Log.Trace("derived file key (V=%d R=%d): % x", v, r, d.key)
	return d, nil
}

// deriveFileKeyR234 implements Algorithm 2 (7.6.4.3.2) for standard
// security handler revisions 2-4: an RC4 or AES-128 file key derived from
// the candidate user password, /O, /P, the first trailer /ID element,
// and 50 extra MD5 rounds for R>=3.
func deriveFileKeyR234(userPass, o []byte, p Permissions, id0 []byte, r, keyLen int, encryptMetadata bool) []byte {
	padded := paddedPassword(userPass)

	h := md5.New()
	h.Write(padded)
	h.Write(o)
	var pb [4]byte
	pu := uint32(p)
	for i := 0; i < 4; i++ {
		pb[i] = byte(pu >> uint(8*i))
	}
	h.Write(pb[:])
	h.Write(id0)
	if r >= 4 && !encryptMetadata {
		h.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}
	sum := h.Sum(nil)

	if r >= 3 {
		for i := 0; i < 50; i++ {
			h2 := md5.Sum(sum[:keyLen])
			sum = h2[:]
		}
	}
	if keyLen > len(sum) {
		keyLen = len(sum)
	}
	return append([]byte{}, sum[:keyLen]...)
}

// checkUserPasswordR234 authenticates a candidate file key for revisions
// 2-4 by recomputing what /U would hold for that key (Algorithm 4, 7.6.4.4.6,
// for R=2; Algorithm 5, 7.6.4.4.7, for R>=3) and comparing it against the
// dictionary's stored /U. Only the first 16 bytes of the R>=3 value are
// defined to be checked; the trailing 16 are arbitrary padding.
func checkUserPasswordR234(key []byte, r int, id0, storedU []byte) bool {
	computed := computeUR234(key, r, id0)
	if r <= 2 {
		return bytes.Equal(computed, storedU)
	}
	if len(computed) < 16 || len(storedU) < 16 {
		return false
	}
	return bytes.Equal(computed[:16], storedU[:16])
}

// computeUR234 computes the encryption dictionary's /U value for a derived
// file key: Algorithm 4 for R=2 (RC4-encrypt the fixed padding string once),
// Algorithm 5 for R>=3 (RC4-encrypt MD5(padding || id0), then 19 further
// RC4 passes each re-keyed with every file-key byte XORed with the pass
// number, per 7.6.4.4.7 steps (a)-(d)).
func computeUR234(key []byte, r int, id0 []byte) []byte {
	if r <= 2 {
		c, err := rc4.NewCipher(key)
		if err != nil {
			return nil
		}
		out := make([]byte, 32)
		c.XORKeyStream(out, padding)
		return out
	}

	h := md5.New()
	h.Write(padding)
	h.Write(id0)
	sum := h.Sum(nil)

	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil
	}
	out := make([]byte, 16)
	c.XORKeyStream(out, sum)

	for i := byte(1); i <= 19; i++ {
		roundKey := make([]byte, len(key))
		for j := range key {
			roundKey[j] = key[j] ^ i
		}
		rc, err := rc4.NewCipher(roundKey)
		if err != nil {
			return nil
		}
		next := make([]byte, 16)
		rc.XORKeyStream(next, out)
		out = next
	}
	return append(out, make([]byte, 16)...)
}

// paddedPassword pads or truncates pass to exactly 32 bytes using the
// fixed padding string, Algorithm 2 step (a).
func paddedPassword(pass []byte) []byte {
	out := make([]byte, 32)
	n := copy(out, pass)
	if n < 32 {
		copy(out[n:], padding)
	}
	return out
}

// deriveKeyR6 implements Algorithm 2.A (7.6.4.3.2, R=5/R=6): try pass as
// the user password against /U's validation salt (the plain SHA-256 hash
// of R=5 first, then the Algorithm 2.B hash of R=6), then unwrap /UE with
// the intermediate key to recover the file encryption key. The
// owner-password path (/O, /OE) is not attempted.
func deriveKeyR6(o, u, oe, ue, pass []byte) ([]byte, error) {
	if len(u) < 48 {
		return nil, &EncryptionError{Reason: "/U too short for R>=5"}
	}
	if len(ue) < 32 {
		return nil, &EncryptionError{Reason: "/UE too short for R>=5"}
	}
	validationSalt := u[32:40]
	keySalt := u[40:48]

	hashFn := func(salt []byte) []byte { return alg2b(pass, salt, nil) }
	r5 := sha256.Sum256(append(append([]byte{}, pass...), validationSalt...))
	if bytes.Equal(r5[:], u[0:32]) {
		hashFn = func(salt []byte) []byte {
			s := sha256.Sum256(append(append([]byte{}, pass...), salt...))
			return s[:]
		}
	} else if !bytes.Equal(alg2b(pass, validationSalt, nil), u[0:32]) {
		return nil, &EncryptionError{Reason: "AuthenticationFailed"}
	}

	ikey := hashFn(keySalt)
	block, err := aes.NewCipher(ikey)
	if err != nil {
		return nil, &EncryptionError{Reason: "aes key setup: " + err.Error()}
	}
	iv := make([]byte, 16)
	mode := cipher.NewCBCDecrypter(block, iv)
	key := make([]byte, 32)
	mode.CryptBlocks(key, ue[:32])
	return key, nil
}

// alg2b implements Algorithm 2.B (7.6.4.3.4): the hardened SHA-256/384/512
// hashing loop introduced for R=6. It always runs the full loop, so it does
// not produce the plain SHA-256 hash R=5 uses; deriveKeyR6 computes that
// one separately.
func alg2b(pass, salt, userKey []byte) []byte {
	input := append(append(append([]byte{}, pass...), salt...), userKey...)
	k := sha256.Sum256(input)
	K := k[:]
	for round := 0; ; round++ {
		var k1 bytes.Buffer
		for i := 0; i < 64; i++ {
			k1.Write(pass)
			k1.Write(K)
			k1.Write(userKey)
		}
		block, err := aes.NewCipher(K[:16])
		if err != nil {
			return K
		}
		e := make([]byte, k1.Len())
		cipher.NewCBCEncrypter(block, K[16:32]).CryptBlocks(e, k1.Bytes())

		sum := 0
		for _, b := range e[:16] {
			sum += int(b)
		}
		switch sum % 3 {
		case 0:
			s := sha256.Sum256(e)
			K = s[:]
		case 1:
			s := sha512.Sum384(e)
			K = s[:]
		case 2:
			s := sha512.Sum512(e)
			K = s[:]
		}
		if round >= 63 && int(e[len(e)-1]) <= round-32 {
			break
		}
	}
	return K[:32]
}

// objectKey derives the per-object RC4/AES key from the file key and the
// object/generation numbers (Algorithm 1, 7.6.2). R>=5 (AES-256) reuses
// the file key unchanged for every object instead.
func (d *Decryptor) objectKey(objNum, genNum int64) []byte {
	if d.r >= 5 {
		return d.key
	}
	buf := make([]byte, 0, len(d.key)+9)
	buf = append(buf, d.key...)
	buf = append(buf,
		byte(objNum), byte(objNum>>8), byte(objNum>>16),
		byte(genNum), byte(genNum>>8))
	if d.useAES {
		buf = append(buf, 0x73, 0x41, 0x6C, 0x54) // "sAlT"
	}
	sum := md5.Sum(buf)
	n := len(d.key) + 5
	if n > 16 {
		n = 16
	}
	return append([]byte{}, sum[:n]...)
}

// decryptBytes decrypts a single string/stream body with the given
// per-object key, choosing RC4 or AES-CBC (first 16 bytes of ciphertext
// are the IV, PKCS#7 padding trimmed from the tail) per the crypt filter
// method declared by the security handler.
func decryptBytes(data, okey []byte, useAES bool) []byte {
	if len(data) == 0 {
		return data
	}
	if !useAES {
		c, err := rc4.NewCipher(okey)
		if err != nil {
			return data
		}
		out := make([]byte, len(data))
		c.XORKeyStream(out, data)
		return out
	}
	if len(data) < 16 || len(data)%16 != 0 {
		common.Log.Debug("AES-encrypted data not a multiple of the block size; leaving as-is")
		return data
	}
	block, err := aes.NewCipher(okey)
	if err != nil {
		return data
	}
	iv, ct := data[:16], data[16:]
	if len(ct) == 0 {
		return nil
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
	padLen := int(out[len(out)-1])
	if padLen > 0 && padLen <= len(out) {
		out = out[:len(out)-padLen]
	}
	return out
}

// isEncryptDict reports whether d is the security handler's own /Encrypt
// dictionary: its O/U byte strings are never themselves encrypted (they
// are consumed to derive keys, not produced by encrypting plaintext).
func isEncryptDict(d *Dict) bool {
	return d.Get("O") != nil && d.Get("U") != nil && d.Get("Filter") != nil
}

// decryptObject walks val recursively, decrypting every literal/hex
// string it finds in place, using the key derived for (objNum, genNum).
// Dicts and arrays are walked but never themselves "decrypted" (only the
// String leaves are ciphertext).
func (d *Decryptor) decryptObject(objNum, genNum int64, val Object) Object {
	if d.skipStrings {
		return val
	}
	switch v := val.(type) {
	case *String:
		okey := d.objectKey(objNum, genNum)
		v.SetBytes(decryptBytes(v.Bytes(), okey, d.useAES))
		return v
	case *Array:
		for _, e := range v.Elements() {
			d.decryptObject(objNum, genNum, e)
		}
		return v
	case *Dict:
		if isEncryptDict(v) {
			return v
		}
		for _, k := range v.Keys() {
			d.decryptObject(objNum, genNum, v.Get(k))
		}
		return v
	default:
		return val
	}
}

// decryptStreamBytes decrypts a stream's raw body before any /Filter chain
// is applied (7.6.2: encryption happens after compression at write time,
// so decryption happens before decompression at read time). XRef streams
// (7.5.8.2), and every stream when /StmF is Identity, pass through
// unchanged; a stream's own /Crypt filter entry is not consulted.
func (d *Decryptor) decryptStreamBytes(objNum, genNum int64, dict *Dict, body []byte) []byte {
	if d.skipStreams {
		return body
	}
	if t, _ := GetName(dict.Get("Type")); t == "XRef" {
		return body
	}
	okey := d.objectKey(objNum, genNum)
	return decryptBytes(body, okey, d.useAES)
}

// Package tokencrypt protects third-party refresh tokens before they are
// written to durable storage.
//
// Ciphertexts use the OpenSSL "salted" envelope produced by password-based
// AES: base64("Salted__" | salt[8] | AES-256-CBC(PKCS#7)). The key and IV are
// derived from the passphrase and salt with EVP_BytesToKey (MD5, one round),
// so tokens stored by earlier deployments remain readable.
package tokencrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Error kinds returned by the cipher. Callers match them with errors.Is.
var (
	ErrMissingKey = errors.New("token encryption key is not configured")
	ErrEncryption = errors.New("token encryption failed")
	ErrDecryption = errors.New("token decryption failed")
)

const (
	saltedPrefix = "Salted__"
	saltSize     = 8
	keySize      = 32
	headerSize   = len(saltedPrefix) + saltSize
)

// Cipher encrypts and decrypts tokens with a single passphrase.
type Cipher struct {
	passphrase []byte
	rand       io.Reader
}

// New returns a Cipher for the given passphrase. An empty passphrase is
// rejected so a missing configuration value can never encrypt silently.
func New(key string) (*Cipher, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	return &Cipher{passphrase: []byte(key), rand: rand.Reader}, nil
}

// Encrypt returns the base64 envelope for plaintext. A fresh salt is drawn on
// every call, so encrypting the same token twice yields different output.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty token", ErrEncryption)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return "", fmt.Errorf("%w: generate salt: %v", ErrEncryption, err)
	}

	return c.seal([]byte(plaintext), salt)
}

func (c *Cipher) seal(plaintext, salt []byte) (string, error) {
	key, iv := deriveKeyIV(c.passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)

	out := make([]byte, headerSize+len(padded))
	copy(out, saltedPrefix)
	copy(out[len(saltedPrefix):], salt)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[headerSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. A wrong key, a corrupted or truncated envelope,
// and a result that is empty or not valid UTF-8 all return ErrDecryption.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: malformed encoding", ErrDecryption)
	}

	if len(raw) < headerSize+aes.BlockSize || !bytes.HasPrefix(raw, []byte(saltedPrefix)) {
		return "", fmt.Errorf("%w: missing salt header", ErrDecryption)
	}

	body := raw[headerSize:]
	if len(body)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: truncated ciphertext", ErrDecryption)
	}

	key, iv := deriveKeyIV(c.passphrase, raw[len(saltedPrefix):headerSize])

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	// A wrong key occasionally yields valid padding; the result is then
	// almost always empty or not valid UTF-8.
	if len(plain) == 0 {
		return "", fmt.Errorf("%w: empty result", ErrDecryption)
	}
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: result is not valid UTF-8", ErrDecryption)
	}

	return string(plain), nil
}

// EncryptToken encrypts token with key.
func EncryptToken(token, key string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return c.Encrypt(token)
}

// DecryptToken decrypts a value produced by EncryptToken with the same key.
func DecryptToken(encryptedToken, key string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return c.Decrypt(encryptedToken)
}

// deriveKeyIV implements OpenSSL's EVP_BytesToKey with MD5 and one iteration.
func deriveKeyIV(passphrase, salt []byte) (key, iv []byte) {
	var derived, prev []byte
	for len(derived) < keySize+aes.BlockSize {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keySize], derived[keySize : keySize+aes.BlockSize]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append(make([]byte, 0, len(data)+n), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padding length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}

// Package encrypt provides symmetric, password-based encryption for notes at
// rest using NaCl's SecretBox authenticated cipher, and ECIES sealing of note
// payloads to a recipient's viewing key. Passwords are read securely from the
// terminal.
package encrypt

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/term"
)

const saltSize = 16 // size in bytes for the salt

// deriveKey derives a 32-byte key from a password using scrypt.
func deriveKey(password, salt []byte) (*[32]byte, error) {
	key, err := scrypt.Key(password, salt, 32768, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	var keyArray [32]byte
	copy(keyArray[:], key)
	return &keyArray, nil
}

// encryptRaw encrypts the plaintext using NaCl's secretbox.
// It returns raw bytes containing: nonce || ciphertext.
func encryptRaw(plaintext []byte, key *[32]byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	encrypted := secretbox.Seal(nonce[:], plaintext, &nonce, key)
	return encrypted, nil
}

// decryptRaw decrypts the raw encrypted data produced by encryptRaw.
func decryptRaw(data []byte, key *[32]byte) ([]byte, error) {
	if len(data) < 24 {
		return nil, fmt.Errorf("encrypted data too short")
	}
	var nonce [24]byte
	copy(nonce[:], data[:24])
	decrypted, ok := secretbox.Open(nil, data[24:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("decryption error: invalid key or corrupt data")
	}
	return decrypted, nil
}

// EncryptWithPassword encrypts the plaintext under the given password and
// returns base64(salt || nonce || ciphertext).
func EncryptWithPassword(plaintext, password []byte) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to read random data: %v", err)
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return "", fmt.Errorf("key derivation failed: %v", err)
	}
	encryptedRaw, err := encryptRaw(plaintext, key)
	if err != nil {
		return "", fmt.Errorf("encryption failed: %v", err)
	}

	finalData := append(salt, encryptedRaw...)
	return base64.StdEncoding.EncodeToString(finalData), nil
}

// DecryptWithPassword reverses EncryptWithPassword.
func DecryptWithPassword(ciphertext string, password []byte) ([]byte, error) {
	fullData, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %v", err)
	}
	if len(fullData) < saltSize {
		return nil, fmt.Errorf("invalid input: missing salt")
	}

	salt := fullData[:saltSize]
	encryptedRaw := fullData[saltSize:]

	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %v", err)
	}
	plaintext, err := decryptRaw(encryptedRaw, key)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %v", err)
	}
	return plaintext, nil
}

// Encrypt encrypts the plaintext, asking the user for the password.
func Encrypt(plaintext []byte) (string, error) {
	password, err := PromptPassword()
	if err != nil {
		return "", err
	}
	return EncryptWithPassword(plaintext, password)
}

// Decrypt decrypts the ciphertext, asking the user for the password.
func Decrypt(ciphertext string) ([]byte, error) {
	password, err := PromptPassword()
	if err != nil {
		return nil, err
	}
	return DecryptWithPassword(ciphertext, password)
}

// PromptPassword reads a password from the terminal without echoing it.
func PromptPassword() ([]byte, error) {
	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %v", err)
	}
	fmt.Println()
	return password, nil
}

// SealToViewingKey encrypts data to the holder of the given 33-byte
// compressed viewing public key using ECIES. A payer uses this to hand the
// recipient everything needed to withdraw without any other channel.
func SealToViewingKey(data, viewPubKey []byte) ([]byte, error) {
	pub, err := crypto.DecompressPubkey(viewPubKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewing key: %v", err)
	}
	encrypted, err := ecies.Encrypt(rand.Reader, ecies.ImportECDSAPublic(pub), data, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %v", err)
	}
	return encrypted, nil
}

// OpenWithViewingKey decrypts data sealed by SealToViewingKey.
func OpenWithViewingKey(encrypted []byte, viewPriv *ecdsa.PrivateKey) ([]byte, error) {
	decrypted, err := ecies.ImportECDSA(viewPriv).Decrypt(encrypted, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %v", err)
	}
	return decrypted, nil
}

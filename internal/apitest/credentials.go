package apitest

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var errBadHash = errors.New("invalid encoded hash")

// Argon2id parameters. Kept small: these hashes only live for a test run.
const (
	hashMemory  = 8 * 1024
	hashTime    = 1
	hashThreads = 1
	saltLen     = 16
	keyLen      = 32
)

// hashPassword returns "$argon2id$<salt>$<key>" with raw base64 parts.
func hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, hashTime, hashMemory, hashThreads, keyLen)
	return "$argon2id$" + base64.RawStdEncoding.EncodeToString(salt) + "$" + base64.RawStdEncoding.EncodeToString(key), nil
}

func verifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[1] != "argon2id" {
		return false, errBadHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, errBadHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, errBadHash
	}

	got := argon2.IDKey([]byte(password), salt, hashTime, hashMemory, hashThreads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

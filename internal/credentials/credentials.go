// Package credentials generates the delivery verification credentials
// issued with every order. Both functions are pure and never fail.
package credentials

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
)

// CodeAlphabet excludes visually confusable characters (0/O, 1/I).
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of a verification code.
const CodeLength = 6

func randUint64() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint64(b[:])
}

// GeneratePin returns a 4-digit numeric PIN in the range 1000-9999.
func GeneratePin() string {
	n := 1000 + randUint64()%9000
	return strconv.FormatUint(n, 10)
}

// GenerateVerificationCode returns a 6-character code drawn from
// CodeAlphabet.
func GenerateVerificationCode() string {
	buf := make([]byte, CodeLength)
	for i := range buf {
		buf[i] = CodeAlphabet[randUint64()%uint64(len(CodeAlphabet))]
	}
	return string(buf)
}

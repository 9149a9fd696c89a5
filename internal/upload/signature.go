package upload

import (
	"bytes"
	"io"
)

// signatureLen is how many leading bytes are inspected. The longest magic
// number we recognise (OLE2) is 8 bytes.
const signatureLen = 8

var (
	sigPDF      = []byte{0x25, 0x50, 0x44, 0x46} // %PDF
	sigOLE2     = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
	sigZIP      = []byte{0x50, 0x4b, 0x03, 0x04}
	sigZIPEmpty = []byte{0x50, 0x4b, 0x05, 0x06}
)

// matchesAllowedSignature reports whether the leading bytes identify one of
// the allowed binary formats: PDF, legacy DOC (OLE2/CFB container), or DOCX
// (ZIP container).
func matchesAllowedSignature(prefix []byte) bool {
	if bytes.HasPrefix(prefix, sigPDF) {
		return true
	}
	if bytes.HasPrefix(prefix, sigOLE2) {
		return true
	}
	if bytes.HasPrefix(prefix, sigZIP) || bytes.HasPrefix(prefix, sigZIPEmpty) {
		return true
	}
	return false
}

// checkSignature reads up to signatureLen bytes from r and classifies them.
// Any read failure fails closed: an unreadable file is never accepted.
func checkSignature(r io.Reader) bool {
	if r == nil {
		return false
	}
	prefix := make([]byte, signatureLen)
	n, err := io.ReadFull(r, prefix)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return matchesAllowedSignature(prefix[:n])
}

package gdata

import (
	"crypto/md5"
	"encoding/hex"

	"swredit/types"
)

// Checksum is the content fingerprint of a whole file, md5 hex like the reference table.
func Checksum(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Validate checks a decoded header against the reference.
//
// A byte-identical reference file must carry the reference header exactly. Anything else has been
// edited before (by us or someone else), and edits legitimately change the count, so the count is
// ignored. Every other header field is structural and must never drift.
func Validate(header, expected types.Header, checksum, expectedChecksum string) error {
	if checksum == expectedChecksum {
		if !header.Equal(expected) {
			return &types.HeaderMismatchError{Expected: expected, Actual: header}
		}
		return nil
	}

	if !header.EqualIgnoringCount(expected) {
		return &types.HeaderMismatchError{Expected: expected, Actual: header, Masked: true}
	}
	return nil
}

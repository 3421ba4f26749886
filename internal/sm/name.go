package sm

import "strings"

// NameBufferSize is the fixed width of a service name on the wire.
// Shorter names are NUL-padded; an 8-byte name has no terminator at all.
const NameBufferSize = 8

// ValidateName checks a decoded service name: byte length in [1,8] and
// no embedded NUL. Names are case-sensitive byte sequences.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > NameBufferSize {
		return ErrInvalidNameSize
	}
	if strings.IndexByte(name, 0) >= 0 {
		return ErrNameContainsNul
	}
	return nil
}

// DecodeName turns a fixed-width wire buffer into a service name by
// truncating at the first NUL byte.
func DecodeName(buf []byte) string {
	if i := strings.IndexByte(string(buf), 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}

// EncodeName renders a service name into its fixed 8-byte NUL-padded
// wire form. Names longer than the buffer are unrepresentable and
// rejected the same way validation rejects them.
func EncodeName(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	buf := make([]byte, NameBufferSize)
	copy(buf, name)
	return buf, nil
}

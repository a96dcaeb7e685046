// Package security provides password hashing and a zeroizing container
// for secret material such as private keys and SMTP credentials.
package security

// SecureString holds sensitive bytes that are overwritten with zeros when
// released. It is meant for material that must not outlive its single use,
// like a freshly generated private key that is handed to the caller exactly
// once.
type SecureString struct {
	b []byte
}

// NewSecureString takes ownership of b. The caller must not retain the
// slice after handing it over.
func NewSecureString(b []byte) *SecureString {
	return &SecureString{b: b}
}

// SecureStringFrom copies s into a new SecureString.
func SecureStringFrom(s string) *SecureString {
	return &SecureString{b: []byte(s)}
}

// Bytes exposes the secret material. The returned slice aliases the backing
// memory and becomes invalid after Wipe.
func (s *SecureString) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Reveal returns the secret as a string.
func (s *SecureString) Reveal() string {
	if s == nil {
		return ""
	}
	return string(s.b)
}

// Len returns the length of the secret in bytes.
func (s *SecureString) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Wipe overwrites the backing memory with zeros. Safe to call more than
// once and on a nil receiver.
func (s *SecureString) Wipe() {
	if s == nil {
		return
	}
	WipeBytes(s.b)
	s.b = nil
}

// String implements fmt.Stringer and never returns the secret, so an
// accidental log statement cannot leak it.
func (s *SecureString) String() string {
	return "[redacted]"
}

// WipeBytes overwrites the contents of b with zeros. Does nothing if b is
// nil.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

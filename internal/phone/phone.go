package phone

// Normalize canonicalizes a phone number to a plain digit string. All
// non-digit characters are stripped; when more than 10 digits remain the
// country-code prefix is dropped and only the last 10 are kept. Inputs with
// fewer than 10 digits pass through unchanged; length validation belongs to
// the caller.
func Normalize(raw string) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

package types

import "strings"

const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a credential (feed service key, database URL) and refuses
// to print itself. String and MarshalJSON both return a redacted placeholder so
// secrets never reach structured logs or config dumps.
type SecretString string

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value. Only feed clients building request
// URLs and the database pool constructor should call this.
func (s SecretString) Unmask() string {
	return string(s)
}

// Usable reports whether the secret holds a real credential. Empty values and
// the sample placeholders shipped in .env templates (e.g. "your_kma_key")
// count as missing.
func (s SecretString) Usable(placeholders ...string) bool {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return false
	}
	for _, p := range placeholders {
		if v == p {
			return false
		}
	}
	return true
}

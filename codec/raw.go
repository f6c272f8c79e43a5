package codec

// Bytes is an identity codec for []byte values. Encode/Decode return the
// input unchanged. Useful when the wrapped function already produces raw
// bytes and only the key management is wanted.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String is a trivial codec for string values: a plain []byte(s) / string(b)
// conversion with no validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }

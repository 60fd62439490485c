package imagevault

import (
	"encoding/json"
	"fmt"
)

// EncodeMetadata serializes a sidecar record. The encoding is plain
// JSON key/value pairs and round-trips through DecodeMetadata.
func EncodeMetadata(m Metadata) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return data, nil
}

// DecodeMetadata deserializes a sidecar record. Malformed input, or a
// record with an empty owner, yields ErrDecode. Read paths treat that
// as the object being absent; enumeration skips the entry.
func DecodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if m.Owner == "" {
		return Metadata{}, fmt.Errorf("%w: missing owner", ErrDecode)
	}
	return m, nil
}

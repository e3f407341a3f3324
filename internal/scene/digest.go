package scene

import (
	"encoding/hex"
	"encoding/json"

	"lukechampine.com/blake3"
)

// Digest returns the hex BLAKE3 hash of the compact JSON encoding of data.
// Equal documents always have equal digests since struct fields and map keys
// are encoded in a fixed order.
func Digest(data SceneData) string {
	b, err := json.Marshal(data)
	if err != nil {
		// Content payloads that cannot be encoded still get a stable digest
		// of everything else.
		data.Nodes = stripContent(data.Nodes)
		b, _ = json.Marshal(data)
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func stripContent(nodes []NodeData) []NodeData {
	out := make([]NodeData, len(nodes))
	for i, n := range nodes {
		n.Content = nil
		out[i] = n
	}
	return out
}

package redis

import (
	"encoding/json"
	"errors"
	"fmt"
)

// schemaVersion is written into every stored record
const schemaVersion = 1

// ErrUnsupportedSchema is returned when a stored record has an unknown schema version
var ErrUnsupportedSchema = errors.New("unsupported record schema version")

// envelope wraps each record so the stored layout can evolve
type envelope struct {
	Schema int             `json:"schema"`
	Data   json.RawMessage `json:"data"`
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Schema: schemaVersion, Data: data})
}

func decode(raw []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	if env.Schema != schemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedSchema, env.Schema)
	}
	return json.Unmarshal(env.Data, v)
}

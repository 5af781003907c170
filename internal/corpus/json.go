package corpus

import "encoding/json"

func unmarshalContent(content []byte, v any) error {
	if len(content) == 0 {
		return nil
	}
	return json.Unmarshal(content, v)
}

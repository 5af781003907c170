package semanticindex

import "encoding/json"

func unmarshalJSON(content []byte, v any) error {
	return json.Unmarshal(content, v)
}

package toolcall

import (
	"encoding/json"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// Outcome is a rendered tool result.
type Outcome struct {
	// Body is the JSON object returned to the caller.
	Body map[string]any

	// Failure is set when the tool reported a failure.
	Failure *domain.Failure
}

// OK returns true when the tool succeeded.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Render converts a result into its JSON object form. Success payload
// fields sit next to "success"; failures carry only "error".
func Render[T any](res domain.Result[T]) Outcome {
	if !res.OK() {
		return Outcome{
			Body:    map[string]any{"success": false, "error": res.Failure.Message},
			Failure: res.Failure,
		}
	}

	body := map[string]any{}
	data, err := json.Marshal(res.Value)
	if err == nil {
		err = json.Unmarshal(data, &body)
	}
	if err != nil {
		failure := &domain.Failure{Kind: domain.ErrorKindStorage, Message: "encode result: " + err.Error()}
		return Outcome{
			Body:    map[string]any{"success": false, "error": failure.Message},
			Failure: failure,
		}
	}
	body["success"] = true
	return Outcome{Body: body}
}

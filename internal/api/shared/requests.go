package shared

import (
	"encoding/json"
	"net/http"
)

// DecodeJSON decodes the request body into v. Handlers treat a failure here
// as a 400; validation of the decoded struct happens separately.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

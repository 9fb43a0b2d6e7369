package printer

import (
	"io"

	vgjson "github.com/abstract-foundation/agw-session-keys/libs/json"
)

func FprintJSON(w io.Writer, data interface{}) error {
	return vgjson.Fprint(w, data)
}

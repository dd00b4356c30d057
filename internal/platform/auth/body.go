package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

// maxPeekBytes caps how much of a request body the middleware will buffer
// when looking for a token or tenant id field.
const maxPeekBytes = 1 << 20

// peekBodyField returns the string value of a top-level JSON body field
// without consuming the body: the bytes read are restored so handlers can
// still bind the request. Non-JSON and oversized bodies yield "".
func peekBodyField(c echo.Context, field string) string {
	req := c.Request()
	if req.Body == nil {
		return ""
	}
	if ct := req.Header.Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxPeekBytes))
	req.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), req.Body))
	if err != nil {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	var value string
	if raw, ok := fields[field]; ok {
		_ = json.Unmarshal(raw, &value)
	}
	return value
}

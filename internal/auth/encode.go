// Package auth translates a gateway's stored auth material into outbound
// HTTP headers. It is a pure, side-effect-free encoder: the only input is
// the caller-supplied auth type and value.
package auth

import (
	"encoding/base64"
	"fmt"
	"net/http"
)

const (
	TypeNone          = "none"
	TypeBasic         = "basic"
	TypeBearer        = "bearer"
	TypeCustomHeaders = "custom-headers"
)

// Encode returns the headers a client should send to authenticate as
// described by authType/authValue. Unknown auth types yield an error rather
// than silently producing no headers.
func Encode(authType string, authValue map[string]string) (http.Header, error) {
	headers := make(http.Header)

	switch authType {
	case "", TypeNone:
		return headers, nil

	case TypeBasic:
		user := authValue["username"]
		pass := authValue["password"]
		token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		headers.Set("Authorization", "Basic "+token)
		return headers, nil

	case TypeBearer:
		headers.Set("Authorization", "Bearer "+authValue["token"])
		return headers, nil

	case TypeCustomHeaders:
		for k, v := range authValue {
			headers.Set(k, v)
		}
		return headers, nil

	default:
		return nil, fmt.Errorf("auth: unknown auth type %q", authType)
	}
}

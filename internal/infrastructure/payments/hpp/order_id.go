package hpp

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// GenerateOrderID returns a 22 character, URL safe order id built from a
// random uuid (e.g. "GTI5Yxb0SumL_TkDMCAxQA").
func GenerateOrderID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

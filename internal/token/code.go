// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package token

import (
	"math/rand/v2"
	"strings"
)

// GenerateCode returns a numeric string of exactly length digits, each drawn
// uniformly. Leading zeros are allowed; the code is not a credential on its
// own, it is always checked against a stored record with an expiry.
func GenerateCode(length int) string {
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte('0' + byte(rand.IntN(10)))
	}
	return b.String()
}

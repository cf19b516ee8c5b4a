// Package identifier synthesizes IMOW location identifiers.
//
// An identifier has the form
//
//	nl.imow-<authorityCode>.<objectType>[engroep].<token>
//
// where token is 32 lowercase hexadecimal characters. No uniqueness check
// against storage is made; the token is a random UUID.
package identifier

import (
	"strings"

	"github.com/google/uuid"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// Generator produces the random token part of an identifier.
type Generator func() string

// Token returns a fresh 32-character lowercase hex token.
func Token() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Location builds the identifier for a location owned by authorityCode.
// Group locations get the "engroep" suffix on the object type.
func Location(authorityCode string, class gioimport.GeometryClass, group bool, gen Generator) string {
	if gen == nil {
		gen = Token
	}

	var b strings.Builder
	b.WriteString("nl.imow-")
	b.WriteString(authorityCode)
	b.WriteByte('.')
	b.WriteString(class.ObjectType())
	if group {
		b.WriteString("engroep")
	}
	b.WriteByte('.')
	b.WriteString(gen())
	return b.String()
}

// Package ids generates the opaque identifiers used for entities and
// operation envelopes: lowercase hex v4 UUIDs with the hyphens stripped,
// the format the service assigns server-side.
package ids

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

// New returns a fresh 32-character identifier.
func New() string {
	id := uuid.Must(uuid.NewV4())
	return strings.ReplaceAll(id.String(), "-", "")
}

package dicom

import (
	"math/big"

	"github.com/google/uuid"
)

// uidNamespace scopes the name-based UUIDs behind generated UIDs.
var uidNamespace = uuid.MustParse("6f1f7c3e-2b0a-4c9e-9f43-1d7e8a5b2c10")

// GenerateDeterministicUID derives a DICOM UID from seed. The same seed
// always yields the same UID. The UID uses the 2.25 root, where the suffix is
// the decimal value of a UUID (PS3.5 B.2), so it needs no registered org root.
func GenerateDeterministicUID(seed string) string {
	u := uuid.NewSHA1(uidNamespace, []byte(seed))
	return "2.25." + new(big.Int).SetBytes(u[:]).String()
}

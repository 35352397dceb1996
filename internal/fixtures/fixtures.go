// Package fixtures generates collision-resistant random test data.
// Uniqueness across parallel scenarios comes from randomness, not
// coordination: no two workers ever need to agree on a name.
package fixtures

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const emailDomain = "probe.example.com"

// Email returns a unique address safe to use concurrently across workers.
func Email() string {
	return fmt.Sprintf("probe-%s@%s", shortID(), emailDomain)
}

// DisplayName returns a human-readable employee name tagged with a unique
// suffix so backend-side uniqueness constraints never collide.
func DisplayName() string {
	return "Test Employee " + shortID()
}

// OrgName returns a unique organization name.
func OrgName() string {
	return "Probe Org " + shortID()
}

// ExternalID returns a unique operations external identifier in the
// AGR-####-####-#### shape the backend uses for agreements.
func ExternalID() string {
	id := uuid.New().String()
	digits := strings.ReplaceAll(id, "-", "")
	return fmt.Sprintf("AGR-%04d-%04d-%04d", sum(digits[0:8]), sum(digits[8:16]), sum(digits[16:24]))
}

// Password returns a random password meeting typical complexity rules.
func Password() string {
	return "Pw!" + uuid.New().String()
}

func shortID() string {
	return strings.Split(uuid.New().String(), "-")[0]
}

func sum(s string) uint16 {
	var total uint16
	for i := 0; i < len(s); i++ {
		total = total*31 + uint16(s[i])
	}
	return total % 10000
}

package prize

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

const seedBytes = 32

// NewSeed generates a fresh high-entropy card seed, hex encoded.
func NewSeed() (string, error) {
	buf := make([]byte, seedBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate card seed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SerializeOutcome is the canonical outcome encoding bound into the
// commitment hash: "name|kind|value" for a prized card, "none"
// otherwise. Anyone recomputing the hash must use this exact form.
func SerializeOutcome(tier *models.PrizeTier) string {
	if tier == nil {
		return "none"
	}
	return tier.Name + "|" + tier.Kind + "|" + tier.UnitValue.String()
}

// CommitmentHash binds a card's seed, assigned outcome and index at
// issuance time: sha256(seed "|" outcome "|" index), hex encoded.
func CommitmentHash(seed, serializedOutcome string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", seed, serializedOutcome, index)))
	return hex.EncodeToString(sum[:])
}

// VerifyCommitment recomputes the hash from disclosed values and
// compares it with the one stored at issuance.
func VerifyCommitment(seed string, tier *models.PrizeTier, index int, storedHash string) bool {
	return CommitmentHash(seed, SerializeOutcome(tier), index) == storedHash
}

package appraisal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SignatureHash derives the tamper-evidence marker stored with each
// signature. It covers the appraisal identity, the signer and the server
// timestamp; it deliberately does not cover the appraisal content
// itself.
func SignatureHash(appraisalID, signerEmail string, signedAt time.Time) string {
	payload := fmt.Sprintf("%s|%s|%s", appraisalID, signerEmail, signedAt.UTC().Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

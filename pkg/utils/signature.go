package utils

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"

	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

// Signature headers sent by the Messenger platform with each webhook POST.
const (
	HeaderSignature256 = "X-Hub-Signature-256"
	HeaderSignature    = "X-Hub-Signature"
)

// VerifySignature checks a "sha256=<hex>" or "sha1=<hex>" header value
// against the HMAC of body keyed with secret.
func VerifySignature(secret string, body []byte, signature string) error {
	algo, digest, ok := strings.Cut(signature, "=")
	if !ok || digest == "" {
		return pkgError.VerificationError("missing or malformed request signature")
	}

	var newHash func() hash.Hash
	switch algo {
	case "sha256":
		newHash = sha256.New
	case "sha1":
		newHash = sha1.New
	default:
		return pkgError.VerificationError("unsupported signature algorithm " + algo)
	}

	expected, err := hex.DecodeString(digest)
	if err != nil {
		return pkgError.VerificationError("signature is not hex encoded")
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return pkgError.VerificationError("request signature mismatch")
	}
	return nil
}

// SignBody returns the "sha256=<hex>" header value for body.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signedHeaders(secret, id, timestamp string, body []byte) http.Header {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%s.%s.%s", id, timestamp, string(body))))

	h := http.Header{}
	h.Set("svix-id", id)
	h.Set("svix-timestamp", timestamp)
	h.Set("svix-signature", "v1,"+hex.EncodeToString(mac.Sum(nil)))
	return h
}

func TestVerifyClerkSignature(t *testing.T) {
	const secret = "whsec_testsecret"
	t.Setenv("CLERK_WEBHOOK_SECRET", secret)

	body := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)

	t.Run("valid signature", func(t *testing.T) {
		h := signedHeaders(secret, "msg_1", "1714000000", body)
		assert.True(t, verifyClerkSignature(h, body))
	})

	t.Run("wrong secret", func(t *testing.T) {
		h := signedHeaders("whsec_othersecret", "msg_1", "1714000000", body)
		assert.False(t, verifyClerkSignature(h, body))
	})

	t.Run("tampered body", func(t *testing.T) {
		h := signedHeaders(secret, "msg_1", "1714000000", body)
		assert.False(t, verifyClerkSignature(h, []byte(`{"type":"user.deleted"}`)))
	})

	t.Run("missing headers", func(t *testing.T) {
		assert.False(t, verifyClerkSignature(http.Header{}, body))
	})

	t.Run("unsupported signature version", func(t *testing.T) {
		h := signedHeaders(secret, "msg_1", "1714000000", body)
		h.Set("svix-signature", "v2,deadbeef")
		assert.False(t, verifyClerkSignature(h, body))
	})
}

func TestVerifyClerkSignatureSkippedWithoutSecret(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "")
	assert.True(t, verifyClerkSignature(http.Header{}, []byte("{}")))
}

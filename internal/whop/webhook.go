package whop

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomstradingroom/funnel-server/internal/model"
)

// SignatureHeader carries the HMAC of the raw request body.
const SignatureHeader = "X-Whop-Signature"

// Webhook verifies and decodes inbound provider events.
type Webhook struct {
	secret string
}

func NewWebhook(secret string) *Webhook {
	return &Webhook{secret: secret}
}

// Unwrap verifies the payload signature and decodes the event envelope.
// Verification fails closed: any mismatch returns model.ErrInvalidSignature
// before the payload is looked at.
func (w *Webhook) Unwrap(body []byte, header http.Header) (model.Event, error) {
	if err := w.verify(body, header.Get(SignatureHeader)); err != nil {
		return model.Event{}, err
	}

	var event model.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return model.Event{}, fmt.Errorf("failed to decode event envelope: %w", err)
	}

	return event, nil
}

func (w *Webhook) verify(body []byte, signature string) error {
	if w.secret == "" || signature == "" {
		return model.ErrInvalidSignature
	}

	// Accept both bare hex and the "sha256=<hex>" form.
	signature = strings.TrimPrefix(signature, "sha256=")

	presented, err := hex.DecodeString(signature)
	if err != nil {
		return model.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(w.secret))
	mac.Write(body)

	if !hmac.Equal(presented, mac.Sum(nil)) {
		return model.ErrInvalidSignature
	}

	return nil
}

// Sign computes the signature for a payload. Exposed for tests and local
// replay tooling.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

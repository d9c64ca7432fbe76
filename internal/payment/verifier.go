// Package payment validates that a payment reference is trustworthy for a
// reservation before the confirm transaction runs.  Three modes exist:
// simulated (no gateway, prefix check only), reference (call out to the
// gateway's verify endpoint) and signed-callback (recompute a keyed MAC
// over the gateway's callback fields).
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Request carries the payment proof supplied by the client.  Reference and
// simulated modes use PaymentID alone; signed-callback mode additionally
// requires OrderID and Signature.
type Request struct {
	PaymentID string
	OrderID   string
	Signature string
}

// ErrPaymentInvalid is returned when a reference is malformed, fails
// gateway verification, or carries a bad signature.  The engine surfaces
// it as a PaymentError; the seat lock is retained until TTL so the caller
// can retry after fixing the payment.
var ErrPaymentInvalid = errors.New("payment reference invalid")

// acceptedPrefixes are the reference formats the gateway issues.
var acceptedPrefixes = []string{"PAY-", "pay_", "TXN-"}

// Verifier validates a payment request and returns the reference to record
// on the booking.
type Verifier interface {
	Verify(ctx context.Context, req Request) (string, error)
}

// hasAcceptedPrefix reports whether ref matches one of the reference
// formats the gateway issues.
func hasAcceptedPrefix(ref string) bool {
	for _, p := range acceptedPrefixes {
		if strings.HasPrefix(ref, p) {
			return true
		}
	}
	return false
}

// SimulatedVerifier accepts any well-formed reference without contacting a
// gateway.  It backs development and test environments.
type SimulatedVerifier struct{}

// Verify checks only the reference format.
func (SimulatedVerifier) Verify(_ context.Context, req Request) (string, error) {
	if req.PaymentID == "" || !hasAcceptedPrefix(req.PaymentID) {
		return "", ErrPaymentInvalid
	}
	return req.PaymentID, nil
}

// ReferenceVerifier checks the reference format and then asks the external
// gateway whether the payment was captured.  Every call carries a bounded
// deadline so a slow gateway cannot stall a confirm past the lock TTL.
type ReferenceVerifier struct {
	BaseURL string        // gateway base URL, e.g. https://gateway.example.com
	Client  *http.Client  // optional; defaults to http.DefaultClient
	Timeout time.Duration // per-verify deadline; defaults to 5s
}

// Verify calls GET {BaseURL}/v1/payments/{id} and accepts the reference
// iff the gateway reports status "captured".
func (v ReferenceVerifier) Verify(ctx context.Context, req Request) (string, error) {
	if req.PaymentID == "" || !hasAcceptedPrefix(req.PaymentID) {
		return "", ErrPaymentInvalid
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/v1/payments/"+req.PaymentID, nil)
	if err != nil {
		return "", err
	}
	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("payment gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", ErrPaymentInvalid
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("payment gateway: decode: %w", err)
	}
	if body.Status != "captured" {
		return "", ErrPaymentInvalid
	}
	return req.PaymentID, nil
}

// CallbackVerifier validates a signed gateway callback without any I/O.
// The gateway signs "orderID|paymentID" with a shared secret; we recompute
// the HMAC-SHA256 and compare in constant time.
type CallbackVerifier struct {
	Secret string
}

// Verify recomputes the signature and accepts the payment id as the
// reference on match.
func (v CallbackVerifier) Verify(_ context.Context, req Request) (string, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return "", ErrPaymentInvalid
	}
	mac := hmac.New(sha256.New, []byte(v.Secret))
	mac.Write([]byte(req.OrderID + "|" + req.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(req.Signature))) {
		return "", ErrPaymentInvalid
	}
	return req.PaymentID, nil
}

// Sign computes the callback signature for orderID and paymentID with the
// given secret.  Exported for tests and for gateway simulators.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// New selects a Verifier for the configured mode.  Unknown modes fall back
// to simulated so a typo in config cannot silently accept bad references
// in reference mode; the fallback still enforces the format check.
func New(mode, sharedSecret, gatewayURL string) Verifier {
	switch mode {
	case "reference":
		return ReferenceVerifier{BaseURL: gatewayURL}
	case "signed-callback":
		return CallbackVerifier{Secret: sharedSecret}
	default:
		return SimulatedVerifier{}
	}
}

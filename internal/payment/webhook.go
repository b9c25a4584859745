package payment

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

var ErrMissingCartID = errors.New("missing tran_cartid")

type Outcome int

const (
	// OutcomePending covers holds and any status the gateway may add later;
	// the order is left untouched.
	OutcomePending Outcome = iota
	OutcomeApproved
	OutcomeDeclined
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeDeclined:
		return "declined"
	}
	return "pending"
}

type WebhookResult struct {
	CartID         string
	TransactionRef string
	// Type is tran_type: sale, auth, refund, void, capture or release.
	Type           string
	Status         string
	Outcome        Outcome
	Amount         string
	Currency       string
	Message        string
}

// signedFields is the order the gateway concatenates fields in tran_check.
var signedFields = []string{
	"tran_store", "tran_type", "tran_class", "tran_test", "tran_ref",
	"tran_prevref", "tran_firstref", "tran_order", "tran_currency",
	"tran_amount", "tran_cartid", "tran_desc", "tran_status",
	"tran_authcode", "tran_authmessage",
}

func outcomeOf(status string) Outcome {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "A":
		return OutcomeApproved
	case "D", "C", "E", "X":
		return OutcomeDeclined
	}
	return OutcomePending
}

// ParseWebhook decodes the form-encoded transaction callback.
func ParseWebhook(form url.Values) (WebhookResult, error) {
	result := WebhookResult{
		CartID:         strings.TrimSpace(form.Get("tran_cartid")),
		TransactionRef: strings.TrimSpace(form.Get("tran_ref")),
		Type:           strings.ToLower(strings.TrimSpace(form.Get("tran_type"))),
		Status:         strings.TrimSpace(form.Get("tran_status")),
		Amount:         strings.TrimSpace(form.Get("tran_amount")),
		Currency:       strings.TrimSpace(form.Get("tran_currency")),
		Message:        strings.TrimSpace(form.Get("tran_authmessage")),
	}
	if result.CartID == "" {
		return WebhookResult{}, ErrMissingCartID
	}
	result.Outcome = OutcomePending
	if chargesCustomer(result.Type) {
		result.Outcome = outcomeOf(result.Status)
	}
	return result, nil
}

// chargesCustomer reports whether a transaction of this type settles an
// order. Refunds and voids reuse the cart id but never approve a payment.
func chargesCustomer(tranType string) bool {
	return tranType == "sale" || tranType == "auth"
}

// Signature computes tran_check for form: the hex SHA1 of the secret and the
// signed fields joined with ':'.
func Signature(secret string, form url.Values) string {
	parts := make([]string, 0, len(signedFields)+1)
	parts = append(parts, secret)
	for _, field := range signedFields {
		parts = append(parts, strings.TrimSpace(form.Get(field)))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(secret string, form url.Values) bool {
	provided := strings.ToLower(strings.TrimSpace(form.Get("tran_check")))
	if provided == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(Signature(secret, form))) == 1
}

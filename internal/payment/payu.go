package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
)

// PayU derives trust from a SHA-512 hash over pipe-joined fields. Field
// order, the exact count of empty udf placeholders, and two-decimal amount
// formatting all feed the hash; any deviation and the gateway (or we) reject
// the transaction. The callback hash uses the gateway's reverse ordering,
// which is not a mirror image of the initiation ordering.
const (
	requestPlaceholders  = 10
	callbackPlaceholders = 10
)

// FormatAmount renders an amount the way the hash expects: exactly two
// decimal digits (97.20, never 97.2).
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// ProductInfo builds the gateway's productinfo field from item names.
func ProductInfo(names []string) string {
	return strings.Join(names, ", ")
}

func requestHashString(c Credentials, p PaymentRequest) string {
	fields := make([]string, 0, 7+requestPlaceholders)
	fields = append(fields, c.Key, p.TxnID, FormatAmount(p.Amount), p.ProductInfo, p.FirstName, p.Email)
	for i := 0; i < requestPlaceholders; i++ {
		fields = append(fields, "")
	}
	fields = append(fields, c.Salt)
	return strings.Join(fields, "|")
}

func callbackHashString(c Credentials, cb CallbackParams) string {
	fields := make([]string, 0, 8+callbackPlaceholders)
	fields = append(fields, c.Salt, cb.Status)
	for i := 0; i < callbackPlaceholders; i++ {
		fields = append(fields, "")
	}
	fields = append(fields, cb.Email, cb.FirstName, cb.ProductInfo, cb.Amount, cb.TxnID, c.Key)
	return strings.Join(fields, "|")
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Gateway computes PayU authorization hashes and redirect payloads. It is a
// pure transform; it never talks to the database and never performs the
// browser redirect itself.
type Gateway struct {
	creds      Credentials
	gatewayURL string
	returnURL  string
}

func NewGateway(creds Credentials, gatewayURL, returnURL string) *Gateway {
	return &Gateway{
		creds:      creds,
		gatewayURL: gatewayURL,
		returnURL:  returnURL,
	}
}

// RequestHash computes the initiation hash the gateway checks before
// accepting a payment.
func (g *Gateway) RequestHash(p PaymentRequest) (string, error) {
	if g.creds.Key == "" || g.creds.Salt == "" {
		return "", ErrMissingCredentials
	}
	if p.TxnID == "" || p.ProductInfo == "" || p.FirstName == "" || p.Email == "" {
		return "", ErrMissingFields
	}
	return sha512Hex(requestHashString(g.creds, p)), nil
}

// VerifyCallback recomputes the callback hash and compares it byte-equal
// against the one the gateway supplied.
func (g *Gateway) VerifyCallback(cb CallbackParams) error {
	if g.creds.Key == "" || g.creds.Salt == "" {
		return ErrMissingCredentials
	}

	expected := sha512Hex(callbackHashString(g.creds, cb))
	if !hmac.Equal([]byte(expected), []byte(cb.Hash)) {
		return ErrHashMismatch
	}
	return nil
}

// BuildRedirect assembles the full payload for the gateway form post. Both
// return URLs point at the return-path normalizer, which untangles the
// gateway's POST redirect for the UI.
func (g *Gateway) BuildRedirect(p PaymentRequest, phone string) (*RedirectPayload, error) {
	hash, err := g.RequestHash(p)
	if err != nil {
		return nil, err
	}

	return &RedirectPayload{
		GatewayURL:  g.gatewayURL,
		Key:         g.creds.Key,
		TxnID:       p.TxnID,
		Amount:      FormatAmount(p.Amount),
		ProductInfo: p.ProductInfo,
		FirstName:   p.FirstName,
		Email:       p.Email,
		Phone:       phone,
		SuccessURL:  g.returnURL,
		FailureURL:  g.returnURL,
		Hash:        hash,
	}, nil
}

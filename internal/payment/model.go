package payment

// Credentials are the PayU merchant secrets. Injected from config so tests
// can run with fixture values; never read from the environment here.
type Credentials struct {
	Key  string
	Salt string
}

// PaymentRequest carries the fields covered by the initiation hash.
type PaymentRequest struct {
	TxnID       string
	Amount      float64
	ProductInfo string
	FirstName   string
	Email       string
}

// CallbackParams is the gateway's asynchronous result payload. Amount stays a
// string: the callback hash is computed over the exact bytes the gateway
// sent, not a reparsed number.
type CallbackParams struct {
	Status      string
	TxnID       string
	Hash        string
	Email       string
	FirstName   string
	ProductInfo string
	Amount      string
}

// RedirectPayload is everything the browser needs to post the user to the
// gateway. The redirect itself (a self-submitting form) is the UI's job.
type RedirectPayload struct {
	GatewayURL  string `json:"gateway_url"`
	Key         string `json:"key"`
	TxnID       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	FirstName   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SuccessURL  string `json:"surl"`
	FailureURL  string `json:"furl"`
	Hash        string `json:"hash"`
}

package webhook

import (
	"net/http"
	"net/url"

	"aura-be/internal/logger"

	"go.uber.org/zap"
)

// PaymentReturnHandler adapts the gateway's browser-facing POST redirect into
// a GET the UI router can handle (POST-redirect-GET, HTTP 303). It does no
// verification and makes no business decisions; those belong exclusively to
// the server-to-server webhook.
func PaymentReturnHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.FromCtx(r.Context()).Warn("unparseable payment return", zap.Error(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	status := r.PostFormValue("status")
	txnid := r.PostFormValue("txnid")

	if status == "success" {
		http.Redirect(w, r, "/orders?payment=success&order_id="+url.QueryEscape(txnid), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?payment=failure&order_id="+url.QueryEscape(txnid), http.StatusSeeOther)
}

// Package connect implements the merchant-facing Connect payment surface:
// request/response shapes and the translation of each call into upstream
// gateway operations.
package connect

import "oxygate/internal/gateway"

// Status is a terminal payment state as reported to the merchant. Pending is
// resolved later via status polling or the asynchronous callback.
type Status string

const (
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
	StatusPending  Status = "pending"
)

// PayRequest is the inbound merchant payment call.
type PayRequest struct {
	ProcessingURL string   `json:"processing_url" validate:"required,url"`
	Payment       Payment  `json:"payment" validate:"required"`
	Params        Params   `json:"params"`
	Settings      Settings `json:"settings" validate:"required"`
}

type Payment struct {
	// GatewayAmount is in integer minor units.
	GatewayAmount      int     `json:"gateway_amount" validate:"required,gt=0"`
	GatewayCurrency    string  `json:"gateway_currency" validate:"required"`
	Product            string  `json:"product" validate:"required"`
	IP                 *string `json:"ip"`
	Token              string  `json:"token" validate:"required"`
	MerchantPrivateKey string  `json:"merchant_private_key" validate:"required"`
	CardBrandName      *string `json:"card_brand_name"`
}

// Params carries optional customer fields; the card fields sit inline and are
// treated as present only when all four are supplied.
type Params struct {
	CVV     string `json:"cvv,omitempty"`
	Expires string `json:"expires,omitempty"`
	Pan     string `json:"pan,omitempty"`
	Holder  string `json:"holder,omitempty"`

	Address   *string `json:"address"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	City      *string `json:"city"`
	Birthday  *string `json:"birthday"`
	Postcode  *string `json:"postcode"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Country   *string `json:"country"`
	State     *string `json:"state"`
}

// CardParams is the H2H card data. Its presence selects the host-to-host
// branch of the payment flow.
type CardParams struct {
	CVV     string
	Expires string
	Pan     string
	Holder  string
}

// Card returns the card data when the request carries a complete set of card
// fields, nil otherwise.
func (p *Params) Card() *CardParams {
	if p.CVV == "" || p.Expires == "" || p.Pan == "" || p.Holder == "" {
		return nil
	}
	return &CardParams{CVV: p.CVV, Expires: p.Expires, Pan: p.Pan, Holder: p.Holder}
}

type Settings struct {
	ClientID string `json:"client_id" validate:"required"`
	Secret   string `json:"secret" validate:"required"`
	Sandbox  bool   `json:"sandbox"`
}

func (s Settings) credentials() gateway.Credentials {
	return gateway.Credentials{ClientID: s.ClientID, Secret: s.Secret, Sandbox: s.Sandbox}
}

// PayResult is the outcome of a pay call before it is wrapped in the response
// envelope.
type PayResult struct {
	RedirectRequest *RedirectRequest `json:"redirect_request,omitempty"`
	Result          Status           `json:"result"`
	GatewayToken    string           `json:"gateway_token,omitempty"`
}

type RedirectRequest struct {
	URL  string       `json:"url"`
	Kind RedirectType `json:"type"`
}

type RedirectType string

const (
	RedirectPostIframes       RedirectType = "post_iframes"
	RedirectGetWithProcessing RedirectType = "get_with_processing"
	RedirectGet               RedirectType = "get"
	RedirectPost              RedirectType = "post"
	RedirectHTML              RedirectType = "redirect_html"
)

// StatusRequest is the inbound merchant status poll.
type StatusRequest struct {
	Payment  StatusPayment `json:"payment" validate:"required"`
	Settings Settings      `json:"settings" validate:"required"`
}

type StatusPayment struct {
	GatewayToken string `json:"gateway_token" validate:"required"`
	Token        string `json:"token" validate:"required"`
}

// StatusResult mirrors the upstream's view of a payment.
type StatusResult struct {
	Status   Status `json:"status"`
	Details  string `json:"details"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

func statusFromUpstream(s gateway.Status) Status {
	switch s.Normalize() {
	case gateway.StatusSuccess:
		return StatusApproved
	case gateway.StatusFailed:
		return StatusDeclined
	default:
		return StatusPending
	}
}

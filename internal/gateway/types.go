package gateway

import (
	"encoding/json"
	"fmt"
)

// Status values the upstream reports for a payment.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Normalize maps an absent status to PENDING, which is what the upstream
// means when it omits the field.
func (s Status) Normalize() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// Envelope is the success wrapper around every upstream response body.
type Envelope[T any] struct {
	RequestTime string `json:"requestTime"`
	Status      bool   `json:"status"`
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Data        T      `json:"data"`
}

// ErrorResponse is the upstream's structured error body.
type ErrorResponse struct {
	ResponseCode    string        `json:"responseCode"`
	ResponseMessage string        `json:"responseMessage"`
	Errors          []ErrorDetail `json:"errors"`
}

type ErrorDetail struct {
	FieldName string `json:"fieldName"`
	Message   string `json:"message"`
}

// InitRequest is the body for the initialize and hosted-payment endpoints.
// Optional fields serialize as null, matching what the upstream accepts;
// callbackUrl and returnUrl are omitted entirely when unset.
type InitRequest struct {
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	Email           *string `json:"email"`
	Country         *string `json:"country"`
	CallbackURL     *string `json:"callbackUrl,omitempty"`
	ReturnURL       *string `json:"returnUrl,omitempty"`
	PhoneNumber     *string `json:"phoneNumber"`
	CustomerName    *string `json:"customerName"`
	CustomerID      string  `json:"customerId"`
	ClientReference string  `json:"clientReference"`
	Narration       *string `json:"narration"`
	Address         *string `json:"address"`
	PaymentMethod   string  `json:"paymentMethod"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	ZipCode         *string `json:"zipCode"`
	IPAddress       *string `json:"ipAddress"`
}

// InitData is the payload of a successful init call.
type InitData struct {
	Reference   string  `json:"reference"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RedirectURL *string `json:"redirectUrl"`
}

// ProcessRequest is the body for the process endpoint. The lowercase field
// names are the upstream's, not ours.
type ProcessRequest struct {
	Pan               string  `json:"pan"`
	CVV               string  `json:"cvv"`
	Expiry            string  `json:"expiry"`
	ExpiryMonth       string  `json:"expiryMonth"`
	ExpiryYear        string  `json:"expiryYear"`
	Reference         string  `json:"reference"`
	CustomerDOB       *string `json:"customerdob"`
	CardholderName    string  `json:"cardholdername"`
	CustomerFirstName *string `json:"customerfirstname"`
	CustomerLastName  *string `json:"customerlastname"`
	CardScheme        *string `json:"cardScheme"`
	CardType          *string `json:"cardType"`
}

// ProcessData is the two-variant outcome of a process call. Exactly one of
// Standard or ThreeDS is set. The upstream sends no discriminant field;
// presence of a "redirect" object selects the 3DS shape. Standard responses
// never carry that key, so the rule cannot misclassify.
type ProcessData struct {
	Standard *StandardData
	ThreeDS  *ThreeDSData
}

func (d *ProcessData) UnmarshalJSON(b []byte) error {
	var probe struct {
		Redirect json.RawMessage `json:"redirect"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if len(probe.Redirect) > 0 {
		var t ThreeDSData
		if err := json.Unmarshal(b, &t); err != nil {
			return err
		}
		d.ThreeDS = &t
		return nil
	}
	var s StandardData
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	d.Standard = &s
	return nil
}

func (d ProcessData) MarshalJSON() ([]byte, error) {
	switch {
	case d.Standard != nil:
		return json.Marshal(d.Standard)
	case d.ThreeDS != nil:
		return json.Marshal(d.ThreeDS)
	}
	return nil, fmt.Errorf("process data has no variant")
}

// StandardData is a non-3DS process outcome.
type StandardData struct {
	Success        bool    `json:"success"`
	Currency       string  `json:"currency"`
	Amount         float64 `json:"amount"`
	OrderReference string  `json:"orderReference"`
	Status         string  `json:"status"`
}

// ThreeDSData is a process outcome that requires a challenge redirect.
type ThreeDSData struct {
	OrderID       string       `json:"order_id"`
	TransactionID string       `json:"transaction_id"`
	Currency      string       `json:"currency"`
	Amount        float64      `json:"amount"`
	Status        Status       `json:"status"`
	Created       string       `json:"created"`
	Descriptor    string       `json:"descriptor"`
	Redirect      RedirectData `json:"redirect"`
}

type RedirectData struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Target string `json:"target"`
}

// StatusData is the payload of a status poll.
type StatusData struct {
	Currency         string `json:"currency"`
	Amount           int    `json:"amount"`
	PaymentReference string `json:"paymentReference"`
	Status           Status `json:"status"`
}

package main

import (
	"net/http"

	"oxygate/internal/connect"
	"oxygate/internal/interaction"
	"oxygate/internal/mask"
)

// payResponse is the success envelope of the pay call. The result field
// carries the payment status string; merchants detect failure by result
// being the boolean false in the failure envelope.
type payResponse struct {
	Result          connect.Status           `json:"result"`
	Logs            []interaction.Log        `json:"logs"`
	RedirectRequest *connect.RedirectRequest `json:"redirect_request,omitempty"`
	GatewayToken    string                   `json:"gateway_token,omitempty"`
}

type statusResponse struct {
	Result   bool              `json:"result"`
	Logs     []interaction.Log `json:"logs"`
	Status   connect.Status    `json:"status"`
	Details  string            `json:"details"`
	Amount   int               `json:"amount"`
	Currency string            `json:"currency"`
}

type failureResponse struct {
	Result bool              `json:"result"`
	Error  string            `json:"error"`
	Logs   []interaction.Log `json:"logs"`
}

// writeFailure sends the caller-visible failure envelope with every log
// accumulated so far. Request-scoped errors never abort the process and stay
// transport-successful.
func (app *application) writeFailure(w http.ResponseWriter, message string, logs []interaction.Log) {
	if logs == nil {
		logs = []interaction.Log{}
	}
	res := failureResponse{Result: false, Error: message, Logs: logs}
	app.logger.Debugw("connect error response payload", "data", mask.Value(res))
	if err := writeJSON(w, http.StatusOK, res); err != nil {
		app.logger.Errorw("failed to write response", "error", err)
	}
}

func (app *application) payHandler(w http.ResponseWriter, r *http.Request) {
	var req connect.PayRequest
	if err := readJSON(w, r, &req); err != nil {
		app.writeFailure(w, err.Error(), nil)
		return
	}
	if err := Validate.Struct(req); err != nil {
		app.writeFailure(w, err.Error(), nil)
		return
	}

	result, logs, err := app.connect.Pay(r.Context(), &req)
	if err != nil {
		app.writeFailure(w, err.Error(), logs)
		return
	}

	res := payResponse{
		Result:          result.Result,
		Logs:            logs,
		RedirectRequest: result.RedirectRequest,
		GatewayToken:    result.GatewayToken,
	}
	app.logger.Debugw("connect response payload", "data", mask.Value(res))
	if err := writeJSON(w, http.StatusOK, res); err != nil {
		app.logger.Errorw("failed to write response", "error", err)
	}
}

func (app *application) statusHandler(w http.ResponseWriter, r *http.Request) {
	var req connect.StatusRequest
	if err := readJSON(w, r, &req); err != nil {
		app.writeFailure(w, err.Error(), nil)
		return
	}
	if err := Validate.Struct(req); err != nil {
		app.writeFailure(w, err.Error(), nil)
		return
	}

	app.logger.Debugw("connect status request", "token", req.Payment.Token, "gateway_token", req.Payment.GatewayToken)

	result, logs, err := app.connect.Status(r.Context(), &req)
	if err != nil {
		app.writeFailure(w, err.Error(), logs)
		return
	}

	app.logger.Infow("dispatched transaction status", "token", req.Payment.Token)
	res := statusResponse{
		Result:   true,
		Logs:     logs,
		Status:   result.Status,
		Details:  result.Details,
		Amount:   result.Amount,
		Currency: result.Currency,
	}
	if err := writeJSON(w, http.StatusOK, res); err != nil {
		app.logger.Errorw("failed to write response", "error", err)
	}
}

package connect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oxygate/internal/gateway"
	"oxygate/internal/interaction"
	"oxygate/internal/store"
)

// ErrMissingRedirectURL means the hosted-payment endpoint answered without a
// redirect URL, which the upstream contract forbids.
var ErrMissingRedirectURL = errors.New("hosted payment response has no redirect url")

// Service translates merchant pay/status calls into upstream gateway
// operations. Every branch returns all interaction logs gathered so far, on
// success and on failure alike.
type Service struct {
	gateway     *gateway.Client
	storage     store.Storage
	callbackURL string
	logger      *zap.SugaredLogger
}

// NewService wires the translator. callbackURL is the prefix under which this
// adapter's own /gateway/callback endpoint is reachable from the upstream;
// empty means the init request carries no callback URL.
func NewService(gw *gateway.Client, storage store.Storage, callbackURL string, logger *zap.SugaredLogger) *Service {
	return &Service{gateway: gw, storage: storage, callbackURL: callbackURL, logger: logger}
}

// Pay runs the payment state machine. Card data present selects the
// host-to-host branch (init then process); absent selects the hosted branch
// (init only, mandatory redirect).
func (s *Service) Pay(ctx context.Context, req *PayRequest) (*PayResult, []interaction.Log, error) {
	if card := req.Params.Card(); card != nil {
		return s.payH2H(ctx, req, card)
	}
	return s.payHosted(ctx, req)
}

func (s *Service) payH2H(ctx context.Context, req *PayRequest, card *CardParams) (*PayResult, []interaction.Log, error) {
	// The expiry contract is checked before any upstream call; a malformed
	// request must not open a payment it can never process.
	processReq, err := s.processRequest(req, card, "")
	if err != nil {
		return nil, nil, err
	}

	creds := req.Settings.credentials()

	initSpan := interaction.Enter()
	initEnv, err := s.gateway.Init(ctx, creds, s.initRequest(req), gateway.FlowInitialize, initSpan)
	if err != nil {
		s.logger.Errorw("failed to init h2h payment", "error", err)
		return nil, []interaction.Log{initSpan.Finalize("payment")}, err
	}
	logs := []interaction.Log{initSpan.Finalize("init_payment")}
	reference := initEnv.Data.Reference
	processReq.Reference = reference

	// The mapping write is best effort and never gates the payment: start it
	// together with the process call and join both before returning.
	mappingErr := make(chan error, 1)
	go func() {
		mappingErr <- s.storage.Mappings.Insert(ctx, &store.Mapping{
			Token:              req.Payment.Token,
			MerchantPrivateKey: req.Payment.MerchantPrivateKey,
			UpstreamReference:  reference,
		})
	}()

	processSpan := interaction.Enter()
	processEnv, processErr := s.gateway.Process(ctx, creds, *processReq, processSpan)

	if err := <-mappingErr; err != nil {
		s.logger.Errorw("failed to insert gateway id mapping", "reference", reference, "error", err)
	}

	logs = append(logs, processSpan.Finalize("payment"))
	if processErr != nil {
		s.logger.Errorw("failed to process h2h payment", "reference", reference, "error", processErr)
		return nil, logs, processErr
	}

	switch data := processEnv.Data; {
	case data.Standard != nil:
		return &PayResult{
			Result:       statusFromUpstream(gateway.Status(strings.ToUpper(data.Standard.Status))),
			GatewayToken: data.Standard.OrderReference,
		}, logs, nil
	case data.ThreeDS != nil:
		// The challenge session was opened at init, so the redirect carries
		// the init-time reference, not the process-time one.
		return &PayResult{
			RedirectRequest: &RedirectRequest{URL: data.ThreeDS.Redirect.URL, Kind: RedirectGet},
			Result:          StatusPending,
			GatewayToken:    reference,
		}, logs, nil
	default:
		err := &gateway.DecodeError{Err: errors.New("process response has no variant")}
		return nil, logs, err
	}
}

func (s *Service) payHosted(ctx context.Context, req *PayRequest) (*PayResult, []interaction.Log, error) {
	span := interaction.Enter()
	env, err := s.gateway.Init(ctx, req.Settings.credentials(), s.initRequest(req), gateway.FlowHostedPayment, span)
	if err != nil {
		s.logger.Errorw("failed to create hosted payment", "error", err)
		return nil, []interaction.Log{span.Finalize("payment")}, err
	}
	logs := []interaction.Log{span.Finalize("payment")}

	if env.Data.RedirectURL == nil || *env.Data.RedirectURL == "" {
		return nil, logs, ErrMissingRedirectURL
	}

	s.logger.Infow("created hosted payment", "code", env.Code, "reference", env.Data.Reference)
	return &PayResult{
		RedirectRequest: &RedirectRequest{URL: *env.Data.RedirectURL, Kind: RedirectGetWithProcessing},
		Result:          StatusPending,
		GatewayToken:    env.Data.Reference,
	}, logs, nil
}

// Status polls the upstream for the payment the merchant previously created.
func (s *Service) Status(ctx context.Context, req *StatusRequest) (*StatusResult, []interaction.Log, error) {
	span := interaction.Enter()
	env, err := s.gateway.Status(ctx, req.Settings.credentials(), req.Payment.GatewayToken, span)
	logs := []interaction.Log{span.Finalize("status")}
	if err != nil {
		s.logger.Errorw("failed to fetch transaction status", "token", req.Payment.Token, "error", err)
		return nil, logs, err
	}

	return &StatusResult{
		Status:   statusFromUpstream(env.Data.Status),
		Details:  env.Message,
		Amount:   env.Data.Amount,
		Currency: env.Data.Currency,
	}, logs, nil
}

// initRequest translates the merchant payment into the upstream init body.
// Amount moves from integer minor units to a fixed 2-decimal string; the
// client reference is freshly generated per call (the upstream requires a
// valid uuid).
func (s *Service) initRequest(req *PayRequest) gateway.InitRequest {
	var callbackURL *string
	if s.callbackURL != "" {
		u := s.callbackURL + "/gateway/callback"
		callbackURL = &u
	}

	return gateway.InitRequest{
		Amount:          fmt.Sprintf("%.2f", float64(req.Payment.GatewayAmount)/100),
		Currency:        req.Payment.GatewayCurrency,
		Email:           req.Params.Email,
		Country:         req.Params.Country,
		CallbackURL:     callbackURL,
		ReturnURL:       &req.ProcessingURL,
		PhoneNumber:     req.Params.Phone,
		CustomerName:    req.Params.FirstName,
		CustomerID:      req.Settings.ClientID,
		ClientReference: uuid.NewString(),
		Narration:       &req.Payment.Product,
		Address:         req.Params.Address,
		PaymentMethod:   "card",
		City:            req.Params.City,
		State:           req.Params.State,
		ZipCode:         req.Params.Postcode,
		IPAddress:       req.Payment.IP,
	}
}

// processRequest builds the upstream process body from the card data. The
// expiry must be "MM/YYYY"; the upstream takes the month and a 2-digit year,
// and anything else is a contract violation, not a value to pass through.
func (s *Service) processRequest(req *PayRequest, card *CardParams, reference string) (*gateway.ProcessRequest, error) {
	month, year, ok := strings.Cut(card.Expires, "/")
	if !ok {
		return nil, errors.New("card expiry must be MM/YYYY")
	}
	if len(year) != 4 {
		return nil, errors.New("card expiry year must have 4 digits")
	}

	var scheme *string
	if req.Payment.CardBrandName != nil {
		u := strings.ToUpper(*req.Payment.CardBrandName)
		scheme = &u
	}

	return &gateway.ProcessRequest{
		Pan:               card.Pan,
		CVV:               card.CVV,
		Expiry:            card.Expires,
		ExpiryMonth:       month,
		ExpiryYear:        year[2:],
		Reference:         reference,
		CustomerDOB:       req.Params.Birthday,
		CardholderName:    card.Holder,
		CustomerFirstName: req.Params.FirstName,
		CustomerLastName:  req.Params.LastName,
		CardScheme:        scheme,
	}, nil
}

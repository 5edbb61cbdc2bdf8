package usecases

import (
	"net/http"

	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

// Fixed claim values of issued tokens.
const (
	TokenSubject = "mock-user-id"
	TokenIssuer  = "mock-api"
)

// TokenSettings controls the shape of the token response.
type TokenSettings struct {
	Field               string
	Status              int
	TTLSeconds          int
	TokenType           string
	IncludeTokenType    bool
	IncludeExpiresIn    bool
	IncludeRefreshToken bool
}

// IssueTokenUseCase signs a token describing the caller and records the exchange.
type IssueTokenUseCase struct {
	settings TokenSettings
	signer   ports.TokenSigner
	ids      ports.IDGenerator
	clock    ports.Clock
	recorder *RecordRequestUseCase
	logger   ports.Logger
}

// NewIssueTokenUseCase creates a new use case. Zero status and TTL fall back to 200 and 3600.
func NewIssueTokenUseCase(
	settings TokenSettings,
	signer ports.TokenSigner,
	ids ports.IDGenerator,
	clock ports.Clock,
	recorder *RecordRequestUseCase,
	logger ports.Logger,
) *IssueTokenUseCase {
	if settings.Field == "" {
		settings.Field = "access_token"
	}
	if settings.Status <= 0 {
		settings.Status = http.StatusOK
	}
	if settings.TTLSeconds <= 0 {
		settings.TTLSeconds = 3600
	}
	return &IssueTokenUseCase{
		settings: settings,
		signer:   signer,
		ids:      ids,
		clock:    clock,
		recorder: recorder,
		logger:   logger,
	}
}

// Claims builds the payload signed for req.
func (uc *IssueTokenUseCase) Claims(req reqlog.Request) map[string]any {
	now := uc.clock.Now().Unix()
	var ua any
	if req.UserAgent != "" {
		ua = req.UserAgent
	}
	return map[string]any{
		"sub": TokenSubject,
		"iss": TokenIssuer,
		"iat": now,
		"exp": now + int64(uc.settings.TTLSeconds),
		"jti": uc.ids.NewID(),
		"meta": map[string]any{
			"ip":   req.RemoteIP,
			"ua":   ua,
			"path": req.Path,
		},
	}
}

// Execute signs a token and builds the response. Signing failures become a 500 reply.
// Both outcomes are recorded.
func (uc *IssueTokenUseCase) Execute(req reqlog.Request) Reply {
	headers := jsonHeaders()

	token, err := uc.signer.Sign(uc.Claims(req))
	if err != nil {
		uc.logger.Error("token generation failed", "path", req.Path, "error", err)
		body := ErrorBody{Error: "token_generation_failed", Message: err.Error()}
		rec := uc.recorder.Execute(RecordInput{
			Request:   req,
			RouteType: reqlog.RouteToken,
			Status:    http.StatusInternalServerError,
			Headers:   headers,
			Body:      body,
		})
		return Reply{Status: http.StatusInternalServerError, Headers: headers, Body: body, Record: rec}
	}

	body := map[string]any{uc.settings.Field: token}
	if uc.settings.IncludeTokenType && uc.settings.TokenType != "" {
		body["token_type"] = uc.settings.TokenType
	}
	if uc.settings.IncludeExpiresIn {
		body["expires_in"] = uc.settings.TTLSeconds
	}
	if uc.settings.IncludeRefreshToken {
		body["refresh_token"] = uc.ids.NewID()
	}

	rec := uc.recorder.Execute(RecordInput{
		Request:   req,
		RouteType: reqlog.RouteToken,
		Status:    uc.settings.Status,
		Headers:   headers,
		Body:      body,
	})
	uc.logger.Info("token issued", "path", req.Path, "status", uc.settings.Status)
	return Reply{Status: uc.settings.Status, Headers: headers, Body: body, Record: rec}
}

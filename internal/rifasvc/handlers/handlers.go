package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/rifanet/rifa-services/internal/rifasvc/apperr"
	"github.com/rifanet/rifa-services/internal/rifasvc/models"
	"github.com/rifanet/rifa-services/internal/rifasvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	games     *service.GameService
	purchases *service.PurchaseService
	reveals   *service.RevealService
}

func NewHandler(games *service.GameService, purchases *service.PurchaseService, reveals *service.RevealService) *Handler {
	return &Handler{
		games:     games,
		purchases: purchases,
		reveals:   reveals,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

// writeError maps domain errors to HTTP statuses. Contention and
// capacity conflicts are routine, so they log at info level only.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)

	var ae *apperr.AppError
	message := "internal error"
	code := apperr.CodeInternal
	if errors.As(err, &ae) {
		message = ae.Message
		code = ae.Code
	}

	if status >= http.StatusInternalServerError {
		log.Errorf("request failed: %s", err)
		message = "internal error"
	} else {
		log.Infof("request rejected: %s", err)
	}

	h.CreateResponse(w, Response{
		Message: message,
		Code:    status,
		Error:   code,
	})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "rifa service is running at port " + os.Getenv("RIFA_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}

// requesterAccount pulls the authenticated account from the JWT, as
// supplied by the external identity provider.
func (h *Handler) requesterAccount(r *http.Request) (int64, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeValidation, "missing token claims")
	}
	raw, ok := claims["account_id"]
	if !ok {
		return 0, apperr.New(apperr.CodeValidation, "token has no account_id claim")
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, apperr.New(apperr.CodeValidation, "malformed account_id claim")
		}
		return id, nil
	default:
		return 0, apperr.New(apperr.CodeValidation, "malformed account_id claim")
	}
}

func (h *Handler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.requesterAccount(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	game := &models.Game{}
	if err := json.NewDecoder(r.Body).Decode(game); err != nil {
		h.writeError(w, apperr.Wrap(err, apperr.CodeValidation, "malformed game payload"))
		return
	}
	game.OrganizerID = account

	created, err := h.games.CreateGame(r.Context(), game)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Message: "game created", Code: http.StatusCreated, Data: created})
}

func (h *Handler) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		h.writeError(w, apperr.New(apperr.CodeValidation, "malformed game id"))
		return
	}

	game, err := h.games.GetGameByID(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if game == nil {
		h.writeError(w, apperr.Newf(apperr.CodeNotFound, "game %d not found", gameID))
		return
	}

	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: game})
}

func (h *Handler) ActivateGameHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(w, r, h.games.Activate, "game activated")
}

func (h *Handler) CloseGameHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(w, r, h.games.Close, "game closed")
}

func (h *Handler) transitionHandler(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, gameID int64) error, message string) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		h.writeError(w, apperr.New(apperr.CodeValidation, "malformed game id"))
		return
	}

	if err := fn(r.Context(), gameID); err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Message: message, Code: http.StatusOK})
}

func (h *Handler) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.requesterAccount(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	req := &service.PurchaseRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, apperr.Wrap(err, apperr.CodeValidation, "malformed purchase payload"))
		return
	}

	// the token decides who the buyer is: either the account itself,
	// or the registrar of an on-behalf-of purchase
	if req.Buyer.Override != nil {
		req.Buyer.Self = nil
		req.Buyer.Override.RegisteredBy = account
	} else {
		req.Buyer.Self = &models.SelfBuyer{AccountID: account}
	}

	result, err := h.purchases.Purchase(r.Context(), req)
	if err != nil {
		if result != nil && len(result.ParticipationIDs) > 0 {
			// some units committed before the failure; report them
			log.Errorf("purchase interrupted after partial allocation: %s", err)
			h.CreateResponse(w, Response{
				Message: "purchase interrupted after partial allocation",
				Code:    apperr.HTTPStatus(err),
				Data:    result,
				Error:   apperr.CodeInternal,
			})
			return
		}
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Message: "purchase completed", Code: http.StatusCreated, Data: result})
}

func (h *Handler) RevealHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.requesterAccount(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cardID := chi.URLParam(r, "cardID")
	result, err := h.reveals.Reveal(r.Context(), cardID, account)
	if apperr.Is(err, apperr.CodeAlreadyRevealed) {
		// repeat reveal: same outcome, flagged as a conflict
		h.CreateResponse(w, Response{
			Message: "card was already revealed",
			Code:    http.StatusConflict,
			Data:    result,
			Error:   apperr.CodeAlreadyRevealed,
		})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{Message: "card revealed", Code: http.StatusOK, Data: result})
}

func (h *Handler) ListClaimsHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		h.writeError(w, apperr.New(apperr.CodeValidation, "malformed game id"))
		return
	}

	claims, err := h.purchases.ListClaims(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	positions := make([]string, 0, len(claims))
	for _, c := range claims {
		positions = append(positions, c.PositionKey)
	}

	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: positions})
}

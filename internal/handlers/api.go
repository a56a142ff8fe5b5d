package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/aaronzipp/word-impostor/internal/dispatch"
	"github.com/aaronzipp/word-impostor/internal/game"
	"github.com/aaronzipp/word-impostor/internal/models"
	"github.com/aaronzipp/word-impostor/internal/sse"
)

// Handler serves the game API. State lives behind the dispatcher; handlers
// only decode, delegate and encode.
type Handler struct {
	Dispatcher *dispatch.Dispatcher
	Hub        *sse.Hub
	BaseURL    string
	Log        zerolog.Logger
}

// RegisterRoutes mounts the API on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/games", func(r chi.Router) {
		r.Post("/create", h.handleCreate)
		r.Post("/join", h.handleJoin)
		r.Route("/id/{id}", func(r chi.Router) {
			r.Get("/", h.handleGameByID)
			r.Post("/actions", h.handleAction)
			r.Get("/events", h.handleEvents)
		})
		r.Get("/{code}", h.handleGameByCode)
		r.Get("/{code}/qr.png", h.handleQR)
	})
}

type createRequest struct {
	LeaderName string          `json:"leaderName"`
	Settings   models.Settings `json:"settings"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	g, err := h.Dispatcher.Create(r.Context(), req.LeaderName, req.Settings)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

type joinRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}
	g, err := h.Dispatcher.Join(r.Context(), req.Code, req.PlayerName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (h *Handler) handleGameByID(w http.ResponseWriter, r *http.Request) {
	g, err := h.Dispatcher.GameByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (h *Handler) handleGameByCode(w http.ResponseWriter, r *http.Request) {
	g, err := h.Dispatcher.GameByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

type actionRequest struct {
	Action        string            `json:"action"`
	PlayerID      string            `json:"playerId,omitempty"`
	VoterID       string            `json:"voterId,omitempty"`
	VotedPlayerID string            `json:"votedPlayerId,omitempty"`
	Answer        string            `json:"answer,omitempty"`
	Status        models.GameStatus `json:"status,omitempty"`
	Updates       *statusUpdates    `json:"updates,omitempty"`
}

type statusUpdates struct {
	RoundStartedAt      *time.Time `json:"round_started_at,omitempty"`
	CurrentTurnPlayerID string     `json:"current_turn_player_id,omitempty"`
}

// handleAction dispatches a player action. The response follows the
// best-effort convention of the action surface: rejected actions report
// success=false with the reason instead of failing the whole request path.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", models.ErrValidation))
		return
	}

	ctx := r.Context()
	var err error
	switch req.Action {
	case "start":
		err = h.Dispatcher.Start(ctx, gameID, req.PlayerID)
	case "submitAnswer":
		err = h.Dispatcher.SubmitAnswer(ctx, gameID, req.PlayerID, req.Answer)
	case "submitVote":
		err = h.Dispatcher.SubmitVote(ctx, gameID, req.VoterID, req.VotedPlayerID)
	case "nextRound":
		err = h.Dispatcher.NextRound(ctx, gameID, req.PlayerID)
	case "processVoting":
		err = h.Dispatcher.FinalizeVoting(ctx, gameID, req.PlayerID)
	case "updateStatus":
		var upd game.StatusUpdates
		if req.Updates != nil {
			upd.RoundStartedAt = req.Updates.RoundStartedAt
			upd.CurrentTurnPlayerID = req.Updates.CurrentTurnPlayerID
		}
		err = h.Dispatcher.UpdateStatus(ctx, gameID, req.Status, upd)
	default:
		respondError(w, fmt.Errorf("%w: unknown action %q", models.ErrValidation, req.Action))
		return
	}

	if err != nil {
		h.Log.Warn().Str("game", gameID).Str("action", req.Action).Err(err).Msg("action rejected")
		respondJSON(w, statusFor(err), map[string]any{"success": false, "error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleQR renders the join link for a game as a QR code PNG.
func (h *Handler) handleQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, err := h.Dispatcher.GameByCode(r.Context(), code); err != nil {
		respondError(w, err)
		return
	}
	png, err := qrcode.Encode(h.BaseURL+"/?code="+code, qrcode.Medium, 256)
	if err != nil {
		respondError(w, fmt.Errorf("encoding qr code: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

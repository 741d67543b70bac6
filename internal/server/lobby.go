package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sachgits/boardgame.io/internal/storage"
)

type createRequest struct {
	NumPlayers int `json:"numPlayers"`
}

type createResponse struct {
	GameID string `json:"gameID"`
}

type joinRequest struct {
	PlayerID   string `json:"playerID"`
	PlayerName string `json:"playerName,omitempty"`
}

type joinResponse struct {
	PlayerCredentials string `json:"playerCredentials"`
}

type listResponse struct {
	GameIDs []string `json:"gameIDs"`
}

// handleCreate provisions a new game instance: initial state stored,
// metadata with one open seat per player.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	m, ok := s.masterFor(name)
	if !ok {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.NumPlayers <= 0 {
		req.NumPlayers = 2
	}

	gameID := uuid.NewString()
	if _, err := m.CreateGame(r.Context(), gameID, req.NumPlayers); err != nil {
		s.logger.Error("create game failed", zap.String("game", name), zap.Error(err))
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}

	md := storage.Metadata{
		GameName: name,
		Players:  make(map[string]storage.PlayerMetadata, req.NumPlayers),
	}
	for i := 0; i < req.NumPlayers; i++ {
		seat := strconv.Itoa(i)
		md.Players[seat] = storage.PlayerMetadata{ID: seat}
	}
	if err := s.storage.SetMetadata(r.Context(), gameID, md); err != nil {
		s.logger.Error("store metadata failed", zap.String("game_id", gameID), zap.Error(err))
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, createResponse{GameID: gameID})
}

// handleJoin claims a seat and issues credentials for it. The
// credential token is returned once; only its bcrypt hash is stored.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	md, err := s.storage.GetMetadata(r.Context(), gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	player, ok := md.Players[req.PlayerID]
	if !ok {
		http.Error(w, "unknown player seat", http.StatusNotFound)
		return
	}
	if len(player.CredentialHash) != 0 {
		http.Error(w, "seat already taken", http.StatusConflict)
		return
	}

	credentials := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(credentials), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "join failed", http.StatusInternalServerError)
		return
	}

	player.Name = req.PlayerName
	player.CredentialHash = hash
	md.Players[req.PlayerID] = player
	if err := s.storage.SetMetadata(r.Context(), gameID, md); err != nil {
		s.logger.Error("store metadata failed", zap.String("game_id", gameID), zap.Error(err))
		http.Error(w, "join failed", http.StatusInternalServerError)
		return
	}

	s.logger.Info("player joined",
		zap.String("game_id", gameID),
		zap.String("player_id", req.PlayerID),
	)
	writeJSON(w, joinResponse{PlayerCredentials: credentials})
}

// handleList returns the instance ids of a game.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ids, err := s.storage.ListGames(r.Context(), name)
	if err != nil {
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, listResponse{GameIDs: ids})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLadderRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{league}/ladder", handler.GetSeasonLadder)
	mux.HandleFunc("GET /v1/leagues/{league}/mvp", handler.GetSeasonMVP)
	mux.HandleFunc("GET /v1/leagues/{league}/rounds", handler.ListRounds)
	mux.HandleFunc("GET /v1/leagues/{league}/rounds/{round}/ladder", handler.GetRoundLadder)
}

func registerRoundRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/rounds", handler.ProcessRound)
}

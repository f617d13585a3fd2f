package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"flytz/internal/advisor"
	"flytz/internal/alerts"
	"flytz/internal/config"
	"flytz/internal/export"
	"flytz/internal/flights"
	"flytz/internal/logging"
	"flytz/internal/store"
	"flytz/internal/strategy"
	"flytz/internal/types"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// =============================================================================
// REQUEST AND RESPONSE SHAPES
// =============================================================================

type planRequest struct {
	Profile    types.FlightProfile `json:"profile"`
	Trip       types.TripPlan      `json:"trip"`
	StrategyID string              `json:"strategyId,omitempty"`
}

type dealsResponse struct {
	Deals     []types.FlightDeal `json:"deals"`
	Live      bool               `json:"live"`
	Score     *strategy.Score    `json:"score,omitempty"`
	Countries []string           `json:"countries"`
	Alert     *alerts.Trigger    `json:"alert,omitempty"`
}

type confirmRequest struct {
	RawOffer json.RawMessage `json:"rawOffer"`
}

type analysisRequest struct {
	Strategy types.Strategy      `json:"strategy"`
	Deals    []types.FlightDeal  `json:"deals"`
	Profile  types.FlightProfile `json:"profile"`
	Country  string              `json:"country,omitempty"`
}

type analysisResponse struct {
	Analysis types.AIAnalysis `json:"analysis"`
	Report   advisor.Report   `json:"report"`
	Verdict  string           `json:"verdict"`
	Country  string           `json:"country,omitempty"`
}

type seatsRequest struct {
	Deal   types.FlightDeal `json:"deal"`
	Height string           `json:"height"`
}

type visaRequest struct {
	Deal    types.FlightDeal    `json:"deal"`
	Profile types.FlightProfile `json:"profile"`
}

type textResponse struct {
	Text string `json:"text"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply   string              `json:"reply"`
	History []types.ChatMessage `json:"history"`
}

type alertRequest struct {
	TargetPrice float64 `json:"targetPrice"`
}

type alertResponse struct {
	Alert   types.PriceAlert `json:"alert"`
	Message string           `json:"message"`
}

type waitlistRequest struct {
	Email string `json:"email"`
}

// =============================================================================
// PLANNING AND FLIGHT DATA
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cfg, svc := s.current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": cfg.Version,
		"live":    svc.Flights.Enabled(),
		"llm":     svc.Advisor.Online(),
	})
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req planRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Generate(req.Profile, req.Trip))
}

// handleDeals searches offers. When strategyId names a stored alert, the
// response carries the fired alert.
func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req planRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, svc := s.current()
	deals, err := svc.Flights.SearchDeals(r.Context(), req.Profile, req.Trip)
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}

	resp := dealsResponse{
		Deals:     deals,
		Live:      svc.Flights.Enabled(),
		Countries: flights.DestinationCountries(deals),
	}
	if score, ok := strategy.ScoreDeals(deals, req.Profile); ok {
		resp.Score = &score
	}
	if req.StrategyID != "" {
		if a, err := s.store.Alert(req.StrategyID); err == nil {
			if trig, ok := alerts.Check(a, deals); ok {
				logging.Server("Alert fired for %s at %.2f", a.StrategyID, trig.Price)
				resp.Alert = &trig
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req confirmRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, svc := s.current()
	conf, err := svc.Flights.ConfirmPrice(r.Context(), req.RawOffer)
	switch {
	case errors.Is(err, flights.ErrNotVerifiable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, conf)
	}
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	_, svc := s.current()
	writeJSON(w, http.StatusOK, svc.Flights.SearchLocations(r.Context(), r.URL.Query().Get("q")))
}

func (s *Server) handleHotels(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, svc := s.current()
	writeJSON(w, http.StatusOK, svc.Flights.SearchHotels(r.Context(), strings.ToUpper(ps.ByName("city"))))
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}
	_, svc := s.current()
	writeJSON(w, http.StatusOK, svc.Flights.SearchActivities(r.Context(), lat, lon))
}

func (s *Server) handleInspiration(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, svc := s.current()
	writeJSON(w, http.StatusOK, svc.Flights.Inspiration(r.Context(), strings.ToUpper(ps.ByName("origin"))))
}

// =============================================================================
// ADVISOR
// =============================================================================

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req analysisRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, svc := s.current()
	var analysis types.AIAnalysis
	if country := strings.TrimSpace(req.Country); country != "" {
		analysis = svc.Advisor.RefineForCountry(r.Context(), req.Strategy, flights.DealsToCountry(req.Deals, country), req.Profile, country)
	} else {
		analysis = svc.Advisor.RefineStrategy(r.Context(), req.Strategy, req.Deals, req.Profile)
	}
	report := advisor.ParseReport(analysis.Recommendation)
	writeJSON(w, http.StatusOK, analysisResponse{
		Analysis: analysis,
		Report:   report,
		Verdict:  advisor.Verdict(report),
		Country:  strings.TrimSpace(req.Country),
	})
}

func (s *Server) handleSeats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req seatsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, svc := s.current()
	writeJSON(w, http.StatusOK, textResponse{Text: svc.Advisor.AnalyzeSeats(r.Context(), req.Deal, req.Height)})
}

func (s *Server) handleVisa(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req visaRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, svc := s.current()
	writeJSON(w, http.StatusOK, textResponse{Text: svc.Advisor.AnalyzeVisa(r.Context(), req.Deal, req.Profile)})
}

// =============================================================================
// CHAT
// =============================================================================

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	msgs, err := s.store.ChatHistory(ps.ByName("id"))
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	saved, ok := s.savedOr404(w, id)
	if !ok {
		return
	}
	history, err := s.store.ChatHistory(id)
	if err != nil {
		s.internalError(w, err)
		return
	}

	_, svc := s.current()
	trip := saved.Trip
	reply := svc.Advisor.Chat(r.Context(), history, message, advisor.ChatContext{
		Strategy: saved.Strategy,
		Deals:    saved.Deals,
		Profile:  saved.Profile,
		Trip:     &trip,
	})

	if err := s.store.AppendChat(id,
		types.ChatMessage{Role: types.RoleUser, Text: message},
		types.ChatMessage{Role: types.RoleModel, Text: reply},
	); err != nil {
		s.internalError(w, err)
		return
	}
	updated, err := s.store.ChatHistory(id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, History: updated})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if err := s.store.ClearChat(id); err != nil {
		s.internalError(w, err)
		return
	}
	msgs, err := s.store.ChatHistory(id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// =============================================================================
// SAVED STRATEGIES AND EXPORTS
// =============================================================================

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	all, err := s.store.ListStrategies()
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handleSave stores a snapshot. A body without an id is treated as a new run
// and gets a fresh id and timestamp.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req types.SavedStrategy
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	saved := req
	if saved.ID == "" {
		saved = s.engine.Snapshot(strings.TrimSpace(req.Name), req.Profile, req.Trip, req.Strategy, req.Deals, req.AIAnalysis, s.now())
	}
	if err := s.store.SaveStrategy(saved); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetSaved(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	saved, ok := s.savedOr404(w, ps.ByName("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ok, err := s.store.DeleteStrategy(ps.ByName("id"))
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no saved strategies")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	saved, ok := s.savedOr404(w, ps.ByName("id"))
	if !ok {
		return
	}
	deal, found := saved.FindDeal(ps.ByName("deal"))
	if !found {
		writeError(w, http.StatusNotFound, "deal not found")
		return
	}
	ics, err := export.DealICS(deal, s.now())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.ICSFilename(deal.ID)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ics)
}

// =============================================================================
// ALERTS, WAITLIST AND SETTINGS
// =============================================================================

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	a, err := s.store.Alert(ps.ByName("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no alert set")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleSetAlert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	var req alertRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := s.savedOr404(w, id); !ok {
		return
	}
	a, err := s.store.SetAlert(id, req.TargetPrice)
	if errors.Is(err, store.ErrInvalidPrice) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alertResponse{Alert: a, Message: alerts.SetMessage(a.TargetPrice)})
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.store.DeleteAlert(ps.ByName("id")); err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWaitlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req waitlistRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := s.store.AddWaitlist(req.Email)
	if errors.Is(err, store.ErrInvalidEmail) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleWaitlistCSV(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries, err := s.store.Waitlist()
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.WaitlistFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WaitlistCSV(entries, w); err != nil {
		s.logger.Warn("waitlist export", zap.Error(err))
	}
}

// handleGetSettings reports which keys are stored, masking all but the last
// four characters.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	settings, err := s.store.Settings()
	if err != nil {
		s.internalError(w, err)
		return
	}
	out := make(map[string]string, len(config.SettingKeys))
	for _, k := range config.SettingKeys {
		out[k] = MaskSecret(settings[k])
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSaveSettings stores keys and rebuilds the services so the new
// credentials apply to the next request.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req map[string]string
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updates := make(map[string]string, len(req))
	for k, v := range req {
		if !knownSetting(k) {
			writeError(w, http.StatusBadRequest, "unknown setting: "+k)
			return
		}
		updates[k] = v
	}
	if err := s.store.SaveSettings(updates); err != nil {
		s.internalError(w, err)
		return
	}

	s.reapplySettings(r.Context())
	s.handleGetSettings(w, r, nil)
}

func knownSetting(k string) bool {
	for _, sk := range config.SettingKeys {
		if k == sk {
			return true
		}
	}
	return false
}

// MaskSecret hides all but the last four characters of a stored key.
func MaskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

func (s *Server) savedOr404(w http.ResponseWriter, id string) (types.SavedStrategy, bool) {
	saved, err := s.store.GetStrategy(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "strategy not found")
		return saved, false
	}
	if err != nil {
		s.internalError(w, err)
		return saved, false
	}
	return saved, true
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	logging.Get(logging.CategoryServer).Error("request failed: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

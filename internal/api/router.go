package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/protectmyphone/pmp/internal/middleware"
	"github.com/protectmyphone/pmp/internal/services"
)

type Router struct {
	store     Store
	survey    *services.SurveyService
	stats     *services.StatsService
	auth      *services.AuthService
	directory *services.DirectoryService
	theftData *services.TheftDataService
}

func NewRouter(store Store) *Router {
	surveyStore := newSurveyStoreAdapter(store)
	return &Router{
		store:     store,
		survey:    services.NewSurveyService(surveyStore),
		stats:     services.NewStatsService(surveyStore),
		auth:      services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
		directory: services.NewDirectoryService(newDirectoryStoreAdapter(store)),
		theftData: services.NewTheftDataService(newTheftDataStoreAdapter(store)),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/community/submit", rt.handleCommunitySubmit)     // POST
	mux.HandleFunc("/api/community/stats", rt.handleCommunityStats)       // GET
	mux.HandleFunc("/api/community/insights", rt.handleCommunityInsights) // POST
	mux.HandleFunc("/api/checkup/questions", rt.handleCheckupQuestions)   // GET
	mux.HandleFunc("/api/checkup/score", rt.handleCheckupScore)           // POST
	mux.HandleFunc("/api/directory/providers", rt.handleProviders)        // GET, POST
	mux.HandleFunc("/api/directory/providers/", rt.handleProviderScoped)  // GET/PUT/DELETE /api/directory/providers/{id}
	mux.HandleFunc("/api/directory/banks", rt.handleBanks)                // GET, POST
	mux.HandleFunc("/api/directory/banks/", rt.handleBankScoped)          // GET/PUT/DELETE /api/directory/banks/{id}
	mux.HandleFunc("/api/theft/timeline", rt.handleTheftTimeline)         // GET
	mux.Handle("/api/theft/points", middleware.RequireAuth(http.HandlerFunc(rt.handleTheftPoints))) // POST
	mux.HandleFunc("/api/auth/register", rt.handleRegister)               // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)                     // POST
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusForError(err error) int {
	if errors.Is(err, services.ErrAlreadySubmitted) {
		return http.StatusConflict
	}
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			return http.StatusBadRequest
		case services.ErrorUnauthorized:
			return http.StatusUnauthorized
		case services.ErrorForbidden:
			return http.StatusForbidden
		case services.ErrorNotFound:
			return http.StatusNotFound
		case services.ErrorConflict:
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]any{"error": err.Error()})
}

type surveyPayload struct {
	HadPhoneStolen    string   `json:"had_phone_stolen"`
	PhoneRecovered    string   `json:"phone_recovered"`
	ReplacementMethod string   `json:"replacement_method"`
	TheftLocation     string   `json:"theft_location"`
	SecurityMeasures  []string `json:"security_measures"`
	ReportedToPolice  string   `json:"reported_to_police"`
	SessionID         string   `json:"session_id"`
}

func (p *surveyPayload) toResponse() *services.SurveyResponse {
	return &services.SurveyResponse{
		HadPhoneStolen:    services.StolenStatus(p.HadPhoneStolen),
		PhoneRecovered:    services.RecoveryOutcome(p.PhoneRecovered),
		ReplacementMethod: services.ReplacementMethod(p.ReplacementMethod),
		TheftLocation:     services.TheftLocation(p.TheftLocation),
		SecurityMeasures:  p.SecurityMeasures,
		ReportedToPolice:  services.PoliceReport(p.ReportedToPolice),
	}
}

// POST /api/community/submit
func (rt *Router) handleCommunitySubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req surveyPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	result, err := rt.survey.Submit(req.toResponse(), req.SessionID)
	if err != nil {
		writeJSON(w, statusForError(err), map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Response submitted successfully",
		"response_id": result.ResponseID,
	})
}

// GET /api/community/stats
func (rt *Router) handleCommunityStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stats, err := rt.stats.Summary()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "Failed to fetch community statistics"})
		return
	}
	// Aggregate changes slowly; let proxies reuse it briefly.
	w.Header().Set("Cache-Control", "public, s-maxage=60, stale-while-revalidate=300")
	writeJSON(w, http.StatusOK, stats)
}

// POST /api/community/insights
// Returns the post-submission observations for a response against the
// current aggregate. Insights that need stats are skipped when the aggregate
// is unavailable rather than failing the request.
func (rt *Router) handleCommunityInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req surveyPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	resp := req.toResponse()
	if err := services.ValidateResponse(resp); err != nil {
		writeError(w, err)
		return
	}
	stats, err := rt.stats.Summary()
	if err != nil {
		stats = nil
	}
	out := map[string]any{"insights": services.GenerateInsights(resp, stats)}
	if stats != nil {
		out["most_common_location"] = services.MostCommonLocation(stats)
		out["security_adoption_rate"] = services.SecurityAdoptionRate(stats)
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/checkup/questions
func (rt *Router) handleCheckupQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions":  services.CheckupQuestions(),
		"categories": services.CheckupCategories(),
	})
}

// POST /api/checkup/score
func (rt *Router) handleCheckupScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Answers map[string]bool `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	result, err := services.ScoreCheckup(req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET/POST /api/directory/providers
func (rt *Router) handleProviders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		providers, err := rt.directory.ListProviders()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
	case http.MethodPost:
		actor, ok := middleware.AdminFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var p services.Provider
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, services.NewInvalidError("invalid request body"))
			return
		}
		saved, err := rt.directory.SaveProvider(actor, &p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET/PUT/DELETE /api/directory/providers/{id}
func (rt *Router) handleProviderScoped(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/directory/providers/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := rt.directory.GetProvider(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		actor, ok := middleware.AdminFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var p services.Provider
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, services.NewInvalidError("invalid request body"))
			return
		}
		p.ID = id
		saved, err := rt.directory.SaveProvider(actor, &p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	case http.MethodDelete:
		actor, ok := middleware.AdminFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := rt.directory.DeleteProvider(actor, id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET/POST /api/directory/banks
func (rt *Router) handleBanks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		banks, err := rt.directory.ListBanks()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"banks": banks})
	case http.MethodPost:
		actor, ok := middleware.AdminFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var b services.Bank
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			writeError(w, services.NewInvalidError("invalid request body"))
			return
		}
		saved, err := rt.directory.SaveBank(actor, &b)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET/PUT/DELETE /api/directory/banks/{id}
func (rt *Router) handleBankScoped(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/directory/banks/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		b, err := rt.directory.GetBank(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case http.MethodPut:
		actor, ok := middleware.AdminFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var b services.Bank
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			writeError(w, services.NewInvalidError("invalid request body"))
			return
		}
		b.ID = id
		saved, err := rt.directory.SaveBank(actor, &b)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	case http.MethodDelete:
		actor, ok := middleware.AdminFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := rt.directory.DeleteBank(actor, id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/theft/timeline
func (rt *Router) handleTheftTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	frames, err := rt.theftData.Timeline()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"frames": frames})
}

// POST /api/theft/points (admin)
func (rt *Router) handleTheftPoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, _ := middleware.AdminFromContext(r.Context())
	var req struct {
		Points []*services.TheftDataPoint `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	count, err := rt.theftData.UpsertPoints(actor, req.Points)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	result, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": result.Token, "user_id": result.UserID})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	result, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": result.Token, "user_id": result.UserID})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"prospect-lookup/internal/auth"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/common/validation"
	"prospect-lookup/internal/history"
	"prospect-lookup/internal/models"
	"prospect-lookup/internal/services/experian"
	"prospect-lookup/internal/services/insights"
	"prospect-lookup/internal/services/knowledgecore"
	"prospect-lookup/internal/services/transactions"
)

// Searcher resolves a lookup request end to end.
type Searcher interface {
	Search(ctx context.Context, userID string, criteria models.SearchCriteria) (*models.SearchResponse, error)
}

// ContactValidator runs the standalone phone/email validation endpoints.
type ContactValidator interface {
	ValidatePhones(ctx context.Context, criteria models.SearchCriteria) (*models.PhoneValidation, error)
	ValidateEmails(ctx context.Context, criteria models.SearchCriteria) (*models.EmailValidation, error)
}

// TransactionSource serves per-constituent giving history.
type TransactionSource interface {
	GivingHistory(ctx context.Context, constituentID string) (*transactions.GivingHistory, error)
}

// DonationSource serves the philanthropy lookup.
type DonationSource interface {
	SearchDonations(ctx context.Context, donorName, city, state string) ([]models.DonationRecord, error)
}

// InsightSource generates per-category AI commentary.
type InsightSource interface {
	Generate(ctx context.Context, category models.Category, fullName, city, state string) (*insights.Insight, error)
}

// HistorySource lists a user's own searches.
type HistorySource interface {
	List(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)
}

// RecentSource lists recent searches across all users.
type RecentSource interface {
	Recent(ctx context.Context, size int) ([]models.HistoryEntry, error)
}

// AuthService covers the account endpoints.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyToken(token string) (string, error)
}

// Handlers holds every endpoint's dependencies.
type Handlers struct {
	search    Searcher
	contacts  ContactValidator
	txns      TransactionSource
	donations DonationSource
	insights  InsightSource
	history   HistorySource
	recent    RecentSource
	auth      AuthService
	validator *validation.Validator
	logger    logger.Logger
}

func NewHandlers(search Searcher, contacts ContactValidator, txns TransactionSource, donations DonationSource, insightSrc InsightSource, historySrc HistorySource, recent RecentSource, authSvc AuthService, validator *validation.Validator, log logger.Logger) *Handlers {
	return &Handlers{
		search:    search,
		contacts:  contacts,
		txns:      txns,
		donations: donations,
		insights:  insightSrc,
		history:   historySrc,
		recent:    recent,
		auth:      authSvc,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// readValidated reads the body, checks it against the named schema, and
// unmarshals it. A schema violation is reported to the client directly.
func (h *Handlers) readValidated(w http.ResponseWriter, r *http.Request, schema string, out interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Could not read request body")
		return false
	}

	if err := h.validator.Validate(schema, body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SEARCH_CRITERIA", err.Error())
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Malformed JSON")
		return false
	}
	return true
}

// HandleSearch is POST /api/search.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var criteria models.SearchCriteria
	if !h.readValidated(w, r, "search", &criteria) {
		return
	}

	resp, err := h.search.Search(r.Context(), auth.UserID(r.Context()), criteria)
	if err != nil {
		h.logger.WithError(err).Error("search failed", map[string]interface{}{})
		switch {
		case errors.Is(err, experian.ErrVendorTimeout),
			errors.Is(err, experian.ErrVendorAuthFailed),
			errors.Is(err, experian.ErrVendorCallFailed):
			writeStandardError(w, experian.MapError(err))
		case errors.Is(err, knowledgecore.ErrQueryFailed):
			writeError(w, http.StatusServiceUnavailable, "QUERY_EXECUTION_FAILED", "Internal lookup unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "SEARCH_FAILED", "Search could not be completed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleValidatePhones is POST /api/validate-phones. Vendor trouble still
// answers 200 with the structured empty payload.
func (h *Handlers) HandleValidatePhones(w http.ResponseWriter, r *http.Request) {
	var criteria models.SearchCriteria
	if !h.readValidated(w, r, "search", &criteria) {
		return
	}

	validation, _ := h.contacts.ValidatePhones(r.Context(), criteria)
	writeJSON(w, http.StatusOK, map[string]interface{}{"phone_validation": validation})
}

// HandleValidateEmails is POST /api/validate-emails.
func (h *Handlers) HandleValidateEmails(w http.ResponseWriter, r *http.Request) {
	var criteria models.SearchCriteria
	if !h.readValidated(w, r, "search", &criteria) {
		return
	}

	validation, _ := h.contacts.ValidateEmails(r.Context(), criteria)
	writeJSON(w, http.StatusOK, map[string]interface{}{"email_validation": validation})
}

// HandleTransactions is GET /api/transactions/{constituentId}.
func (h *Handlers) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	constituentID := chi.URLParam(r, "constituentId")

	giving, err := h.txns.GivingHistory(r.Context(), constituentID)
	if err != nil {
		if errors.Is(err, transactions.ErrConstituentRequired) {
			writeError(w, http.StatusBadRequest, "CONSTITUENT_ID_REQUIRED", "A constituent id is required")
			return
		}
		h.logger.WithError(err).Error("transactions lookup failed", map[string]interface{}{
			"constituentId": constituentID,
		})
		writeError(w, http.StatusServiceUnavailable, "QUERY_EXECUTION_FAILED", "Giving history unavailable")
		return
	}

	writeJSON(w, http.StatusOK, giving)
}

type philanthropyRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	State     string `json:"state"`
}

// HandlePhilanthropy is POST /api/philanthropy.
func (h *Handlers) HandlePhilanthropy(w http.ResponseWriter, r *http.Request) {
	var req philanthropyRequest
	if !h.readValidated(w, r, "philanthropy", &req) {
		return
	}

	donorName := fmt.Sprintf("%s %s", req.FirstName, req.LastName)
	rows, err := h.donations.SearchDonations(r.Context(), donorName, req.City, req.State)
	if err != nil {
		h.logger.WithError(err).Error("philanthropy lookup failed", map[string]interface{}{})
		writeError(w, http.StatusBadGateway, "VENDOR_CALL_FAILED", "Donation lookup unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"donations": rows, "total": len(rows)})
}

type insightRequest struct {
	Category string `json:"category"`
	FullName string `json:"full_name"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// HandleInsights is POST /api/insights. Generation failure still answers 200
// with the degraded insight payload.
func (h *Handlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if !h.readValidated(w, r, "insight", &req) {
		return
	}

	insight, _ := h.insights.Generate(r.Context(), models.Category(req.Category), req.FullName, req.City, req.State)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ai_insights": insight})
}

// HandleHistory is GET /api/history.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.history.List(r.Context(), auth.UserID(r.Context()), limit)
	if err != nil {
		h.logger.WithError(err).Error("history list failed", map[string]interface{}{})
		writeError(w, http.StatusServiceUnavailable, "QUERY_EXECUTION_FAILED", "History unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// HandleRecent is GET /api/recent.
func (h *Handlers) HandleRecent(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	entries, err := h.recent.Recent(r.Context(), size)
	if err != nil {
		if errors.Is(err, history.ErrIndexNotFound) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"recent": []models.HistoryEntry{}})
			return
		}
		h.logger.WithError(err).Error("recent list failed", map[string]interface{}{})
		writeError(w, http.StatusServiceUnavailable, "QUERY_EXECUTION_FAILED", "Recent searches unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"recent": entries})
}

// ==========================
// Auth Endpoints
// ==========================

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Email and password are required")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "EMAIL_ALREADY_REGISTERED", "Email already registered")
			return
		}
		h.logger.WithError(err).Error("registration failed", map[string]interface{}{})
		writeError(w, http.StatusInternalServerError, "AUTHENTICATION_FAILED", "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"access_token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Email and password are required")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "Invalid email or password")
			return
		}
		h.logger.WithError(err).Error("login failed", map[string]interface{}{})
		writeError(w, http.StatusInternalServerError, "AUTHENTICATION_FAILED", "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": token, "user": user})
}

func (h *Handlers) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Email is required")
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.WithError(err).Error("password reset request failed", map[string]interface{}{})
		writeError(w, http.StatusInternalServerError, "NOTIFICATION_SEND_FAILED", "Could not send reset email")
		return
	}

	// the answer is the same whether or not the account exists
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Token and new password are required")
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			writeError(w, http.StatusBadRequest, "RESET_TOKEN_EXPIRED", "Reset token is invalid or expired")
			return
		}
		h.logger.WithError(err).Error("password reset failed", map[string]interface{}{})
		writeError(w, http.StatusInternalServerError, "AUTHENTICATION_FAILED", "Password reset failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

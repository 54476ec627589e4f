// Package http is the REST adapter for the booking engine. Authentication is
// terminated upstream; the gateway forwards the acting user in the X-User-ID
// and X-User-Role headers.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/nordtolk/booking/internal/domain"
)

// Server is the HTTP adapter for the booking service.
type Server struct {
	svc    *domain.Service
	mux    *http.ServeMux
	server *http.Server
	logger *zap.Logger
}

// NewServer creates a new HTTP server.
func NewServer(svc *domain.Service, addr string, logger *zap.Logger) *Server {
	s := &Server{
		svc:    svc,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /jobs", s.handleCreateJob)
	s.mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	s.mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	s.mux.HandleFunc("POST /jobs/{id}/email", s.handleJobEmail)
	s.mux.HandleFunc("POST /jobs/{id}/accept", s.handleAccept)
	s.mux.HandleFunc("POST /jobs/{id}/cancel", s.handleCancel)
	s.mux.HandleFunc("POST /jobs/{id}/end", s.handleEnd)
	s.mux.HandleFunc("POST /jobs/{id}/not-carried-out", s.handleNotCarriedOut)
	s.mux.HandleFunc("GET /translators/{id}/jobs", s.handlePotentialJobs)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// createJobRequest is the booking form. customer_phone_type is a pointer so a
// missing flag can be told apart from an explicit no.
type createJobRequest struct {
	FromLanguageID       int64    `json:"from_language_id"`
	Duration             int      `json:"duration"`
	Immediate            bool     `json:"immediate"`
	DueDate              string   `json:"due_date"`
	DueTime              string   `json:"due_time"`
	PhoneBooking         *bool    `json:"customer_phone_type"`
	PhysicalBooking      bool     `json:"customer_physical_type"`
	JobFor               []string `json:"job_for"`
	RequiredLevel        string   `json:"certified_level"`
	Town                 string   `json:"town"`
	Reference            string   `json:"reference"`
	SpecificTranslatorID int64    `json:"translator_id"`
	AllowGeneralClaim    bool     `json:"allow_general_claim"`
}

type jobEmailRequest struct {
	UserEmail    string  `json:"user_email"`
	Reference    string  `json:"reference"`
	Address      *string `json:"address"`
	Instructions string  `json:"instructions"`
	Town         string  `json:"town"`
}

type updateJobRequest struct {
	Due            string `json:"due"`
	TranslatorID   int64  `json:"translator_id"`
	FromLanguageID int64  `json:"from_language_id"`
	Status         string `json:"status"`
	AdminComments  string `json:"admin_comments"`
	Reference      string `json:"reference"`
}

type acceptRequest struct {
	TranslatorID int64 `json:"translator_id"`
}

type endRequest struct {
	UserID int64 `json:"user_id"`
}

// jobResponse is the JSON view of a booking.
type jobResponse struct {
	ID             int64    `json:"id"`
	CustomerID     int64    `json:"customer_id"`
	FromLanguageID int64    `json:"from_language_id"`
	Duration       int      `json:"duration"`
	JobType        string   `json:"job_type"`
	Immediate      bool     `json:"immediate"`
	Status         string   `json:"status"`
	Due            string   `json:"due,omitempty"`
	EndAt          string   `json:"end_at,omitempty"`
	SessionTime    string   `json:"session_time,omitempty"`
	JobFor         []string `json:"job_for,omitempty"`
	Town           string   `json:"town,omitempty"`
	Reference      string   `json:"reference,omitempty"`
	WillExpireAt   string   `json:"will_expire_at,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type acceptResponse struct {
	Job           jobResponse   `json:"job"`
	Message       string        `json:"message"`
	PotentialJobs []jobResponse `json:"potential_jobs"`
}

type updateResponse struct {
	Job     jobResponse `json:"job"`
	Updated bool        `json:"updated"`
}

// errorResponse is the JSON error response.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	domainReq := domain.CreateJobRequest{
		FromLanguageID:       req.FromLanguageID,
		Duration:             req.Duration,
		Immediate:            req.Immediate,
		DueDate:              req.DueDate,
		DueTime:              req.DueTime,
		PhysicalBooking:      req.PhysicalBooking,
		JobFor:               req.JobFor,
		RequiredLevel:        req.RequiredLevel,
		Town:                 req.Town,
		Reference:            req.Reference,
		SpecificTranslatorID: req.SpecificTranslatorID,
		AllowGeneralClaim:    req.AllowGeneralClaim,
	}
	if req.PhoneBooking != nil {
		domainReq.PhoneBooking = *req.PhoneBooking
		domainReq.PhoneBookingSet = true
	}

	job, err := s.svc.Create(r.Context(), actor, domainReq)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, jobToResponse(job))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	job, err := s.svc.Job(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) handleJobEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req jobEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	domainReq := domain.JobEmailRequest{
		JobID:        id,
		UserEmail:    req.UserEmail,
		Reference:    req.Reference,
		Instructions: req.Instructions,
		Town:         req.Town,
	}
	if req.Address != nil {
		domainReq.Address = *req.Address
		domainReq.AddressSet = true
	}

	job, err := s.svc.AttachEmail(r.Context(), domainReq)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req updateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	domainReq := domain.UpdateJobRequest{
		TranslatorID:   req.TranslatorID,
		FromLanguageID: req.FromLanguageID,
		Status:         domain.JobStatus(req.Status),
		AdminComments:  req.AdminComments,
		Reference:      req.Reference,
	}
	if req.Due != "" {
		due, err := time.Parse("2006-01-02 15:04:05", req.Due)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid due format, want YYYY-MM-DD HH:MM:SS")
			return
		}
		domainReq.Due = due
	}

	res, err := s.svc.Update(r.Context(), id, domainReq, actor)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updateResponse{Job: jobToResponse(res.Job), Updated: true})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	translatorID := req.TranslatorID
	if translatorID == 0 {
		translatorID = actor.ID
	}

	res, err := s.svc.Accept(r.Context(), id, translatorID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	resp := acceptResponse{
		Job:           jobToResponse(res.Job),
		Message:       res.Message,
		PotentialJobs: make([]jobResponse, 0, len(res.PotentialJobs)),
	}
	for i := range res.PotentialJobs {
		resp.PotentialJobs = append(resp.PotentialJobs, jobToResponse(&res.PotentialJobs[i]))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	job, err := s.svc.Cancel(r.Context(), id, actor)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	userID := req.UserID
	if userID == 0 {
		userID = actor.ID
	}

	job, err := s.svc.End(r.Context(), id, userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) handleNotCarriedOut(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	job, err := s.svc.CustomerNotCall(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) handlePotentialJobs(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	jobs, err := s.svc.PotentialJobs(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobToResponse(&jobs[i]))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actor reads the forwarded identity headers.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	idStr := r.Header.Get("X-User-ID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusUnauthorized, "missing or invalid X-User-ID header")
		return domain.Actor{}, false
	}
	role := domain.Role(r.Header.Get("X-User-Role"))
	if role != domain.RoleCustomer && role != domain.RoleTranslator {
		s.writeError(w, http.StatusUnauthorized, "missing or invalid X-User-Role header")
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: role}, true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
		return
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: ce.Message})
		return
	}
	var te *domain.InvalidTransitionError
	if errors.As(err, &te) {
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: te.Error()})
		return
	}
	if errors.Is(err, domain.ErrJobNotFound) || errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrRelationNotFound) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func jobToResponse(job *domain.Job) jobResponse {
	resp := jobResponse{
		ID:             job.ID,
		CustomerID:     job.CustomerID,
		FromLanguageID: job.FromLanguageID,
		Duration:       job.Duration,
		JobType:        string(job.JobType),
		Immediate:      job.Immediate,
		Status:         string(job.Status),
		SessionTime:    job.SessionTime,
		JobFor:         domain.JobForLabels(job),
		Town:           job.Town,
		Reference:      job.Reference,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
	}
	if !job.Due.IsZero() {
		resp.Due = job.Due.Format(time.RFC3339)
	}
	if !job.EndAt.IsZero() {
		resp.EndAt = job.EndAt.Format(time.RFC3339)
	}
	if !job.WillExpireAt.IsZero() {
		resp.WillExpireAt = job.WillExpireAt.Format(time.RFC3339)
	}
	return resp
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Port extracts the port from the address.
func (s *Server) Port() int {
	addr := s.server.Addr
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		port, _ := strconv.Atoi(addr[idx+1:])
		return port
	}
	return 0
}

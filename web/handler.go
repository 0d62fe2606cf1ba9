package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"auralis/auth"
	"auralis/db"
	"auralis/llm"
	"auralis/pdf"
	"auralis/translate"
)

// Handler serves the REST API around the transcription relay.
type Handler struct {
	db         *db.DB
	tokens     *auth.Tokens
	translator translate.Translator
	summarizer llm.Summarizer
	relay      http.Handler
	engine     string
	logger     *log.Logger
}

func NewHandler(
	database *db.DB,
	tokens *auth.Tokens,
	translator translate.Translator,
	summarizer llm.Summarizer,
	relay http.Handler,
	engine string,
	logger *log.Logger,
) *Handler {
	return &Handler{
		db:         database,
		tokens:     tokens,
		translator: translator,
		summarizer: summarizer,
		relay:      relay,
		engine:     engine,
		logger:     logger,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.logRequests)

	r.Get("/health", h.health)
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	// The relay carries no bearer token; mobile websocket clients
	// cannot set headers. Sessions are still isolated per channel.
	r.Get("/ws/transcribe", h.relay.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(h.tokens.Middleware)

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", h.listPatients)
			r.Post("/", h.createPatient)
			r.Route("/{patientID}", func(r chi.Router) {
				r.Get("/", h.getPatient)
				r.Put("/", h.updatePatient)
				r.Delete("/", h.deletePatient)
				r.Get("/sessions", h.listSessions)
			})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.createSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Put("/", h.updateSession)
				r.Delete("/", h.deleteSession)
				r.Get("/report.pdf", h.sessionReport)
				r.Post("/generate-notes", h.generateNotes)
			})
		})

		r.Post("/translate", h.translateText)
		r.Post("/summarize-sessions", h.summarizeSessions)
	})

	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug(
			"request",
			"method", r.Method,
			"path", r.URL.Path,
			"took", time.Since(start),
		)
	})
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

func (h *Handler) fail(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	h.logger.Error(action, "error", err)
	respondError(w, http.StatusInternalServerError, action+" failed")
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"engine": h.engine,
	})
}

// -- auth --------------------------------------------------------------

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, err, "register")
		return
	}

	id, err := h.db.CreateTherapist(r.Context(), req.Name, req.Email, hash)
	if err != nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	token, err := h.tokens.Issue(id)
	if err != nil {
		h.fail(w, err, "register")
		return
	}
	respond(w, http.StatusCreated, map[string]any{"token": token, "therapist_id": id})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	therapist, err := h.db.GetTherapistByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(therapist.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(therapist.ID)
	if err != nil {
		h.fail(w, err, "login")
		return
	}
	respond(w, http.StatusOK, map[string]any{"token": token, "therapist_id": therapist.ID})
}

// -- patients ----------------------------------------------------------

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.db.ListPatients(r.Context(), auth.TherapistID(r.Context()))
	if err != nil {
		h.fail(w, err, "list patients")
		return
	}
	if patients == nil {
		patients = []db.Patient{}
	}
	respond(w, http.StatusOK, patients)
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var p db.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if p.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	p.TherapistID = auth.TherapistID(r.Context())

	id, err := h.db.CreatePatient(r.Context(), p)
	if err != nil {
		h.fail(w, err, "create patient")
		return
	}

	created, err := h.db.GetPatient(r.Context(), id, p.TherapistID)
	if err != nil {
		h.fail(w, err, "create patient")
		return
	}
	respond(w, http.StatusCreated, created)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "patientID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	patient, err := h.db.GetPatient(r.Context(), id, auth.TherapistID(r.Context()))
	if err != nil {
		h.fail(w, err, "get patient")
		return
	}
	respond(w, http.StatusOK, patient)
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "patientID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	var p db.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p.ID = id
	p.TherapistID = auth.TherapistID(r.Context())

	if err := h.db.UpdatePatient(r.Context(), p); err != nil {
		h.fail(w, err, "update patient")
		return
	}

	updated, err := h.db.GetPatient(r.Context(), id, p.TherapistID)
	if err != nil {
		h.fail(w, err, "update patient")
		return
	}
	respond(w, http.StatusOK, updated)
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "patientID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	if err := h.db.DeletePatient(r.Context(), id, auth.TherapistID(r.Context())); err != nil {
		h.fail(w, err, "delete patient")
		return
	}
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

// -- sessions ----------------------------------------------------------

// ownedSession loads a session and checks it belongs to a patient of
// the authenticated therapist.
func (h *Handler) ownedSession(r *http.Request, id int64) (db.Session, error) {
	session, err := h.db.GetSession(r.Context(), id)
	if err != nil {
		return db.Session{}, err
	}
	_, err = h.db.GetPatient(r.Context(), session.PatientID, auth.TherapistID(r.Context()))
	if err != nil {
		return db.Session{}, err
	}
	return session, nil
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	patientID, err := urlID(r, "patientID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	if _, err := h.db.GetPatient(r.Context(), patientID, auth.TherapistID(r.Context())); err != nil {
		h.fail(w, err, "list sessions")
		return
	}

	sessions, err := h.db.ListSessions(r.Context(), patientID)
	if err != nil {
		h.fail(w, err, "list sessions")
		return
	}
	if sessions == nil {
		sessions = []db.Session{}
	}
	respond(w, http.StatusOK, sessions)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var s db.Session
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := h.db.GetPatient(r.Context(), s.PatientID, auth.TherapistID(r.Context())); err != nil {
		h.fail(w, err, "create session")
		return
	}
	if s.Language == "" {
		s.Language = "auto"
	}

	id, err := h.db.CreateSession(r.Context(), s)
	if err != nil {
		h.fail(w, err, "create session")
		return
	}

	created, err := h.db.GetSession(r.Context(), id)
	if err != nil {
		h.fail(w, err, "create session")
		return
	}
	respond(w, http.StatusCreated, created)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "sessionID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	session, err := h.ownedSession(r, id)
	if err != nil {
		h.fail(w, err, "get session")
		return
	}
	respond(w, http.StatusOK, session)
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "sessionID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	existing, err := h.ownedSession(r, id)
	if err != nil {
		h.fail(w, err, "update session")
		return
	}

	updated := existing
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	updated.ID = existing.ID
	updated.PatientID = existing.PatientID

	if err := h.db.UpdateSession(r.Context(), updated); err != nil {
		h.fail(w, err, "update session")
		return
	}

	fresh, err := h.db.GetSession(r.Context(), id)
	if err != nil {
		h.fail(w, err, "update session")
		return
	}
	respond(w, http.StatusOK, fresh)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "sessionID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if _, err := h.ownedSession(r, id); err != nil {
		h.fail(w, err, "delete session")
		return
	}
	if err := h.db.DeleteSession(r.Context(), id); err != nil {
		h.fail(w, err, "delete session")
		return
	}
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) sessionReport(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "sessionID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	session, err := h.ownedSession(r, id)
	if err != nil {
		h.fail(w, err, "session report")
		return
	}
	patient, err := h.db.GetPatient(r.Context(), session.PatientID, auth.TherapistID(r.Context()))
	if err != nil {
		h.fail(w, err, "session report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	if err := pdf.WriteSessionReport(w, patient, session); err != nil {
		h.logger.Error("session report", "error", err)
	}
}

// minNotesTranscript is the shortest transcript worth sending to the
// summarizer; anything shorter produces useless notes.
const minNotesTranscript = 50

type generateNotesRequest struct {
	Regenerate bool `json:"regenerate"`
}

// generateNotes runs the summarizer over one session's transcript and
// stores the result as the session's clinical notes.
func (h *Handler) generateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "sessionID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	session, err := h.ownedSession(r, id)
	if err != nil {
		h.fail(w, err, "generate notes")
		return
	}

	// The request body is optional; an empty body means regenerate=false.
	var req generateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if session.Notes != "" && !req.Regenerate {
		respondError(w, http.StatusBadRequest, "notes already exist; set regenerate to overwrite")
		return
	}
	if len(strings.TrimSpace(session.OriginalTranscription)) < minNotesTranscript {
		respondError(w, http.StatusBadRequest, "session transcription is too short for note generation")
		return
	}

	notes, err := h.summarizer.Summarize(r.Context(), session.OriginalTranscription)
	if err != nil {
		h.fail(w, err, "generate notes")
		return
	}

	session.Notes = notes
	if err := h.db.UpdateSession(r.Context(), session); err != nil {
		h.fail(w, err, "generate notes")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"success":         true,
		"session_id":      id,
		"generated_notes": notes,
		"can_edit":        true,
	})
}

// -- translation and summaries -----------------------------------------

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language"`
}

func (h *Handler) translateText(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Text == "" || req.TargetLanguage == "" {
		respondError(w, http.StatusBadRequest, "text and target_language are required")
		return
	}
	if req.SourceLanguage == "" {
		req.SourceLanguage = "auto"
	}

	translated, err := h.translator.Translate(
		r.Context(),
		req.Text,
		req.SourceLanguage,
		req.TargetLanguage,
	)
	if err != nil {
		h.fail(w, err, "translate")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"success":         true,
		"original_text":   req.Text,
		"translated_text": translated,
		"source_language": req.SourceLanguage,
		"target_language": req.TargetLanguage,
	})
}

type summarizeRequest struct {
	PatientID int64 `json:"patient_id"`
}

func (h *Handler) summarizeSessions(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := h.db.GetPatient(r.Context(), req.PatientID, auth.TherapistID(r.Context())); err != nil {
		h.fail(w, err, "summarize")
		return
	}

	sessions, err := h.db.ListSessions(r.Context(), req.PatientID)
	if err != nil {
		h.fail(w, err, "summarize")
		return
	}
	if len(sessions) == 0 {
		respondError(w, http.StatusNotFound, "no sessions found for this patient")
		return
	}

	texts := make([]llm.SessionText, len(sessions))
	for i, s := range sessions {
		texts[i] = llm.SessionText{
			Number:     s.SessionNumber,
			Transcript: s.OriginalTranscription,
			Notes:      s.Notes,
		}
	}

	summary, err := llm.SummarizeSessions(r.Context(), h.summarizer, texts)
	if err != nil {
		h.fail(w, err, "summarize")
		return
	}
	respond(w, http.StatusOK, summary)
}

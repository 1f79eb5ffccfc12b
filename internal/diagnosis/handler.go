package diagnosis

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"diagnosis-backend/internal/catalog"
	"diagnosis-backend/internal/shared/server/middleware"
	"diagnosis-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the diagnosis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches quiz routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/questions", h.listQuestions)
	rg.POST("/diagnoses", h.createDiagnosis)
	rg.GET("/diagnoses/:id", h.getDiagnosis)
}

type questionView struct {
	ID       string          `json:"id"`
	Question string          `json:"question"`
	Type     string          `json:"type"`
	Options  catalog.Options `json:"options"`
}

type createRequest struct {
	Answers Answers `json:"answers"`
}

func (h *Handler) listQuestions(c *gin.Context) {
	ds := h.Svc.Engine.Dataset()
	out := make([]questionView, 0, len(ds.Questions))
	for _, q := range ds.Questions {
		out = append(out, questionView{
			ID:       q.ID,
			Question: q.Question,
			Type:     q.Type,
			Options:  q.Options,
		})
	}
	respond.OK(c, gin.H{
		"version":   ds.Version,
		"questions": out,
	})
}

func (h *Handler) createDiagnosis(c *gin.Context) {
	var req createRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "request body must be a JSON object with answers", nil)
		return
	}
	if req.Answers == nil {
		req.Answers = Answers{}
	}

	sessionID := middleware.SessionIDFromContext(c)
	rec, err := h.Svc.Create(c.Request.Context(), sessionID, req.Answers)
	if err != nil {
		var ae *AnswerError
		switch {
		case errors.As(err, &ae):
			respond.Error(c, http.StatusBadRequest, "invalid_answers", "answers do not match the question bank", ae.Problems)
		case errors.Is(err, catalog.ErrDataIntegrity):
			respond.Error(c, http.StatusInternalServerError, "internal_error", "diagnosis is temporarily unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run diagnosis", nil)
		}
		return
	}

	c.Set(middleware.DiagnosisIDKey, rec.ID)
	respond.Created(c, c.Request.URL.Path+"/"+rec.ID, gin.H{
		"id":     rec.ID,
		"result": rec.Result,
	})
}

func (h *Handler) getDiagnosis(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "diagnosis id is required", nil)
		return
	}

	rec, err := h.Svc.Get(c.Request.Context(), middleware.SessionIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "diagnosis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch diagnosis", nil)
		}
		return
	}
	c.Set(middleware.DiagnosisIDKey, rec.ID)
	respond.OK(c, gin.H{
		"id":        rec.ID,
		"result":    rec.Result,
		"createdAt": rec.CreatedAt,
	})
}

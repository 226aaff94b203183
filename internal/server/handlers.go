package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/internal/services"
)

// maxQueryLength bounds query and citation text.
const maxQueryLength = 2048

// StudyHandler serves the library, reference and search endpoints.
type StudyHandler struct {
	svc *services.StudyService
}

// NewStudyHandler creates a new study handler.
func NewStudyHandler(svc *services.StudyService) *StudyHandler {
	return &StudyHandler{svc: svc}
}

// ModulesResponse lists the loaded modules.
type ModulesResponse struct {
	Modules []library.ModuleInfo `json:"modules"`
}

// ReferencesResponse is the result of GET /references.
type ReferencesResponse struct {
	Query      string               `json:"query"`
	References []services.Reference `json:"references"`
}

// RegisterRoutes registers the study routes on g.
func (h *StudyHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/status", h.Status)
	g.GET("/modules", h.Modules)
	g.GET("/references", h.References)
	g.GET("/search", h.SearchGet)
	g.POST("/search", h.SearchPost)
}

// Status handles GET /status.
func (h *StudyHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Status())
}

// Modules handles GET /modules.
func (h *StudyHandler) Modules(c echo.Context) error {
	mods, err := h.svc.Modules()
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, ModulesResponse{Modules: mods})
}

// References handles GET /references?q=&bible=.
func (h *StudyHandler) References(c echo.Context) error {
	q, err := textParam(c, "q")
	if err != nil {
		return apiError(c, err)
	}
	refs, err := h.svc.References(q, bible.ModuleID(c.QueryParam("bible")))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, ReferencesResponse{Query: q, References: refs})
}

// SearchGet handles GET /search?q=&citations=&modules=&mode=&bible=&page=&size=&render=&strongs=.
func (h *StudyHandler) SearchGet(c echo.Context) error {
	req, err := searchRequestFromQuery(c)
	if err != nil {
		return apiError(c, err)
	}
	return h.search(c, req)
}

// SearchPost handles POST /search with a JSON SearchRequest body.
func (h *StudyHandler) SearchPost(c echo.Context) error {
	if !ValidateContentType(c.Request().Header.Get(echo.HeaderContentType), []string{echo.MIMEApplicationJSON}) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, ErrorResponse{Error: "content type must be application/json"})
	}
	var req services.SearchRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, errors.NewValidation("body", "invalid search request: "+bindMessage(err)))
	}
	if err := cleanRequest(&req); err != nil {
		return apiError(c, err)
	}
	return h.search(c, &req)
}

func (h *StudyHandler) search(c echo.Context, req *services.SearchRequest) error {
	resp, err := h.svc.Search(c.Request().Context(), req)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func bindMessage(err error) string {
	if he, ok := err.(*echo.HTTPError); ok {
		if he.Internal != nil {
			return he.Internal.Error()
		}
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}

func textParam(c echo.Context, name string) (string, error) {
	v := SanitizeUserInput(c.QueryParam(name))
	if len(v) > maxQueryLength {
		return "", errors.NewValidation(name, "too long")
	}
	return v, nil
}

func intParam(c echo.Context, name string) (int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewValidation(name, "not an integer")
	}
	return n, nil
}

func boolParam(c echo.Context, name string) (bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.NewValidation(name, "not a boolean")
	}
	return b, nil
}

// moduleList splits a comma-separated module list.
func moduleList(s string) []bible.ModuleID {
	var out []bible.ModuleID
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, bible.ModuleID(part))
		}
	}
	return out
}

func searchRequestFromQuery(c echo.Context) (*services.SearchRequest, error) {
	req := &services.SearchRequest{
		Modules: moduleList(c.QueryParam("modules")),
		Mode:    c.QueryParam("mode"),
		Bible:   bible.ModuleID(strings.TrimSpace(c.QueryParam("bible"))),
	}
	var err error
	if req.Query, err = textParam(c, "q"); err != nil {
		return nil, err
	}
	if req.Citations, err = textParam(c, "citations"); err != nil {
		return nil, err
	}
	if req.Page, err = intParam(c, "page"); err != nil {
		return nil, err
	}
	if req.Size, err = intParam(c, "size"); err != nil {
		return nil, err
	}
	if req.Render, err = boolParam(c, "render"); err != nil {
		return nil, err
	}
	if req.ShowStrongs, err = boolParam(c, "strongs"); err != nil {
		return nil, err
	}
	return req, nil
}

// cleanRequest applies the query-string hygiene to a decoded body.
func cleanRequest(req *services.SearchRequest) error {
	req.Query = SanitizeUserInput(req.Query)
	req.Citations = SanitizeUserInput(req.Citations)
	if len(req.Query) > maxQueryLength {
		return errors.NewValidation("query", "too long")
	}
	if len(req.Citations) > maxQueryLength {
		return errors.NewValidation("citations", "too long")
	}
	return nil
}

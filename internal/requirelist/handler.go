package requirelist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/retenly/retenly/internal/analysis"
	"github.com/retenly/retenly/internal/company"
	"github.com/retenly/retenly/internal/infodb"
)

// Handler exposes require list endpoints.
type Handler struct {
	service *Service
	engine  analysis.Client
}

// NewHandler constructs a require list HTTP handler.
func NewHandler(service *Service, engine analysis.Client) *Handler {
	return &Handler{service: service, engine: engine}
}

type createRequest struct {
	AnalysisNo int64 `json:"analysis_no"`
	CompanyNo  int64 `json:"company_no"`
	DbInfoNo   int64 `json:"db_info_no"`
}

type listResponse struct {
	RequireListNo int64 `json:"require_list_no"`
	AnalysisNo    int64 `json:"analysis_no"`
	CompanyNo     int64 `json:"company_no"`
	DbInfoNo      int64 `json:"db_info_no"`
}

// Create records an analysis request and triggers the engine run.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	list, err := h.service.Create(c.UserContext(), CreateInput{
		AnalysisNo: req.AnalysisNo,
		CompanyNo:  req.CompanyNo,
		InfoDbNo:   req.DbInfoNo,
	})
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNotFound),
			errors.Is(err, company.ErrNotFound),
			errors.Is(err, infodb.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, analysis.ErrAnalysisAPI):
			return fiber.NewError(http.StatusBadGateway, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(listResponse{
		RequireListNo: list.No,
		AnalysisNo:    list.AnalysisNo,
		CompanyNo:     list.CompanyNo,
		DbInfoNo:      list.InfoDbNo,
	})
}

// Get returns a single require list.
func (h *Handler) Get(c *fiber.Ctx) error {
	no, err := strconv.ParseInt(c.Params("requireListNo"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid require list number")
	}
	list, err := h.service.Get(c.UserContext(), no)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(listResponse{
		RequireListNo: list.No,
		AnalysisNo:    list.AnalysisNo,
		CompanyNo:     list.CompanyNo,
		DbInfoNo:      list.InfoDbNo,
	})
}

// InfoColumns proxies column metadata from the analysis engine.
func (h *Handler) InfoColumns(c *fiber.Ctx) error {
	dbInfoNo, err := strconv.ParseInt(c.Query("db_info_no"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "db_info_no is required")
	}
	columns, err := h.engine.InfoColumns(c.UserContext(), dbInfoNo, c.Query("origin_table"))
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}
	if columns == nil {
		columns = []analysis.InfoColumn{}
	}
	return c.Status(http.StatusOK).JSON(columns)
}

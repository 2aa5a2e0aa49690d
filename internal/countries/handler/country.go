package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"countries/internal/countries/service"
	apperrors "countries/pkg/errors"
	httputil "countries/pkg/http"
	"countries/pkg/logger"
	"countries/pkg/model"
)

const (
	APIPrefix = "/v1"

	paramExcludeStates = "excludeStates"
	paramExcludeCities = "excludeCities"
)

type CountryHandler struct {
	service service.CountryService
	log     *logger.Logger
}

func NewCountryHandler(service service.CountryService, log *logger.Logger) *CountryHandler {
	return &CountryHandler{
		service: service,
		log:     log,
	}
}

// httprouter does not allow a catch-all segment next to static siblings, so
// /v1/all and /v1/:name share one route, as do the /v1/<field>/:value routes.
func (h *CountryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(APIPrefix+"/:segment", h.bySegment)
	router.GET(APIPrefix+"/:segment/:value", h.byField)
}

func (h *CountryHandler) bySegment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	segment := ps.ByName("segment")
	if segment == "all" {
		h.GetAll(w, r, ps)
		return
	}
	h.GetByName(w, r, httprouter.Params{{Key: "name", Value: segment}})
}

func (h *CountryHandler) byField(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	value := ps.ByName("value")
	switch ps.ByName("segment") {
	case "name":
		h.GetByName(w, r, httprouter.Params{{Key: "name", Value: value}})
	case "capital":
		h.GetByCapital(w, r, httprouter.Params{{Key: "capital", Value: value}})
	case "region":
		h.GetByRegion(w, r, httprouter.Params{{Key: "region", Value: value}})
	case "subregion":
		h.GetBySubregion(w, r, httprouter.Params{{Key: "subregion", Value: value}})
	default:
		http.NotFound(w, r)
	}
}

func (h *CountryHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts, ok := h.excludeOptions(w, r, "GetAll")
	if !ok {
		return
	}

	countries, err := h.service.GetAll(r.Context(), opts)
	h.respond(w, r, "GetAll", countries, err)
}

func (h *CountryHandler) GetByName(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	opts, ok := h.excludeOptions(w, r, "GetByName")
	if !ok {
		return
	}

	country, err := h.service.GetByName(r.Context(), ps.ByName("name"), opts)
	h.respond(w, r, "GetByName", country, err)
}

func (h *CountryHandler) GetByCapital(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	opts, ok := h.excludeOptions(w, r, "GetByCapital")
	if !ok {
		return
	}

	country, err := h.service.GetByCapital(r.Context(), ps.ByName("capital"), opts)
	h.respond(w, r, "GetByCapital", country, err)
}

func (h *CountryHandler) GetByRegion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	opts, ok := h.excludeOptions(w, r, "GetByRegion")
	if !ok {
		return
	}

	countries, err := h.service.GetByRegion(r.Context(), ps.ByName("region"), opts)
	h.respond(w, r, "GetByRegion", countries, err)
}

func (h *CountryHandler) GetBySubregion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	opts, ok := h.excludeOptions(w, r, "GetBySubregion")
	if !ok {
		return
	}

	countries, err := h.service.GetBySubregion(r.Context(), ps.ByName("subregion"), opts)
	h.respond(w, r, "GetBySubregion", countries, err)
}

func (h *CountryHandler) respond(w http.ResponseWriter, r *http.Request, handler string, data any, err error) {
	log := logger.FromContext(r.Context(), h.log)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, data); err != nil {
		log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

// excludeOptions reads excludeStates and excludeCities. A missing flag means
// false and anything other than "true" or "false" is rejected.
func (h *CountryHandler) excludeOptions(w http.ResponseWriter, r *http.Request, handler string) (model.ExcludeOptions, bool) {
	query := r.URL.Query()

	states, err := parseFlag(query.Get(paramExcludeStates), paramExcludeStates)
	if err != nil {
		h.respond(w, r, handler, nil, err)
		return model.ExcludeOptions{}, false
	}

	cities, err := parseFlag(query.Get(paramExcludeCities), paramExcludeCities)
	if err != nil {
		h.respond(w, r, handler, nil, err)
		return model.ExcludeOptions{}, false
	}

	return model.ExcludeOptions{ExcludeStates: states, ExcludeCities: cities}, true
}

func parseFlag(raw, name string) (bool, error) {
	switch raw {
	case "":
		return false, nil
	case "true", "false":
		v, _ := strconv.ParseBool(raw)
		return v, nil
	default:
		return false, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, raw)).
			WithDetails(map[string]any{"parameter": name, "allowed": []string{"true", "false"}})
	}
}

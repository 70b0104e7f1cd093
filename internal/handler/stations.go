package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mrcrpro/panaguas/internal/middleware"
	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

func (h *Handler) listStations(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Stations.Handle(r.Context(), stationlisting.BuildQuery())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "listing stations failed", slog.String(shell.LogAttrError, err.Error()))
		middleware.WriteError(w, http.StatusInternalServerError, "internal", internalErrorMessage)

		return
	}

	stations := listing.Stations
	if stations == nil {
		stations = []stationlisting.Station{}
	}

	writeJSON(w, http.StatusOK, stations)
}

func (h *Handler) getStation(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Stations.Handle(r.Context(), stationlisting.BuildQuery())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "listing stations failed", slog.String(shell.LogAttrError, err.Error()))
		middleware.WriteError(w, http.StatusInternalServerError, "internal", internalErrorMessage)

		return
	}

	station, found := listing.Find(chi.URLParam(r, "id"))
	if !found {
		middleware.WriteError(w, http.StatusNotFound, "not_found", "Station not found.")
		return
	}

	writeJSON(w, http.StatusOK, station)
}

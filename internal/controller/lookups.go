package controller

import (
	"net/http"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
)

type createLookupRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type updateLookupRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Active *bool   `json:"active"`
}

func (i *implementation) createLookup(kind entity.LookupKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer observe(log.CreateLookup, time.Now())

		var req createLookupRequest
		if err := decode(w, r, &req); err != nil {
			i.rejectRequest(w, r, log.CreateLookup, err)
			return
		}

		lookup, err := i.lookupUseCase.CreateLookup(r.Context(), kind, req.Name)
		i.respond(w, r, http.StatusCreated, lookup, err)
	}
}

func (i *implementation) getLookup(kind entity.LookupKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer observe(log.GetLookup, time.Now())

		id, err := pathID(r)
		if err != nil {
			i.rejectRequest(w, r, log.GetLookup, err)
			return
		}

		lookup, err := i.lookupUseCase.GetLookup(r.Context(), kind, id)
		i.respond(w, r, http.StatusOK, lookup, err)
	}
}

func (i *implementation) updateLookup(kind entity.LookupKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer observe(log.UpdateLookup, time.Now())

		id, err := pathID(r)
		if err != nil {
			i.rejectRequest(w, r, log.UpdateLookup, err)
			return
		}
		var req updateLookupRequest
		if err = decode(w, r, &req); err != nil {
			i.rejectRequest(w, r, log.UpdateLookup, err)
			return
		}

		lookup, err := i.lookupUseCase.UpdateLookup(r.Context(), kind, id, entity.LookupInput{
			Name:   req.Name,
			Active: req.Active,
		})
		i.respond(w, r, http.StatusOK, lookup, err)
	}
}

func (i *implementation) deactivateLookup(kind entity.LookupKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer observe(log.DeactivateLookup, time.Now())

		id, err := pathID(r)
		if err != nil {
			i.rejectRequest(w, r, log.DeactivateLookup, err)
			return
		}

		lookup, err := i.lookupUseCase.DeactivateLookup(r.Context(), kind, id)
		i.respond(w, r, http.StatusOK, lookup, err)
	}
}

func (i *implementation) restoreLookup(kind entity.LookupKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer observe(log.RestoreLookup, time.Now())

		id, err := pathID(r)
		if err != nil {
			i.rejectRequest(w, r, log.RestoreLookup, err)
			return
		}

		lookup, err := i.lookupUseCase.RestoreLookup(r.Context(), kind, id)
		i.respond(w, r, http.StatusOK, lookup, err)
	}
}

func (i *implementation) listLookups(kind entity.LookupKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer observe(log.ListLookups, time.Now())

		params, err := lookupParams.parse(r)
		if err != nil {
			i.rejectRequest(w, r, log.ListLookups, err)
			return
		}

		page, err := i.lookupUseCase.ListLookups(r.Context(), kind, params)
		i.respond(w, r, http.StatusOK, page, err)
	}
}

package controller

import (
	"net/http"
	"time"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
)

type userRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN CLIENT"`
	Active   *bool   `json:"active"`
}

func (u userRequest) input() entity.UserInput {
	in := entity.UserInput{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Active:   u.Active,
	}
	if u.Role != nil {
		role := entity.Role(*u.Role)
		in.Role = &role
	}
	return in
}

func (i *implementation) CreateUser(w http.ResponseWriter, r *http.Request) {
	defer observe(log.CreateUser, time.Now())

	var req userRequest
	if err := decode(w, r, &req); err != nil {
		i.rejectRequest(w, r, log.CreateUser, err)
		return
	}

	user, err := i.usersUseCase.CreateUser(r.Context(), req.input())
	i.respond(w, r, http.StatusCreated, user, err)
}

func (i *implementation) GetUser(w http.ResponseWriter, r *http.Request) {
	defer observe(log.GetUser, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.GetUser, err)
		return
	}

	user, err := i.usersUseCase.GetUser(r.Context(), id)
	i.respond(w, r, http.StatusOK, user, err)
}

func (i *implementation) UpdateUser(w http.ResponseWriter, r *http.Request) {
	defer observe(log.UpdateUser, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.UpdateUser, err)
		return
	}
	var req userRequest
	if err = decode(w, r, &req); err != nil {
		i.rejectRequest(w, r, log.UpdateUser, err)
		return
	}

	user, err := i.usersUseCase.UpdateUser(r.Context(), id, req.input())
	i.respond(w, r, http.StatusOK, user, err)
}

func (i *implementation) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	defer observe(log.DeactivateUser, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.DeactivateUser, err)
		return
	}

	user, err := i.usersUseCase.DeactivateUser(r.Context(), id)
	i.respond(w, r, http.StatusOK, user, err)
}

func (i *implementation) RestoreUser(w http.ResponseWriter, r *http.Request) {
	defer observe(log.RestoreUser, time.Now())

	id, err := pathID(r)
	if err != nil {
		i.rejectRequest(w, r, log.RestoreUser, err)
		return
	}

	user, err := i.usersUseCase.RestoreUser(r.Context(), id)
	i.respond(w, r, http.StatusOK, user, err)
}

func (i *implementation) ListUsers(w http.ResponseWriter, r *http.Request) {
	defer observe(log.ListUsers, time.Now())

	params, err := userParams.parse(r)
	if err != nil {
		i.rejectRequest(w, r, log.ListUsers, err)
		return
	}

	page, err := i.usersUseCase.ListUsers(r.Context(), params)
	i.respond(w, r, http.StatusOK, page, err)
}

package routes

import (
	"smartsquare-server/auth"
	"smartsquare-server/services"
)

// Handler serves the REST API on top of the services.
type Handler struct {
	svc    *services.Services
	issuer *auth.Issuer
}

func NewHandler(svc *services.Services, issuer *auth.Issuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

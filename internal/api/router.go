package api

import (
	"github.com/julienschmidt/httprouter"

	"reservio/pkg/contracts"
)

// Router fans RegisterRoutes out to every domain handler so the app
// shell sees one handler.
type Router struct {
	handlers []contracts.Handler
}

func NewRouter(handlers ...contracts.Handler) *Router {
	return &Router{handlers: handlers}
}

func (r *Router) RegisterRoutes(router *httprouter.Router) {
	for _, h := range r.handlers {
		h.RegisterRoutes(router)
	}
}

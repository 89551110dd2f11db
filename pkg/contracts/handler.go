package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every HTTP surface mounted by app.SetApp, such
// as the rental workflow and depot availability.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}

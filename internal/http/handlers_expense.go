package http

import (
	"net/http"
	"strconv"

	"expenses/internal/core"
	applog "expenses/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	NewJSONResponse().Data(items).Send(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Send(w)
		return
	}

	e, err := s.ledger.Create(r.Context(), p.ExpenseInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context()).WithComponent(applog.ComponentLedger)).
		LogExpenseCreated(r.Context(), e)

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/"+strconv.FormatInt(e.ID, 10)).
		Data(map[string]int64{"id": e.ID}).
		Send(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		BadRequestError(err.Error()).Send(w)
		return
	}

	e, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(e).Send(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		BadRequestError(err.Error()).Send(w)
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Send(w)
}

// handleDeleteSelected deletes every ?id= value. No ids is a "no expense
// selected" error.
func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	ids, err := parseSelectedIDs(r.URL.Query()["id"])
	if err != nil {
		BadRequestError(err.Error()).Send(w)
		return
	}

	if err := s.ledger.Delete(r.Context(), ids...); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Send(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	NewJSONResponse().Data(cats).Send(w)
}

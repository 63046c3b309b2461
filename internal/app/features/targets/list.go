package targets

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	targetstore "github.com/dalemusser/collabhub/internal/app/store/targets"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/paging"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
)

// ServeList handles GET /?recruiting=true&after=CURSOR&limit=N.
// The next page's cursor, if any, is returned in the X-Next-Cursor header.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := targetstore.ListQuery{
		After: r.URL.Query().Get("after"),
		Limit: paging.ParseLimit(r),
	}
	if v := r.URL.Query().Get("recruiting"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonresp.BadRequest(w, "recruiting must be true or false.")
			return
		}
		q.RecruitingOnly = b
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, next, err := h.Store.List(ctx, q)
	if errors.Is(err, paging.ErrBadCursor) {
		jsonresp.BadRequest(w, "Invalid page cursor.")
		return
	}
	if err != nil {
		jsonresp.ServerError(w, h.Log, "list "+string(h.Kind), err)
		return
	}
	if next != "" {
		w.Header().Set(paging.NextCursorHeader, next)
	}
	jsonresp.OK(w, list)
}

package adapter

import (
	"encoding/json"
	"net/http"

	"github.com/vango-dev/ssg/pkg/routes"
)

// DataParam is the query parameter naming the route whose loader payload
// is requested.
const DataParam = "_data"

// IsLoaderRequest reports whether r asks for a loader payload.
func IsLoaderRequest(r *http.Request) bool {
	return r.URL.Query().Has(DataParam)
}

// handleLoader serves the loader sub-protocol for router adapters.
func handleLoader(c *Context, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get(DataParam)

	route, err := routes.Find(ctx, c.Routes, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if route == nil {
		http.Error(w, "Route not found: "+id, http.StatusNotFound)
		return
	}
	if route.Loader == nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("There is no loader for the route: " + id))
		return
	}

	req := stripLoaderParams(r)
	params := map[string]string{}
	if matches, err := routes.MatchPath(ctx, c.Routes, req.URL.Path, c.basename()); err == nil {
		for _, m := range matches {
			if m.Route.ID == id {
				params = m.Params
				break
			}
		}
	}

	v, err := route.Loader(ctx, routes.LoaderArgs{Request: req, Params: params})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if resp, ok := v.(*routes.Response); ok {
		resp.WriteTo(w)
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// stripLoaderParams removes the data marker and an empty index flag.
func stripLoaderParams(r *http.Request) *http.Request {
	q := r.URL.Query()
	q.Del(DataParam)
	if q.Has("index") && q.Get("index") == "" {
		q.Del("index")
	}
	out := r.Clone(r.Context())
	out.URL.RawQuery = q.Encode()
	out.RequestURI = ""
	return out
}

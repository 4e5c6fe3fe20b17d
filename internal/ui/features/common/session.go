package common

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

const sessionName = "chartsmith"

// ErrNoDataset is returned when no dataset can be resolved for a request.
var ErrNoDataset = errors.New("no dataset loaded")

// ActiveDatasetID returns the dataset id stored in the request's session.
func ActiveDatasetID(store sessions.Store, r *http.Request) string {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	id, _ := session.Values["dataset_id"].(string)
	return id
}

// SetActiveDataset records the dataset id in the session cookie.
func SetActiveDataset(store sessions.Store, w http.ResponseWriter, r *http.Request, id string) {
	session, err := store.Get(r, sessionName)
	if err != nil {
		// A stale or tampered cookie still yields a usable new session.
		session, _ = store.New(r, sessionName)
	}
	if session == nil {
		return
	}
	session.Values["dataset_id"] = id
	_ = session.Save(r, w)
}

// ResolveDataset picks the dataset a request operates on: an explicit
// ?dataset= query parameter wins, then the session's active dataset, then
// the most recently loaded entry.
func ResolveDataset(reg *registry.Registry, store sessions.Store, r *http.Request) (*registry.Entry, error) {
	if id := r.URL.Query().Get("dataset"); id != "" {
		if e, ok := reg.Get(id); ok {
			return e, nil
		}
		return nil, ErrNoDataset
	}
	if id := ActiveDatasetID(store, r); id != "" {
		if e, ok := reg.Get(id); ok {
			return e, nil
		}
	}
	if e, ok := reg.Latest(); ok {
		return e, nil
	}
	return nil, ErrNoDataset
}

package web

import (
	"net/http"
	"strconv"
)

type RequestContext struct {
	IsHTMX     bool   // HX-Request header present
	CurrentURL string // HX-Current-URL - where the user is
	TriggerID  string // HX-Trigger - what element initiated this
	TargetID   string // HX-Target - where response will land
	Boosted    bool   // HX-Boosted - was this a boosted link/form?
	// Live is set when a form post redirects back to a list page; the page
	// then renders the view that served the post instead of refetching.
	Live bool
}

func parseRequestContext(r *http.Request) RequestContext {
	return RequestContext{
		IsHTMX:     r.Header.Get("HX-Request") == "true",
		CurrentURL: r.Header.Get("HX-Current-URL"),
		TriggerID:  r.Header.Get("HX-Trigger"),
		TargetID:   r.Header.Get("HX-Target"),
		Boosted:    r.Header.Get("HX-Boosted") == "true",
		Live:       r.URL.Query().Get("live") == "1",
	}
}

// formInt reads a positive integer form field.
func formInt(r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(r.FormValue(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

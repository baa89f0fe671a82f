package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hazyhaar/provider-directory/pkg/directory"
	"github.com/hazyhaar/provider-directory/pkg/kit"
	"github.com/hazyhaar/provider-directory/pkg/validation"
)

// Shared request/response types used by both HTTP and MCP transports.

// SearchRequest is a directory query as received from a client.
type SearchRequest struct {
	Query       string   `json:"q" validate:"max=200"`
	Specialties []string `json:"specialties" validate:"max=50,dive,min=1,max=200"`
	States      []string `json:"states" validate:"max=60,dive,len=2"`
	Location    string   `json:"location" validate:"max=200"`
	Lat         *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	Radius      float64  `json:"radius" validate:"gte=0,lte=500"`
	Page        int      `json:"page" validate:"gte=0"`
}

var errHalfCentre = errors.New("lat and lon must be given together")

// toQuery validates r and converts it.
func (r *SearchRequest) toQuery(v *validation.Validator) (directory.Query, error) {
	if err := v.Struct(r); err != nil {
		return directory.Query{}, err
	}
	q := directory.Query{
		Text:        r.Query,
		Specialties: r.Specialties,
		States:      r.States,
		Location:    r.Location,
		RadiusMiles: r.Radius,
		Page:        r.Page,
	}
	switch {
	case r.Lat != nil && r.Lon != nil:
		q.Center = &directory.Point{Lat: *r.Lat, Lon: *r.Lon}
	case r.Lat != nil || r.Lon != nil:
		return directory.Query{}, errHalfCentre
	}
	return q, nil
}

type facetsResponse struct {
	directory.Facets
	Providers int `json:"providers"`
}

// Endpoints are the directory actions, shared by HTTP and MCP.
type Endpoints struct {
	Search   kit.Endpoint
	Adequacy kit.Endpoint
	Facets   kit.Endpoint
}

// MakeEndpoints builds the endpoints over reg. obs may be nil.
func MakeEndpoints(reg *directory.Registry, logger *slog.Logger, obs kit.Observer) Endpoints {
	v := validation.New()
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		mw := kit.Logging(logger, name)
		if obs != nil {
			mw = kit.Chain(mw, kit.Instrument(obs, name))
		}
		return mw(ep)
	}
	return Endpoints{
		Search:   wrap("search_providers", searchEndpoint(reg, v)),
		Adequacy: wrap("network_adequacy", adequacyEndpoint(reg, v)),
		Facets:   wrap("list_facets", facetsEndpoint(reg)),
	}
}

func searchEndpoint(reg *directory.Registry, v *validation.Validator) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		q, err := request.(*SearchRequest).toQuery(v)
		if err != nil {
			return nil, err
		}
		return reg.Directory().Search(q), nil
	}
}

func adequacyEndpoint(reg *directory.Registry, v *validation.Validator) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		q, err := request.(*SearchRequest).toQuery(v)
		if err != nil {
			return nil, err
		}
		return reg.Directory().Adequacy(q), nil
	}
}

func facetsEndpoint(reg *directory.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		d := reg.Directory()
		return facetsResponse{Facets: d.Facets(), Providers: d.Len()}, nil
	}
}

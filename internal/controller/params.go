package controller

import (
	"net/http"
	"strconv"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/query"
)

type paramParser func(raw string) (any, error)

func intParam(raw string) (any, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func stringParam(raw string) (any, error) {
	return raw, nil
}

// listParams describes the query string a list endpoint understands
// beyond search, active, page, limit, sort and desc.
type listParams struct {
	filters map[string]paramParser
	flags   []string
}

var (
	lookupParams = listParams{}
	bookParams   = listParams{
		filters: map[string]paramParser{
			"authorId":    intParam,
			"publisherId": intParam,
			"categoryId":  intParam,
		},
	}
	userParams = listParams{
		filters: map[string]paramParser{"role": stringParam},
	}
	loanParams = listParams{
		filters: map[string]paramParser{
			"userId": intParam,
			"bookId": intParam,
		},
		flags: []string{"returned", "overdue"},
	}
)

func (lp listParams) parse(r *http.Request) (query.Params, error) {
	values := r.URL.Query()
	params := query.Params{
		Search: values.Get("search"),
		Sort:   values.Get("sort"),
	}

	var err error
	if params.Active, err = optionalBool(values.Get("active"), "active"); err != nil {
		return query.Params{}, err
	}
	if params.Page, err = optionalInt(values.Get("page"), "page"); err != nil {
		return query.Params{}, err
	}
	if params.Limit, err = optionalInt(values.Get("limit"), "limit"); err != nil {
		return query.Params{}, err
	}
	desc, err := optionalBool(values.Get("desc"), "desc")
	if err != nil {
		return query.Params{}, err
	}
	params.Desc = desc != nil && *desc

	for name, parse := range lp.filters {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		v, err := parse(raw)
		if err != nil {
			return query.Params{}, entity.Invalidf("bad %s %q", name, raw)
		}
		if params.Filters == nil {
			params.Filters = make(map[string]any, len(lp.filters))
		}
		params.Filters[name] = v
	}

	for _, name := range lp.flags {
		flag, err := optionalBool(values.Get(name), name)
		if err != nil {
			return query.Params{}, err
		}
		if flag == nil {
			continue
		}
		if params.Flags == nil {
			params.Flags = make(map[string]bool, len(lp.flags))
		}
		params.Flags[name] = *flag
	}

	return params, nil
}

func optionalBool(raw, name string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, entity.Invalidf("bad %s %q", name, raw)
	}
	return &v, nil
}

func optionalInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, entity.Invalidf("bad %s %q", name, raw)
	}
	return &v, nil
}

package impl

import (
	"taskhub/config"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/listing"
	"taskhub/internal/errors"
	"taskhub/internal/usecase"
)

// pager turns 1-based page requests into engine pages.
type pager struct {
	defaultSize int
	maxSize     int
}

func newPager(cfg *config.Config) pager {
	p := pager{defaultSize: 5, maxSize: 100}
	if cfg != nil && cfg.Pagination != nil {
		if cfg.Pagination.DefaultSize > 0 {
			p.defaultSize = cfg.Pagination.DefaultSize
		}
		if cfg.Pagination.MaxSize > 0 {
			p.maxSize = cfg.Pagination.MaxSize
		}
	}

	return p
}

// resolve validates req and returns the engine query parts plus the echo
// of what was applied. limit 0 is a valid, empty page.
func (p pager) resolve(req usecase.PageRequest, sortFields []string) (listing.Page, listing.Sort, usecase.PageInfo, error) {
	page := 1
	if req.Page != nil {
		page = *req.Page
	}
	if page < 1 {
		return listing.Page{}, listing.Sort{}, usecase.PageInfo{},
			domainerrors.ErrInvalidQuery.WithDetails("page must be at least 1")
	}

	limit := p.defaultSize
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit < 0 {
		return listing.Page{}, listing.Sort{}, usecase.PageInfo{},
			domainerrors.ErrInvalidQuery.WithDetails("limit must not be negative")
	}
	limit = min(limit, p.maxSize)

	sort, err := listing.ParseSort(req.Sort, sortFields...)
	if err != nil {
		return listing.Page{}, listing.Sort{}, usecase.PageInfo{},
			errors.Wrap(domainerrors.ErrInvalidQuery.WithDetails(err.Error()), "parse sort")
	}

	return listing.Page{Offset: page - 1, Size: limit}, sort, usecase.PageInfo{
		Page:  page,
		Limit: limit,
		Sort:  sort.String(),
	}, nil
}

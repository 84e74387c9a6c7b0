// internal/catalog/catalog.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/observer"
	"github.com/vibing/vibing-client/internal/utils"
)

const DefaultItemsPerPage = 12

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer selection was requested before it completed.
var ErrSuperseded = errors.New("listing request superseded by a newer selection")

// Selection is the filter, sort and page state of the listing.
type Selection struct {
	Category     string
	Search       string
	PriceFilter  string
	Sort         string
	Page         int
	ItemsPerPage int
}

func DefaultSelection() Selection {
	return Selection{
		Category:     "all",
		PriceFilter:  "all",
		Sort:         "newest",
		Page:         1,
		ItemsPerPage: DefaultItemsPerPage,
	}
}

// Query converts the selection into API query parameters.
func (s Selection) Query() models.ProductQuery {
	q := models.ProductQuery{
		Category: s.Category,
		Search:   strings.TrimSpace(s.Search),
		SortBy:   s.Sort,
		Page:     s.Page,
		Limit:    s.ItemsPerPage,
	}
	if pf, ok := findPriceFilter(s.PriceFilter); ok {
		q.MinPrice = pf.Min
		q.MaxPrice = pf.Max
	}
	return q
}

// Key identifies the selection for the listing cache.
func (s Selection) Key() string {
	v := api.EncodeProductQuery(s.Query())
	if v.Get("page") == "" {
		v.Set("page", strconv.Itoa(s.Page))
	}
	return v.Encode()
}

func (s Selection) validate() error {
	if !validCategory(s.Category) {
		return utils.NewValidationError("category", "product_category", fmt.Sprintf("unknown category %q", s.Category))
	}
	if !validSort(s.Sort) {
		return utils.NewValidationError("sort", "oneof", fmt.Sprintf("unknown sort option %q", s.Sort))
	}
	if _, ok := findPriceFilter(s.PriceFilter); !ok {
		return utils.NewValidationError("priceFilter", "oneof", fmt.Sprintf("unknown price filter %q", s.PriceFilter))
	}
	if s.Page < 1 {
		return utils.NewValidationError("page", "min", "page must be at least 1")
	}
	return nil
}

type State struct {
	Selection  Selection
	Products   []models.Product
	Pagination models.Pagination
	Loading    bool
	Err        string
	// FromCache is set when the products come from the local cache after a
	// failed fetch.
	FromCache bool
	FetchedAt time.Time
}

type ProductsAPI interface {
	List(ctx context.Context, q models.ProductQuery) (*models.ProductList, error)
	ToggleLike(ctx context.Context, id string) (*models.LikeResponse, error)
}

type ListingCache interface {
	CacheListing(ctx context.Context, selectionKey string, list *models.ProductList) error
	CachedListing(ctx context.Context, selectionKey string) (*models.ProductList, time.Time, bool, error)
}

// Catalog holds the product listing for the current selection. Every change
// of selection issues one fetch; only the newest fetch may update state.
type Catalog struct {
	api   ProductsAPI
	cache ListingCache
	log   *logrus.Entry

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc

	subject observer.Subject[State]
}

// New creates a catalog. cache may be nil.
func New(products ProductsAPI, cache ListingCache) *Catalog {
	return &Catalog{
		api:   products,
		cache: cache,
		log:   logrus.WithField("component", "catalog"),
		state: State{Selection: DefaultSelection()},
	}
}

func (c *Catalog) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Catalog) snapshot() State {
	st := c.state
	st.Products = append([]models.Product(nil), c.state.Products...)
	return st
}

func (c *Catalog) Subscribe(fn func(State)) func() {
	return c.subject.Subscribe(fn)
}

// Load fetches the current selection.
func (c *Catalog) Load(ctx context.Context) error {
	return c.fetch(ctx, nil)
}

// Update applies several selection changes and issues a single fetch with
// the page reset to 1.
func (c *Catalog) Update(ctx context.Context, change func(*Selection)) error {
	return c.fetch(ctx, func(s *Selection) {
		change(s)
		s.Page = 1
	})
}

func (c *Catalog) SetCategory(ctx context.Context, category string) error {
	return c.Update(ctx, func(s *Selection) { s.Category = category })
}

func (c *Catalog) SetSearch(ctx context.Context, query string) error {
	return c.Update(ctx, func(s *Selection) { s.Search = query })
}

func (c *Catalog) SetPriceFilter(ctx context.Context, filter string) error {
	return c.Update(ctx, func(s *Selection) { s.PriceFilter = filter })
}

func (c *Catalog) SetSort(ctx context.Context, sort string) error {
	return c.Update(ctx, func(s *Selection) { s.Sort = sort })
}

// SetPage moves to page without touching the filters.
func (c *Catalog) SetPage(ctx context.Context, page int) error {
	return c.fetch(ctx, func(s *Selection) { s.Page = page })
}

// Select replaces the whole selection, page included, with one fetch.
func (c *Catalog) Select(ctx context.Context, sel Selection) error {
	if sel.ItemsPerPage < 1 {
		sel.ItemsPerPage = DefaultItemsPerPage
	}
	return c.fetch(ctx, func(s *Selection) { *s = sel })
}

func (c *Catalog) fetch(parent context.Context, change func(*Selection)) error {
	c.mu.Lock()
	sel := c.state.Selection
	if change != nil {
		change(&sel)
	}
	if err := sel.validate(); err != nil {
		c.mu.Unlock()
		return err
	}

	// Supersede whatever is still in flight.
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel

	c.state.Selection = sel
	c.state.Loading = true
	c.state.Err = ""
	snap := c.snapshot()
	c.mu.Unlock()
	c.subject.Publish(snap)

	list, err := c.api.List(ctx, sel.Query())
	cancel()

	var cached *models.ProductList
	var cachedAt time.Time
	if err != nil && c.cache != nil && parent.Err() == nil {
		if l, at, ok, cerr := c.cache.CachedListing(parent, sel.Key()); cerr == nil && ok {
			cached, cachedAt = l, at
		}
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.WithField("selection", sel.Key()).Debug("Discarding superseded listing response")
		return ErrSuperseded
	}
	c.cancel = nil
	c.state.Loading = false

	if err != nil {
		c.state.Err = api.Message(err)
		if cached != nil {
			c.state.Products = cached.Products
			c.state.Pagination = cached.Pagination
			c.state.FromCache = true
			c.state.FetchedAt = cachedAt
		} else {
			// Results of the previous selection must not show under the new one.
			c.state.Products = nil
			c.state.Pagination = models.Pagination{}
			c.state.FromCache = false
			c.state.FetchedAt = time.Time{}
		}
		snap = c.snapshot()
		c.mu.Unlock()
		c.subject.Publish(snap)
		return fmt.Errorf("failed to load products: %w", err)
	}

	c.state.Products = list.Products
	c.state.Pagination = list.Pagination
	c.state.FromCache = false
	c.state.FetchedAt = time.Now()
	snap = c.snapshot()
	c.mu.Unlock()
	c.subject.Publish(snap)

	if c.cache != nil {
		if err := c.cache.CacheListing(parent, sel.Key(), list); err != nil {
			c.log.WithError(err).Warn("Failed to cache listing")
		}
	}
	return nil
}

// ToggleLike flips the like flag of a listed product on the server.
func (c *Catalog) ToggleLike(ctx context.Context, productID string) (*models.LikeResponse, error) {
	return c.api.ToggleLike(ctx, productID)
}

// FilterURL renders the selection as a storefront URL query, for sharing.
func (c *Catalog) FilterURL(base string) string {
	sel := c.State().Selection
	v := url.Values{}
	if sel.Category != "all" {
		v.Set("category", sel.Category)
	}
	if sel.Search != "" {
		v.Set("search", sel.Search)
	}
	if sel.PriceFilter != "all" {
		v.Set("price", sel.PriceFilter)
	}
	if sel.Sort != "newest" {
		v.Set("sort", sel.Sort)
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

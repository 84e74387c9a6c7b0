// internal/purchase/purchase.go
package purchase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/observer"
	"github.com/vibing/vibing-client/internal/payment"
	"github.com/vibing/vibing-client/internal/session"
	"github.com/vibing/vibing-client/internal/utils"
)

var (
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrNotVerified        = errors.New("payment could not be verified")
	ErrDisputeNotAllowed  = errors.New("a dispute can no longer be requested for this purchase")
	ErrNoDownload         = errors.New("no download is available for this purchase")
)

var SortOptions = []string{"newest", "oldest", "price-high", "price-low", "product-name"}

type PurchaseAPI interface {
	History(ctx context.Context, page, limit int) (*models.PurchaseHistory, error)
	DownloadURL(ctx context.Context, purchaseID string) (*models.DownloadInfo, error)
	GenerateLicense(ctx context.Context, purchaseID string) (*models.LicenseInfo, error)
	Stats(ctx context.Context) (*models.PurchaseStats, error)
	CheckStatus(ctx context.Context, productID string) (*models.PurchaseCheck, error)
	RequestDispute(ctx context.Context, purchaseID, reason string) error
}

type PaymentVerifier interface {
	Verify(ctx context.Context, paymentID string, p api.VerifyParams) (*models.PaymentVerification, error)
}

type SessionState interface {
	State() session.State
}

// ArchiveSaver stores a download URL's content under a name.
type ArchiveSaver interface {
	Save(ctx context.Context, rawURL, name string) (string, error)
}

type Checkout struct {
	Processing bool
	Purchased  bool
	ProductID  string
	PaymentID  string
	Amount     int64
	Purchase   *models.VerifiedPurchase
	Err        string
}

type State struct {
	Checkout     Checkout
	History      []models.Purchase
	Pagination   models.Pagination
	StatusFilter string
	SortBy       string
	Loading      bool
	Err          string
}

// Filtered applies the status filter and sort order to the loaded history.
func (s State) Filtered() []models.Purchase {
	out := make([]models.Purchase, 0, len(s.History))
	for _, p := range s.History {
		if s.StatusFilter == "all" || s.StatusFilter == "" || string(p.Status) == s.StatusFilter {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch s.SortBy {
		case "oldest":
			return a.PurchaseDate.Before(b.PurchaseDate)
		case "price-high":
			return a.Price > b.Price
		case "price-low":
			return a.Price < b.Price
		case "product-name":
			return strings.ToLower(a.Product.Title) < strings.ToLower(b.Product.Title)
		default:
			return a.PurchaseDate.After(b.PurchaseDate)
		}
	})
	return out
}

// Store runs checkout and keeps the purchase history.
type Store struct {
	api      PurchaseAPI
	verifier PaymentVerifier
	provider payment.Provider
	session  SessionState
	archive  ArchiveSaver
	pricing  Pricing
	currency string
	log      *logrus.Entry

	mu    sync.Mutex
	state State

	subject observer.Subject[State]
}

type Options struct {
	Provider payment.Provider
	Pricing  Pricing
	Currency string
	Archive  ArchiveSaver
}

func NewStore(purchases PurchaseAPI, verifier PaymentVerifier, sess SessionState, opts Options) *Store {
	currency := opts.Currency
	if currency == "" {
		currency = "KRW"
	}
	return &Store{
		api:      purchases,
		verifier: verifier,
		provider: opts.Provider,
		session:  sess,
		archive:  opts.Archive,
		pricing:  opts.Pricing,
		currency: currency,
		log:      logrus.WithField("component", "purchase"),
		state:    State{StatusFilter: "all", SortBy: "newest"},
	}
}

func (s *Store) Subscribe(fn func(State)) func() {
	return s.subject.Subscribe(fn)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	st := s.state
	st.History = append([]models.Purchase(nil), s.state.History...)
	return st
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshot()
	s.mu.Unlock()
	s.subject.Publish(snap)
}

// Quote is the KRW amount charged for product.
func (s *Store) Quote(product models.Product) int64 {
	return s.pricing.CalculateTotal(product.Price)
}

// Checkout collects the payment for product through the provider, then
// verifies it with the API. email defaults to the signed-in user's.
func (s *Store) Checkout(ctx context.Context, product models.Product, email string) (*models.VerifiedPurchase, error) {
	sess := s.session.State()
	if !sess.IsAuthenticated() {
		return nil, api.ErrAuthRequired
	}
	if email == "" {
		email = sess.User.Email
	}
	if s.provider == nil {
		return nil, errors.New("no payment provider configured")
	}

	amount := s.Quote(product)
	req := payment.NewRequest(product.Title, product.ID, amount, email, s.currency, time.Now())
	req.CustomerName = sess.User.Name

	s.mu.Lock()
	if s.state.Checkout.Processing {
		s.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	s.state.Checkout = Checkout{Processing: true, ProductID: product.ID, PaymentID: req.PaymentID, Amount: amount}
	snap := s.snapshot()
	s.mu.Unlock()
	s.subject.Publish(snap)

	log := s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"payment_id": req.PaymentID,
		"provider":   s.provider.Name(),
	})
	log.Info("Starting checkout")

	res, err := s.provider.RequestPayment(ctx, req)
	if err != nil {
		log.WithError(err).Warn("Payment failed")
		s.failCheckout(err)
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	verification, err := s.verifier.Verify(ctx, res.PaymentID, api.VerifyParams{
		OrderName:     req.OrderName,
		Amount:        res.Amount,
		CustomerEmail: email,
	})
	if err == nil && !verification.Verified {
		err = ErrNotVerified
	}
	if err != nil {
		log.WithError(err).Warn("Payment verification failed")
		s.failCheckout(err)
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}

	s.update(func(st *State) {
		st.Checkout.Processing = false
		st.Checkout.Purchased = true
		st.Checkout.PaymentID = res.PaymentID
		st.Checkout.Purchase = verification.Purchase
	})
	log.Info("Purchase completed")

	if err := s.LoadHistory(ctx, 1); err != nil {
		log.WithError(err).Warn("Failed to refresh purchase history")
	}
	return verification.Purchase, nil
}

func (s *Store) failCheckout(err error) {
	s.update(func(st *State) {
		st.Checkout.Processing = false
		st.Checkout.Err = api.Message(err)
	})
}

// Reset clears the checkout state.
func (s *Store) Reset() {
	s.update(func(st *State) {
		st.Checkout = Checkout{}
	})
}

// Clear drops everything held for the current user.
func (s *Store) Clear() {
	s.update(func(st *State) {
		*st = State{StatusFilter: st.StatusFilter, SortBy: st.SortBy}
	})
}

func (s *Store) LoadHistory(ctx context.Context, page int) error {
	s.update(func(st *State) { st.Loading = true })

	history, err := s.api.History(ctx, page, 0)
	if err != nil {
		s.update(func(st *State) {
			st.Loading = false
			st.Err = api.Message(err)
		})
		return fmt.Errorf("failed to load purchase history: %w", err)
	}

	s.update(func(st *State) {
		st.Loading = false
		st.Err = ""
		st.History = history.Purchases
		st.Pagination = history.Pagination
	})
	return nil
}

func (s *Store) SetStatusFilter(status string) error {
	if !validStatusFilter(status) {
		return utils.NewValidationError("status", "oneof", fmt.Sprintf("unknown status %q", status))
	}
	s.update(func(st *State) { st.StatusFilter = status })
	return nil
}

func (s *Store) SetSortBy(sortBy string) error {
	for _, opt := range SortOptions {
		if opt == sortBy {
			s.update(func(st *State) { st.SortBy = sortBy })
			return nil
		}
	}
	return utils.NewValidationError("sortBy", "oneof", fmt.Sprintf("unknown sort option %q", sortBy))
}

func (s *Store) cached(id string) (models.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.History {
		if p.ID == id {
			return p, true
		}
	}
	return models.Purchase{}, false
}

// RequestDispute files a dispute on a purchase and refreshes the history.
func (s *Store) RequestDispute(ctx context.Context, purchaseID, reason string) error {
	reason = strings.TrimSpace(reason)
	if err := utils.ValidateStruct(models.DisputeRequest{Reason: reason}); err != nil {
		return err
	}
	if p, ok := s.cached(purchaseID); ok && !p.CanRequestDispute {
		return ErrDisputeNotAllowed
	}

	if err := s.api.RequestDispute(ctx, purchaseID, reason); err != nil {
		return fmt.Errorf("failed to request dispute: %w", err)
	}
	s.log.WithField("purchase_id", purchaseID).Info("Dispute requested")

	page := s.State().Pagination.CurrentPage
	if page < 1 {
		page = 1
	}
	if err := s.LoadHistory(ctx, page); err != nil {
		s.log.WithError(err).Warn("Failed to refresh purchase history")
	}
	return nil
}

// Download fetches a fresh download link for the purchase and stores the
// file in the archive sink.
func (s *Store) Download(ctx context.Context, purchaseID string) (string, error) {
	if s.archive == nil {
		return "", errors.New("no archive sink configured")
	}
	info, err := s.api.DownloadURL(ctx, purchaseID)
	if err != nil {
		return "", fmt.Errorf("failed to get download URL: %w", err)
	}
	if info.DownloadURL == "" {
		return "", ErrNoDownload
	}

	name := purchaseID + ".zip"
	if p, ok := s.cached(purchaseID); ok && p.Product.Title != "" {
		name = archiveName(p.Product.Title)
	}
	return s.archive.Save(ctx, info.DownloadURL, name)
}

func archiveName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "download.zip"
	}
	return b.String() + ".zip"
}

func (s *Store) GenerateLicense(ctx context.Context, purchaseID string) (*models.LicenseInfo, error) {
	info, err := s.api.GenerateLicense(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate license: %w", err)
	}
	return info, nil
}

func (s *Store) Stats(ctx context.Context) (*models.PurchaseStats, error) {
	return s.api.Stats(ctx)
}

// CheckStatus reports whether the signed-in user owns productID.
func (s *Store) CheckStatus(ctx context.Context, productID string) (*models.PurchaseCheck, error) {
	return s.api.CheckStatus(ctx, productID)
}

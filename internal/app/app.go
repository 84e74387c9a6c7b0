// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/admin"
	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/archive"
	"github.com/vibing/vibing-client/internal/catalog"
	"github.com/vibing/vibing-client/internal/chat"
	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/payment"
	"github.com/vibing/vibing-client/internal/purchase"
	"github.com/vibing/vibing-client/internal/review"
	"github.com/vibing/vibing-client/internal/router"
	"github.com/vibing/vibing-client/internal/seller"
	"github.com/vibing/vibing-client/internal/session"
	"github.com/vibing/vibing-client/internal/store"
	"github.com/vibing/vibing-client/internal/upload"
	"github.com/vibing/vibing-client/internal/verification"
)

const listingCacheMaxAge = 7 * 24 * time.Hour

// App owns every store of the client and the wiring between them.
type App struct {
	Config       *config.Config
	Translator   *i18n.I18n
	Client       *api.Client
	Store        *store.Store
	Session      *session.Session
	Verification *verification.Flow
	Catalog      *catalog.Catalog
	Chat         *chat.Chat
	Purchases    *purchase.Store
	Reviews      *review.Reviews
	Seller       *seller.Seller
	Admin        *admin.Admin
	Uploads      *upload.Uploader
	Payments     *payment.Hub
	Callback     *router.Server

	notify func(string)
	log    *logrus.Entry

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	signal      chan struct{}
	watchDone   chan struct{}
	closeOnce   sync.Once

	mu         sync.Mutex
	latest     session.State
	lastStatus session.Status
	lastUserID string
	// seenUserID is the user of the latest published state; userLeft records
	// that a signed-in user went away since watchSession last ran.
	seenUserID string
	userLeft   bool
}

type options struct {
	httpClient *http.Client
	opener     payment.Opener
	notify     func(string)
}

type Option func(*options)

// WithHTTPClient replaces the API client's transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithOpener sets how the checkout page is shown to the user.
func WithOpener(open payment.Opener) Option {
	return func(o *options) { o.opener = open }
}

// WithNotifier receives user-facing notices such as session expiry.
func WithNotifier(fn func(string)) Option {
	return func(o *options) { o.notify = fn }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{
		notify: func(msg string) { logrus.Warn(msg) },
	}
	for _, opt := range opts {
		opt(&o)
	}

	tr, err := i18n.New(cfg.I18n.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	st, err := store.Open(cfg.Store, cfg.Session.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	sink, err := archive.NewSink(cfg.AWS)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to set up archive sink: %w", err)
	}

	clientOpts := []api.Option{}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	client := api.NewClient(cfg.API, clientOpts...)
	sess := session.New(client.Auth, st, cfg.Session)
	client.SetTokenSource(sess)
	client.OnSessionExpired(sess.Expire)

	hub := payment.NewHub()
	callback := router.New(cfg, hub, tr)
	opener := o.opener
	if opener == nil {
		opener = func(checkoutURL string) error {
			o.notify(tr.T(cfg.I18n.DefaultLocale, i18n.KeyPaymentWaiting, checkoutURL))
			return nil
		}
	}
	provider, err := payment.NewProvider(cfg.Payment, hub, callback, opener)
	if err != nil {
		st.Close()
		return nil, err
	}

	uploads := upload.New(client.Upload, client)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:       cfg,
		Translator:   tr,
		Client:       client,
		Store:        st,
		Session:      sess,
		Verification: verification.New(client.Auth, st),
		Catalog:      catalog.New(client.Products, st),
		Chat:         chat.New(client.Chat, uploads, cfg.Chat),
		Purchases: purchase.NewStore(client.Purchase, client.Payments, sess, purchase.Options{
			Provider: provider,
			Pricing:  purchase.NewPricing(cfg.Payment),
			Currency: cfg.Payment.Currency,
			Archive:  archive.NewDownloader(client, sink),
		}),
		Reviews:   review.New(client.Reviews),
		Seller:    seller.New(client.Products, client.Seller, uploads),
		Admin:     admin.New(client.Admin, sess),
		Uploads:   uploads,
		Payments:  hub,
		Callback:  callback,
		notify:    o.notify,
		log:       logrus.WithField("component", "app"),
		ctx:       ctx,
		cancel:    cancel,
		signal:    make(chan struct{}, 1),
		watchDone: make(chan struct{}),
	}

	a.unsubscribe = sess.Subscribe(a.onSession)
	go a.watchSession()
	return a, nil
}

// Init restores the stored session and any pending phone verification.
func (a *App) Init(ctx context.Context) error {
	if n, err := a.Store.PruneListings(ctx, listingCacheMaxAge); err != nil {
		a.log.WithError(err).Warn("Failed to prune listing cache")
	} else if n > 0 {
		a.log.WithField("count", n).Debug("Pruned stale listings")
	}

	if err := a.Session.Init(ctx); err != nil {
		return err
	}
	if err := a.Verification.Restore(ctx); err != nil {
		a.log.WithError(err).Warn("Failed to restore phone verification")
	}
	return nil
}

// Lang is the language for user-facing text.
func (a *App) Lang() string {
	return a.Translator.DefaultLang()
}

// T translates key into the configured language.
func (a *App) T(key string, args ...interface{}) string {
	return a.Translator.T(a.Lang(), key, args...)
}

// onSession runs on whichever goroutine published the session change, which
// may be the chat poller itself. It only records the state; watchSession
// acts on it.
func (a *App) onSession(st session.State) {
	userID := ""
	if st.User != nil {
		userID = st.User.ID
	}

	a.mu.Lock()
	a.latest = st
	if a.seenUserID != "" && userID != a.seenUserID {
		a.userLeft = true
	}
	a.seenUserID = userID
	a.mu.Unlock()

	select {
	case a.signal <- struct{}{}:
	default:
	}
}

func (a *App) watchSession() {
	defer close(a.watchDone)
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.signal:
		}

		a.mu.Lock()
		st := a.latest
		userID := ""
		if st.User != nil {
			userID = st.User.ID
		}
		switched := a.userLeft
		changed := switched || st.Status != a.lastStatus || userID != a.lastUserID
		a.userLeft = false
		a.lastStatus = st.Status
		a.lastUserID = userID
		a.mu.Unlock()

		if changed {
			a.applySession(st, switched)
		}
	}
}

// applySession acts on a session transition. switched is set when a
// signed-in user went away since the last call, which a coalesced signal
// can report without any change of status.
func (a *App) applySession(st session.State, switched bool) {
	switch st.Status {
	case session.StatusAuthenticated:
		if switched {
			a.Chat.Reset()
			a.Purchases.Clear()
		}
		if a.Config.Chat.AutoPoll {
			a.Chat.StartPolling(a.ctx)
		}
	case session.StatusExpired:
		a.Chat.Reset()
		a.Purchases.Clear()
		a.notify(a.T(i18n.KeySessionExpired))
	case session.StatusAnonymous:
		a.Chat.Reset()
		a.Purchases.Clear()
	}
	a.log.WithField("status", st.Status).Debug("Session state applied")
}

// Close stops background work, the callback server and the local store.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.unsubscribe()
		a.cancel()
		<-a.watchDone
		a.Chat.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = a.Callback.Shutdown(ctx)
		a.Store.Close()
	})
	return err
}

// internal/purchase/purchase_test.go
package purchase_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/payment"
	"github.com/vibing/vibing-client/internal/purchase"
	"github.com/vibing/vibing-client/internal/session"
	"github.com/vibing/vibing-client/internal/testutil"
	"github.com/vibing/vibing-client/internal/utils"
)

type staticSession session.State

func (s staticSession) State() session.State { return session.State(s) }

var signedIn = staticSession{
	User:   &models.User{ID: "u-1", Email: "kim@example.com", Name: "Kim", Role: models.UserRoleBuyer},
	Token:  "token",
	Status: session.StatusAuthenticated,
}

type stubProvider struct {
	calls   int32
	gate    chan struct{}
	err     error
	lastReq atomic.Value
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) RequestPayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	atomic.AddInt32(&p.calls, 1)
	p.lastReq.Store(req)
	if p.gate != nil {
		<-p.gate
	}
	if p.err != nil {
		return nil, p.err
	}
	return &payment.Result{PaymentID: req.PaymentID, TxID: "tx-1", Amount: req.Amount, Status: "completed"}, nil
}

type stubArchive struct {
	url, name string
}

func (a *stubArchive) Save(ctx context.Context, rawURL, name string) (string, error) {
	a.url, a.name = rawURL, name
	return "/downloads/" + name, nil
}

type PurchaseTestSuite struct {
	suite.Suite
	provider     *stubProvider
	archive      *stubArchive
	store        *purchase.Store
	verified     atomic.Bool
	verifyQuery  atomic.Value
	verifyCalls  int32
	historyCalls int32
	disputeCalls int32
}

func (s *PurchaseTestSuite) SetupTest() {
	s.provider = &stubProvider{}
	s.archive = &stubArchive{}
	s.verified.Store(true)
	atomic.StoreInt32(&s.verifyCalls, 0)
	atomic.StoreInt32(&s.historyCalls, 0)
	atomic.StoreInt32(&s.disputeCalls, 0)

	fake := testutil.NewFakeAPI(s.T(), func(r *gin.RouterGroup) {
		r.POST("/payments/verify/:id", func(c *gin.Context) {
			atomic.AddInt32(&s.verifyCalls, 1)
			s.verifyQuery.Store(c.Request.URL.Query())
			c.JSON(http.StatusOK, gin.H{
				"verified":  s.verified.Load(),
				"paymentId": c.Param("id"),
				"amount":    14277,
				"status":    "PAID",
				"purchase": gin.H{
					"id": "pur-9", "orderId": "order-9", "status": "completed",
					"product": gin.H{"id": "prod-1", "title": "JWT Kit"},
				},
			})
		})
		r.GET("/purchase/history", func(c *gin.Context) {
			atomic.AddInt32(&s.historyCalls, 1)
			c.JSON(http.StatusOK, gin.H{
				"purchases": []gin.H{
					{"id": "pur-1", "orderId": "o-1", "price": 5, "status": "confirmed", "canRequestDispute": false,
						"purchaseDate": "2025-01-02T00:00:00Z", "product": gin.H{"id": "p-1", "title": "Zeta CLI"}},
					{"id": "pur-2", "orderId": "o-2", "price": 50, "status": "completed", "canRequestDispute": true,
						"purchaseDate": "2025-03-01T00:00:00Z", "product": gin.H{"id": "p-2", "title": "Alpha UI Kit"}},
					{"id": "pur-3", "orderId": "o-3", "price": 20, "status": "completed", "canRequestDispute": true,
						"purchaseDate": "2025-02-01T00:00:00Z", "product": gin.H{"id": "p-3", "title": "Mid Tools"}},
				},
				"pagination": gin.H{"currentPage": 1, "totalPages": 1, "totalItems": 3, "itemsPerPage": 10},
			})
		})
		r.POST("/purchase/:id/dispute", func(c *gin.Context) {
			atomic.AddInt32(&s.disputeCalls, 1)
			c.JSON(http.StatusOK, gin.H{"message": "Dispute requested"})
		})
		r.GET("/purchase/:id/download", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"downloadUrl": "https://cdn.test/" + c.Param("id") + ".zip?sig=1"})
		})
	})
	client := fake.Client("token")

	s.store = purchase.NewStore(client.Purchase, client.Payments, signedIn, purchase.Options{
		Provider: s.provider,
		Pricing:  purchase.Pricing{USDToKRWRate: 1300, ProcessingFeeKRW: 1290},
		Archive:  s.archive,
	})
}

func (s *PurchaseTestSuite) TestCheckoutSuccess() {
	product := models.Product{ID: "prod-1", Title: "JWT Kit", Price: 9.99}

	bought, err := s.store.Checkout(context.Background(), product, "")
	s.Require().NoError(err)
	s.Equal("pur-9", bought.ID)

	st := s.store.State()
	s.True(st.Checkout.Purchased)
	s.False(st.Checkout.Processing)
	s.Equal(int64(14277), st.Checkout.Amount)
	s.Len(st.History, 3)
	s.EqualValues(1, atomic.LoadInt32(&s.historyCalls))

	req := s.provider.lastReq.Load().(payment.Request)
	s.Equal("JWT Kit - prod-1 - Vibing Marketplace", req.OrderName)
	s.Equal("KRW", req.Currency)

	q := s.verifyQuery.Load().(url.Values)
	s.Equal([]string{"14277"}, q["amount"])
	s.Equal([]string{"kim@example.com"}, q["customerEmail"])
	s.Equal([]string{req.OrderName}, q["orderName"])

	s.store.Reset()
	s.False(s.store.State().Checkout.Purchased)
}

func (s *PurchaseTestSuite) TestCheckoutRequiresSession() {
	st := purchase.NewStore(nil, nil, staticSession{Status: session.StatusAnonymous}, purchase.Options{Provider: s.provider})
	_, err := st.Checkout(context.Background(), models.Product{ID: "prod-1"}, "")
	s.ErrorIs(err, api.ErrAuthRequired)
	s.EqualValues(0, atomic.LoadInt32(&s.provider.calls))
}

func (s *PurchaseTestSuite) TestConcurrentCheckoutRejected() {
	s.provider.gate = make(chan struct{})
	product := models.Product{ID: "prod-1", Title: "JWT Kit", Price: 1}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.store.Checkout(context.Background(), product, "")
		s.NoError(err)
	}()

	s.Eventually(func() bool { return atomic.LoadInt32(&s.provider.calls) == 1 }, time.Second, 5*time.Millisecond)
	_, err := s.store.Checkout(context.Background(), product, "")
	s.ErrorIs(err, purchase.ErrCheckoutInProgress)

	close(s.provider.gate)
	wg.Wait()
	s.EqualValues(1, atomic.LoadInt32(&s.provider.calls))
}

func (s *PurchaseTestSuite) TestProviderFailureSkipsVerification() {
	s.provider.err = &payment.ProviderError{Code: "PAY_PROCESS_CANCELED", Message: "cancelled by user"}

	_, err := s.store.Checkout(context.Background(), models.Product{ID: "prod-1", Title: "JWT Kit"}, "")
	var perr *payment.ProviderError
	s.Require().ErrorAs(err, &perr)

	st := s.store.State()
	s.False(st.Checkout.Processing)
	s.False(st.Checkout.Purchased)
	s.NotEmpty(st.Checkout.Err)
	s.EqualValues(0, atomic.LoadInt32(&s.verifyCalls))
}

func (s *PurchaseTestSuite) TestUnverifiedPayment() {
	s.verified.Store(false)
	_, err := s.store.Checkout(context.Background(), models.Product{ID: "prod-1", Title: "JWT Kit"}, "")
	s.ErrorIs(err, purchase.ErrNotVerified)
	s.False(s.store.State().Checkout.Purchased)
}

func (s *PurchaseTestSuite) TestHistoryFilterAndSort() {
	s.Require().NoError(s.store.LoadHistory(context.Background(), 1))

	ids := func() []string {
		var out []string
		for _, p := range s.store.State().Filtered() {
			out = append(out, p.ID)
		}
		return out
	}

	s.Equal([]string{"pur-2", "pur-3", "pur-1"}, ids())

	s.Require().NoError(s.store.SetSortBy("price-low"))
	s.Equal([]string{"pur-1", "pur-3", "pur-2"}, ids())

	s.Require().NoError(s.store.SetSortBy("product-name"))
	s.Equal([]string{"pur-2", "pur-3", "pur-1"}, ids())

	s.Require().NoError(s.store.SetStatusFilter("confirmed"))
	s.Equal([]string{"pur-1"}, ids())

	s.Error(s.store.SetStatusFilter("lost"))
	s.Error(s.store.SetSortBy("random"))
}

func (s *PurchaseTestSuite) TestRequestDispute() {
	ctx := context.Background()
	s.Require().NoError(s.store.LoadHistory(ctx, 1))

	err := s.store.RequestDispute(ctx, "pur-2", "   too short   ")
	s.True(utils.IsValidationError(err))

	err = s.store.RequestDispute(ctx, "pur-1", "The archive is missing the documented CLI binary.")
	s.ErrorIs(err, purchase.ErrDisputeNotAllowed)
	s.EqualValues(0, atomic.LoadInt32(&s.disputeCalls))

	s.Require().NoError(s.store.RequestDispute(ctx, "pur-2", "  The archive is missing the documented CLI binary.  "))
	s.EqualValues(1, atomic.LoadInt32(&s.disputeCalls))
	s.EqualValues(2, atomic.LoadInt32(&s.historyCalls))
}

func (s *PurchaseTestSuite) TestDownloadToArchive() {
	ctx := context.Background()
	s.Require().NoError(s.store.LoadHistory(ctx, 1))

	location, err := s.store.Download(ctx, "pur-2")
	s.Require().NoError(err)
	s.Equal("https://cdn.test/pur-2.zip?sig=1", s.archive.url)
	s.Equal("alpha-ui-kit.zip", s.archive.name)
	s.Equal("/downloads/alpha-ui-kit.zip", location)
}

func TestPurchaseTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseTestSuite))
}

func TestPricing(t *testing.T) {
	p := purchase.NewPricing(config.PaymentConfig{USDToKRWRate: 1300, ProcessingFeeKRW: 1290})
	assert.Equal(t, int64(12987), p.ConvertUSDToKRW(9.99))
	assert.Equal(t, int64(14277), p.CalculateTotal(9.99))
	assert.Equal(t, int64(1290), p.CalculateTotal(0))

	assert.Equal(t, "₩14,277", purchase.FormatPrice(14277))
	assert.Equal(t, "₩1,290", purchase.FormatPrice(1290))
	assert.Equal(t, "₩0", purchase.FormatPrice(0))
}

func TestStatusLabel(t *testing.T) {
	tr, err := i18n.New("ko")
	require.NoError(t, err)

	assert.Equal(t, "구매확정", purchase.StatusLabel(tr, "ko", models.PurchaseStatusConfirmed))
	assert.Equal(t, "mystery", purchase.StatusLabel(tr, "ko", "mystery"))
	assert.Equal(t, "completed", purchase.StatusLabel(nil, "ko", models.PurchaseStatusCompleted))
}

// internal/api/client_test.go
package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/testutil"
)

type ClientTestSuite struct {
	suite.Suite
	fake       *testutil.FakeAPI
	lastAuth   string
	lastReqID  string
	lastQuery  string
	lastCT     string
	lastLength int64
	lastFields map[string]string
}

func (s *ClientTestSuite) SetupTest() {
	s.lastFields = map[string]string{}
	s.fake = testutil.NewFakeAPI(s.T(), func(r *gin.RouterGroup) {
		r.Use(func(c *gin.Context) {
			s.lastAuth = c.GetHeader("Authorization")
			s.lastReqID = c.GetHeader("X-Request-ID")
			s.lastQuery = c.Request.URL.RawQuery
			s.lastCT = c.GetHeader("Content-Type")
			s.lastLength = c.Request.ContentLength
			c.Next()
		})
		r.GET("/auth/me", func(c *gin.Context) {
			if c.GetHeader("Authorization") != "Bearer good-token" {
				testutil.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": "u-1", "email": "a@b.c", "name": "Kim", "role": "buyer"}})
		})
		r.POST("/auth/login", func(c *gin.Context) {
			testutil.ErrorJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		})
		r.GET("/products", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"products": []gin.H{{"id": "p-1", "title": "Kit"}}, "pagination": gin.H{"currentPage": 1, "totalPages": 3}})
		})
		r.GET("/products/:id", func(c *gin.Context) {
			c.String(http.StatusBadGateway, "<html>upstream down</html>")
		})
		r.GET("/reviews/user/product/:id", func(c *gin.Context) {
			testutil.ErrorJSON(c, http.StatusNotFound, "NOT_FOUND", "Review not found")
		})
		r.POST("/payments/verify/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"verified":  true,
				"paymentId": c.Param("id"),
				"amount":    14290,
				"status":    "PAID",
				"purchase":  gin.H{"id": "pur-1", "orderId": "ORD-1", "status": "completed", "product": gin.H{"id": "p-1", "title": "Kit"}},
			})
		})
		r.POST("/upload/product-files", func(c *gin.Context) {
			s.lastFields["productId"] = c.PostForm("productId")
			file, err := c.FormFile("file")
			if err != nil {
				testutil.ErrorJSON(c, http.StatusBadRequest, "BAD_REQUEST", "file missing")
				return
			}
			s.lastFields["filename"] = file.Filename
			c.JSON(http.StatusOK, gin.H{"file": gin.H{"filename": file.Filename, "url": "https://cdn/x.zip", "size": file.Size}})
		})
	})
}

func (s *ClientTestSuite) TestBearerAndRequestID() {
	client := s.fake.Client("good-token")

	user, err := client.Auth.Me(context.Background())
	s.Require().NoError(err)
	s.Equal("Kim", user.Name)
	s.Equal("Bearer good-token", s.lastAuth)
	s.NotEmpty(s.lastReqID)
}

func (s *ClientTestSuite) TestUnauthorizedWithTokenExpiresSession() {
	client := s.fake.Client("stale-token")
	var expired int32
	client.OnSessionExpired(func() { atomic.AddInt32(&expired, 1) })

	_, err := client.Auth.Me(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, api.ErrSessionExpired))
	s.True(api.IsStatus(err, http.StatusUnauthorized))
	s.Equal(int32(1), atomic.LoadInt32(&expired))
}

func (s *ClientTestSuite) TestUnauthorizedWithoutTokenIsPlainError() {
	client := s.fake.Client("")
	var expired int32
	client.OnSessionExpired(func() { atomic.AddInt32(&expired, 1) })

	_, err := client.Auth.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "x"})
	s.Require().Error(err)
	s.False(errors.Is(err, api.ErrSessionExpired))
	s.Equal("Invalid email or password", api.Message(err))
	s.True(api.IsCode(err, "INVALID_CREDENTIALS"))
	s.Equal(int32(0), atomic.LoadInt32(&expired))
	s.Empty(s.lastAuth)
}

func (s *ClientTestSuite) TestUnparseableErrorBody() {
	_, err := s.fake.Client("").Products.Get(context.Background(), "p-1")
	s.Require().Error(err)
	s.Equal("Network error", api.Message(err))
	s.True(api.IsStatus(err, http.StatusBadGateway))
}

func (s *ClientTestSuite) TestListProductsQuery() {
	minPrice, maxPrice := 10.0, 50.0
	list, err := s.fake.Client("").Products.List(context.Background(), models.ProductQuery{
		Category: "all",
		Search:   "go kit",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		SortBy:   "newest",
		Page:     2,
		Limit:    12,
	})
	s.Require().NoError(err)
	s.Len(list.Products, 1)
	s.True(list.Pagination.HasNext())
	s.NotContains(s.lastQuery, "category")
	s.Contains(s.lastQuery, "minPrice=10")
	s.Contains(s.lastQuery, "maxPrice=50")
	s.Contains(s.lastQuery, "search=go+kit")
	s.Contains(s.lastQuery, "page=2")
}

func (s *ClientTestSuite) TestMissingReviewIsNil() {
	review, err := s.fake.Client("good-token").Reviews.Mine(context.Background(), "p-1")
	s.NoError(err)
	s.Nil(review)
}

func (s *ClientTestSuite) TestVerifyPayment() {
	res, err := s.fake.Client("good-token").Payments.Verify(context.Background(), "payment-1-abc", api.VerifyParams{
		OrderName:     "Kit - p-1 - Vibing Marketplace",
		Amount:        14290,
		CustomerEmail: "a@b.c",
	})
	s.Require().NoError(err)
	s.True(res.Verified)
	s.Equal("payment-1-abc", res.PaymentID)
	s.Require().NotNil(res.Purchase)
	s.Equal("ORD-1", res.Purchase.OrderID)
	s.Contains(s.lastQuery, "amount=14290")
	s.Contains(s.lastQuery, "customerEmail=a%40b.c")
}

func (s *ClientTestSuite) TestMultipartUpload() {
	res, err := s.fake.Client("good-token").Upload.ProductFile(context.Background(), "p-9", "kit.zip", "application/zip", strings.NewReader("PK\x03\x04data"))
	s.Require().NoError(err)
	s.Equal("kit.zip", res.File.Filename)
	s.Equal("p-9", s.lastFields["productId"])
	s.True(strings.HasPrefix(s.lastCT, "multipart/form-data"))
	// Streamed bodies have no length up front.
	s.Equal(int64(-1), s.lastLength)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func (s *ClientTestSuite) TestMultipartReaderErrorSurfaces() {
	boom := errors.New("disk read failed")
	_, err := s.fake.Client("good-token").Upload.ProductFile(context.Background(), "p-9", "kit.zip", "application/zip", failingReader{err: boom})
	s.Require().Error(err)
	s.ErrorIs(err, boom)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestEncodeProductQuery(t *testing.T) {
	free := 0.0
	q := api.EncodeProductQuery(models.ProductQuery{Category: "cli-tools", MinPrice: &free, MaxPrice: &free})
	assert.Equal(t, "cli-tools", q.Get("category"))
	assert.Equal(t, "0", q.Get("minPrice"))
	assert.Equal(t, "0", q.Get("maxPrice"))
	assert.Empty(t, q.Get("page"))
}

func TestFetchAndPutRaw(t *testing.T) {
	var uploaded string
	fake := testutil.NewFakeAPI(t, func(r *gin.RouterGroup) {
		r.GET("/files/kit.zip", func(c *gin.Context) {
			assert.Equal(t, "Bearer tok", c.GetHeader("Authorization"))
			c.Data(http.StatusOK, "application/zip", []byte("zipdata"))
		})
		r.PUT("/signed/put", func(c *gin.Context) {
			assert.Empty(t, c.GetHeader("Authorization"))
			body, _ := io.ReadAll(c.Request.Body)
			uploaded = string(body)
			c.Status(http.StatusOK)
		})
	})
	client := fake.Client("tok")

	rc, err := client.Fetch(context.Background(), fake.BaseURL+"/files/kit.zip")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "zipdata", string(data))

	// Presigned uploads never carry the bearer token.
	require.NoError(t, client.Upload.PutSigned(context.Background(), fake.Server.URL+"/api/signed/put", "application/zip", strings.NewReader("payload"), 7))
	assert.Equal(t, "payload", uploaded)

	_, err = client.Fetch(context.Background(), fake.BaseURL+"/files/missing.zip")
	assert.True(t, api.IsNotFound(err))
}

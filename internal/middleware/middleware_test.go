package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"grocery-backend/internal/models"
	"grocery-backend/internal/payment"
)

const secret = "middleware-secret"

func token(t *testing.T, userID primitive.ObjectID, role string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID.Hex(),
		"role":   role,
		"exp":    time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func guarded(t *testing.T, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", guard, func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		require.True(t, ok)
		userID := c.MustGet(UserIDKey).(primitive.ObjectID)
		c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": principal.Role})
	})
	return r
}

func TestAuthGuard(t *testing.T) {
	userID := primitive.NewObjectID()
	log := zaptest.NewLogger(t)

	cases := []struct {
		name   string
		guard  gin.HandlerFunc
		header string
		query  string
		wsa    bool
		want   int
	}{
		{name: "missing", guard: UserAuth(secret, log), want: http.StatusUnauthorized},
		{name: "not bearer", guard: UserAuth(secret, log), header: "Token abc", want: http.StatusUnauthorized},
		{name: "garbage", guard: UserAuth(secret, log), header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "customer", guard: UserAuth(secret, log), header: "Bearer " + token(t, userID, models.RoleCustomer), want: http.StatusOK},
		{name: "customer on admin", guard: AdminAuth(secret, log), header: "Bearer " + token(t, userID, models.RoleCustomer), want: http.StatusForbidden},
		{name: "seller on admin", guard: AdminAuth(secret, log), header: "Bearer " + token(t, userID, models.RoleSeller), want: http.StatusOK},
		{name: "query token on plain request", guard: UserAuth(secret, log), query: token(t, userID, models.RoleCustomer), want: http.StatusUnauthorized},
		{name: "query token on upgrade", guard: UserAuth(secret, log), query: token(t, userID, models.RoleCustomer), wsa: true, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/p"
			if tc.query != "" {
				target += "?token=" + url.QueryEscape(tc.query)
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.wsa {
				req.Header.Set("Upgrade", "websocket")
			}
			rec := httptest.NewRecorder()
			guarded(t, tc.guard).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Contains(t, rec.Body.String(), userID.Hex())
			}
		})
	}
}

func webhookRouter(secret string, sandbox bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hook", PaymentSignature(secret, sandbox, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("tran_cartid"))
	})
	return r
}

func postForm(r http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPaymentSignature(t *testing.T) {
	form := url.Values{"tran_cartid": {"ORD-1"}, "tran_status": {"A"}, "tran_ref": {"TX"}}
	signed := url.Values{}
	for k, v := range form {
		signed[k] = v
	}
	signed.Set("tran_check", payment.Signature("hook-secret", form))

	rec := postForm(webhookRouter("hook-secret", false), signed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ORD-1", rec.Body.String())

	tampered := url.Values{}
	for k, v := range signed {
		tampered[k] = v
	}
	tampered.Set("tran_status", "D")
	assert.Equal(t, http.StatusUnauthorized, postForm(webhookRouter("hook-secret", false), tampered).Code)

	assert.Equal(t, http.StatusUnauthorized, postForm(webhookRouter("hook-secret", false), form).Code)
	assert.Equal(t, http.StatusOK, postForm(webhookRouter("", true), form).Code, "sandbox accepts unsigned callbacks")
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok?x=1", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "http", entries[0].LoggerName)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "x=1", entries[0].ContextMap()["query"])
	assert.EqualValues(t, http.StatusNoContent, entries[0].ContextMap()["status"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

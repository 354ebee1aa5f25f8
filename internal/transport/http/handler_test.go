package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
	"marketplace-service/internal/service/servicetest"
	httptransport "marketplace-service/internal/transport/http"
)

// ---- helpers ----

type testAPI struct {
	router  http.Handler
	store   *servicetest.Store
	gateway *servicetest.Gateway
	tokens  *auth.TokenManager

	client     *entity.User
	freelancer *entity.User
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWithUsers(t, nil)
}

// newTestAPIWithUsers lets a test swap the repository the authenticator reads users from.
func newTestAPIWithUsers(t *testing.T, wrap func(service.UserRepository) service.UserRepository) *testAPI {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := servicetest.NewStore()
	gw := &servicetest.Gateway{}
	log := zap.NewNop()

	presence := service.NewRedisPresence(rdb, "test", time.Minute)
	notifications := service.NewNotificationService(st.Notifications(), service.NewRedisPriorityQueue(rdb, "test"), log)

	h := httptransport.NewHandler(httptransport.Services{
		Jobs:          service.NewJobService(st.Jobs(), st.Payments(), gw, notifications, log),
		Listing:       service.NewListingService(st.Jobs(), st.Proposals(), st.Invites(), st.Engagements(), st.Users(), st.Reviews(), st.Taxonomy()),
		Proposals:     service.NewProposalService(st.Proposals(), st.Jobs(), notifications, log),
		Invites:       service.NewInviteService(st.Invites(), st.Jobs(), st.Users(), st.Engagements(), &servicetest.Mailer{}, notifications, "https://app.test", log),
		Lifecycle:     service.NewLifecycleService(st.Jobs(), st.Engagements(), st.Submissions(), notifications, log),
		Messages:      service.NewMessageService(st.Messages(), st.Users(), presence, notifications, log),
		Reviews:       service.NewReviewService(st.Reviews(), st.Users(), st.Jobs(), notifications, log),
		Payments:      service.NewPaymentService(st.Payments()),
		Profiles:      service.NewProfileService(st.Profiles(), st.Users(), st.Taxonomy(), log),
		Notifications: notifications,
	}, log)

	tokens := auth.NewTokenManager("test-secret")
	var users service.UserRepository = st.Users()
	if wrap != nil {
		users = wrap(users)
	}
	authn := httptransport.NewAuthenticator(tokens, users, presence, log)

	return &testAPI{
		router:  httptransport.Routes(h, authn, log),
		store:   st,
		gateway: gw,
		tokens:  tokens,
		client: st.AddUser(entity.User{
			Email: "client@example.com", Username: "client", IsClient: true, IsActive: true, EmailVerified: true,
		}),
		freelancer: st.AddUser(entity.User{
			Email: "writer@example.com", Username: "writer", IsFreelancer: true, IsActive: true, EmailVerified: true,
		}),
	}
}

func (a *testAPI) do(t *testing.T, u *entity.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		tok, err := a.tokens.Issue(u.ID, "", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "body=%s", rr.Body.String())
}

func jobBody(title string) map[string]any {
	return map[string]any{
		"title":        title,
		"description":  "Five pages on " + title,
		"due_date":     "2030-01-15",
		"project_cost": "40",
	}
}

// ---- tests ----

func TestHTTP_Health(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestHTTP_API_401_WithoutToken(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, nil, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHTTP_API_401_SuspendedUser(t *testing.T) {
	a := newTestAPI(t)
	banned := a.store.AddUser(entity.User{Username: "banned", IsClient: true, IsActive: true, EmailVerified: true, Suspended: true})

	rr := a.do(t, banned, http.MethodGet, "/api/client/jobs", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHTTP_API_401_UnverifiedEmail(t *testing.T) {
	a := newTestAPI(t)
	fresh := a.store.AddUser(entity.User{Username: "fresh", IsClient: true, IsActive: true})

	rr := a.do(t, fresh, http.MethodGet, "/api/client/jobs", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Email is not verified.")
}

func TestHTTP_API_401_UnknownUser(t *testing.T) {
	a := newTestAPI(t)
	ghost := &entity.User{ID: uuid.New()}

	rr := a.do(t, ghost, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

type brokenUsers struct {
	service.UserRepository
}

func (brokenUsers) GetByID(context.Context, uuid.UUID) (*entity.User, error) {
	return nil, errors.New("connection refused")
}

func TestHTTP_API_500_UserLookupFails(t *testing.T) {
	a := newTestAPIWithUsers(t, func(u service.UserRepository) service.UserRepository {
		return brokenUsers{u}
	})

	rr := a.do(t, a.client, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code, rr.Body.String())
}

func TestHTTP_RoleGroups_403(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, a.freelancer, http.MethodPost, "/api/jobs", jobBody("Essay"))
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	rr = a.do(t, a.client, http.MethodGet, "/api/freelancer/jobs", nil)
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
}

func TestHTTP_PostJob_400_FieldErrors(t *testing.T) {
	a := newTestAPI(t)

	body := jobBody("Essay")
	delete(body, "title")
	body["payment_method"] = "mpesa"

	rr := a.do(t, a.client, http.MethodPost, "/api/jobs", body)
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	var resp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	decode(t, rr, &resp)
	assert.Contains(t, resp.Errors, "title")
	assert.Equal(t, 0, a.store.JobCount())
}

func TestHTTP_PostJob_ThenVerify_PendingThenComplete(t *testing.T) {
	a := newTestAPI(t)
	require.NoError(t, a.store.Payments().CreateMpesa(context.Background(), &entity.MpesaAccount{
		UserID: a.client.ID, PhoneNumber: "254712345678",
	}))

	body := jobBody("Essay")
	body["payment_method"] = "mpesa"
	body["mpesa_number"] = "0712345678"

	rr := a.do(t, a.client, http.MethodPost, "/api/jobs", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var init service.PaymentInitiation
	decode(t, rr, &init)
	require.NotEmpty(t, init.InvoiceID)
	assert.Equal(t, 0, a.store.JobCount())

	// шлюз ещё не подтвердил оплату
	rr = a.do(t, a.client, http.MethodPost, "/api/jobs/verify-payment", map[string]string{"invoice_id": init.InvoiceID})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	assert.Equal(t, 0, a.store.JobCount())

	a.gateway.State = "COMPLETE"
	rr = a.do(t, a.client, http.MethodPost, "/api/jobs/verify-payment", map[string]string{"invoice_id": init.InvoiceID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 1, a.store.JobCount())

	// повторная проверка того же инвойса
	rr = a.do(t, a.client, http.MethodPost, "/api/jobs/verify-payment", map[string]string{"invoice_id": init.InvoiceID})
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Equal(t, 1, a.store.JobCount())
}

func TestHTTP_ProposalFlow_ClientDetailMarksViewed(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, a.client, http.MethodPost, "/api/jobs/card", jobBody("Essay"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var job entity.Job
	decode(t, rr, &job)

	rr = a.do(t, a.freelancer, http.MethodPost, "/api/freelancer/jobs/"+job.ID.String()+"/proposals", map[string]any{
		"cover_letter": "I can do it",
		"bid_amount":   35,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p entity.Proposal
	decode(t, rr, &p)
	assert.False(t, p.Viewed)
	assert.Equal(t, "35.00", p.BidAmount)

	rr = a.do(t, a.client, http.MethodGet, "/api/client/proposals/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decode(t, rr, &p)
	assert.True(t, p.Viewed)
	require.NotNil(t, p.ViewedAt)

	// чужой клиент не видит заявку
	other := a.store.AddUser(entity.User{Username: "other", IsClient: true, IsActive: true, EmailVerified: true})
	rr = a.do(t, other, http.MethodGet, "/api/client/proposals/"+p.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
}

func TestHTTP_BadPathID_400(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, a.client, http.MethodGet, "/api/client/proposals/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

func TestHTTP_Messages_UnreadCountAndThread(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, a.client, http.MethodPost, "/api/messages", map[string]any{
		"receiver_id": a.freelancer.ID,
		"text":        "hello",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var cnt struct {
		Count int64 `json:"count"`
	}
	rr = a.do(t, a.freelancer, http.MethodGet, "/api/messages/unread-count", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &cnt)
	assert.EqualValues(t, 1, cnt.Count)

	rr = a.do(t, a.freelancer, http.MethodGet, "/api/messages/"+a.client.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var thread []entity.Message
	decode(t, rr, &thread)
	require.Len(t, thread, 1)

	rr = a.do(t, a.freelancer, http.MethodGet, "/api/messages/unread-count", nil)
	decode(t, rr, &cnt)
	assert.EqualValues(t, 0, cnt.Count)

	// любой аутентифицированный запрос отмечает пользователя онлайн
	var st service.UserStatus
	rr = a.do(t, a.freelancer, http.MethodGet, "/api/users/"+a.client.ID.String()+"/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &st)
	assert.Equal(t, "online", st.Status)
}

func TestHTTP_Notifications_ListAndReadAll(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, a.client, http.MethodPost, "/api/messages", map[string]any{
		"receiver_id": a.freelancer.ID,
		"text":        "ping",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.do(t, a.freelancer, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []entity.Notification
	decode(t, rr, &list)
	require.NotEmpty(t, list)

	rr = a.do(t, a.freelancer, http.MethodPost, "/api/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(t, a.freelancer, http.MethodGet, "/api/notifications", nil)
	decode(t, rr, &list)
	assert.Empty(t, list)
}

func TestHTTP_Cards_StoreOnlyLast4(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, a.client, http.MethodPost, "/api/payments/cards", map[string]string{
		"cardholder_name": "Cora Client",
		"card_number":     "4242 4242 4242 4242",
		"expiration_date": "12/30",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "4242424242424242")

	var card entity.Card
	decode(t, rr, &card)
	assert.Equal(t, "4242", card.Last4)

	rr = a.do(t, a.client, http.MethodDelete, "/api/payments/cards/"+card.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(t, a.client, http.MethodDelete, "/api/payments/cards/"+card.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHTTP_PayPal(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, a.client, http.MethodPost, "/api/payments/paypal", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	rr = a.do(t, a.client, http.MethodPost, "/api/payments/paypal", map[string]string{"email": "pay@example.com"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var acct entity.PayPalAccount
	decode(t, rr, &acct)

	rr = a.do(t, a.client, http.MethodGet, "/api/payments/paypal", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []entity.PayPalAccount
	decode(t, rr, &list)
	require.Len(t, list, 1)

	rr = a.do(t, a.client, http.MethodDelete, "/api/payments/paypal/"+acct.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHTTP_PagePricesArePublic(t *testing.T) {
	a := newTestAPI(t)
	a.store.AddPagePrice(6)

	rr := a.do(t, nil, http.MethodGet, "/pricing/per-page", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `[{"amount":6}]`, rr.Body.String())
}

func TestHTTP_FreelancerProfile(t *testing.T) {
	a := newTestAPI(t)
	a.store.AddTerm(entity.Term{ID: 1, Kind: entity.KindSkill, Name: "Editing"})

	rr := a.do(t, a.client, http.MethodGet, "/api/freelancer/portfolio", nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = a.do(t, a.freelancer, http.MethodPost, "/api/freelancer/portfolio", map[string]string{
		"title": "Thesis", "description": "Chapter one",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "non_field_errors")

	rr = a.do(t, a.freelancer, http.MethodPost, "/api/freelancer/portfolio", map[string]string{
		"title": "Thesis", "description": "Chapter one", "document": "https://cdn.test/thesis.pdf",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var item entity.PortfolioItem
	decode(t, rr, &item)

	rr = a.do(t, a.freelancer, http.MethodDelete, "/api/freelancer/portfolio/"+item.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(t, a.freelancer, http.MethodPost, "/api/freelancer/education", map[string]any{
		"graduated_from": "Nairobi", "academic_major": "History", "education_levels": []int{},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.do(t, a.freelancer, http.MethodGet, "/api/freelancer/education", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var eds []entity.Education
	decode(t, rr, &eds)
	require.Len(t, eds, 1)

	rr = a.do(t, a.freelancer, http.MethodPut, "/api/freelancer/skills", map[string]any{"skills": []int{1}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var tax map[string][]int64
	decode(t, rr, &tax)
	assert.Equal(t, []int64{1}, tax["skill"])
}

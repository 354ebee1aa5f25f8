package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"marketplace-service/internal/entity"
)

func Routes(h *Handler, a *Authenticator, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// базовые middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// наш логгер (после RequestID)
	r.Use(RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/pricing/per-page", h.PagePrices)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Use(a.Middleware)

		r.Get("/terms/{kind}", h.Terms)

		r.Route("/jobs", func(r chi.Router) {
			r.Use(RequireRole(entity.RoleClient))
			r.Post("/", h.PostJob)
			r.Post("/card", h.PostJobWithCard)
			r.Post("/verify-payment", h.VerifyPayment)
		})

		r.Route("/client", func(r chi.Router) {
			r.Use(RequireRole(entity.RoleClient))

			r.Get("/jobs", h.ClientJobs)
			r.Get("/jobs/completed", h.ClientCompletedJobs)
			r.Get("/jobs/pending", h.ClientPendingJobs)
			r.Get("/jobs/with-proposals", h.ClientJobsWithProposals)
			r.Get("/jobs/invited", h.ClientInvitedJobs)
			r.Get("/jobs/counts", h.ClientJobCounts)
			r.Get("/jobs/{id}", h.ClientJobDetail)
			r.Post("/jobs/{id}/complete", h.CompleteJob)
			r.Post("/jobs/{id}/revision", h.RequestRevision)

			r.Get("/proposals/{id}", h.ClientProposal)
			r.Post("/proposals/{id}/accept", h.AcceptProposal)
			r.Post("/proposals/{id}/decline", h.DeclineProposal)

			r.Post("/invites", h.InviteFreelancer)

			r.Get("/freelancers", h.Freelancers)
			r.Get("/freelancers/{id}", h.Freelancer)
			r.Get("/freelancers/{id}/stats", h.FreelancerStats)
		})

		r.Route("/freelancer", func(r chi.Router) {
			r.Use(RequireRole(entity.RoleFreelancer))

			r.Get("/stats", h.FreelancerStats)

			r.Get("/jobs", h.OpenJobs)
			r.Get("/jobs/invited", h.InvitedJobs)
			r.Get("/jobs/matching", h.MatchingJobs)
			r.Get("/jobs/search", h.SearchJobs)
			r.Get("/jobs/{id}", h.FreelancerJobDetail)
			r.Post("/jobs/{id}/proposals", h.SubmitProposal)
			r.Post("/jobs/{id}/start", h.StartWork)
			r.Post("/jobs/{id}/submit", h.SubmitWork)
			r.Post("/jobs/{id}/revisions", h.SubmitRevision)
			r.Get("/jobs/{id}/submission", h.LatestSubmission)

			r.Get("/proposals", h.MyProposals)
			r.Get("/proposals/{id}", h.MyProposal)
			r.Patch("/proposals/{id}", h.UpdateProposal)
			r.Delete("/proposals/{id}", h.DeleteProposal)
			r.Post("/proposals/{id}/withdraw", h.WithdrawProposal)

			r.Post("/invites/{id}/accept", h.AcceptInvite)
			r.Post("/invites/{id}/decline", h.DeclineInvite)

			r.Get("/tasks", h.Tasks)
			r.Get("/tasks/{id}", h.Task)

			r.Put("/skills", h.UpdateSkills)
			r.Get("/portfolio", h.Portfolio)
			r.Post("/portfolio", h.AddPortfolioItem)
			r.Delete("/portfolio/{id}", h.DeletePortfolioItem)
			r.Get("/education", h.Education)
			r.Post("/education", h.AddEducation)
			r.Delete("/education/{id}", h.DeleteEducation)
		})

		// доступно обеим сторонам сделки
		r.Route("/engagements/{id}", func(r chi.Router) {
			r.Get("/", h.EngagementStatus)
			r.Get("/submissions", h.Submissions)
			r.Get("/revisions", h.Revisions)
			r.Get("/revision-reason", h.LatestRevisionReason)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", h.Conversations)
			r.Post("/", h.SendMessage)
			r.Get("/unread-count", h.UnreadMessages)
			r.Get("/{id}", h.Thread)
		})
		r.Post("/presence/offline", h.GoOffline)

		r.Get("/users/{id}/status", h.UserStatus)
		r.Get("/users/{id}/reviews", h.UserReviews)
		r.Post("/reviews", h.PostReview)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notifications)
			r.Post("/read", h.MarkNotificationsRead)
			r.Post("/read-all", h.MarkAllNotificationsRead)
			r.Post("/{id}/read", h.MarkNotificationRead)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/wallet", h.Wallet)
			r.Get("/transactions", h.Transactions)
			r.Get("/mpesa", h.MpesaAccounts)
			r.Post("/mpesa", h.AddMpesa)
			r.Delete("/mpesa/{id}", h.DeleteMpesa)
			r.Get("/paypal", h.PayPalAccounts)
			r.Post("/paypal", h.AddPayPal)
			r.Delete("/paypal/{id}", h.DeletePayPal)
			r.Get("/cards", h.Cards)
			r.Post("/cards", h.AddCard)
			r.Delete("/cards/{id}", h.DeleteCard)
		})
	})

	return r
}

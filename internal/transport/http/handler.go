package httptransport

import (
	"go.uber.org/zap"

	"marketplace-service/internal/service"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Jobs          *service.JobService
	Listing       *service.ListingService
	Proposals     *service.ProposalService
	Invites       *service.InviteService
	Lifecycle     *service.LifecycleService
	Messages      *service.MessageService
	Reviews       *service.ReviewService
	Payments      *service.PaymentService
	Profiles      *service.ProfileService
	Notifications *service.NotificationService
}

type Handler struct {
	svc Services
	log *zap.Logger
}

func NewHandler(svc Services, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/payment"
)

// Repository ports. Implementations return entity.ErrNotFound for missing rows.

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ListFreelancers(ctx context.Context, f entity.FreelancerFilter) ([]entity.FreelancerSummary, error)
	GetFreelancer(ctx context.Context, id uuid.UUID) (*entity.FreelancerSummary, error)
	FreelancerTaxonomy(ctx context.Context, id uuid.UUID) (entity.Taxonomy, error)
}

type TaxonomyRepository interface {
	ListTerms(ctx context.Context, kind entity.TaxonomyKind) ([]entity.Term, error)
	ListPagePrices(ctx context.Context) ([]entity.PagePrice, error)
}

// ProfileRepository stores the parts of a freelancer profile this service owns.
type ProfileRepository interface {
	CreatePortfolioItem(ctx context.Context, p *entity.PortfolioItem) error
	ListPortfolio(ctx context.Context, freelancerID uuid.UUID) ([]entity.PortfolioItem, error)
	DeletePortfolioItem(ctx context.Context, freelancerID, id uuid.UUID) error

	CreateEducation(ctx context.Context, e *entity.Education) error
	ListEducation(ctx context.Context, freelancerID uuid.UUID) ([]entity.Education, error)
	DeleteEducation(ctx context.Context, freelancerID, id uuid.UUID) error

	// ReplaceTerms swaps the freelancer's terms of each kind in t; kinds absent from t are kept.
	ReplaceTerms(ctx context.Context, freelancerID uuid.UUID, t entity.Taxonomy) error
}

type JobRepository interface {
	Create(ctx context.Context, j *entity.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	List(ctx context.Context, f entity.JobFilter) ([]entity.Job, error)
	CountsForClient(ctx context.Context, clientID uuid.UUID) (entity.JobCounts, error)
}

type ProposalRepository interface {
	Create(ctx context.Context, p *entity.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	Update(ctx context.Context, p *entity.Proposal) error
	// MarkViewed sets viewed=true and stamps viewed_at only if it is still empty.
	MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Proposal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Proposal, error)
	// ListByFreelancer skips proposals on jobs the freelancer already works on when excludeStarted is set.
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, excludeStarted bool) ([]entity.Proposal, error)
	// Withdraw stores d and deletes the proposal it refers to.
	Withdraw(ctx context.Context, d *entity.DeclinedJob) error
}

type InviteRepository interface {
	Create(ctx context.Context, i *entity.Invite) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invite, error)
	Update(ctx context.Context, i *entity.Invite) error
	Find(ctx context.Context, f entity.InviteFilter) (*entity.Invite, error)
}

type HiredFreelancerRepository interface {
	// Create assigns an order id and returns entity.ErrAlreadyHired when the job is taken.
	Create(ctx context.Context, h *entity.HiredFreelancer) error
	GetByJob(ctx context.Context, jobID uuid.UUID) (*entity.HiredFreelancer, error)
	// Save persists h only if the stored state still equals from; otherwise entity.ErrStateConflict.
	Save(ctx context.Context, h *entity.HiredFreelancer, from entity.EngagementState) error
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, states []entity.EngagementState) ([]entity.HiredFreelancer, error)
}

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s *entity.JobSubmission) error
	ListSubmissions(ctx context.Context, jobID uuid.UUID) ([]entity.JobSubmission, error)
	LatestSubmission(ctx context.Context, jobID uuid.UUID, freelancerID *uuid.UUID) (*entity.JobSubmission, error)
	MarkAllSatisfied(ctx context.Context, jobID uuid.UUID) (int64, error)
	SetNeedRevision(ctx context.Context, submissionID uuid.UUID) error
	CreateRevision(ctx context.Context, r *entity.Revision) error
	ListRevisions(ctx context.Context, jobID uuid.UUID) ([]entity.Revision, error)
	CreateRevisionReason(ctx context.Context, r *entity.RevisionReason) error
	LatestRevisionReason(ctx context.Context, jobID uuid.UUID) (*entity.RevisionReason, error)
}

type PaymentRepository interface {
	CreateTransaction(ctx context.Context, t *entity.Transaction) error
	GetTransactionByInvoice(ctx context.Context, invoiceID string) (*entity.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status entity.TransactionStatus) error
	LinkTransactionJob(ctx context.Context, id, jobID uuid.UUID) error
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]entity.Transaction, error)

	GetWallet(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)

	CreateMpesa(ctx context.Context, a *entity.MpesaAccount) error
	ListMpesa(ctx context.Context, userID uuid.UUID) ([]entity.MpesaAccount, error)
	FindMpesa(ctx context.Context, userID uuid.UUID, phone string) (*entity.MpesaAccount, error)
	DeleteMpesa(ctx context.Context, userID, id uuid.UUID) error

	CreatePayPal(ctx context.Context, a *entity.PayPalAccount) error
	ListPayPal(ctx context.Context, userID uuid.UUID) ([]entity.PayPalAccount, error)
	DeletePayPal(ctx context.Context, userID, id uuid.UUID) error

	CreateCard(ctx context.Context, c *entity.Card) error
	ListCards(ctx context.Context, userID uuid.UUID) ([]entity.Card, error)
	GetCard(ctx context.Context, userID, id uuid.UUID) (*entity.Card, error)
	DeleteCard(ctx context.Context, userID, id uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *entity.Message) error
	Thread(ctx context.Context, a, b uuid.UUID) ([]entity.Message, error)
	MarkThreadRead(ctx context.Context, sender, receiver uuid.UUID) (int64, error)
	Conversations(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *entity.Review) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]entity.Review, error)
	Summary(ctx context.Context, recipientID uuid.UUID) (entity.RatingSummary, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	ListUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Collaborator ports.

type PaymentGateway interface {
	MpesaSTKPush(ctx context.Context, req payment.STKPushRequest) (*payment.Invoice, error)
	Checkout(ctx context.Context, req payment.CheckoutRequest) (*payment.Invoice, error)
	Status(ctx context.Context, invoiceID string) (*payment.Invoice, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Notifier records an in-app notification and schedules its push delivery.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, url string) error
}

type Presence interface {
	Touch(ctx context.Context, userID uuid.UUID) error
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

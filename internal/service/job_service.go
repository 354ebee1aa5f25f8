package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/metrics"
	"marketplace-service/internal/payment"
	"marketplace-service/internal/validation"
)

// JobService posts jobs behind the payment gate.
type JobService struct {
	jobs      JobRepository
	payments  PaymentRepository
	gateway   PaymentGateway
	validator *validation.JobValidator
	notifier  Notifier
	log       *zap.Logger
}

func NewJobService(jobs JobRepository, payments PaymentRepository, gateway PaymentGateway, notifier Notifier, log *zap.Logger) *JobService {
	return &JobService{
		jobs:      jobs,
		payments:  payments,
		gateway:   gateway,
		validator: validation.NewJobValidator(),
		notifier:  notifier,
		log:       log,
	}
}

type PostJobRequest struct {
	Fields        map[string]interface{}
	PaymentMethod string
	MpesaNumber   string
	CardID        string
}

type PaymentInitiation struct {
	Message     string `json:"message"`
	InvoiceID   string `json:"invoice_id"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// PostJob validates the job and starts a payment. The job itself is only
// created by VerifyPaymentAndPostJob once the gateway reports the invoice paid.
func (s *JobService) PostJob(ctx context.Context, client *entity.User, req PostJobRequest) (*PaymentInitiation, error) {
	draft, err := s.validator.Validate(req.Fields)
	if err != nil {
		return nil, err
	}

	var (
		inv    *payment.Invoice
		method entity.PaymentMethod
		msg    string
	)
	switch entity.PaymentMethod(req.PaymentMethod) {
	case entity.MethodMpesa:
		method = entity.MethodMpesa
		inv, err = s.initiateMpesa(ctx, client, req.MpesaNumber, draft.ProjectCost)
		msg = "Payment initiated. Please confirm the payment on your phone."
	case entity.MethodCard:
		method = entity.MethodCard
		inv, err = s.initiateCard(ctx, client, req.CardID, draft.ProjectCost)
		msg = "Payment initiated. Please complete the payment."
	default:
		return nil, apperr.Invalid("payment_method", "Invalid payment method selected.")
	}
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encode job draft: %w", err)
	}
	tx := &entity.Transaction{
		UserID:    client.ID,
		InvoiceID: inv.ID,
		Amount:    draft.ProjectCost,
		Method:    method,
		Status:    entity.TransactionPending,
		Draft:     raw,
	}
	if err := s.payments.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.log.Info("payment initiated",
		zap.String("client_id", client.ID.String()),
		zap.String("invoice_id", inv.ID),
		zap.String("method", string(method)),
	)
	return &PaymentInitiation{Message: msg, InvoiceID: inv.ID, CheckoutURL: inv.CheckoutURL}, nil
}

func (s *JobService) initiateMpesa(ctx context.Context, client *entity.User, number, amount string) (*payment.Invoice, error) {
	if number == "" {
		return nil, apperr.Invalid("mpesa_number", "No M-Pesa number provided.")
	}
	acct, err := s.payments.FindMpesa(ctx, client.ID, payment.NormalizePhone(number))
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.BadRequest("No valid M-Pesa account linked to your profile.")
	}
	if err != nil {
		return nil, fmt.Errorf("find mpesa account: %w", err)
	}

	inv, err := s.gateway.MpesaSTKPush(ctx, payment.STKPushRequest{
		PhoneNumber: acct.PhoneNumber,
		Email:       client.Email,
		Amount:      amount,
		Narrative:   "Job Posting Payment",
	})
	if err != nil {
		return nil, apperr.Upstream("Failed to initiate payment", err)
	}
	if inv.ID == "" {
		return nil, apperr.Upstream("Failed to retrieve invoice ID from payment response.", nil)
	}
	if inv.State != payment.StatePending {
		return nil, apperr.Upstream("Payment not initiated successfully.", nil)
	}
	return inv, nil
}

func (s *JobService) initiateCard(ctx context.Context, client *entity.User, cardID, amount string) (*payment.Invoice, error) {
	if cardID == "" {
		return nil, apperr.Invalid("card_id", "No card selected for payment.")
	}
	id, err := uuid.Parse(cardID)
	if err != nil {
		return nil, apperr.Invalid("card_id", "Invalid card id.")
	}
	if _, err := s.payments.GetCard(ctx, client.ID, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, apperr.BadRequest("Selected card does not exist or is not linked to your profile.")
		}
		return nil, fmt.Errorf("get card: %w", err)
	}

	inv, err := s.gateway.Checkout(ctx, payment.CheckoutRequest{
		FirstName: client.FirstName,
		LastName:  client.LastName,
		Email:     client.Email,
		Amount:    amount,
	})
	if err != nil {
		return nil, apperr.Upstream("Failed to initiate card payment", err)
	}
	if inv.ID == "" {
		return nil, apperr.Upstream("Failed to retrieve invoice ID from payment response.", nil)
	}
	return inv, nil
}

type VerifyOutcome string

const (
	VerifyCompleted VerifyOutcome = "completed"
	VerifyPending   VerifyOutcome = "pending"
)

type VerifyResult struct {
	Outcome VerifyOutcome
	Job     *entity.Job
	Invoice *payment.Invoice
}

// VerifyPaymentAndPostJob polls the gateway for invoiceID. A COMPLETE invoice
// creates the job from the stored draft; PENDING changes nothing; anything
// else fails the transaction.
func (s *JobService) VerifyPaymentAndPostJob(ctx context.Context, client *entity.User, invoiceID string) (*VerifyResult, error) {
	if invoiceID == "" {
		return nil, apperr.Invalid("invoice_id", "This field is required.")
	}

	tx, err := s.payments.GetTransactionByInvoice(ctx, invoiceID)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && tx.UserID != client.ID) {
		return nil, apperr.BadRequest("Invalid invoice ID or transaction already processed.")
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if tx.Status != entity.TransactionPending {
		return nil, apperr.BadRequest("Transaction already processed or invalid.")
	}

	inv, err := s.gateway.Status(ctx, invoiceID)
	if err != nil {
		return nil, apperr.Upstream("Payment verification failed", err)
	}
	metrics.PaymentVerifications.WithLabelValues(inv.State).Inc()

	switch inv.State {
	case payment.StatePending:
		return &VerifyResult{Outcome: VerifyPending, Invoice: inv}, nil

	case payment.StateComplete:
		if err := s.payments.UpdateTransactionStatus(ctx, tx.ID, entity.TransactionCompleted); err != nil {
			return nil, fmt.Errorf("complete transaction: %w", err)
		}

		var draft entity.JobDraft
		if err := json.Unmarshal(tx.Draft, &draft); err != nil {
			_ = s.payments.UpdateTransactionStatus(ctx, tx.ID, entity.TransactionFailed)
			return nil, apperr.BadRequest("Stored job post is invalid.")
		}
		// no compensation: a failure below leaves the transaction completed without a job
		job, err := s.createJob(ctx, client, draft)
		if err != nil {
			return nil, err
		}
		if err := s.payments.LinkTransactionJob(ctx, tx.ID, job.ID); err != nil {
			return nil, fmt.Errorf("link transaction: %w", err)
		}
		return &VerifyResult{Outcome: VerifyCompleted, Job: job, Invoice: inv}, nil

	default:
		if err := s.payments.UpdateTransactionStatus(ctx, tx.ID, entity.TransactionFailed); err != nil {
			return nil, fmt.Errorf("fail transaction: %w", err)
		}
		return nil, apperr.BadRequest("Payment verification failed or payment not completed.")
	}
}

// PostJobWithCard creates a paid job straight away without asking the gateway.
// It mirrors the card flow of the web client and is not covered by the payment gate.
func (s *JobService) PostJobWithCard(ctx context.Context, client *entity.User, fields map[string]interface{}) (*entity.Job, error) {
	draft, err := s.validator.Validate(fields)
	if err != nil {
		return nil, err
	}
	job, err := s.createJob(ctx, client, draft)
	if err != nil {
		return nil, err
	}
	s.log.Warn("job marked paid without payment verification",
		zap.String("job_id", job.ID.String()),
		zap.String("client_id", client.ID.String()),
	)
	return job, nil
}

func (s *JobService) createJob(ctx context.Context, client *entity.User, draft entity.JobDraft) (*entity.Job, error) {
	job, err := draft.NewJob(client.ID, true)
	if err != nil {
		return nil, apperr.Invalid("due_date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	publish(ctx, s.notifier, s.log, event{
		userID:  client.ID,
		title:   "Job Posted",
		message: fmt.Sprintf("Your job %q has been posted.", job.Title),
		url:     "/client/jobs/" + job.ID.String(),
	})
	return job, nil
}

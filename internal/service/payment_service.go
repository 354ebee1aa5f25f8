package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/entity"
	"marketplace-service/internal/payment"
	"marketplace-service/internal/validation"
)

var (
	phoneRe  = regexp.MustCompile(`^254\d{9}$`)
	digitsRe = regexp.MustCompile(`^\d{12,19}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

// PaymentService manages wallets, transaction history and saved payment methods.
type PaymentService struct {
	repo PaymentRepository
}

func NewPaymentService(repo PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo}
}

func (s *PaymentService) Wallet(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	w, err := s.repo.GetWallet(ctx, userID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperr.NotFound("wallet not found")
	}
	return w, err
}

func (s *PaymentService) Transactions(ctx context.Context, userID uuid.UUID) ([]entity.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

func (s *PaymentService) AddMpesa(ctx context.Context, userID uuid.UUID, phone string) (*entity.MpesaAccount, error) {
	p := payment.NormalizePhone(phone)
	if !phoneRe.MatchString(p) {
		return nil, apperr.Invalid("phone_number", "Enter a valid Safaricom number, e.g. 0712345678.")
	}
	a := &entity.MpesaAccount{UserID: userID, PhoneNumber: p}
	if err := s.repo.CreateMpesa(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PaymentService) MpesaAccounts(ctx context.Context, userID uuid.UUID) ([]entity.MpesaAccount, error) {
	return s.repo.ListMpesa(ctx, userID)
}

func (s *PaymentService) DeleteMpesa(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.DeleteMpesa(ctx, userID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return apperr.NotFound("mpesa account not found")
	}
	return err
}

type AddPayPalRequest struct {
	Email string `json:"email"`
}

func (s *PaymentService) AddPayPal(ctx context.Context, userID uuid.UUID, req AddPayPalRequest) (*entity.PayPalAccount, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.PayPal(req); err != nil {
		return nil, err
	}
	a := &entity.PayPalAccount{UserID: userID, Email: req.Email}
	if err := s.repo.CreatePayPal(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PaymentService) PayPalAccounts(ctx context.Context, userID uuid.UUID) ([]entity.PayPalAccount, error) {
	return s.repo.ListPayPal(ctx, userID)
}

func (s *PaymentService) DeletePayPal(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.DeletePayPal(ctx, userID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return apperr.NotFound("paypal account not found")
	}
	return err
}

type AddCardRequest struct {
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	ExpirationDate string `json:"expiration_date"`
}

func (s *PaymentService) AddCard(ctx context.Context, userID uuid.UUID, req AddCardRequest) (*entity.Card, error) {
	fields := map[string]string{}
	number := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
	if strings.TrimSpace(req.CardholderName) == "" {
		fields["cardholder_name"] = "This field is required."
	}
	if !digitsRe.MatchString(number) {
		fields["card_number"] = "Enter a valid card number."
	}
	if !expiryRe.MatchString(req.ExpirationDate) {
		fields["expiration_date"] = "Use the MM/YY format."
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	c := &entity.Card{
		UserID:         userID,
		CardholderName: strings.TrimSpace(req.CardholderName),
		Last4:          number[len(number)-4:],
		ExpirationDate: req.ExpirationDate,
		CardType:       cardType(number),
	}
	if err := s.repo.CreateCard(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PaymentService) Cards(ctx context.Context, userID uuid.UUID) ([]entity.Card, error) {
	return s.repo.ListCards(ctx, userID)
}

func (s *PaymentService) DeleteCard(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.DeleteCard(ctx, userID, id)
	if errors.Is(err, entity.ErrNotFound) {
		return apperr.NotFound("card not found")
	}
	return err
}

func cardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	case number[0] == '5', strings.HasPrefix(number, "2"):
		return "mastercard"
	default:
		return "other"
	}
}

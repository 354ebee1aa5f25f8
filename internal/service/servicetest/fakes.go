package servicetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"marketplace-service/internal/payment"
)

// Notice is one call recorded by Notifier.
type Notice struct {
	UserID  uuid.UUID
	Title   string
	Message string
	URL     string
}

type Notifier struct {
	mu      sync.Mutex
	Notices []Notice
}

func (n *Notifier) Notify(_ context.Context, userID uuid.UUID, title, message, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notices = append(n.Notices, Notice{UserID: userID, Title: title, Message: message, URL: url})
	return nil
}

// Titles returns the titles sent to userID in order.
func (n *Notifier) Titles(userID uuid.UUID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, x := range n.Notices {
		if x.UserID == userID {
			out = append(out, x.Title)
		}
	}
	return out
}

// Gateway answers every payment call from its fields.
type Gateway struct {
	mu sync.Mutex

	// State returned by Status; invoices start PENDING.
	State string
	Err   error

	seq      int
	STKCalls []payment.STKPushRequest
}

func (g *Gateway) next() string {
	g.seq++
	return fmt.Sprintf("INV-%04d", g.seq)
}

func (g *Gateway) MpesaSTKPush(_ context.Context, req payment.STKPushRequest) (*payment.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.STKCalls = append(g.STKCalls, req)
	return &payment.Invoice{ID: g.next(), State: payment.StatePending, Provider: "M-PESA"}, nil
}

func (g *Gateway) Checkout(_ context.Context, _ payment.CheckoutRequest) (*payment.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	id := g.next()
	return &payment.Invoice{ID: id, State: payment.StatePending, CheckoutURL: "https://pay.test/" + id}, nil
}

func (g *Gateway) Status(_ context.Context, invoiceID string) (*payment.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	state := g.State
	if state == "" {
		state = payment.StatePending
	}
	return &payment.Invoice{ID: invoiceID, State: state}, nil
}

type Mail struct {
	To, Subject, HTML string
}

type Mailer struct {
	mu   sync.Mutex
	Sent []Mail
}

func (m *Mailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, HTML: html})
	return nil
}

// Presence is an in-process presence tracker without expiry.
type Presence struct {
	mu     sync.Mutex
	online map[uuid.UUID]bool
}

func (p *Presence) Touch(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.online == nil {
		p.online = map[uuid.UUID]bool{}
	}
	p.online[id] = true
	return nil
}

func (p *Presence) IsOnline(_ context.Context, id uuid.UUID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[id], nil
}

func (p *Presence) Clear(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, id)
	return nil
}

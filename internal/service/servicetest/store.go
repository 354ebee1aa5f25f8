// Package servicetest keeps every repository port in memory for service and handler tests.
// Filters follow the SQL in repository/postgresql.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace-service/internal/entity"
)

type Store struct {
	mu sync.Mutex

	users         map[uuid.UUID]*entity.User
	freelancerTax map[uuid.UUID]entity.Taxonomy
	terms         []entity.Term

	jobs        []*entity.Job
	proposals   []*entity.Proposal
	declined    []*entity.DeclinedJob
	invites     []*entity.Invite
	hires       map[uuid.UUID]*entity.HiredFreelancer // by job id
	submissions []*entity.JobSubmission
	revisions   []*entity.Revision
	reasons     []*entity.RevisionReason

	transactions []*entity.Transaction
	wallets      map[uuid.UUID]*entity.Wallet
	mpesa        []*entity.MpesaAccount
	paypal       []*entity.PayPalAccount
	cards        []*entity.Card
	pagePrices   []entity.PagePrice

	portfolio  []*entity.PortfolioItem
	educations []*entity.Education

	messages      []*entity.Message
	reviews       []*entity.Review
	notifications []*entity.Notification

	seq time.Time
}

func NewStore() *Store {
	return &Store{
		users:         map[uuid.UUID]*entity.User{},
		freelancerTax: map[uuid.UUID]entity.Taxonomy{},
		hires:         map[uuid.UUID]*entity.HiredFreelancer{},
		wallets:       map[uuid.UUID]*entity.Wallet{},
		seq:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so "newest first" is deterministic.
func (s *Store) tick() time.Time {
	s.seq = s.seq.Add(time.Second)
	return s.seq
}

// Seeding helpers.

func (s *Store) AddUser(u entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = &u
	return &u
}

func (s *Store) SetFreelancerTaxonomy(id uuid.UUID, t entity.Taxonomy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freelancerTax[id] = t
}

func (s *Store) AddTerm(t entity.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = append(s.terms, t)
}

func (s *Store) AddPagePrice(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagePrices = append(s.pagePrices, entity.PagePrice{Amount: amount})
}

func (s *Store) SetWallet(w entity.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.UserID] = &w
}

// Inspection helpers.

func (s *Store) Transaction(invoiceID string) (entity.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.InvoiceID == invoiceID {
			return *t, true
		}
	}
	return entity.Transaction{}, false
}

func (s *Store) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Store) HireCount(jobID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hires[jobID]; ok {
		return 1
	}
	return 0
}

// Repositories.

func (s *Store) Users() *UserRepo { return &UserRepo{s} }
func (s *Store) Taxonomy() *TaxonomyRepo { return &TaxonomyRepo{s} }
func (s *Store) Jobs() *JobRepo { return &JobRepo{s} }
func (s *Store) Proposals() *ProposalRepo { return &ProposalRepo{s} }
func (s *Store) Invites() *InviteRepo { return &InviteRepo{s} }
func (s *Store) Engagements() *EngagementRepo { return &EngagementRepo{s} }
func (s *Store) Submissions() *SubmissionRepo { return &SubmissionRepo{s} }
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s} }
func (s *Store) Messages() *MessageRepo { return &MessageRepo{s} }
func (s *Store) Reviews() *ReviewRepo { return &ReviewRepo{s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s} }
func (s *Store) Profiles() *ProfileRepo { return &ProfileRepo{s} }

// users

type UserRepo struct{ s *Store }

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) ListFreelancers(_ context.Context, f entity.FreelancerFilter) ([]entity.FreelancerSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []entity.FreelancerSummary{}
	for _, u := range r.s.users {
		if !u.IsFreelancer {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		if f.WorkedWith != nil && !r.s.workedWith(*f.WorkedWith, u.ID) {
			continue
		}
		sum := r.s.summary(u)
		if q != "" && !matchesFreelancer(sum, q) {
			continue
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortByRating && out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

func (r *UserRepo) GetFreelancer(_ context.Context, id uuid.UUID) (*entity.FreelancerSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || !u.IsFreelancer {
		return nil, entity.ErrNotFound
	}
	sum := r.s.summary(u)
	return &sum, nil
}

func (r *UserRepo) FreelancerTaxonomy(_ context.Context, id uuid.UUID) (entity.Taxonomy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.freelancerTax[id]
	if t == nil {
		t = entity.Taxonomy{}
	}
	return t, nil
}

func (s *Store) workedWith(clientID, freelancerID uuid.UUID) bool {
	for _, j := range s.jobs {
		if j.ClientID != clientID {
			continue
		}
		if h, ok := s.hires[j.ID]; ok && h.FreelancerID == freelancerID {
			return true
		}
	}
	return false
}

func (s *Store) summary(u *entity.User) entity.FreelancerSummary {
	tax := s.freelancerTax[u.ID]
	avg, n := s.rating(u.ID)
	return entity.FreelancerSummary{
		ID:            u.ID,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Bio:           u.Bio,
		EmailVerified: u.EmailVerified,
		Skills:        s.termNames(entity.KindSkill, tax[entity.KindSkill]),
		Subjects:      s.termNames(entity.KindSubject, tax[entity.KindSubject]),
		AverageRating: avg,
		ReviewCount:   n,
	}
}

func matchesFreelancer(f entity.FreelancerSummary, q string) bool {
	hay := []string{f.Username, f.FirstName, f.LastName}
	hay = append(hay, f.Skills...)
	hay = append(hay, f.Subjects...)
	for _, h := range hay {
		if strings.Contains(strings.ToLower(h), q) {
			return true
		}
	}
	return false
}

func (s *Store) termNames(kind entity.TaxonomyKind, ids []int64) []string {
	out := []string{}
	for _, id := range ids {
		for _, t := range s.terms {
			if t.Kind == kind && t.ID == id {
				out = append(out, t.Name)
			}
		}
	}
	return out
}

func (s *Store) rating(recipient uuid.UUID) (float64, int) {
	var sum, n int
	for _, rv := range s.reviews {
		if rv.RecipientID == recipient {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

// taxonomy

type TaxonomyRepo struct{ s *Store }

func (r *TaxonomyRepo) ListTerms(_ context.Context, kind entity.TaxonomyKind) ([]entity.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Term{}
	for _, t := range r.s.terms {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TaxonomyRepo) ListPagePrices(context.Context) ([]entity.PagePrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.PagePrice{}, r.s.pagePrices...), nil
}

// profiles

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) CreatePortfolioItem(_ context.Context, p *entity.PortfolioItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = r.s.tick()
	cp := *p
	r.s.portfolio = append(r.s.portfolio, &cp)
	return nil
}

func (r *ProfileRepo) ListPortfolio(_ context.Context, freelancerID uuid.UUID) ([]entity.PortfolioItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.PortfolioItem{}
	for i := len(r.s.portfolio) - 1; i >= 0; i-- {
		if p := r.s.portfolio[i]; p.FreelancerID == freelancerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ProfileRepo) DeletePortfolioItem(_ context.Context, freelancerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, p := range r.s.portfolio {
		if p.ID == id && p.FreelancerID == freelancerID {
			r.s.portfolio = append(r.s.portfolio[:i], r.s.portfolio[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *ProfileRepo) CreateEducation(_ context.Context, e *entity.Education) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = r.s.tick()
	cp := *e
	cp.EducationLevels = append([]int64{}, e.EducationLevels...)
	r.s.educations = append(r.s.educations, &cp)
	return nil
}

func (r *ProfileRepo) ListEducation(_ context.Context, freelancerID uuid.UUID) ([]entity.Education, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Education{}
	for _, e := range r.s.educations {
		if e.FreelancerID == freelancerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *ProfileRepo) DeleteEducation(_ context.Context, freelancerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, e := range r.s.educations {
		if e.ID == id && e.FreelancerID == freelancerID {
			r.s.educations = append(r.s.educations[:i], r.s.educations[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *ProfileRepo) ReplaceTerms(_ context.Context, freelancerID uuid.UUID, t entity.Taxonomy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur := entity.Taxonomy{}
	for k, ids := range r.s.freelancerTax[freelancerID] {
		cur[k] = ids
	}
	for k, ids := range t {
		if len(ids) == 0 {
			delete(cur, k)
			continue
		}
		cur[k] = append([]int64{}, ids...)
	}
	r.s.freelancerTax[freelancerID] = cur
	return nil
}

// jobs

type JobRepo struct{ s *Store }

func (r *JobRepo) Create(_ context.Context, j *entity.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j.ID = uuid.New()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = r.s.tick()
	}
	if j.Taxonomy == nil {
		j.Taxonomy = entity.Taxonomy{}
	}
	cp := *j
	r.s.jobs = append(r.s.jobs, &cp)
	return nil
}

func (r *JobRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, j := range r.s.jobs {
		if j.ID == id {
			cp := *j
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *JobRepo) List(_ context.Context, f entity.JobFilter) ([]entity.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Job{}
	for i := len(r.s.jobs) - 1; i >= 0; i-- {
		j := r.s.jobs[i]
		if r.s.matchJob(j, f) {
			out = append(out, *j)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (s *Store) matchJob(j *entity.Job, f entity.JobFilter) bool {
	hire, hired := s.hires[j.ID]

	if f.ClientID != nil && j.ClientID != *f.ClientID {
		return false
	}
	if f.TitleQuery != "" && !containsFold(j.Title, f.TitleQuery) {
		return false
	}
	if f.Text != "" && !s.jobText(j, f.Text) {
		return false
	}
	if f.ExcludeHired && hired {
		return false
	}
	if f.ExcludeStarted && hired && hire.Started() {
		return false
	}
	if f.ExcludeProposedBy != nil && s.proposed(j.ID, *f.ExcludeProposedBy) {
		return false
	}
	if f.ExcludeInvitedFor != nil && s.openInvite(j.ID, *f.ExcludeInvitedFor) {
		return false
	}
	if f.InvitedFor != nil && !s.openInvite(j.ID, *f.InvitedFor) {
		return false
	}
	if f.HasProposals && !s.hasProposals(j.ID) {
		return false
	}
	if f.HasInvites && !s.hasInvites(j.ID) {
		return false
	}
	if len(f.EngagementStates) > 0 {
		if !hired || !stateIn(hire.State, f.EngagementStates) {
			return false
		}
	}
	if f.MatchTaxonomy != nil && !j.Taxonomy.Overlaps(f.MatchTaxonomy, entity.MatchingKinds) {
		return false
	}
	return true
}

func (s *Store) jobText(j *entity.Job, q string) bool {
	if containsFold(j.Title, q) || containsFold(j.Description, q) {
		return true
	}
	for _, k := range []entity.TaxonomyKind{entity.KindSkill, entity.KindExpertise} {
		for _, name := range s.termNames(k, j.Taxonomy[k]) {
			if containsFold(name, q) {
				return true
			}
		}
	}
	return false
}

func (s *Store) proposed(jobID, freelancerID uuid.UUID) bool {
	for _, p := range s.proposals {
		if p.JobID == jobID && p.FreelancerID == freelancerID {
			return true
		}
	}
	return false
}

func (s *Store) openInvite(jobID, freelancerID uuid.UUID) bool {
	for _, i := range s.invites {
		if i.JobID == jobID && i.FreelancerID == freelancerID && !i.Declined {
			return true
		}
	}
	return false
}

func (s *Store) hasProposals(jobID uuid.UUID) bool {
	for _, p := range s.proposals {
		if p.JobID == jobID {
			return true
		}
	}
	return false
}

func (s *Store) hasInvites(jobID uuid.UUID) bool {
	for _, i := range s.invites {
		if i.JobID == jobID {
			return true
		}
	}
	return false
}

func (r *JobRepo) CountsForClient(_ context.Context, clientID uuid.UUID) (entity.JobCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var c entity.JobCounts
	for _, j := range r.s.jobs {
		if j.ClientID != clientID {
			continue
		}
		c.All++
		if h, ok := r.s.hires[j.ID]; ok {
			switch {
			case h.Completed():
				c.Completed++
			case h.Pending():
				c.InProgress++
			}
		}
		for _, p := range r.s.proposals {
			if p.JobID == j.ID {
				c.Proposals++
			}
		}
		for _, i := range r.s.invites {
			if i.JobID == j.ID {
				c.Invites++
			}
		}
	}
	return c, nil
}

// proposals

type ProposalRepo struct{ s *Store }

func (r *ProposalRepo) Create(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = uuid.New()
	cp := *p
	r.s.proposals = append(r.s.proposals, &cp)
	return nil
}

func (r *ProposalRepo) find(id uuid.UUID) (int, *entity.Proposal) {
	for i, p := range r.s.proposals {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (r *ProposalRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, p := r.find(id)
	if p == nil {
		return nil, entity.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProposalRepo) Update(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, old := r.find(p.ID)
	if old == nil {
		return entity.ErrNotFound
	}
	cp := *p
	r.s.proposals[i] = &cp
	return nil
}

func (r *ProposalRepo) MarkViewed(_ context.Context, id uuid.UUID, at time.Time) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, p := r.find(id)
	if p == nil {
		return nil, entity.ErrNotFound
	}
	p.MarkViewed(at)
	cp := *p
	return &cp, nil
}

func (r *ProposalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, p := r.find(id)
	if p == nil {
		return entity.ErrNotFound
	}
	r.s.proposals = append(r.s.proposals[:i], r.s.proposals[i+1:]...)
	return nil
}

func (r *ProposalRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Proposal{}
	for _, p := range r.s.proposals {
		if p.JobID == jobID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ProposalRepo) ListByFreelancer(_ context.Context, freelancerID uuid.UUID, excludeStarted bool) ([]entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Proposal{}
	for _, p := range r.s.proposals {
		if p.FreelancerID != freelancerID {
			continue
		}
		if h, ok := r.s.hires[p.JobID]; excludeStarted && ok && h.FreelancerID == freelancerID && h.Started() {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *ProposalRepo) Withdraw(_ context.Context, d *entity.DeclinedJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, p := r.find(d.ProposalID)
	if p == nil {
		return entity.ErrNotFound
	}
	d.ID = uuid.New()
	cp := *d
	r.s.declined = append(r.s.declined, &cp)
	r.s.proposals = append(r.s.proposals[:i], r.s.proposals[i+1:]...)
	return nil
}

// invites

type InviteRepo struct{ s *Store }

func (r *InviteRepo) Create(_ context.Context, i *entity.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i.ID = uuid.New()
	cp := *i
	r.s.invites = append(r.s.invites, &cp)
	return nil
}

func (r *InviteRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, i := range r.s.invites {
		if i.ID == id {
			cp := *i
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *InviteRepo) Update(_ context.Context, in *entity.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, i := range r.s.invites {
		if i.ID == in.ID {
			cp := *in
			r.s.invites[k] = &cp
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *InviteRepo) Find(_ context.Context, f entity.InviteFilter) (*entity.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := len(r.s.invites) - 1; k >= 0; k-- {
		i := r.s.invites[k]
		switch {
		case i.JobID != f.JobID:
		case f.ClientID != nil && i.ClientID != *f.ClientID:
		case f.FreelancerID != nil && i.FreelancerID != *f.FreelancerID:
		case f.Accepted != nil && i.Accepted != *f.Accepted:
		case f.Declined != nil && i.Declined != *f.Declined:
		default:
			cp := *i
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

// engagements

type EngagementRepo struct{ s *Store }

func (r *EngagementRepo) Create(_ context.Context, h *entity.HiredFreelancer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hires[h.JobID]; ok {
		return entity.ErrAlreadyHired
	}
	h.ID = uuid.New()
	cp := *h
	r.s.hires[h.JobID] = &cp
	return nil
}

func (r *EngagementRepo) GetByJob(_ context.Context, jobID uuid.UUID) (*entity.HiredFreelancer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.hires[jobID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *EngagementRepo) Save(_ context.Context, h *entity.HiredFreelancer, from entity.EngagementState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.hires[h.JobID]
	if !ok || cur.ID != h.ID {
		return entity.ErrNotFound
	}
	if cur.State != from {
		return entity.ErrStateConflict
	}
	cp := *h
	r.s.hires[h.JobID] = &cp
	return nil
}

// ForceState rewrites the stored state, standing in for a concurrent writer.
func (r *EngagementRepo) ForceState(jobID uuid.UUID, state entity.EngagementState) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if h, ok := r.s.hires[jobID]; ok {
		h.State = state
	}
}

func (r *EngagementRepo) ListByFreelancer(_ context.Context, freelancerID uuid.UUID, states []entity.EngagementState) ([]entity.HiredFreelancer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.HiredFreelancer{}
	for _, h := range r.s.hires {
		if h.FreelancerID != freelancerID {
			continue
		}
		if len(states) > 0 && !stateIn(h.State, states) {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// submissions

type SubmissionRepo struct{ s *Store }

func (r *SubmissionRepo) CreateSubmission(_ context.Context, sub *entity.JobSubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub.ID = uuid.New()
	cp := *sub
	r.s.submissions = append(r.s.submissions, &cp)
	return nil
}

func (r *SubmissionRepo) ListSubmissions(_ context.Context, jobID uuid.UUID) ([]entity.JobSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.JobSubmission{}
	for _, sub := range r.s.submissions {
		if sub.JobID == jobID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *SubmissionRepo) LatestSubmission(_ context.Context, jobID uuid.UUID, freelancerID *uuid.UUID) (*entity.JobSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.submissions) - 1; i >= 0; i-- {
		sub := r.s.submissions[i]
		if sub.JobID != jobID || (freelancerID != nil && sub.FreelancerID != *freelancerID) {
			continue
		}
		cp := *sub
		return &cp, nil
	}
	return nil, entity.ErrNotFound
}

func (r *SubmissionRepo) MarkAllSatisfied(_ context.Context, jobID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sub := range r.s.submissions {
		if sub.JobID == jobID {
			sub.Satisfied = true
			n++
		}
	}
	return n, nil
}

func (r *SubmissionRepo) SetNeedRevision(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.submissions {
		if sub.ID == id {
			sub.NeedRevision = true
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *SubmissionRepo) CreateRevision(_ context.Context, rev *entity.Revision) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rev.ID = uuid.New()
	cp := *rev
	r.s.revisions = append(r.s.revisions, &cp)
	return nil
}

func (r *SubmissionRepo) ListRevisions(_ context.Context, jobID uuid.UUID) ([]entity.Revision, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Revision{}
	for _, rev := range r.s.revisions {
		if rev.JobID == jobID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (r *SubmissionRepo) CreateRevisionReason(_ context.Context, rr *entity.RevisionReason) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rr.ID = uuid.New()
	cp := *rr
	r.s.reasons = append(r.s.reasons, &cp)
	return nil
}

func (r *SubmissionRepo) LatestRevisionReason(_ context.Context, jobID uuid.UUID) (*entity.RevisionReason, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.reasons) - 1; i >= 0; i-- {
		if rr := r.s.reasons[i]; rr.JobID == jobID {
			cp := *rr
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

// payments

type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) CreateTransaction(_ context.Context, t *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.s.transactions = append(r.s.transactions, &cp)
	return nil
}

func (r *PaymentRepo) GetTransactionByInvoice(_ context.Context, invoiceID string) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.InvoiceID == invoiceID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *PaymentRepo) tx(id uuid.UUID) *entity.Transaction {
	for _, t := range r.s.transactions {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (r *PaymentRepo) UpdateTransactionStatus(_ context.Context, id uuid.UUID, status entity.TransactionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.tx(id)
	if t == nil {
		return entity.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = r.s.tick()
	return nil
}

func (r *PaymentRepo) LinkTransactionJob(_ context.Context, id, jobID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.tx(id)
	if t == nil {
		return entity.ErrNotFound
	}
	t.JobID = &jobID
	return nil
}

func (r *PaymentRepo) ListTransactions(_ context.Context, userID uuid.UUID) ([]entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Transaction{}
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		if t := r.s.transactions[i]; t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *PaymentRepo) GetWallet(_ context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *PaymentRepo) CreateMpesa(_ context.Context, a *entity.MpesaAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = r.s.tick()
	cp := *a
	r.s.mpesa = append(r.s.mpesa, &cp)
	return nil
}

func (r *PaymentRepo) ListMpesa(_ context.Context, userID uuid.UUID) ([]entity.MpesaAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.MpesaAccount{}
	for _, a := range r.s.mpesa {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *PaymentRepo) FindMpesa(_ context.Context, userID uuid.UUID, phone string) (*entity.MpesaAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.mpesa {
		if a.UserID == userID && a.PhoneNumber == phone {
			cp := *a
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *PaymentRepo) DeleteMpesa(_ context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, a := range r.s.mpesa {
		if a.ID == id && a.UserID == userID {
			r.s.mpesa = append(r.s.mpesa[:i], r.s.mpesa[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *PaymentRepo) CreatePayPal(_ context.Context, a *entity.PayPalAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = r.s.tick()
	cp := *a
	r.s.paypal = append(r.s.paypal, &cp)
	return nil
}

func (r *PaymentRepo) ListPayPal(_ context.Context, userID uuid.UUID) ([]entity.PayPalAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.PayPalAccount{}
	for _, a := range r.s.paypal {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *PaymentRepo) DeletePayPal(_ context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, a := range r.s.paypal {
		if a.ID == id && a.UserID == userID {
			r.s.paypal = append(r.s.paypal[:i], r.s.paypal[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *PaymentRepo) CreateCard(_ context.Context, c *entity.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = r.s.tick()
	cp := *c
	r.s.cards = append(r.s.cards, &cp)
	return nil
}

func (r *PaymentRepo) ListCards(_ context.Context, userID uuid.UUID) ([]entity.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Card{}
	for _, c := range r.s.cards {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *PaymentRepo) GetCard(_ context.Context, userID, id uuid.UUID) (*entity.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cards {
		if c.ID == id && c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *PaymentRepo) DeleteCard(_ context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.cards {
		if c.ID == id && c.UserID == userID {
			r.s.cards = append(r.s.cards[:i], r.s.cards[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

// messages

type MessageRepo struct{ s *Store }

func (r *MessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.New()
	m.SentAt = r.s.tick()
	cp := *m
	r.s.messages = append(r.s.messages, &cp)
	return nil
}

func (r *MessageRepo) Thread(_ context.Context, a, b uuid.UUID) ([]entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Message{}
	for _, m := range r.s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *MessageRepo) MarkThreadRead(_ context.Context, sender, receiver uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.messages {
		if m.SenderID == sender && m.ReceiverID == receiver && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *MessageRepo) Conversations(_ context.Context, userID uuid.UUID) ([]entity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byPartner := map[uuid.UUID]*entity.Conversation{}
	for _, m := range r.s.messages {
		var partner uuid.UUID
		switch userID {
		case m.SenderID:
			partner = m.ReceiverID
		case m.ReceiverID:
			partner = m.SenderID
		default:
			continue
		}
		c, ok := byPartner[partner]
		if !ok {
			c = &entity.Conversation{PartnerID: partner}
			byPartner[partner] = c
		}
		c.LastMessage = *m
		if m.ReceiverID == userID && !m.IsRead {
			c.UnreadCount++
		}
	}
	out := make([]entity.Conversation, 0, len(byPartner))
	for _, c := range byPartner {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessage.SentAt.After(out[j].LastMessage.SentAt) })
	return out, nil
}

func (r *MessageRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.messages {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// reviews

type ReviewRepo struct{ s *Store }

func (r *ReviewRepo) Create(_ context.Context, rv *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv.ID = uuid.New()
	cp := *rv
	r.s.reviews = append(r.s.reviews, &cp)
	return nil
}

func (r *ReviewRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID) ([]entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Review{}
	for i := len(r.s.reviews) - 1; i >= 0; i-- {
		if rv := r.s.reviews[i]; rv.RecipientID == recipientID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *ReviewRepo) Summary(_ context.Context, recipientID uuid.UUID) (entity.RatingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	avg, n := r.s.rating(recipientID)
	return entity.RatingSummary{Average: avg, Count: n}, nil
}

// notifications

type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = uuid.New()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.tick()
	}
	cp := *n
	r.s.notifications = append(r.s.notifications, &cp)
	return nil
}

func (r *NotificationRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *NotificationRepo) ListUnread(_ context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Notification{}
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		if n := r.s.notifications[i]; n.UserID == userID && !n.IsRead {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var cnt int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && want[n.ID] {
			n.IsRead = true
			cnt++
		}
	}
	return cnt, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var cnt int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			cnt++
		}
	}
	return cnt, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func stateIn(s entity.EngagementState, states []entity.EngagementState) bool {
	for _, x := range states {
		if s == x {
			return true
		}
	}
	return false
}

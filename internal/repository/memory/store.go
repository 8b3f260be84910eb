// Package memory is an in-process implementation of the repositories, used by
// service and bot tests. One mutex guards everything, so each method is atomic
// the same way the SQL statements are.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	users        map[uuid.UUID]*domain.User
	byTelegramID map[int64]uuid.UUID
	txs          []domain.CoinTransaction
	codes        map[string]*domain.PaymentCode
	referrals    map[uuid.UUID]*domain.ReferralCode
	uses         []domain.ReferralUse
	orders       []domain.ContentOrder
	audit        []*domain.AuditLog
}

func New() *Store {
	return &Store{
		now:          time.Now,
		users:        make(map[uuid.UUID]*domain.User),
		byTelegramID: make(map[int64]uuid.UUID),
		codes:        make(map[string]*domain.PaymentCode),
		referrals:    make(map[uuid.UUID]*domain.ReferralCode),
	}
}

func (s *Store) Users() *Users               { return &Users{s} }
func (s *Store) Balances() *Balances         { return &Balances{s} }
func (s *Store) Transactions() *Transactions { return &Transactions{s} }
func (s *Store) PaymentCodes() *PaymentCodes { return &PaymentCodes{s} }
func (s *Store) Referrals() *Referrals       { return &Referrals{s} }
func (s *Store) Orders() *Orders             { return &Orders{s} }
func (s *Store) Audit() *Audit               { return &Audit{s} }
func (s *Store) Stats() *Stats               { return &Stats{s} }

// SetBalance overwrites a balance without a transaction row; test setup only
func (s *Store) SetBalance(userID uuid.UUID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.CoinBalance = balance
	}
}

// ReferralUses returns a copy of the recorded referral uses
func (s *Store) ReferralUses() []domain.ReferralUse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ReferralUse(nil), s.uses...)
}

// AuditLogs returns a copy of the audit trail
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditLog, 0, len(s.audit))
	for _, l := range s.audit {
		out = append(out, *l)
	}
	return out
}

func (s *Store) credit(userID uuid.UUID, amount int64, txType domain.TxType, desc string) (int64, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.CoinBalance += amount
	s.appendTx(userID, amount, txType, desc)
	return u.CoinBalance, nil
}

func (s *Store) debit(userID uuid.UUID, amount int64, txType domain.TxType, desc string) (int64, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if u.CoinBalance < amount {
		return 0, repository.ErrInsufficientFunds
	}
	u.CoinBalance -= amount
	s.appendTx(userID, -amount, txType, desc)
	return u.CoinBalance, nil
}

func (s *Store) appendTx(userID uuid.UUID, coins int64, txType domain.TxType, desc string) {
	s.txs = append(s.txs, domain.CoinTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Coins:       coins,
		Type:        txType,
		Description: desc,
		CreatedAt:   s.now(),
	})
}

// Users

type Users struct{ s *Store }

func (r *Users) GetByTelegramID(_ context.Context, tgID int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byTelegramID[tgID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := *r.s.users[id]
	return &u, nil
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Users) Upsert(_ context.Context, in *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	if id, ok := r.s.byTelegramID[in.TelegramID]; ok {
		u := r.s.users[id]
		u.Username, u.FirstName, u.LastName = in.Username, in.FirstName, in.LastName
		u.UpdatedAt = now
		cp := *u
		return &cp, nil
	}
	u := &domain.User{
		ID:         uuid.New(),
		TelegramID: in.TelegramID,
		Username:   in.Username,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.s.users[u.ID] = u
	r.s.byTelegramID[u.TelegramID] = u.ID
	cp := *u
	return &cp, nil
}

// Delete cascades to every dependent record
func (r *Users) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	delete(r.s.byTelegramID, u.TelegramID)
	delete(r.s.users, id)
	delete(r.s.referrals, id)

	txs := r.s.txs[:0]
	for _, t := range r.s.txs {
		if t.UserID != id {
			txs = append(txs, t)
		}
	}
	r.s.txs = txs
	for code, p := range r.s.codes {
		if p.UserID == id {
			delete(r.s.codes, code)
		}
	}
	uses := r.s.uses[:0]
	for _, ru := range r.s.uses {
		if ru.ReferrerID != id && ru.ReferredID != id {
			uses = append(uses, ru)
		}
	}
	r.s.uses = uses
	orders := r.s.orders[:0]
	for _, o := range r.s.orders {
		if o.UserID != id {
			orders = append(orders, o)
		}
	}
	r.s.orders = orders
	return nil
}

func (r *Users) ConfirmSubscription(_ context.Context, g domain.SubscriptionGrant) (domain.SubscriptionResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var res domain.SubscriptionResult
	u, ok := r.s.users[g.UserID]
	if !ok {
		return res, repository.ErrNotFound
	}
	if u.ChannelSubscriber {
		res.Balance = u.CoinBalance
		return res, nil
	}
	u.ChannelSubscriber = true
	res.FirstConfirmation = true
	res.Balance, _ = r.s.credit(g.UserID, g.Bonus, domain.TxBonus, "Kanalga obuna bonusi")

	if g.ReferrerID == nil || *g.ReferrerID == g.UserID {
		return res, nil
	}
	referrer, ok := r.s.users[*g.ReferrerID]
	if !ok {
		return res, nil
	}
	for _, ru := range r.s.uses {
		if ru.ReferredID == g.UserID {
			return res, nil
		}
	}
	r.s.uses = append(r.s.uses, domain.ReferralUse{
		ID:         uuid.New(),
		ReferrerID: referrer.ID,
		ReferredID: g.UserID,
		Reward:     g.ReferralBonus,
		CreatedAt:  r.s.now(),
	})
	_, _ = r.s.credit(referrer.ID, g.ReferralBonus, domain.TxReferral, "Referral bonus")
	if rc, ok := r.s.referrals[referrer.ID]; ok {
		rc.TotalReferrals++
	}
	res.ReferralRewarded = true
	res.ReferrerID = referrer.ID
	res.ReferrerTgID = referrer.TelegramID
	return res, nil
}

// Balances

type Balances struct{ s *Store }

func (r *Balances) Balance(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return u.CoinBalance, nil
}

func (r *Balances) Credit(_ context.Context, userID uuid.UUID, amount int64, txType domain.TxType, desc string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.credit(userID, amount, txType, desc)
}

func (r *Balances) Debit(_ context.Context, userID uuid.UUID, amount int64, txType domain.TxType, desc string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.debit(userID, amount, txType, desc)
}

// Transactions

type Transactions struct{ s *Store }

func (r *Transactions) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.CoinTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.CoinTransaction
	for i := len(r.s.txs) - 1; i >= 0; i-- {
		if r.s.txs[i].UserID == userID {
			out = append(out, r.s.txs[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *Transactions) SumByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, t := range r.s.txs {
		if t.UserID == userID {
			sum += t.Coins
		}
	}
	return sum, nil
}

// PaymentCodes

type PaymentCodes struct{ s *Store }

func (r *PaymentCodes) Create(_ context.Context, p *domain.PaymentCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.codes[p.Code]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.s.users[p.UserID]; !ok {
		return fmt.Errorf("payment code for unknown user %s", p.UserID)
	}
	p.ID = uuid.New()
	p.CreatedAt = r.s.now()
	cp := *p
	r.s.codes[p.Code] = &cp
	return nil
}

func (r *PaymentCodes) GetByCode(_ context.Context, code string) (*domain.PaymentCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.codes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PaymentCodes) Redeem(_ context.Context, code string, now time.Time) (*domain.Redemption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.codes[code]
	if !ok || !p.Redeemable(now) {
		return nil, repository.ErrNotFound
	}
	u, ok := r.s.users[p.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Used = true
	usedAt := now
	p.UsedAt = &usedAt

	balance, err := r.s.credit(p.UserID, p.Coins, domain.TxPurchase,
		fmt.Sprintf("%d coin sotib olindi ($%s)", p.Coins, p.AmountUSD.StringFixed(2)))
	if err != nil {
		return nil, err
	}
	cp := *p
	return &domain.Redemption{Code: &cp, UserTelegramID: u.TelegramID, NewBalance: balance}, nil
}

// Referrals

type Referrals struct{ s *Store }

func (r *Referrals) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.ReferralCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.referrals[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *Referrals) GetByCode(_ context.Context, code string) (*domain.ReferralCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.referrals {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Referrals) Create(_ context.Context, in *domain.ReferralCode) (*domain.ReferralCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.referrals[in.UserID]; ok {
		cp := *c
		return &cp, nil
	}
	for _, c := range r.s.referrals {
		if c.Code == in.Code {
			return nil, repository.ErrDuplicate
		}
	}
	c := &domain.ReferralCode{ID: uuid.New(), UserID: in.UserID, Code: in.Code, CreatedAt: r.s.now()}
	r.s.referrals[in.UserID] = c
	cp := *c
	return &cp, nil
}

func (r *Referrals) Stats(_ context.Context, userID uuid.UUID) (domain.ReferralStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var st domain.ReferralStats
	for _, ru := range r.s.uses {
		if ru.ReferrerID == userID {
			st.TotalReferrals++
			st.TotalEarned += ru.Reward
		}
	}
	return st, nil
}

// Orders

type Orders struct{ s *Store }

func (r *Orders) Place(_ context.Context, o *domain.ContentOrder) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, err := r.s.debit(o.UserID, o.CostCoins, domain.TxOrder, fmt.Sprintf("%s: %s", o.ContentType, o.Title))
	if err != nil {
		return 0, err
	}
	o.ID = uuid.New()
	o.Status = domain.OrderPending
	o.CreatedAt = r.s.now()
	r.s.orders = append(r.s.orders, *o)
	return balance, nil
}

func (r *Orders) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.ContentOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ContentOrder
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if r.s.orders[i].UserID == userID {
			out = append(out, r.s.orders[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Audit

type Audit struct{ s *Store }

func (r *Audit) Create(_ context.Context, l *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = int64(len(r.s.audit) + 1)
	l.CreatedAt = r.s.now()
	cp := *l
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

// Stats

type Stats struct{ s *Store }

func (r *Stats) Stats(_ context.Context, since time.Time) (*domain.Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	st := &domain.Stats{TotalReferrals: int64(len(r.s.uses))}
	for _, u := range r.s.users {
		st.TotalUsers++
		st.CoinsInCirculation += u.CoinBalance
		if u.ChannelSubscriber {
			st.Subscribers++
		}
	}
	for _, p := range r.s.codes {
		switch p.State(now) {
		case domain.CodeActive:
			st.ActiveCodes++
		case domain.CodeUsed:
			st.RedeemedCodes++
		}
	}
	for _, o := range r.s.orders {
		st.TotalOrders++
		if !o.CreatedAt.Before(since) {
			st.OrdersToday++
		}
	}
	for _, t := range r.s.txs {
		if t.Type == domain.TxPurchase && !t.CreatedAt.Before(since) {
			st.CoinsPurchasedToday += t.Coins
		}
	}
	return st, nil
}

// AllOrders returns every stored order sorted by creation time
func (s *Store) AllOrders() []domain.ContentOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.ContentOrder(nil), s.orders...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

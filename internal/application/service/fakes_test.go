package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/lock"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/currency"
	"github.com/sangkips/hisab-api/pkg/document"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory document store shared by the fake repositories
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	customers    map[uuid.UUID]*entity.Customer
	products     map[uuid.UUID]*entity.Product
	transactions []*entity.Transaction
	personal     map[uuid.UUID]*entity.PersonalTransaction
	settings     map[uuid.UUID]*entity.StoreSettings
	fail         error
	failEntries  error
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uuid.UUID]*entity.User{},
		customers: map[uuid.UUID]*entity.Customer{},
		products:  map[uuid.UUID]*entity.Product{},
		personal:  map[uuid.UUID]*entity.PersonalTransaction{},
		settings:  map[uuid.UUID]*entity.StoreSettings{},
	}
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func page[T any](items []T, params *pagination.PaginationParams) []T {
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// users

type fakeUserRepo struct{ st *memStore }

func (r fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.fail != nil {
		return r.st.fail
	}
	assignID(&u.ID)
	cp := *u
	r.st.users[u.ID] = &cp
	return nil
}

func (r fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.fail != nil {
		return nil, r.st.fail
	}
	if u, ok := r.st.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.fail != nil {
		return nil, r.st.fail
	}
	for _, u := range r.st.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) Update(ctx context.Context, u *entity.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cp := *u
	r.st.users[u.ID] = &cp
	return nil
}

// customers

type fakeCustomerRepo struct{ st *memStore }

func (r fakeCustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	assignID(&c.ID)
	c.CreatedAt = time.Now()
	cp := *c
	r.st.customers[c.ID] = &cp
	return nil
}

func (r fakeCustomerRepo) get(accountID, id uuid.UUID, unscoped bool) *entity.Customer {
	c, ok := r.st.customers[id]
	if !ok || c.UserID != accountID || (!unscoped && c.DeletedAt.Valid) {
		return nil
	}
	cp := *c
	return &cp
}

func (r fakeCustomerRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Customer, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.get(accountID, id, false), nil
}

func (r fakeCustomerRepo) GetByIDUnscoped(ctx context.Context, accountID, id uuid.UUID) (*entity.Customer, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.get(accountID, id, true), nil
}

func (r fakeCustomerRepo) GetByName(ctx context.Context, accountID uuid.UUID, name string) (*entity.Customer, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, c := range r.st.customers {
		if c.UserID == accountID && !c.DeletedAt.Valid && c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeCustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	stored, ok := r.st.customers[c.ID]
	if !ok {
		return nil
	}
	stored.Name, stored.Phone, stored.Upazila = c.Name, c.Phone, c.Upazila
	return nil
}

func (r fakeCustomerRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if c, ok := r.st.customers[id]; ok && c.UserID == accountID {
		c.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return nil
}

func (r fakeCustomerRepo) all(accountID uuid.UUID) []entity.Customer {
	out := []entity.Customer{}
	for _, c := range r.st.customers {
		if c.UserID == accountID && !c.DeletedAt.Valid {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r fakeCustomerRepo) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var matched []entity.Customer
	for _, c := range r.all(accountID) {
		if search == "" || strings.Contains(c.Name, search) || strings.Contains(c.Phone, search) {
			matched = append(matched, c)
		}
	}
	return page(matched, params), int64(len(matched)), nil
}

func (r fakeCustomerRepo) ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.Customer, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.all(accountID), nil
}

func (r fakeCustomerRepo) Count(ctx context.Context, accountID uuid.UUID) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return int64(len(r.all(accountID))), nil
}

func (r fakeCustomerRepo) SumTotalDue(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	sum := decimal.Zero
	for _, c := range r.all(accountID) {
		sum = sum.Add(c.TotalDue)
	}
	return sum, nil
}

// products

type fakeProductRepo struct{ st *memStore }

func (r fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	assignID(&p.ID)
	cp := *p
	r.st.products[p.ID] = &cp
	return nil
}

func (r fakeProductRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, ok := r.st.products[id]
	if !ok || p.UserID != accountID || p.DeletedAt.Valid {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r fakeProductRepo) GetByIDs(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := []entity.Product{}
	for _, id := range ids {
		if p, ok := r.st.products[id]; ok && p.UserID == accountID && !p.DeletedAt.Valid {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r fakeProductRepo) Update(ctx context.Context, p *entity.Product, columns []string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	stored, ok := r.st.products[p.ID]
	if !ok || stored.UserID != p.UserID {
		return nil
	}
	for _, col := range columns {
		switch col {
		case "name":
			stored.Name = p.Name
		case "category":
			stored.Category = p.Category
		case "quantity":
			stored.Quantity = p.Quantity
		case "buying_price":
			stored.BuyingPrice = p.BuyingPrice
		}
	}
	return nil
}

func (r fakeProductRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if p, ok := r.st.products[id]; ok && p.UserID == accountID {
		p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return nil
}

func (r fakeProductRepo) all(accountID uuid.UUID) []entity.Product {
	out := []entity.Product{}
	for _, p := range r.st.products {
		if p.UserID == accountID && !p.DeletedAt.Valid {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r fakeProductRepo) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, filter repository.ProductFilter) ([]entity.Product, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var matched []entity.Product
	for _, p := range r.all(accountID) {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(p.Name, filter.Search) {
			continue
		}
		matched = append(matched, p)
	}
	return page(matched, params), int64(len(matched)), nil
}

func (r fakeProductRepo) ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.all(accountID), nil
}

func (r fakeProductRepo) LowStock(ctx context.Context, accountID uuid.UUID, threshold int) ([]entity.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := []entity.Product{}
	for _, p := range r.all(accountID) {
		if p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeProductRepo) Count(ctx context.Context, accountID uuid.UUID) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return int64(len(r.all(accountID))), nil
}

// ledger

type fakeLedgerRepo struct{ st *memStore }

// Apply mirrors the SQL unit: all checks happen before any state changes.
func (r fakeLedgerRepo) Apply(ctx context.Context, tx *entity.Transaction, policy enum.StockPolicy) (*repository.ApplyResult, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.fail != nil {
		return nil, r.st.fail
	}
	if r.st.failEntries != nil {
		return nil, r.st.failEntries
	}

	c, ok := r.st.customers[tx.CustomerID]
	if !ok || c.UserID != tx.UserID || c.DeletedAt.Valid {
		return nil, ledger.ErrCustomerNotFound
	}

	result := &repository.ApplyResult{}
	left := map[uuid.UUID]int{}
	for _, move := range ledger.StockMoves(tx.Items) {
		p, ok := r.st.products[move.ProductID]
		if !ok || p.UserID != tx.UserID || p.DeletedAt.Valid {
			return nil, ledger.ErrProductNotFound
		}
		q := p.Quantity - move.Quantity
		if q < 0 {
			if policy == enum.StockPolicyReject {
				return nil, ledger.ErrInsufficientStock
			}
			q = 0
			result.Clamped = append(result.Clamped, move.ProductID)
		}
		left[move.ProductID] = q
	}

	assignID(&tx.ID)
	for i := range tx.Items {
		assignID(&tx.Items[i].ID)
		tx.Items[i].TransactionID = tx.ID
	}
	tx.CreatedAt = time.Now()
	cp := *tx
	cp.Items = append([]entity.TransactionItem(nil), tx.Items...)
	r.st.transactions = append(r.st.transactions, &cp)

	c.TotalDue = c.TotalDue.Add(tx.DueAmount)
	for id, q := range left {
		r.st.products[id].Quantity = q
	}
	result.CustomerTotalDue = c.TotalDue
	return result, nil
}

func (r fakeLedgerRepo) OpenAccount(ctx context.Context, c *entity.Customer, opening *entity.Transaction) (*repository.ApplyResult, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.fail != nil {
		return nil, r.st.fail
	}
	if opening != nil && r.st.failEntries != nil {
		return nil, r.st.failEntries
	}

	assignID(&c.ID)
	c.CreatedAt = time.Now()
	if opening != nil {
		opening.CustomerID = c.ID
		assignID(&opening.ID)
		opening.CreatedAt = time.Now()
		cp := *opening
		r.st.transactions = append(r.st.transactions, &cp)
		c.TotalDue = c.TotalDue.Add(opening.DueAmount)
	}
	cp := *c
	r.st.customers[c.ID] = &cp
	return &repository.ApplyResult{CustomerTotalDue: c.TotalDue}, nil
}

func (r fakeLedgerRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Transaction, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, t := range r.st.transactions {
		if t.ID == id && t.UserID == accountID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeLedgerRepo) filtered(accountID uuid.UUID, f repository.TransactionFilter) []entity.Transaction {
	out := []entity.Transaction{}
	for _, t := range r.st.transactions {
		if t.UserID != accountID {
			continue
		}
		if f.CustomerID != nil && t.CustomerID != *f.CustomerID {
			continue
		}
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if f.From != nil && t.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !t.Date.Before(*f.To) {
			continue
		}
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r fakeLedgerRepo) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, f repository.TransactionFilter) ([]entity.Transaction, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	all := r.filtered(accountID, f)
	return page(all, params), int64(len(all)), nil
}

func (r fakeLedgerRepo) ListAll(ctx context.Context, accountID uuid.UUID, f repository.TransactionFilter) ([]entity.Transaction, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.filtered(accountID, f), nil
}

func (r fakeLedgerRepo) DueByCustomer(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	dues := map[uuid.UUID]decimal.Decimal{}
	for _, t := range r.st.transactions {
		if t.UserID == accountID {
			dues[t.CustomerID] = dues[t.CustomerID].Add(t.DueAmount)
		}
	}
	return dues, nil
}

func (r fakeLedgerRepo) SetTotalDue(ctx context.Context, accountID uuid.UUID, dues map[uuid.UUID]decimal.Decimal) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for id, due := range dues {
		if c, ok := r.st.customers[id]; ok && c.UserID == accountID {
			c.TotalDue = due
		}
	}
	return nil
}

// personal

type fakePersonalRepo struct{ st *memStore }

func (r fakePersonalRepo) Create(ctx context.Context, e *entity.PersonalTransaction) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	assignID(&e.ID)
	cp := *e
	r.st.personal[e.ID] = &cp
	return nil
}

func (r fakePersonalRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.PersonalTransaction, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if e, ok := r.st.personal[id]; ok && e.UserID == accountID {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r fakePersonalRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.personal, id)
	return nil
}

func (r fakePersonalRepo) all(accountID uuid.UUID, t enum.EntryType) []entity.PersonalTransaction {
	out := []entity.PersonalTransaction{}
	for _, e := range r.st.personal {
		if e.UserID == accountID && (t == "" || e.Type == t) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r fakePersonalRepo) List(ctx context.Context, accountID uuid.UUID, params *pagination.PaginationParams, t enum.EntryType) ([]entity.PersonalTransaction, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	all := r.all(accountID, t)
	return page(all, params), int64(len(all)), nil
}

func (r fakePersonalRepo) ListAll(ctx context.Context, accountID uuid.UUID) ([]entity.PersonalTransaction, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.all(accountID, ""), nil
}

// settings

type fakeSettingsRepo struct{ st *memStore }

func (r fakeSettingsRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.StoreSettings, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if s, ok := r.st.settings[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r fakeSettingsRepo) Create(ctx context.Context, s *entity.StoreSettings) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.settings[s.UserID]; ok {
		return nil
	}
	assignID(&s.ID)
	cp := *s
	r.st.settings[s.UserID] = &cp
	return nil
}

func (r fakeSettingsRepo) Update(ctx context.Context, s *entity.StoreSettings) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cp := *s
	r.st.settings[s.UserID] = &cp
	return nil
}

type fakeDemoRepo struct{ st *memStore }

// LoadDemo stores nothing unless every write can happen
func (r fakeDemoRepo) LoadDemo(ctx context.Context, accountID uuid.UUID, customers []*entity.Customer, products []*entity.Product, storeName string) (*entity.StoreSettings, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.fail != nil {
		return nil, r.st.fail
	}

	now := time.Now()
	for _, c := range customers {
		assignID(&c.ID)
		c.CreatedAt = now
		cp := *c
		r.st.customers[c.ID] = &cp
	}
	for _, p := range products {
		assignID(&p.ID)
		p.CreatedAt = now
		cp := *p
		r.st.products[p.ID] = &cp
	}
	settings, ok := r.st.settings[accountID]
	if !ok {
		settings = entity.DefaultStoreSettings(accountID)
		assignID(&settings.ID)
		r.st.settings[accountID] = settings
	}
	settings.Name = storeName
	cp := *settings
	return &cp, nil
}

// blob store

type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memBlobStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return "mem://" + key, nil
}

func (s *memBlobStore) Kind() string { return "memory" }

func (s *memBlobStore) Load(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[strings.TrimPrefix(url, "mem://")]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}

// harness wires every service over one memStore

type harness struct {
	st        *memStore
	sess      *account.Session
	broker    *realtime.MemoryBroker
	locker    *lock.LocalLocker
	blobs     *memBlobStore
	customers *CustomerService
	products  *ProductService
	ledger    *LedgerService
	settings  *SettingsService
	personal  *PersonalService
	reports   *ReportService
	transfer  *TransferService
	documents *DocumentService
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newHarness(policy enum.StockPolicy) *harness {
	st := newMemStore()
	log := testLogger()
	broker := realtime.NewMemoryBroker()
	locker := lock.NewLocalLocker()
	blobs := &memBlobStore{}
	loc := time.FixedZone("BDT", 6*60*60)

	h := &harness{
		st:     st,
		sess:   account.NewSession(uuid.New(), "owner@example.com"),
		broker: broker,
		locker: locker,
		blobs:  blobs,
	}
	h.customers = NewCustomerService(fakeCustomerRepo{st}, phoneValidator(), broker, log)
	h.products = NewProductService(fakeProductRepo{st}, broker, log)
	h.ledger = NewLedgerService(fakeLedgerRepo{st}, fakeCustomerRepo{st}, fakeProductRepo{st}, policy, broker, log)
	h.settings = NewSettingsService(fakeSettingsRepo{st}, blobs, 2<<20, broker, log)
	h.personal = NewPersonalService(fakePersonalRepo{st}, broker, log)
	h.reports = NewReportService(fakeLedgerRepo{st}, loc, log)
	h.transfer = NewTransferService(fakeCustomerRepo{st}, fakeProductRepo{st}, fakeLedgerRepo{st}, h.ledger, locker, time.Minute, loc, broker, log)
	h.documents = NewDocumentService(h.ledger, h.settings, document.NewRenderer("", currency.NewFormatter("BDT")), blobs, loc, log)
	return h
}

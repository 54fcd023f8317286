package service

import (
	"context"

	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DemoStoreName is the store name set by the demo loader
const DemoStoreName = "স্মার্ট ইলেকট্রনিক্স"

var (
	demoCustomers = []entity.Customer{
		{Name: "রহিম উল্লাহ", Phone: "01712345678", Upazila: "মিরপুর"},
		{Name: "করিম শেখ", Phone: "01887654321", Upazila: "উত্তরা"},
	}
	demoProducts = []entity.Product{
		{Name: "স্মার্টফোন X", Category: "ইলেকট্রনিক্স", Quantity: 15, BuyingPrice: decimal.NewFromInt(12000)},
		{Name: "হেডফোন প্রো", Category: "এক্সেসরিজ", Quantity: 5, BuyingPrice: decimal.NewFromInt(800)},
	}
)

// DemoService loads a small sample data set into an account
type DemoService struct {
	repo   repository.DemoRepository
	events notifier
	log    logrus.FieldLogger
}

// NewDemoService creates a new demo loader
func NewDemoService(repo repository.DemoRepository, broker realtime.Broker, log logrus.FieldLogger) *DemoService {
	return &DemoService{repo: repo, events: newNotifier(broker, log), log: log}
}

// DemoResult lists what the loader created
type DemoResult struct {
	Customers []*entity.Customer    `json:"customers"`
	Products  []*entity.Product     `json:"products"`
	Settings  *entity.StoreSettings `json:"settings"`
}

// Load creates the demo customers and products and renames the store, all or
// nothing. Each call adds another copy; nothing is deduplicated.
func (s *DemoService) Load(ctx context.Context, sess *account.Session) (*DemoResult, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	result := &DemoResult{}
	for _, c := range demoCustomers {
		c.UserID = sess.AccountID
		result.Customers = append(result.Customers, &c)
	}
	for _, p := range demoProducts {
		p.UserID = sess.AccountID
		result.Products = append(result.Products, &p)
	}

	settings, err := s.repo.LoadDemo(ctx, sess.AccountID, result.Customers, result.Products, DemoStoreName)
	if err != nil {
		s.log.WithField("account_id", sess.AccountID).WithError(err).Error("failed to load demo data")
		return nil, err
	}
	result.Settings = settings

	for _, c := range result.Customers {
		s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionCreated, c.ID)
	}
	for _, p := range result.Products {
		s.events.notify(ctx, sess.AccountID, CollectionProducts, realtime.ActionCreated, p.ID)
	}
	s.events.notify(ctx, sess.AccountID, CollectionSettings, realtime.ActionUpdated, settings.ID)
	return result, nil
}

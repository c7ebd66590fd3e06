package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
	"github.com/rihanvyakoob07/authenflow-platform/internal/queue"
)

// ProductStore is satisfied by *repository.ProductRepo.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uint64) (*model.Product, error)
	ListAll(ctx context.Context) ([]*model.Product, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]*model.Product, error)
	Update(ctx context.Context, id uint64, ch model.ProductChanges) (*model.Product, error)
	Delete(ctx context.Context, id uint64) error
	IncrementClicks(ctx context.Context, id uint64) error
	AppendReviews(ctx context.Context, productID uint64, reviews []model.Review) (*model.Product, error)
	Count(ctx context.Context) (int64, error)
	TotalClicks(ctx context.Context) (int64, error)
}

// ProductInput is the body of POST /api/products.  InStock defaults to
// true when omitted.
type ProductInput struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Images       []string `json:"images" validate:"dive,required"`
	Price        float64  `json:"price" validate:"gte=0"`
	Category     string   `json:"category" validate:"required"`
	InStock      *bool    `json:"inStock"`
	PurchaseLink string   `json:"purchaseLink" validate:"required"`
}

// ProductPatch is the body of PUT /api/products/:id.  Only non-nil fields
// are applied; a nil Images slice leaves the images untouched.
type ProductPatch struct {
	Title        *string  `json:"title" validate:"omitempty,min=1"`
	Description  *string  `json:"description" validate:"omitempty,min=1"`
	Images       []string `json:"images" validate:"omitempty,dive,required"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Category     *string  `json:"category" validate:"omitempty,min=1"`
	InStock      *bool    `json:"inStock"`
	PurchaseLink *string  `json:"purchaseLink" validate:"omitempty,min=1"`
}

// ReviewInput is the body of POST /api/products/:id/reviews.
type ReviewInput struct {
	Rating  float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string  `json:"comment" validate:"required"`
}

// SeedReview is one entry of a bulk review injection.  Seeded reviews
// carry a display name but are never attributed to a stored user.
type SeedReview struct {
	Name    string  `json:"name" validate:"required"`
	Rating  float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string  `json:"comment" validate:"required"`
}

// SeedReviewsInput is the body of POST /api/products/:id/fake-reviews.
type SeedReviewsInput struct {
	Reviews []SeedReview `json:"reviews" validate:"required,dive"`
}

// CatalogService implements product management, reviews, click tracking
// and the analytics summary.
type CatalogService struct {
	products     ProductStore
	users        UserStore
	events       EventPublisher
	allowSeeding bool
	log          logrus.FieldLogger
}

func NewCatalogService(products ProductStore, users UserStore, events EventPublisher, allowSeeding bool, log logrus.FieldLogger) *CatalogService {
	if events == nil {
		events = NopPublisher{}
	}
	return &CatalogService{
		products:     products,
		users:        users,
		events:       events,
		allowSeeding: allowSeeding,
		log:          log,
	}
}

func (s *CatalogService) List(ctx context.Context) ([]*model.Product, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, translate("list products", "product", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, translate("load product", "product", err)
	}
	return p, nil
}

// Create validates in and stores a new product with no reviews.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if err := check(in); err != nil {
		return nil, err
	}
	p := &model.Product{
		Title:        in.Title,
		Description:  in.Description,
		Images:       in.Images,
		Price:        in.Price,
		Category:     in.Category,
		InStock:      true,
		PurchaseLink: in.PurchaseLink,
		Reviews:      []model.Review{},
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, translate("create product", "product", err)
	}
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "title": p.Title}).Info("product created")
	return p, nil
}

// Update applies the supplied fields of in to product id.  The store
// applies them to the current row under a lock.
func (s *CatalogService) Update(ctx context.Context, id uint64, in ProductPatch) (*model.Product, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	ch := model.ProductChanges{
		Description:  in.Description,
		Images:       in.Images,
		Price:        in.Price,
		InStock:      in.InStock,
		PurchaseLink: in.PurchaseLink,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		ch.Title = &title
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		ch.Category = &category
	}
	p, err := s.products.Update(ctx, id, ch)
	if err != nil {
		return nil, translate("update product", "product", err)
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return translate("delete product", "product", err)
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

// AddReview appends a review by userID and returns the product with its
// recomputed rating.  The author's current name is copied onto the review.
func (s *CatalogService) AddReview(ctx context.Context, productID, userID uint64, in ReviewInput) (*model.Product, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := check(in); err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, translate("load user", "user", err)
	}
	p, err := s.products.AppendReviews(ctx, productID, []model.Review{{
		UserID:  author.ID,
		Name:    author.Name,
		Rating:  in.Rating,
		Comment: in.Comment,
	}})
	if err != nil {
		return nil, translate("append review", "product", err)
	}
	s.events.Publish(queue.ActivityEvent{
		Type:      queue.ReviewPosted,
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Reviews:   p.NumReviews,
	})
	return p, nil
}

// SeedReviews appends a batch of unattributed reviews.  It is refused
// with ErrSeedingDisabled unless seeding was enabled in configuration.
func (s *CatalogService) SeedReviews(ctx context.Context, productID uint64, in SeedReviewsInput) (*model.Product, error) {
	if !s.allowSeeding {
		return nil, ErrSeedingDisabled
	}
	if in.Reviews == nil {
		return nil, invalid("reviews must be an array")
	}
	if err := check(in); err != nil {
		return nil, err
	}
	reviews := make([]model.Review, 0, len(in.Reviews))
	for _, r := range in.Reviews {
		reviews = append(reviews, model.Review{
			Name:    strings.TrimSpace(r.Name),
			Rating:  r.Rating,
			Comment: r.Comment,
		})
	}
	p, err := s.products.AppendReviews(ctx, productID, reviews)
	if err != nil {
		return nil, translate("seed reviews", "product", err)
	}
	s.log.WithFields(logrus.Fields{"product_id": productID, "count": len(reviews)}).Warn("seeded reviews appended")
	return p, nil
}

// RecordClick counts one click on product id.
func (s *CatalogService) RecordClick(ctx context.Context, id uint64) error {
	if err := s.products.IncrementClicks(ctx, id); err != nil {
		return translate("record click", "product", err)
	}
	s.events.Publish(queue.ActivityEvent{Type: queue.ProductClicked, ProductID: id})
	return nil
}

// Summary counts regular users and products and totals all clicks.
func (s *CatalogService) Summary(ctx context.Context) (model.Summary, error) {
	var (
		out model.Summary
		err error
	)
	if out.Users, err = s.users.CountByRole(ctx, model.RoleUser); err != nil {
		return model.Summary{}, translate("count users", "user", err)
	}
	if out.Products, err = s.products.Count(ctx); err != nil {
		return model.Summary{}, translate("count products", "product", err)
	}
	if out.Clicks, err = s.products.TotalClicks(ctx); err != nil {
		return model.Summary{}, translate("sum clicks", "product", err)
	}
	return out, nil
}

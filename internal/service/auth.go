package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
	"github.com/rihanvyakoob07/authenflow-platform/internal/repository"
	"github.com/rihanvyakoob07/authenflow-platform/internal/utils"
)

// UserStore is the persistence surface AuthService needs.  It is
// satisfied by *repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, u *model.User) error
	SetRole(ctx context.Context, id uint64, role model.Role) error
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}

// WishlistStore is satisfied by *repository.WishlistRepo.
type WishlistStore interface {
	Add(ctx context.Context, userID, productID uint64) error
	Remove(ctx context.Context, userID, productID uint64) error
	ProductIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72,pwbytes"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is the body of PUT /api/auth/profile.  Nil fields are left
// unchanged.
type ProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72,pwbytes"`
}

// Session is what register and login hand back to the client.
type Session struct {
	User  model.User
	Token utils.AccessToken
}

// AuthService implements registration, login, profile and wishlist
// operations on top of the credential store.
type AuthService struct {
	users      UserStore
	wishlist   WishlistStore
	products   ProductStore
	tokens     *utils.TokenService
	bcryptCost int
	log        logrus.FieldLogger
}

func NewAuthService(users UserStore, wishlist WishlistStore, products ProductStore, tokens *utils.TokenService, bcryptCost int, log logrus.FieldLogger) *AuthService {
	if users == nil || wishlist == nil || products == nil || tokens == nil {
		panic("nil dependency passed to NewAuthService")
	}
	return &AuthService{
		users:      users,
		wishlist:   wishlist,
		products:   products,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Register creates a regular user account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	u, err := s.createAccount(ctx, in, model.RoleUser)
	if err != nil {
		return Session{}, err
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user registered")
	return Session{User: u, Token: tok}, nil
}

// createAccount validates in and stores it with role in a single insert.
func (s *AuthService) createAccount(ctx context.Context, in RegisterInput, role model.Role) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = model.NormalizeEmail(in.Email)
	if err := check(in); err != nil {
		return model.User{}, err
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.log.WithField("email", in.Email).Info("registration rejected: email exists")
		}
		return model.User{}, translate("create user", "user", err)
	}
	u.Wishlist = []uint64{}
	return u, nil
}

// Authenticate checks credentials.  An unknown email and a wrong password
// produce the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, translate("load user", "user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login validates in, authenticates it and signs a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = model.NormalizeEmail(in.Email)
	if err := check(in); err != nil {
		return Session{}, err
	}
	u, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.WithField("email", in.Email).Warn("login failed")
		}
		return Session{}, err
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok}, nil
}

// Me returns the identity for id together with its wishlist ids.
func (s *AuthService) Me(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, translate("load user", "user", err)
	}
	ids, err := s.wishlist.ProductIDs(ctx, id)
	if err != nil {
		return model.User{}, translate("load wishlist", "wishlist", err)
	}
	u.Wishlist = ids
	return u, nil
}

// UpdateProfile overwrites only the supplied fields.  A new password is
// re-hashed; tokens issued earlier stay valid until they expire.
func (s *AuthService) UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (model.User, error) {
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		in.Name = &v
	}
	if in.Email != nil {
		v := model.NormalizeEmail(*in.Email)
		in.Email = &v
	}
	if err := check(in); err != nil {
		return model.User{}, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, translate("load user", "user", err)
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, &u); err != nil {
		return model.User{}, translate("update user", "user", err)
	}
	return s.Me(ctx, id)
}

// AddToWishlist saves productID for the user.  The product must exist and
// may only be added once.
func (s *AuthService) AddToWishlist(ctx context.Context, userID, productID uint64) ([]uint64, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, translate("load product", "product", err)
	}
	if err := s.wishlist.Add(ctx, userID, productID); err != nil {
		return nil, translate("add wishlist item", "product", err)
	}
	return s.wishlistIDs(ctx, userID)
}

// RemoveFromWishlist drops productID; removing an absent item succeeds.
func (s *AuthService) RemoveFromWishlist(ctx context.Context, userID, productID uint64) ([]uint64, error) {
	if err := s.wishlist.Remove(ctx, userID, productID); err != nil {
		return nil, translate("remove wishlist item", "product", err)
	}
	return s.wishlistIDs(ctx, userID)
}

// Wishlist returns the saved products, expanded.
func (s *AuthService) Wishlist(ctx context.Context, userID uint64) ([]*model.Product, error) {
	ids, err := s.wishlistIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, translate("load wishlist products", "product", err)
	}
	return products, nil
}

// EnsureAdmin creates an admin account, or promotes the existing account
// with that email.  A new account is inserted with the admin role
// directly.  It backs the -create-admin bootstrap flag.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Email = model.NormalizeEmail(in.Email)
	existing, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if err := s.users.SetRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			return model.User{}, translate("promote user", "user", err)
		}
		existing.Role = model.RoleAdmin
		return existing, nil
	case !errors.Is(err, repository.ErrNotFound):
		return model.User{}, translate("load user", "user", err)
	}

	return s.createAccount(ctx, in, model.RoleAdmin)
}

func (s *AuthService) wishlistIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids, err := s.wishlist.ProductIDs(ctx, userID)
	if err != nil {
		return nil, translate("load wishlist", "wishlist", err)
	}
	return ids, nil
}

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altezzai/storefront-backend/pkg/db"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
)

// Owner identifies a cart by exactly one of a registered user or a guest
// token.
type Owner struct {
	UserID     *uuid.UUID
	GuestToken *string
}

// UserOwner builds an Owner for a registered user.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner builds an Owner for an anonymous guest token.
func GuestOwner(token string) Owner {
	return Owner{GuestToken: &token}
}

func (o Owner) validate() error {
	if (o.UserID == nil) == (o.GuestToken == nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner must be exactly one of user or guest token")
	}
	if o.GuestToken != nil && *o.GuestToken == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "guest token cannot be empty")
	}
	return nil
}

// Line is one priced cart row in the read model.
type Line struct {
	ItemID         int64
	ProductID      uuid.UUID
	Name           string
	Quantity       int
	UnitPriceCents int
	LineTotalCents int
}

// View is the priced cart read model. Lines are ordered by insertion.
type View struct {
	CartID     uuid.UUID
	Lines      []Line
	TotalCents int
}

// MergeResult reports what an additive merge moved.
type MergeResult struct {
	MergedLines int
	UserCartID  uuid.UUID
}

// Service exposes cart store and merge operations.
type Service interface {
	AddItem(ctx context.Context, owner Owner, productID uuid.UUID, qty int) (*View, error)
	UpdateItem(ctx context.Context, owner Owner, productID uuid.UUID, qty int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error)
	GetView(ctx context.Context, owner Owner) (*View, error)
	Merge(ctx context.Context, userID uuid.UUID, guestToken string) (*MergeResult, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type tokenInvalidator interface {
	InvalidateGuestToken(ctx context.Context, token string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	products productLoader
	tokens   tokenInvalidator
	tx       txRunner
}

// NewService constructs the cart service.
func NewService(repo *Repository, products productLoader, tokens tokenInvalidator, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("guest token store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, products: products, tokens: tokens, tx: tx}, nil
}

// AddItem appends qty of the product to the owner's cart, summing into an
// existing line when present. The stock gate here is best effort; checkout
// re-validates inside its transaction.
func (s *service) AddItem(ctx context.Context, owner Owner, productID uuid.UUID, qty int) (*View, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}

	newQty := qty
	if existing != nil {
		newQty += existing.Quantity
	}
	if newQty > product.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", product.Name))
	}

	if existing != nil {
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, newQty); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.repo.CreateItem(ctx, &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  qty,
		}); err != nil {
			return nil, err
		}
	}

	return s.GetView(ctx, owner)
}

// UpdateItem sets the line quantity for the product.
func (s *service) UpdateItem(ctx context.Context, owner Owner, productID uuid.UUID, qty int) (*View, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", product.Name))
	}

	item, err := s.findOwnedItem(ctx, owner, productID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, qty); err != nil {
		return nil, err
	}
	return s.GetView(ctx, owner)
}

// RemoveItem deletes the product line from the owner's cart.
func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) (*View, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	item, err := s.findOwnedItem(ctx, owner, productID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.GetView(ctx, owner)
}

// GetView prices the owner's cart. An owner with no cart yet gets an empty
// view.
func (s *service) GetView(ctx context.Context, owner Owner) (*View, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	cart, err := s.findCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &View{}, nil
	}
	return buildView(cart), nil
}

// Merge moves guest cart lines into the user cart additively, then removes
// the guest cart and exhausts the token. A stale or unknown token is a
// no-op, which makes client retries idempotent.
func (s *service) Merge(ctx context.Context, userID uuid.UUID, guestToken string) (*MergeResult, error) {
	if guestToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest token cannot be empty")
	}

	result := &MergeResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		guestCart, err := txRepo.FindByGuestToken(ctx, guestToken)
		if err != nil {
			return err
		}
		// An unknown token or an empty guest cart merges nothing and
		// leaves the user side untouched.
		if guestCart == nil || len(guestCart.Items) == 0 {
			return nil
		}

		userCart, err := txRepo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if userCart == nil {
			userCart, err = txRepo.Create(ctx, &models.Cart{ID: uuid.New(), UserID: &userID})
			if err != nil {
				return err
			}
		}
		result.UserCartID = userCart.ID

		for _, guestItem := range guestCart.Items {
			existing, err := txRepo.FindItem(ctx, userCart.ID, guestItem.ProductID)
			if err != nil {
				return err
			}
			if existing != nil {
				if err := txRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+guestItem.Quantity); err != nil {
					return err
				}
			} else {
				if _, err := txRepo.CreateItem(ctx, &models.CartItem{
					CartID:    userCart.ID,
					ProductID: guestItem.ProductID,
					Quantity:  guestItem.Quantity,
				}); err != nil {
					return err
				}
			}
			result.MergedLines++
		}

		return txRepo.DeleteCart(ctx, guestCart.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.tokens.InvalidateGuestToken(ctx, guestToken); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidating guest token")
	}
	return result, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
		}
		return nil, err
	}
	return product, nil
}

func (s *service) findCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	if owner.UserID != nil {
		return s.repo.FindByUser(ctx, *owner.UserID)
	}
	return s.repo.FindByGuestToken(ctx, *owner.GuestToken)
}

func (s *service) getOrCreate(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := s.findCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	created, err := s.repo.Create(ctx, &models.Cart{
		ID:         uuid.New(),
		UserID:     owner.UserID,
		GuestToken: owner.GuestToken,
	})
	if err != nil {
		// A concurrent request can win the insert on the per-owner
		// unique index; the loser reuses the existing cart.
		if db.IsUniqueViolation(err, "") {
			if existing, findErr := s.findCart(ctx, owner); findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return created, nil
}

func (s *service) findOwnedItem(ctx context.Context, owner Owner, productID uuid.UUID) (*models.CartItem, error) {
	cart, err := s.findCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}
	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}
	return item, nil
}

func buildView(cart *models.Cart) *View {
	view := &View{CartID: cart.ID, Lines: make([]Line, 0, len(cart.Items))}
	for _, item := range cart.Items {
		unit := 0
		name := ""
		if item.Product != nil {
			unit = item.Product.EffectivePriceCents()
			name = item.Product.Name
		}
		line := Line{
			ItemID:         item.ID,
			ProductID:      item.ProductID,
			Name:           name,
			Quantity:       item.Quantity,
			UnitPriceCents: unit,
			LineTotalCents: unit * item.Quantity,
		}
		view.Lines = append(view.Lines, line)
		view.TotalCents += line.LineTotalCents
	}
	return view
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// SupplierService manages the supplier directory: profile upkeep by the
// owning supplier account, admin-managed entries, and the per-material
// sourcing links with wholesale price and lead time.
type SupplierService struct {
	db        *sqlx.DB
	suppliers *repository.SupplierRepository
	materials *repository.MaterialRepository
}

// NewSupplierService creates a SupplierService.
func NewSupplierService(db *sqlx.DB, suppliers *repository.SupplierRepository, materials *repository.MaterialRepository) *SupplierService {
	return &SupplierService{db: db, suppliers: suppliers, materials: materials}
}

// ProfileInput is the writable part of a supplier directory entry.
type ProfileInput struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpsertProfile creates or updates the caller's own directory entry. Only
// supplier accounts (and admins) carry one.
func (s *SupplierService) UpsertProfile(ctx context.Context, userID int64, role models.Role, in ProfileInput) (*models.Supplier, error) {
	if !role.CanBid() {
		return nil, utils.Forbidden("SUPPLIER_ROLE_REQUIRED", "only suppliers may maintain a directory profile")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.Validation("INVALID_NAME", "supplier name is required")
	}

	existing, err := s.suppliers.GetByUserID(userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, utils.Internal(err)
	}
	if existing == nil {
		sup := &models.Supplier{
			UserID:   &userID,
			Name:     name,
			Phone:    in.Phone,
			Address:  in.Address,
			IsActive: true,
		}
		if err := s.suppliers.Create(sup); err != nil {
			return nil, utils.Internal(err)
		}
		log.Info().Int64("supplier_id", sup.ID).Int64("user_id", userID).Msg("supplier profile created")
		return sup, nil
	}

	existing.Name = name
	existing.Phone = in.Phone
	existing.Address = in.Address
	if err := s.suppliers.Update(existing); err != nil {
		return nil, utils.Internal(err)
	}
	return existing, nil
}

// GetProfile returns the caller's own directory entry.
func (s *SupplierService) GetProfile(userID int64) (*models.Supplier, error) {
	sup, err := s.suppliers.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("SUPPLIER_PROFILE_NOT_FOUND", "no supplier profile for this account")
		}
		return nil, utils.Internal(err)
	}
	return sup, nil
}

// ListSuppliers returns the whole directory.
func (s *SupplierService) ListSuppliers() ([]models.Supplier, error) {
	list, err := s.suppliers.List()
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// CreateSupplier adds a directory entry with no backing account (admin).
func (s *SupplierService) CreateSupplier(ctx context.Context, in ProfileInput) (*models.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.Validation("INVALID_NAME", "supplier name is required")
	}
	sup := &models.Supplier{
		Name:     name,
		Phone:    in.Phone,
		Address:  in.Address,
		IsActive: true,
	}
	if err := s.suppliers.Create(sup); err != nil {
		return nil, utils.Internal(err)
	}
	return sup, nil
}

// SetActive flips a supplier's active flag (admin).
func (s *SupplierService) SetActive(supplierID int64, active bool) error {
	ok, err := s.suppliers.SetActive(supplierID, active)
	if err != nil {
		return utils.Internal(err)
	}
	if !ok {
		return utils.NotFound("SUPPLIER_NOT_FOUND", "supplier not found")
	}
	return nil
}

// LinkInput describes one supplier's sourcing terms for a material.
// SupplierID is only honored for admins; everyone else links against their
// own profile.
type LinkInput struct {
	MaterialID     int64            `json:"materialId" binding:"required"`
	SupplierID     int64            `json:"supplierId"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice"`
	IsPrimary      bool             `json:"isPrimary"`
	LeadTimeDays   int              `json:"leadTimeDays"`
}

// LinkMaterial writes the caller's sourcing terms for one material. Marking
// a link primary demotes every other supplier's link for that material, so
// at most one primary source exists.
func (s *SupplierService) LinkMaterial(ctx context.Context, userID int64, role models.Role, in LinkInput) (*models.MaterialSupplier, error) {
	if in.LeadTimeDays < 0 {
		return nil, utils.Validation("INVALID_LEAD_TIME", "lead time must be >= 0 days")
	}
	if in.WholesalePrice != nil && !in.WholesalePrice.IsPositive() {
		return nil, utils.Validation("INVALID_PRICE", "wholesale price must be > 0")
	}

	sup, err := s.resolveSupplier(userID, role, in.SupplierID)
	if err != nil {
		return nil, err
	}
	m, err := s.materials.GetByID(s.db, in.MaterialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
		}
		return nil, utils.Internal(err)
	}

	link := &models.MaterialSupplier{
		SupplierID:     sup.ID,
		MaterialID:     m.ID,
		WholesalePrice: in.WholesalePrice,
		IsPrimary:      in.IsPrimary,
		LeadTimeDays:   in.LeadTimeDays,
	}
	err = repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.suppliers.UpsertLink(tx, link); err != nil {
			return utils.Internal(err)
		}
		if link.IsPrimary {
			if err := s.suppliers.DemotePeers(tx, m.ID, sup.ID); err != nil {
				return utils.Internal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	link.SupplierName = sup.Name
	link.MaterialSKU = m.SKU
	return link, nil
}

// ListLinks returns material links scoped to the caller: admins see every
// link, suppliers their own, and accounts without a profile see none.
func (s *SupplierService) ListLinks(userID int64, role models.Role) ([]models.MaterialSupplier, error) {
	if role == models.RoleAdmin {
		list, err := s.suppliers.ListAllLinks()
		if err != nil {
			return nil, utils.Internal(err)
		}
		return list, nil
	}
	sup, err := s.suppliers.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.MaterialSupplier{}, nil
		}
		return nil, utils.Internal(err)
	}
	list, err := s.suppliers.ListLinksBySupplier(sup.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// UnlinkMaterial removes one material link. Only the owning supplier or an
// admin may remove it.
func (s *SupplierService) UnlinkMaterial(ctx context.Context, userID int64, role models.Role, linkID int64) error {
	link, err := s.suppliers.GetLink(linkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("LINK_NOT_FOUND", "material link not found")
		}
		return utils.Internal(err)
	}
	if role != models.RoleAdmin {
		sup, err := s.suppliers.GetByUserID(userID)
		if err != nil || sup.ID != link.SupplierID {
			return utils.Forbidden("NOT_LINK_OWNER", "only the owning supplier may remove this link")
		}
	}
	ok, err := s.suppliers.DeleteLink(linkID)
	if err != nil {
		return utils.Internal(err)
	}
	if !ok {
		return utils.NotFound("LINK_NOT_FOUND", "material link not found")
	}
	return nil
}

// resolveSupplier picks the directory entry a link operation targets: an
// explicit id for admins, the caller's own profile otherwise.
func (s *SupplierService) resolveSupplier(userID int64, role models.Role, supplierID int64) (*models.Supplier, error) {
	if supplierID != 0 {
		if role != models.RoleAdmin {
			return nil, utils.Forbidden("NOT_LINK_OWNER", "only admins may link on behalf of another supplier")
		}
		sup, err := s.suppliers.GetByID(supplierID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, utils.NotFound("SUPPLIER_NOT_FOUND", "supplier not found")
			}
			return nil, utils.Internal(err)
		}
		return sup, nil
	}
	if !role.CanBid() {
		return nil, utils.Forbidden("SUPPLIER_ROLE_REQUIRED", "only suppliers may link materials")
	}
	sup, err := s.suppliers.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("SUPPLIER_PROFILE_NOT_FOUND", "create a supplier profile first")
		}
		return nil, utils.Internal(err)
	}
	return sup, nil
}

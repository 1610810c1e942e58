package sales

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// Viewer is the authenticated user reading sales.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Visibility narrows sale queries to the rows a viewer may read.
type Visibility struct {
	All            bool
	OwnerID        *uuid.UUID
	IncludeUnowned bool
}

// VisibilityFor resolves the scope for viewer. Admins read every sale. Cashiers
// read their own sales, plus sales with no recorded cashier when legacyVisible
// is set.
func VisibilityFor(viewer Viewer, legacyVisible bool) Visibility {
	if viewer.Role == enums.UserRoleAdmin {
		return Visibility{All: true}
	}
	scope := Visibility{IncludeUnowned: legacyVisible}
	if viewer.UserID != uuid.Nil {
		id := viewer.UserID
		scope.OwnerID = &id
	}
	return scope
}

func (v Visibility) apply(query *gorm.DB) *gorm.DB {
	switch {
	case v.All:
		return query
	case v.OwnerID != nil && v.IncludeUnowned:
		return query.Where("(sales.user_id = ? OR sales.user_id IS NULL)", *v.OwnerID)
	case v.OwnerID != nil:
		return query.Where("sales.user_id = ?", *v.OwnerID)
	case v.IncludeUnowned:
		return query.Where("sales.user_id IS NULL")
	default:
		return query.Where("1 = 0")
	}
}

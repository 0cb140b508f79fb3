package userValidator

import (
	"cursapp/models"
	"cursapp/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProfileRequest struct {
	Name string `json:"name" validate:"required,notblank,min=2,max=100"`
	Bio  string `json:"bio" validate:"max=2000"`
}

// AdminUserRequest carries the fields only an admin may change. Absent fields are kept.
type AdminUserRequest struct {
	Role           *models.Role     `json:"role" validate:"omitempty,oneof=admin instructor student"`
	Commission     *decimal.Decimal `json:"commission"`
	Verified       *bool            `json:"verified"`
	VerifiedEntity *string          `json:"verified_entity" validate:"omitempty,max=150"`
}

func UpdateProfile() fiber.Handler {
	return validators.Body[ProfileRequest]("validatedProfile")
}

func UserList() fiber.Handler {
	return validators.Paginate()
}

func UpdateUser() fiber.Handler {
	return validators.Body[AdminUserRequest]("validatedUser", func(req *AdminUserRequest, errs map[string]string) {
		if req.Commission != nil {
			if req.Commission.IsNegative() || req.Commission.GreaterThan(decimal.NewFromInt(100)) {
				errs["commission"] = "Commission must be between 0 and 100!"
			}
		}
		if req.Role == nil && req.Commission == nil && req.Verified == nil && req.VerifiedEntity == nil {
			errs["request"] = "Nothing to update!"
		}
	})
}

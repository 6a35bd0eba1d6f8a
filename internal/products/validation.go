package products

import (
	"fmt"
	"strings"

	"github.com/tokokita/tokokita/internal/platform/httpx"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if p.BuyingPrice < 0 {
		return fmt.Errorf("%w: buying price must not be negative", httpx.ErrValidation)
	}
	if p.SellingPrice < 0 {
		return fmt.Errorf("%w: selling price must not be negative", httpx.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", httpx.ErrValidation)
	}
	if p.UnitType != "" && p.UnitType != UnitTypePiece && p.UnitType != UnitTypePackage {
		return fmt.Errorf("%w: unit type must be piece or package", httpx.ErrValidation)
	}
	return nil
}

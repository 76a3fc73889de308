package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	incentive "github.com/DevWael/google-review-incentive"
)

type AdminHandler interface {
	ResetCustomer(c echo.Context) error
	GuestCoupon(c echo.Context) error
	Cleanup(c echo.Context) error
}

type adminHandler struct {
	Incentive incentive.Incentive
}

func NewAdminHandler(
	Incentive incentive.Incentive,
) AdminHandler {
	return &adminHandler{
		Incentive: Incentive,
	}
}

// ResetCustomer handles DELETE /admin/customers/:email/claims
func (ah *adminHandler) ResetCustomer(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email is required"})
	}

	if err := ah.Incentive.ResetCustomer(c.Request().Context(), email); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset customer"})
	}

	return c.NoContent(http.StatusNoContent)
}

// GuestCoupon handles GET /admin/guests/:email/coupon
func (ah *adminHandler) GuestCoupon(c echo.Context) error {
	email := c.Param("email")

	code, err := ah.Incentive.GuestCouponCode(c.Request().Context(), email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to look up guest coupon"})
	}
	if code == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No coupon issued for this email"})
	}

	return c.JSON(http.StatusOK, map[string]string{"code": code})
}

// Cleanup handles POST /admin/cleanup
func (ah *adminHandler) Cleanup(c echo.Context) error {
	if err := ah.Incentive.Cleanup(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Cleanup failed"})
	}

	return c.NoContent(http.StatusOK)
}

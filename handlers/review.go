package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	incentive "github.com/DevWael/google-review-incentive"
	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/models"
	"github.com/DevWael/google-review-incentive/review"
)

type ReviewHandler interface {
	HandleReviewClick(c echo.Context) error
	GenerateReviewLink(c echo.Context) error
}

type reviewHandler struct {
	Incentive incentive.Incentive
}

func NewReviewHandler(
	Incentive incentive.Incentive,
) ReviewHandler {
	return &reviewHandler{
		Incentive: Incentive,
	}
}

// HandleReviewClick handles GET /review
func (rh *reviewHandler) HandleReviewClick(c echo.Context) error {
	orderID, _ := strconv.ParseUint(c.QueryParam("order_id"), 10, 64)

	outcome := rh.Incentive.HandleReviewClick(c.Request().Context(), models.ClickRequest{
		Action:  c.QueryParam("gri_action"),
		OrderID: orderID,
		Token:   c.QueryParam("token"),
	})

	if outcome.Kind == review.OutcomeRedirect {
		return c.Redirect(http.StatusFound, outcome.URL)
	}

	return c.HTML(http.StatusForbidden, errorPage(outcome.Message))
}

// GenerateReviewLink handles POST /orders/:id/review-link
func (rh *reviewHandler) GenerateReviewLink(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order id"})
	}

	link, err := rh.Incentive.GenerateReviewLink(c.Request().Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		case errors.Is(err, claim.ErrAlreadyClaimed):
			return c.JSON(http.StatusConflict, map[string]string{"error": "Reward already claimed"})
		case errors.Is(err, review.ErrPlaceIDNotConfigured), errors.Is(err, review.ErrNoBillingEmail):
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate review link"})
		}
	}

	return c.JSON(http.StatusOK, link)
}

// errorPage is the blocking error display a rejected click terminates in,
// mirroring the host platform's "die" convention.
func errorPage(message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Review Link</title></head>
<body style="font-family: Arial, sans-serif; text-align: center; padding: 80px 20px;">
<p>%s</p>
</body>
</html>`, html.EscapeString(message))
}

package enum

type DiscountType string

const (
	DiscountTypePercent      DiscountType = "percent"
	DiscountTypeFixedCart    DiscountType = "fixed_cart"
	DiscountTypeFixedProduct DiscountType = "fixed_product"
)

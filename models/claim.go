package models

type IdentityKind string

const (
	IdentityRegistered IdentityKind = "registered"
	IdentityGuest      IdentityKind = "guest"
)

// Identity is the resolved claimant of a review reward: a registered
// customer when the claiming email matches an account, otherwise a guest
// known only by the normalized email.
type Identity struct {
	Kind     IdentityKind `json:"kind"`
	Customer *Customer    `json:"customer,omitempty"`
	Email    string       `json:"email"`
}

func RegisteredIdentity(customer *Customer) Identity {
	return Identity{
		Kind:     IdentityRegistered,
		Customer: customer,
		Email:    NormalizeEmail(customer.Email),
	}
}

func GuestIdentity(email string) Identity {
	return Identity{
		Kind:  IdentityGuest,
		Email: NormalizeEmail(email),
	}
}

// GuestClaim is the guest-side claim record kept in the shared guest
// mapping. Registered customers carry the same fact as customer meta.
type GuestClaim struct {
	Timestamp  int64  `json:"timestamp"`
	CouponCode string `json:"coupon_code"`
}

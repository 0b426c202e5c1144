package models

// TenantContext identifies the barbershop, and optionally the barber, a request operates on.
// It is resolved once at the HTTP boundary and passed explicitly to services.
type TenantContext struct {
	BarbershopID string
	BarberID     *string
}

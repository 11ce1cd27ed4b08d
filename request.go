package detent

// Request carries one value through a Confirmer pipeline.
type Request struct {
	// ParameterID is the parameter the value belongs to.
	ParameterID string

	// Previous is the authoritative value when the request was created.
	Previous float64

	// Candidate is the value as it was reported, before any middleware.
	Candidate float64

	// Value is the value that will be confirmed. Middleware may rewrite it.
	Value float64

	// Range is the store's range for the parameter when the request was
	// created. It is the zero Range when the parameter is absent.
	Range Range
}

// Delta returns Value - Previous.
func (r *Request) Delta() float64 {
	return r.Value - r.Previous
}

package types

// Cramberry decodes a pointer to a zero value as nil, so optional
// values cross the wire as a presence flag plus a value.

// StatusRecord is the wire form of a possibly absent *SignatureStatus.
type StatusRecord struct {
	Found              bool       `cramberry:"1"`
	Slot               uint64     `cramberry:"2"`
	HasConfirmations   bool       `cramberry:"3"`
	Confirmations      uint64     `cramberry:"4"`
	Err                string     `cramberry:"5"`
	ConfirmationStatus Commitment `cramberry:"6"`
}

// NewStatusRecord encodes s. A nil s yields a record with Found unset.
func NewStatusRecord(s *SignatureStatus) StatusRecord {
	if s == nil {
		return StatusRecord{}
	}
	r := StatusRecord{
		Found:              true,
		Slot:               s.Slot,
		Err:                s.Err,
		ConfirmationStatus: s.ConfirmationStatus,
	}
	if s.Confirmations != nil {
		r.HasConfirmations, r.Confirmations = true, *s.Confirmations
	}
	return r
}

// Status decodes r, returning nil when no status was found.
func (r StatusRecord) Status() *SignatureStatus {
	if !r.Found {
		return nil
	}
	s := &SignatureStatus{
		Slot:               r.Slot,
		Err:                r.Err,
		ConfirmationStatus: r.ConfirmationStatus,
	}
	if r.HasConfirmations {
		n := r.Confirmations
		s.Confirmations = &n
	}
	return s
}

// SubmitRecord is the wire form of SubmitOptions.
type SubmitRecord struct {
	SkipPreflight       bool       `cramberry:"1"`
	PreflightCommitment Commitment `cramberry:"2"`
	HasMaxRetries       bool       `cramberry:"3"`
	MaxRetries          uint64     `cramberry:"4"`
}

// NewSubmitRecord encodes o.
func NewSubmitRecord(o SubmitOptions) SubmitRecord {
	r := SubmitRecord{SkipPreflight: o.SkipPreflight, PreflightCommitment: o.PreflightCommitment}
	if o.MaxRetries != nil {
		r.HasMaxRetries, r.MaxRetries = true, *o.MaxRetries
	}
	return r
}

// Options decodes r.
func (r SubmitRecord) Options() SubmitOptions {
	o := SubmitOptions{SkipPreflight: r.SkipPreflight, PreflightCommitment: r.PreflightCommitment}
	if r.HasMaxRetries {
		n := r.MaxRetries
		o.MaxRetries = &n
	}
	return o
}

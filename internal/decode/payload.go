package decode

import "locshare/internal/domain"

// Result is one complete decode pass. Either every record decoded or the
// pass failed; there is no partial result.
type Result struct {
	Self   *domain.SelfRecord    `json:"self,omitempty"`
	Shared []domain.SharedRecord `json:"shared"`
}

// People returns the authenticated record (if any) followed by the shared ones,
// all flattened to SharedRecord. The self entry carries no identity fields.
func (r Result) People() []domain.SharedRecord {
	people := make([]domain.SharedRecord, 0, len(r.Shared)+1)
	if r.Self != nil {
		people = append(people, domain.SharedRecord{Position: r.Self.Position})
	}
	return append(people, r.Shared...)
}

// DecodePayload runs the full pipeline over a raw response body:
// extract, parse, session check, then record decoding.
func DecodePayload(body []byte) (Result, error) {
	raw, err := Extract(string(body))
	if err != nil {
		return Result{}, err
	}
	top, err := Parse([]byte(raw), RootPath)
	if err != nil {
		return Result{}, err
	}
	return DecodeTop(top)
}

// DecodeTop decodes an already parsed top-level payload.
func DecodeTop(top View) (Result, error) {
	if err := ValidateSession(top); err != nil {
		return Result{}, err
	}
	if err := top.RequireMinLen(topMinLen); err != nil {
		return Result{}, err
	}

	res := Result{Shared: []domain.SharedRecord{}}
	if !top.Index(selfSlotOffset).IsAbsent() {
		self, err := DecodeSelf(top)
		if err != nil {
			return Result{}, err
		}
		res.Self = &self
	}

	list := top.Index(sharedListOffset)
	if list.IsAbsent() {
		return res, nil
	}
	if err := list.RequireMinLen(0); err != nil {
		return Result{}, err
	}
	for i := 0; i < list.Len(); i++ {
		rec, err := DecodeShared(list.Index(i))
		if err != nil {
			return Result{}, err
		}
		res.Shared = append(res.Shared, rec)
	}
	return res, nil
}

// Package acl is the anti-corruption layer between the remote quotes API and
// the domain.
//
// The remote listing returns
//
//	{"quotes": [{"id": 1, "quote": "...", "author": "..."}], "total": 1454, ...}
//
// Only the quote text and author cross the boundary; ids, paging fields, and
// anything else the API adds stay here. Records missing either field are
// dropped during translation rather than failing the whole fetch.
//
// Failures are translated to domain errors:
//   - transport errors, open circuit, exhausted retries → [domain.ErrUnavailable]
//   - 404 → [domain.ErrNotFound]
//   - 400/422 → [domain.ErrValidation]
//   - 401/403 → [domain.ErrForbidden]
//   - 429 and 5xx → [domain.ErrUnavailable]
//
// Callers never see [net/http] types or the external JSON shape.
package acl

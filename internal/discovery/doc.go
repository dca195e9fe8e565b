// Package discovery turns search filters into candidate leads with one
// web-grounded oracle call.
//
// The client builds a prompt from the filters and the market wording, asks
// for a JSON array shaped by LeadSchema, and converts whatever comes back into
// types.Lead values. The response is treated as hostile input: elements that
// are not objects are skipped and each field is type-checked on its own. An
// object without a company name still becomes a lead with Name left empty.
//
// Discovery never reads or writes History. The exclusion list arrives inside
// the filters, and the session applies the authoritative History filter
// afterwards; see package deduplication.
package discovery

// Package deduplication drops discovered leads the user has already seen.
//
// # Overview
//
// The oracle is asked not to return companies from History, but the prompt
// only carries a bounded prefix of it and the oracle may ignore the request
// anyway. This package is the authoritative filter: a lead whose identifier
// is already in History never reaches the working set.
//
// # Rules
//
//   - A lead with an empty identifier is always kept. It can never be
//     deduplicated and never enters History.
//   - A lead whose identifier is in History is dropped (DuplicatePairs).
//   - With EnableWithinBatchDedup (off by default), a second lead carrying the same
//     identifier as an earlier lead in the same batch is dropped, keeping
//     the first occurrence (WithinBatchDuplicates).
//   - Surviving leads keep their relative order.
//
// The filter is pure: it never mutates History or the candidate leads.
package deduplication

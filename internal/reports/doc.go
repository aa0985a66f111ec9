// Package reports persists field-service reports for one account.
//
// # Overview
//
// Reports are stored as a single JSON array under the account's reports key,
// next to the account's list of trip types. The Repository works on any
// storage.Backend but is meant to be given the *storage.Scoped handle of the
// signed-in account, so every key lands in that account's namespace.
//
// Report document data is normalized through the report package on every
// read and write, so callers always see canonical documents.
//
// Typical Usage
//
//	repo := reports.NewRepository(session.ScopedStorage())
//	r, _ := repo.Save(ctx, reports.Report{Title: "Pump service"})
//	list, _ := repo.List(ctx)
//	_ = repo.Delete(ctx, r.ID)
package reports

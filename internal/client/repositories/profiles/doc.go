// Package profiles keeps the last confirmed member profile in the local
// SQLite database so the client can greet the user before the server
// answers.
//
// The cache holds at most one profile: saving a profile replaces whatever
// was cached for another account. Values are for display only and are never
// used to decide whether onboarding is required.
//
//	repo := profiles.NewSQLiteRepository(db)
//	_ = repo.Save(ctx, p)
//	p, _ := repo.Get(ctx, id) // nil, nil when absent
package profiles

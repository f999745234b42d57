// Package pg connects to the PostgreSQL database that stores deal records
// when DEALDOCS_DEAL_STORE=postgres and applies the embedded goose
// migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, deal.Migrations, deal.MigrationsDir, cfg, log); err != nil {
//		return err
//	}
package pg

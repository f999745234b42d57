// Package mongo connects to the MongoDB deployment that stores deal
// records when DEALDOCS_DEAL_STORE=mongo.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	deals := deal.NewMongoRepository(db)
package mongo

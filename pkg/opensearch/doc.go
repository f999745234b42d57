// Package opensearch connects to the OpenSearch cluster that indexes
// document activity.
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	rec := activity.NewOpenSearchRecorder(client, cfg.Index)
package opensearch

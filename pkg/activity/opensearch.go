package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// DefaultIndex is the OpenSearch index events are written to.
const DefaultIndex = "dealdocs-activity"

// OpenSearchRecorder indexes events into OpenSearch. The event ID is the
// document ID, so retried writes do not duplicate events.
type OpenSearchRecorder struct {
	transport opensearchapi.Transport
	index     string
}

// NewOpenSearchRecorder writes to index, or DefaultIndex when empty.
// *opensearch.Client satisfies opensearchapi.Transport.
func NewOpenSearchRecorder(transport opensearchapi.Transport, index string) *OpenSearchRecorder {
	if index == "" {
		index = DefaultIndex
	}
	return &OpenSearchRecorder{transport: transport, index: index}
}

func (r *OpenSearchRecorder) Record(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e = e.Stamp()

	body, err := json.Marshal(e)
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	res, err := opensearchapi.IndexRequest{
		Index:      r.index,
		DocumentID: e.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, r.transport)
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	return checkResponse(res)
}

// RecordBatch indexes events with one bulk request.
func (r *OpenSearchRecorder) RecordBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
		e = e.Stamp()
		meta := map[string]map[string]string{"index": {"_index": r.index, "_id": e.ID}}
		if err := enc.Encode(meta); err != nil {
			return errors.Join(ErrRecordFailed, err)
		}
		if err := enc.Encode(e); err != nil {
			return errors.Join(ErrRecordFailed, err)
		}
	}

	res, err := opensearchapi.BulkRequest{Index: r.index, Body: &buf}.Do(ctx, r.transport)
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	if res.IsError() {
		return checkResponse(res)
	}
	defer res.Body.Close()

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	if out.Errors {
		return fmt.Errorf("%w: bulk request had item failures", ErrRecordFailed)
	}
	return nil
}

func checkResponse(res *opensearchapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrRecordFailed, res.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
